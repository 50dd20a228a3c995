package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upfall/sensor-backend-go/internal/database"
	"github.com/upfall/sensor-backend-go/internal/models"
	"github.com/upfall/sensor-backend-go/internal/repository"
	"github.com/upfall/sensor-backend-go/internal/windowing"
)

// WindowService orchestrates a windowing run: group raw samples by subject,
// segment, extract features, resolve labels and persist, all in one
// transaction. It also backs the query API.
type WindowService struct {
	db        *sql.DB
	rawRepo   *repository.RawRepository
	winRepo   *repository.WindowRepository
	segmenter *windowing.Segmenter
	logger    *zap.Logger
}

// NewWindowService creates a new window service
func NewWindowService(db *sql.DB, rawRepo *repository.RawRepository,
	winRepo *repository.WindowRepository, segmenter *windowing.Segmenter,
	logger *zap.Logger) *WindowService {
	return &WindowService{
		db:        db,
		rawRepo:   rawRepo,
		winRepo:   winRepo,
		segmenter: segmenter,
		logger:    logger,
	}
}

// Run executes one full windowing pass over the raw store. Either every
// accepted window of the run is committed or none are. An empty raw store
// is not an error: it logs a warning and reports zero windows.
func (s *WindowService) Run(ctx context.Context) (*models.RunSummary, error) {
	summary := &models.RunSummary{
		RunID:         uuid.NewString(),
		WindowSeconds: s.segmenter.WindowLength().Seconds(),
		StrideSeconds: s.segmenter.Stride().Seconds(),
	}
	log := s.logger.With(zap.String("run_id", summary.RunID))

	samples, err := s.rawRepo.FetchAllOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch raw samples: %w", err)
	}
	if len(samples) == 0 {
		log.Warn("raw_sensor_data is empty, load a CSV first")
		return summary, nil
	}

	groups := groupBySubject(samples)
	summary.Subjects = len(groups)

	err = database.Transaction(s.db, func(tx *sql.Tx) error {
		for _, group := range groups {
			// The fetch orders by time already, but the engine does not
			// assume pre-sorted input from the store.
			sort.SliceStable(group, func(i, j int) bool {
				return group[i].Timestamp.Before(group[j].Timestamp)
			})

			it := s.segmenter.Segment(group)
			for {
				w, subset, ok := it.Next()
				if !ok {
					break
				}

				features := windowing.ExtractFeatures(subset)
				if features == nil {
					continue
				}

				lw := models.LabeledWindow{
					SubjectID: w.SubjectID,
					TStart:    w.TStart,
					TEnd:      w.TEnd,
					Features:  features,
				}
				if label, ok := windowing.MajorityLabel(subset); ok {
					lw.Label = &label
				}

				if err := s.winRepo.InsertTx(ctx, tx, lw); err != nil {
					return err
				}
				summary.Windows++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("windowing run failed: %w", err)
	}

	log.Info("windowing run complete",
		zap.Int("windows", summary.Windows),
		zap.Int("subjects", summary.Subjects),
		zap.Float64("window_seconds", summary.WindowSeconds),
		zap.Float64("stride_seconds", summary.StrideSeconds))

	return summary, nil
}

// groupBySubject partitions a subject-ordered sample slice into independent
// per-subject series
func groupBySubject(samples []models.SensorSample) [][]models.SensorSample {
	var groups [][]models.SensorSample
	start := 0
	for i := 1; i <= len(samples); i++ {
		if i == len(samples) || samples[i].SubjectID != samples[start].SubjectID {
			groups = append(groups, samples[start:i])
			start = i
		}
	}
	return groups
}

// List retrieves persisted windows for the query API
func (s *WindowService) List(ctx context.Context, filter models.WindowFilter) (*models.WindowsResponse, error) {
	if filter.StartTime > 0 && filter.EndTime > 0 && filter.StartTime > filter.EndTime {
		return nil, fmt.Errorf("start time must be before end time")
	}

	resp, err := s.winRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list windows: %w", err)
	}
	return resp, nil
}

// Summary aggregates the persisted windows for the query API
func (s *WindowService) Summary(ctx context.Context) (*models.WindowSummary, error) {
	summary, err := s.winRepo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize windows: %w", err)
	}

	summary.GeneratedAt = time.Now().Format(time.RFC3339)
	return summary, nil
}

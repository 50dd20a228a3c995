package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/upfall/sensor-backend-go/internal/database"
	"github.com/upfall/sensor-backend-go/internal/models"
	"github.com/upfall/sensor-backend-go/internal/repository"
)

// requiredColumns must all be present in an intake CSV before any write
var requiredColumns = []string{
	"subject_id", "activity", "timestamp",
	"accel_x", "accel_y", "accel_z",
	"gyro_x", "gyro_y", "gyro_z",
}

// timestampLayouts are tried in order when parsing the timestamp column
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
}

// IngestService loads raw sensor CSVs into the store
type IngestService struct {
	db      *sql.DB
	rawRepo *repository.RawRepository
	logger  *zap.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(db *sql.DB, rawRepo *repository.RawRepository, logger *zap.Logger) *IngestService {
	return &IngestService{db: db, rawRepo: rawRepo, logger: logger}
}

// LoadCSV reads one CSV file and bulk-inserts its rows into
// raw_sensor_data in a single transaction. A missing required column
// aborts the whole batch before any write. Unparseable timestamps do not
// fail the row; they are stored as NULL and reported in one warning.
func (s *IngestService) LoadCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("missing columns in CSV: %v", missing)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV rows: %w", err)
	}

	samples := make([]models.SensorSample, 0, len(records))
	coerced := 0
	for i, record := range records {
		sample, ok, err := parseRecord(record, colIndex)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+2, err)
		}
		if !ok {
			coerced++
		}
		samples = append(samples, sample)
	}

	err = database.Transaction(s.db, func(tx *sql.Tx) error {
		return s.rawRepo.InsertBatch(ctx, tx, samples)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to load %s: %w", path, err)
	}

	if coerced > 0 {
		s.logger.Warn("coerced unparseable timestamps to NULL",
			zap.String("path", path),
			zap.Int("rows", coerced))
	}
	s.logger.Info("loaded raw sensor data",
		zap.String("path", path),
		zap.Int("rows", len(samples)))

	return len(samples), nil
}

// parseRecord converts one CSV record. The second return is false when the
// timestamp could not be parsed and was coerced to the NULL sentinel.
func parseRecord(record []string, colIndex map[string]int) (models.SensorSample, bool, error) {
	var s models.SensorSample

	field := func(name string) string {
		idx := colIndex[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	subjectID, err := strconv.Atoi(field("subject_id"))
	if err != nil {
		return s, false, fmt.Errorf("invalid subject_id %q", field("subject_id"))
	}
	s.SubjectID = subjectID
	s.Activity = field("activity")

	for name, dst := range map[string]*float64{
		"accel_x": &s.AccelX, "accel_y": &s.AccelY, "accel_z": &s.AccelZ,
		"gyro_x": &s.GyroX, "gyro_y": &s.GyroY, "gyro_z": &s.GyroZ,
	} {
		v, err := strconv.ParseFloat(field(name), 64)
		if err != nil {
			return s, false, fmt.Errorf("invalid %s %q", name, field(name))
		}
		*dst = v
	}

	ts, ok := parseTimestamp(field("timestamp"))
	s.Timestamp = ts
	return s, ok, nil
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

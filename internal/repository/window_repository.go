package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/upfall/sensor-backend-go/internal/models"
)

// WindowRepository handles database operations for labeled windows
type WindowRepository struct {
	db *sql.DB
}

// NewWindowRepository creates a new window repository
func NewWindowRepository(db *sql.DB) *WindowRepository {
	return &WindowRepository{db: db}
}

// InsertTx persists one labeled window inside the caller's transaction.
// The feature vector is stored as a JSON document.
func (r *WindowRepository) InsertTx(ctx context.Context, tx *sql.Tx, w models.LabeledWindow) error {
	features, err := json.Marshal(w.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO windows
		(subject_id, t_start, t_end, label, features)
		VALUES (?, ?, ?, ?, ?)`,
		w.SubjectID, w.TStart.UnixNano(), w.TEnd.UnixNano(), w.Label, string(features))
	if err != nil {
		return fmt.Errorf("failed to insert window: %w", err)
	}

	return nil
}

// List retrieves persisted windows matching the filter, paginated and
// ordered by subject then window start
func (r *WindowRepository) List(ctx context.Context, filter models.WindowFilter) (*models.WindowsResponse, error) {
	// Build WHERE clause
	var conditions []string
	var args []interface{}

	if filter.SubjectID > 0 {
		conditions = append(conditions, "subject_id = ?")
		args = append(args, filter.SubjectID)
	}
	if filter.StartTime > 0 {
		conditions = append(conditions, "t_start >= ?")
		args = append(args, time.Unix(filter.StartTime, 0).UnixNano())
	}
	if filter.EndTime > 0 {
		conditions = append(conditions, "t_start <= ?")
		args = append(args, time.Unix(filter.EndTime, 0).UnixNano())
	}
	if filter.Label != "" {
		conditions = append(conditions, "label = ?")
		args = append(args, filter.Label)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM windows"+whereClause, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count windows: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 500 {
		pageSize = 100
	}

	query := `SELECT window_id, subject_id, t_start, t_end, label, features
		FROM windows` + whereClause + `
		ORDER BY subject_id, t_start
		LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query windows: %w", err)
	}
	defer rows.Close()

	windows := []models.LabeledWindow{}
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &models.WindowsResponse{
		Data:       windows,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func scanWindow(rows *sql.Rows) (models.LabeledWindow, error) {
	var w models.LabeledWindow
	var tStart, tEnd int64
	var label sql.NullString
	var features string

	if err := rows.Scan(&w.WindowID, &w.SubjectID, &tStart, &tEnd, &label, &features); err != nil {
		return w, fmt.Errorf("failed to scan window: %w", err)
	}

	w.TStart = time.Unix(0, tStart).UTC()
	w.TEnd = time.Unix(0, tEnd).UTC()
	if label.Valid {
		w.Label = &label.String
	}
	if err := json.Unmarshal([]byte(features), &w.Features); err != nil {
		return w, fmt.Errorf("failed to unmarshal features: %w", err)
	}

	return w, nil
}

// Summary aggregates the windows table: total count plus per-label and
// per-subject distributions
func (r *WindowRepository) Summary(ctx context.Context) (*models.WindowSummary, error) {
	summary := &models.WindowSummary{}

	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM windows").Scan(&summary.TotalWindows); err != nil {
		return nil, fmt.Errorf("failed to count windows: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT label, COUNT(*) FROM windows
		WHERE label IS NOT NULL GROUP BY label ORDER BY COUNT(*) DESC, label`)
	if err != nil {
		return nil, fmt.Errorf("failed to query label distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lc models.LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan label count: %w", err)
		}
		summary.ByLabel = append(summary.ByLabel, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	subjectRows, err := r.db.QueryContext(ctx, `SELECT subject_id, COUNT(*)
		FROM windows GROUP BY subject_id ORDER BY subject_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subject distribution: %w", err)
	}
	defer subjectRows.Close()

	for subjectRows.Next() {
		var sc models.SubjectCount
		if err := subjectRows.Scan(&sc.SubjectID, &sc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan subject count: %w", err)
		}
		summary.BySubject = append(summary.BySubject, sc)
	}

	return summary, subjectRows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/upfall/sensor-backend-go/internal/models"
)

// insertChunkSize keeps multi-row inserts under SQLite's bound-parameter
// limit (9 parameters per row)
const insertChunkSize = 100

// RawRepository handles database operations for raw sensor samples
type RawRepository struct {
	db *sql.DB
}

// NewRawRepository creates a new raw sample repository
func NewRawRepository(db *sql.DB) *RawRepository {
	return &RawRepository{db: db}
}

// InsertBatch writes samples with a multi-row VALUES statement per chunk.
// A zero Timestamp is stored as NULL, marking an unparseable source value.
func (r *RawRepository) InsertBatch(ctx context.Context, tx *sql.Tx, samples []models.SensorSample) error {
	for start := 0; start < len(samples); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(samples) {
			end = len(samples)
		}
		chunk := samples[start:end]

		placeholders := make([]string, 0, len(chunk))
		args := make([]interface{}, 0, len(chunk)*9)
		for _, s := range chunk {
			placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")

			var ts interface{}
			if !s.Timestamp.IsZero() {
				ts = s.Timestamp.UnixNano()
			}
			args = append(args, s.SubjectID, s.Activity, ts,
				s.AccelX, s.AccelY, s.AccelZ, s.GyroX, s.GyroY, s.GyroZ)
		}

		query := `INSERT INTO raw_sensor_data
			(subject_id, activity, timestamp, accel_x, accel_y, accel_z, gyro_x, gyro_y, gyro_z)
			VALUES ` + strings.Join(placeholders, ", ")

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert raw samples: %w", err)
		}
	}

	return nil
}

// FetchAllOrdered loads every raw sample with a valid timestamp, ordered by
// subject then time. Rows whose timestamp was coerced to NULL at ingestion
// never reach the windowing engine.
func (r *RawRepository) FetchAllOrdered(ctx context.Context) ([]models.SensorSample, error) {
	query := `SELECT id, subject_id, activity, timestamp,
			accel_x, accel_y, accel_z, gyro_x, gyro_y, gyro_z
		FROM raw_sensor_data
		WHERE timestamp IS NOT NULL
		ORDER BY subject_id, timestamp`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query raw samples: %w", err)
	}
	defer rows.Close()

	var samples []models.SensorSample
	for rows.Next() {
		var s models.SensorSample
		var ts sql.NullInt64
		if err := rows.Scan(&s.ID, &s.SubjectID, &s.Activity, &ts,
			&s.AccelX, &s.AccelY, &s.AccelZ, &s.GyroX, &s.GyroY, &s.GyroZ); err != nil {
			return nil, fmt.Errorf("failed to scan raw sample: %w", err)
		}
		if ts.Valid {
			s.Timestamp = time.Unix(0, ts.Int64).UTC()
		}
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

// CountCoerced returns how many rows carry a NULL timestamp
func (r *RawRepository) CountCoerced(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM raw_sensor_data WHERE timestamp IS NULL").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count coerced rows: %w", err)
	}
	return n, nil
}

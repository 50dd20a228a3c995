package repository

import (
	"context"
	"database/sql"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upfall/sensor-backend-go/internal/database"
	"github.com/upfall/sensor-backend-go/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func insertWindow(t *testing.T, db *sql.DB, repo *WindowRepository, w models.LabeledWindow) {
	t.Helper()
	require.NoError(t, database.Transaction(db, func(tx *sql.Tx) error {
		return repo.InsertTx(context.Background(), tx, w)
	}))
}

func strPtr(s string) *string { return &s }

func TestWindowRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewWindowRepository(db)

	tStart := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	features := models.FeatureVector{
		"accel_x_mean":         1.0 / 3.0,
		"accel_x_std":          math.Sqrt(2.5),
		"accel_x_energy":       math.Pi,
		"corr_accel_x_accel_y": -0.12345678901234567,
	}
	insertWindow(t, db, repo, models.LabeledWindow{
		SubjectID: 1,
		TStart:    tStart,
		TEnd:      tStart.Add(2560 * time.Millisecond),
		Label:     strPtr("walking"),
		Features:  features,
	})

	resp, err := repo.List(context.Background(), models.WindowFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)

	got := resp.Data[0]
	assert.Equal(t, 1, got.SubjectID)
	assert.Equal(t, tStart, got.TStart)
	assert.Equal(t, tStart.Add(2560*time.Millisecond), got.TEnd)
	require.NotNil(t, got.Label)
	assert.Equal(t, "walking", *got.Label)

	// The JSON column must reproduce every float bit-for-bit
	assert.Equal(t, features, got.Features)
}

func TestWindowNullLabel(t *testing.T) {
	db := newTestDB(t)
	repo := NewWindowRepository(db)

	insertWindow(t, db, repo, models.LabeledWindow{
		SubjectID: 2,
		TStart:    time.Unix(100, 0).UTC(),
		TEnd:      time.Unix(102, 0).UTC(),
		Features:  models.FeatureVector{"accel_x_mean": 0},
	})

	resp, err := repo.List(context.Background(), models.WindowFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Nil(t, resp.Data[0].Label)
}

func TestWindowListFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewWindowRepository(db)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		label := "walking"
		if i%2 == 1 {
			label = "falling"
		}
		insertWindow(t, db, repo, models.LabeledWindow{
			SubjectID: 1 + i%2,
			TStart:    base.Add(time.Duration(i) * time.Minute),
			TEnd:      base.Add(time.Duration(i)*time.Minute + 2*time.Second),
			Label:     strPtr(label),
			Features:  models.FeatureVector{"accel_x_mean": float64(i)},
		})
	}

	bySubject, err := repo.List(context.Background(), models.WindowFilter{SubjectID: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, bySubject.Total)

	byLabel, err := repo.List(context.Background(), models.WindowFilter{Label: "falling"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, byLabel.Total)

	byTime, err := repo.List(context.Background(), models.WindowFilter{
		StartTime: base.Add(2 * time.Minute).Unix(),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, byTime.Total)

	paged, err := repo.List(context.Background(), models.WindowFilter{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 4, paged.Total)
	assert.Len(t, paged.Data, 1)
	assert.Equal(t, 2, paged.TotalPages)
}

func TestWindowSummary(t *testing.T) {
	db := newTestDB(t)
	repo := NewWindowRepository(db)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	labels := []string{"walking", "walking", "falling"}
	for i, label := range labels {
		insertWindow(t, db, repo, models.LabeledWindow{
			SubjectID: 1 + i%2,
			TStart:    base.Add(time.Duration(i) * time.Minute),
			TEnd:      base.Add(time.Duration(i)*time.Minute + 2*time.Second),
			Label:     strPtr(label),
			Features:  models.FeatureVector{"accel_x_mean": 0},
		})
	}

	summary, err := repo.Summary(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 3, summary.TotalWindows)
	require.Len(t, summary.ByLabel, 2)
	assert.Equal(t, models.LabelCount{Label: "walking", Count: 2}, summary.ByLabel[0])
	assert.Equal(t, models.LabelCount{Label: "falling", Count: 1}, summary.ByLabel[1])
	require.Len(t, summary.BySubject, 2)
	assert.Equal(t, models.SubjectCount{SubjectID: 1, Count: 2}, summary.BySubject[0])
}

func TestRawInsertAndFetchOrdered(t *testing.T) {
	db := newTestDB(t)
	repo := NewRawRepository(db)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	samples := []models.SensorSample{
		{SubjectID: 2, Activity: "walking", Timestamp: base.Add(time.Second), AccelX: 1},
		{SubjectID: 1, Activity: "walking", Timestamp: base.Add(2 * time.Second), AccelX: 2},
		{SubjectID: 1, Activity: "walking", Timestamp: base, AccelX: 3},
		{SubjectID: 1, Activity: "falling"}, // zero timestamp → NULL sentinel
	}

	require.NoError(t, database.Transaction(db, func(tx *sql.Tx) error {
		return repo.InsertBatch(context.Background(), tx, samples)
	}))

	fetched, err := repo.FetchAllOrdered(context.Background())
	require.NoError(t, err)

	// NULL-timestamp row excluded, remainder ordered by subject then time
	require.Len(t, fetched, 3)
	assert.Equal(t, 3.0, fetched[0].AccelX)
	assert.Equal(t, 2.0, fetched[1].AccelX)
	assert.Equal(t, 1.0, fetched[2].AccelX)
	assert.Equal(t, base, fetched[0].Timestamp)

	coerced, err := repo.CountCoerced(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, coerced)
}

func TestRawInsertLargeBatchChunks(t *testing.T) {
	db := newTestDB(t)
	repo := NewRawRepository(db)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	samples := make([]models.SensorSample, 250)
	for i := range samples {
		samples[i] = models.SensorSample{
			SubjectID: 1,
			Activity:  "walking",
			Timestamp: base.Add(time.Duration(i) * 55 * time.Millisecond),
		}
	}

	require.NoError(t, database.Transaction(db, func(tx *sql.Tx) error {
		return repo.InsertBatch(context.Background(), tx, samples)
	}))

	fetched, err := repo.FetchAllOrdered(context.Background())
	require.NoError(t, err)
	assert.Len(t, fetched, 250)
}

package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upfall/sensor-backend-go/internal/config"
	"github.com/upfall/sensor-backend-go/internal/database"
	"github.com/upfall/sensor-backend-go/internal/handler"
	"github.com/upfall/sensor-backend-go/internal/models"
	"github.com/upfall/sensor-backend-go/internal/repository"
	"github.com/upfall/sensor-backend-go/internal/service"
	"github.com/upfall/sensor-backend-go/internal/windowing"
)

func newTestRouter(t *testing.T, jwtSecret string) (*gin.Engine, *sql.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	segmenter, err := windowing.NewSegmenter(2500*time.Millisecond, 500*time.Millisecond)
	require.NoError(t, err)

	windowService := service.NewWindowService(db,
		repository.NewRawRepository(db),
		repository.NewWindowRepository(db),
		segmenter, zap.NewNop())

	cfg := &config.Config{Port: ":8080", DBPath: "ignored", JWTSecret: jwtSecret}
	return SetupRouter(cfg, handler.NewWindowHandler(windowService), zap.NewNop()), db
}

func loadReferenceSeries(t *testing.T, db *sql.DB) {
	t.Helper()
	rawRepo := repository.NewRawRepository(db)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	samples := make([]models.SensorSample, 6)
	for i := range samples {
		samples[i] = models.SensorSample{
			SubjectID: 1,
			Activity:  "standing",
			Timestamp: base.Add(time.Duration(i) * 500 * time.Millisecond),
			AccelX:    1.0,
		}
	}

	require.NoError(t, database.Transaction(db, func(tx *sql.Tx) error {
		return rawRepo.InsertBatch(context.Background(), tx, samples)
	}))
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestRebuildAndListWindows(t *testing.T) {
	router, db := newTestRouter(t, "")
	loadReferenceSeries(t, db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/windows/rebuild", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var rebuild struct {
		Data models.RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rebuild))
	assert.Equal(t, 1, rebuild.Data.Windows)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/windows?subjectId=1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Data models.WindowsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data.Data, 1)
	assert.Equal(t, 1.0, list.Data.Data[0].Features["accel_x_mean"])
	assert.Len(t, list.Data.Data[0].Features, 67)
}

func TestSummaryEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/windows/summary", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRebuildRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t, "test-secret")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/windows/rebuild", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "etl-operator",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/windows/rebuild", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/windows/rebuild", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

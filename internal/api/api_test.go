package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/andresuchdata/pomonitor/backend-go/internal/config"
	"github.com/andresuchdata/pomonitor/backend-go/internal/domain"
	"github.com/andresuchdata/pomonitor/backend-go/internal/repository/sqlstore"
	"github.com/andresuchdata/pomonitor/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, allowAll := normalizeAllowedOrigins([]string{"http://a.test, http://b.test", " "})
	assert.False(t, allowAll)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, origins)

	_, allowAll = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, allowAll)
}

func TestRouterHealthAndRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := sqlstore.Open(context.Background(), "sqlite", config.SQLiteDSN(filepath.Join(t.TempDir(), "po.db")))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	day := domain.MustParseDate("2024-01-05")
	poService := service.NewPOService(sqlstore.NewPORepository(db), nil, func() domain.Date { return day })
	router := NewRouter(&Services{POService: poService}, []string{"*"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","today":"2024-01-05"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/po/statuses", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/po/reports", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, db.Close())
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andresuchdata/pomonitor/backend-go/internal/config"
	"github.com/andresuchdata/pomonitor/backend-go/internal/domain"
	"github.com/andresuchdata/pomonitor/backend-go/internal/repository/sqlstore"
	"github.com/andresuchdata/pomonitor/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, today string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlstore.Open(context.Background(), "sqlite", config.SQLiteDSN(filepath.Join(t.TempDir(), "po.db")))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	day := domain.MustParseDate(today)
	poService := service.NewPOService(sqlstore.NewPORepository(db), nil, func() domain.Date { return day })
	h := NewPOHandler(poService, service.NewReportService(poService, nil, ""))

	router := gin.New()
	po := router.Group("/po")
	po.POST("", h.CreatePO)
	po.GET("", h.ListPOs)
	po.GET("/statuses", h.GetStatuses)
	po.GET("/export", h.ExportCSV)
	po.GET("/analytics/summary", h.GetDashboardSummary)
	po.GET("/analytics/years", h.GetYears)
	po.POST("/reports", h.PublishReport)
	po.GET("/:id", h.GetPO)
	po.PATCH("/:id", h.UpdatePO)
	po.DELETE("/:id", h.DeletePO)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const acmeBody = `{"po_number":"PO-100","customer":"Acme Corp","order_date":"2024-01-01","expected_eta":"2024-01-10","nominal":"2500000"}`

func TestCreateAndGetPO(t *testing.T) {
	router := newTestRouter(t, "2024-01-05")

	rec := doJSON(t, router, http.MethodPost, "/po", acmeBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, float64(1), created["id"])
	assert.Equal(t, "OPEN", created["status"])
	assert.Nil(t, created["actual_eta"])

	rec = doJSON(t, router, http.MethodGet, "/po/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "PO-100", got["po_number"])
	assert.Equal(t, "2024-01-10", got["expected_eta"])
}

func TestCreatePO_ValidationErrors(t *testing.T) {
	router := newTestRouter(t, "2024-01-05")

	rec := doJSON(t, router, http.MethodPost, "/po",
		`{"po_number":"PO-1","customer":"Acme","order_date":"2024-01-10","expected_eta":"2024-01-01"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "InvalidDateOrder", body["reason"])
	assert.Equal(t, "expected_eta", body["field"])

	rec = doJSON(t, router, http.MethodPost, "/po", `{"customer":"Acme","order_date":"2024-01-01","expected_eta":"2024-01-02"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MissingField")

	rec = doJSON(t, router, http.MethodPost, "/po", `{"po_number":"PO-1","order_date":"not-a-date"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/po", "")
	assert.Contains(t, rec.Body.String(), `"total":0`)
}

func TestUpdatePO_CompletesAndClears(t *testing.T) {
	router := newTestRouter(t, "2024-01-11")
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/po", acmeBody).Code)

	rec := doJSON(t, router, http.MethodGet, "/po/1", "")
	assert.Contains(t, rec.Body.String(), `"status":"OVERDUE"`)

	rec = doJSON(t, router, http.MethodPatch, "/po/1", `{"actual_eta":"2024-01-12"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"COMPLETED"`)
	assert.Contains(t, rec.Body.String(), `"days_late":2`)

	rec = doJSON(t, router, http.MethodPatch, "/po/1", `{"actual_eta":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"OVERDUE"`)
	assert.Contains(t, rec.Body.String(), `"actual_eta":null`)

	rec = doJSON(t, router, http.MethodPatch, "/po/1", `{"actual_eta":"2023-12-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/po/99", `{"notes":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePO(t *testing.T) {
	router := newTestRouter(t, "2024-01-05")
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/po", acmeBody).Code)

	assert.Equal(t, http.StatusNoContent, doJSON(t, router, http.MethodDelete, "/po/1", "").Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodDelete, "/po/1", "").Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodGet, "/po/1", "").Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, http.MethodGet, "/po/abc", "").Code)
}

func TestListPOs_Filters(t *testing.T) {
	router := newTestRouter(t, "2024-01-11")
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/po", acmeBody).Code)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/po",
		`{"po_number":"PO-200","customer":"Globex","order_date":"2024-01-05","expected_eta":"2024-02-01"}`).Code)

	rec := doJSON(t, router, http.MethodGet, "/po?status=overdue", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
	assert.Contains(t, rec.Body.String(), "PO-100")

	rec = doJSON(t, router, http.MethodGet, "/po?search=glob&status=All", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "PO-200")
	assert.NotContains(t, rec.Body.String(), "PO-100")

	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, http.MethodGet, "/po?status=LATE", "").Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, http.MethodGet, "/po?month=13", "").Code)
}

func TestDashboardAndLookups(t *testing.T) {
	router := newTestRouter(t, "2024-01-11")
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/po", acmeBody).Code)

	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/po",
		`{"po_number":"PO-200","customer":"Globex","order_date":"2024-01-05","expected_eta":"2024-02-01","sales_engineer":"RSM","nominal":"1000"}`).Code)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/po",
		`{"po_number":"PO-300","customer":"Initech","order_date":"2024-01-06","expected_eta":"2024-02-01","sales_engineer":"RSM","nominal":"500.50"}`).Code)

	rec := doJSON(t, router, http.MethodGet, "/po/analytics/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary domain.DashboardSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.TotalCount)
	require.Len(t, summary.RevenueBySalesEngineer, 2)
	assert.Equal(t, "", summary.RevenueBySalesEngineer[0].SalesEngineer)
	assert.Equal(t, "2500000", summary.RevenueBySalesEngineer[0].TotalValue.String())
	assert.Equal(t, "RSM", summary.RevenueBySalesEngineer[1].SalesEngineer)
	assert.Equal(t, 2, summary.RevenueBySalesEngineer[1].Count)
	assert.Equal(t, "1500.5", summary.RevenueBySalesEngineer[1].TotalValue.String())

	rec = doJSON(t, router, http.MethodGet, "/po/analytics/summary?sales_engineer=rsm", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary = domain.DashboardSummary{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.TotalCount)
	require.Len(t, summary.RevenueBySalesEngineer, 1)

	rec = doJSON(t, router, http.MethodGet, "/po/analytics/years", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"years":[2024],"default":2024}`, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/po/statuses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "COMPLETED")
}

func TestExportCSVAndPublishWithoutStorage(t *testing.T) {
	router := newTestRouter(t, "2024-01-11")
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/po", acmeBody).Code)

	rec := doJSON(t, router, http.MethodGet, "/po/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "po_report_2024-01-11.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "OVERDUE")

	rec = doJSON(t, router, http.MethodPost, "/po/reports", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDefaultYear(t *testing.T) {
	assert.Equal(t, 2024, defaultYear([]int{2023, 2024}, 2024))
	assert.Equal(t, 2022, defaultYear([]int{2022, 2023}, 2024))
	assert.Equal(t, 2024, defaultYear(nil, 2024))
}

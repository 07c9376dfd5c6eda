// backend-go/internal/api/handlers/po_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/pomonitor/backend-go/internal/domain"
	"github.com/andresuchdata/pomonitor/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type POHandler struct {
	poService     *service.POService
	reportService *service.ReportService
}

func NewPOHandler(poService *service.POService, reportService *service.ReportService) *POHandler {
	return &POHandler{poService: poService, reportService: reportService}
}

// CreatePO registers a new purchase order
func (h *POHandler) CreatePO(c *gin.Context) {
	var input domain.PurchaseOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	po, err := h.poService.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "failed to create purchase order")
		return
	}

	c.JSON(http.StatusCreated, domain.NewPurchaseOrderView(po, h.poService.Today()))
}

// GetPO returns a single purchase order with its current status
func (h *POHandler) GetPO(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	view, err := h.poService.GetView(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "failed to fetch purchase order")
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdatePO applies a partial update; "actual_eta": null clears the delivery date
func (h *POHandler) UpdatePO(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var patch domain.PurchaseOrderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	po, err := h.poService.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err, "failed to update purchase order")
		return
	}

	c.JSON(http.StatusOK, domain.NewPurchaseOrderView(po, h.poService.Today()))
}

// DeletePO removes a purchase order permanently
func (h *POHandler) DeletePO(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.poService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "failed to delete purchase order")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListPOs returns purchase orders matching the reporting filter
func (h *POHandler) ListPOs(c *gin.Context) {
	filter, ok := h.parsePOFilter(c)
	if !ok {
		return
	}

	items, err := h.poService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "failed to fetch purchase orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
		"as_of": h.poService.Today(),
	})
}

// GetDashboardSummary returns KPI totals per status
func (h *POHandler) GetDashboardSummary(c *gin.Context) {
	filter, ok := h.parsePOFilter(c)
	if !ok {
		return
	}

	summary, err := h.poService.GetDashboardSummary(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "failed to fetch dashboard summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetYears returns the order years available for filtering
func (h *POHandler) GetYears(c *gin.Context) {
	years, err := h.poService.GetYears(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to fetch years")
		return
	}

	current := h.poService.Today().Year
	c.JSON(http.StatusOK, gin.H{"years": years, "default": defaultYear(years, current)})
}

// GetSalesEngineers returns the sales engineers on record
func (h *POHandler) GetSalesEngineers(c *gin.Context) {
	engineers, err := h.poService.GetSalesEngineers(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to fetch sales engineers")
		return
	}
	c.JSON(http.StatusOK, engineers)
}

// GetStatuses returns the status definitions
func (h *POHandler) GetStatuses(c *gin.Context) {
	statuses := make([]gin.H, 0, len(domain.AllStatuses))
	for _, status := range domain.AllStatuses {
		statuses = append(statuses, gin.H{
			"status":      status,
			"description": domain.StatusDescription(status),
		})
	}
	c.JSON(http.StatusOK, statuses)
}

// ExportCSV streams the filtered list as a CSV download
func (h *POHandler) ExportCSV(c *gin.Context) {
	filter, ok := h.parsePOFilter(c)
	if !ok {
		return
	}

	filename := fmt.Sprintf("po_report_%s.csv", h.poService.Today().String())
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := h.reportService.Export(c.Request.Context(), filter, c.Writer); err != nil {
		log.Error().Err(err).Msg("failed to export purchase orders")
		c.Status(http.StatusInternalServerError)
		return
	}
}

// PublishReport uploads the filtered list to object storage
func (h *POHandler) PublishReport(c *gin.Context) {
	filter, ok := h.parsePOFilter(c)
	if !ok {
		return
	}

	key, err := h.reportService.Publish(c.Request.Context(), filter)
	if errors.Is(err, service.ErrStorageDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		respondError(c, err, "failed to publish report")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"key": key})
}

// ListReports lists archived reports
func (h *POHandler) ListReports(c *gin.Context) {
	objects, err := h.reportService.ListPublished(c.Request.Context())
	if errors.Is(err, service.ErrStorageDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		respondError(c, err, "failed to list reports")
		return
	}

	c.JSON(http.StatusOK, objects)
}

func (h *POHandler) parsePOFilter(c *gin.Context) (domain.POFilter, bool) {
	filter := domain.POFilter{
		Search:        c.Query("search"),
		SalesEngineer: allToEmpty(c.Query("sales_engineer")),
		Division:      allToEmpty(c.Query("division")),
	}

	if raw := allToEmpty(c.Query("status")); raw != "" {
		status, ok := domain.ParseStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
			return filter, false
		}
		filter.Status = status
	}

	if raw := allToEmpty(c.Query("month")); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil || month < 1 || month > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month value"})
			return filter, false
		}
		filter.Month = month
	}

	if raw := allToEmpty(c.Query("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year value"})
			return filter, false
		}
		filter.Year = year
	}

	return filter, true
}

// allToEmpty maps the dashboard's "All" selector value to no filter.
func allToEmpty(value string) string {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "all") {
		return ""
	}
	return value
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id value"})
		return 0, false
	}
	return id, true
}

func defaultYear(years []int, current int) int {
	for _, y := range years {
		if y == current {
			return current
		}
	}
	if len(years) > 0 {
		return years[0]
	}
	return current
}

func respondError(c *gin.Context, err error, message string) {
	if ve, ok := domain.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  ve.Error(),
			"reason": ve.Reason,
			"field":  ve.Field,
		})
		return
	}
	if domain.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

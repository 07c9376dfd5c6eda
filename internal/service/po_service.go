// backend-go/internal/service/po_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/pomonitor/backend-go/internal/cache"
	"github.com/andresuchdata/pomonitor/backend-go/internal/domain"
	"github.com/andresuchdata/pomonitor/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// POService is the PO store used by the HTTP handlers and the CLI. It
// validates every write before it reaches the repository and classifies
// every record it returns as of Today.
type POService struct {
	repo  repository.PORepository
	cache cache.DashboardSummaryCache
	today func() domain.Date
}

// NewPOService wires the store. A nil cache disables caching; a nil clock
// uses the local calendar date.
func NewPOService(repo repository.PORepository, cacheImpl cache.DashboardSummaryCache, today func() domain.Date) *POService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	if today == nil {
		today = func() domain.Date { return domain.Today(time.Local) }
	}
	return &POService{repo: repo, cache: cacheImpl, today: today}
}

// Today returns the date statuses are derived against.
func (s *POService) Today() domain.Date {
	return s.today()
}

// Create validates the input and stores a new PO.
func (s *POService) Create(ctx context.Context, input domain.PurchaseOrderInput) (*domain.PurchaseOrder, error) {
	po := input.PurchaseOrder()
	if err := po.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, po)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("id", created.ID).Str("po_number", created.PONumber).Msg("purchase order created")
	s.invalidate(ctx)
	return created, nil
}

// Update merges patch over the stored PO, re-validates and persists it.
func (s *POService) Update(ctx context.Context, id int64, patch domain.PurchaseOrderPatch) (*domain.PurchaseOrder, error) {
	po, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(po)
	po.ID = id
	if err := po.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, po)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("id", updated.ID).Msg("purchase order updated")
	s.invalidate(ctx)
	return updated, nil
}

// Delete removes a PO permanently. Deleting an unknown id fails.
func (s *POService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Int64("id", id).Msg("purchase order deleted")
	s.invalidate(ctx)
	return nil
}

// Get returns the stored PO.
func (s *POService) Get(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	return s.repo.Get(ctx, id)
}

// GetView returns the stored PO with its current status.
func (s *POService) GetView(ctx context.Context, id int64) (*domain.PurchaseOrderView, error) {
	po, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	view := domain.NewPurchaseOrderView(po, s.today())
	return &view, nil
}

// Classify returns the status of po as of today.
func (s *POService) Classify(po *domain.PurchaseOrder) domain.Status {
	return domain.Classify(po, s.today())
}

// List returns matching POs ordered by id, each classified as of today.
func (s *POService) List(ctx context.Context, filter domain.POFilter) ([]domain.PurchaseOrderView, error) {
	return s.list(ctx, filter.Normalized(), s.today())
}

func (s *POService) list(ctx context.Context, filter domain.POFilter, today domain.Date) ([]domain.PurchaseOrderView, error) {
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]domain.PurchaseOrderView, 0, len(orders))
	for _, po := range orders {
		view := domain.NewPurchaseOrderView(po, today)
		if !filter.Matches(view) {
			continue
		}
		views = append(views, view)
	}

	return views, nil
}

// GetDashboardSummary returns KPI totals per status for the filtered POs.
func (s *POService) GetDashboardSummary(ctx context.Context, filter domain.POFilter) (*domain.DashboardSummary, error) {
	filter = filter.Normalized()
	today := s.today()

	if summary, ok, err := s.cache.GetSummary(ctx, today, filter); err == nil && ok {
		return summary, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("po dashboard: cache get summary failed")
	}

	views, err := s.list(ctx, filter, today)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard summary: %w", err)
	}
	summary := domain.Summarize(views, today)

	if err := s.cache.SetSummary(ctx, today, filter, summary); err != nil {
		log.Warn().Err(err).Msg("po dashboard: cache set summary failed")
	}

	return summary, nil
}

// GetYears returns the order years present, for the year selector.
func (s *POService) GetYears(ctx context.Context) ([]int, error) {
	return s.repo.GetYears(ctx)
}

// GetSalesEngineers returns the distinct sales engineers on record.
func (s *POService) GetSalesEngineers(ctx context.Context) ([]string, error) {
	return s.repo.GetSalesEngineers(ctx)
}

// Ping checks that the store is reachable.
func (s *POService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *POService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("po dashboard: cache invalidation failed")
	}
}

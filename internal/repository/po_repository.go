// backend-go/internal/repository/po_repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/pomonitor/backend-go/internal/domain"
)

// PORepository persists purchase orders. Implementations return
// *domain.NotFoundError for unknown ids and commit every write before
// returning. Validation is the caller's job.
type PORepository interface {
	Create(ctx context.Context, po *domain.PurchaseOrder) (*domain.PurchaseOrder, error)
	Update(ctx context.Context, po *domain.PurchaseOrder) (*domain.PurchaseOrder, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.PurchaseOrder, error)
	// List returns matching POs ordered by id ascending. Status filtering
	// happens after classification and is ignored here.
	List(ctx context.Context, filter domain.POFilter) ([]*domain.PurchaseOrder, error)
	GetYears(ctx context.Context) ([]int, error)
	GetSalesEngineers(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

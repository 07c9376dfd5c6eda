// backend-go/internal/domain/models.go
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrder is a tracked PO record. Status is not a field; see Classify.
type PurchaseOrder struct {
	ID              int64           `json:"id" db:"id"`
	PONumber        string          `json:"po_number" db:"po_number"`
	Customer        string          `json:"customer" db:"customer"`
	OrderDate       Date            `json:"order_date" db:"order_date"`
	ExpectedETA     Date            `json:"expected_eta" db:"expected_eta"`
	ActualETA       *Date           `json:"actual_eta" db:"actual_eta"`
	Notes           string          `json:"notes" db:"notes"`
	SalesEngineer   string          `json:"sales_engineer" db:"sales_engineer"`
	Division        string          `json:"division" db:"division"`
	QuotationNumber string          `json:"quotation_number" db:"quotation_number"`
	Nominal         decimal.Decimal `json:"nominal" db:"nominal"`
	PaymentTerms    string          `json:"payment_terms" db:"payment_terms"`
	PaymentProgress int             `json:"payment_progress" db:"payment_progress"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// PurchaseOrderInput carries the fields for creating a PO. Required dates are
// pointers so a missing value can be told apart from a zero one.
type PurchaseOrderInput struct {
	PONumber        string          `json:"po_number"`
	Customer        string          `json:"customer"`
	OrderDate       *Date           `json:"order_date"`
	ExpectedETA     *Date           `json:"expected_eta"`
	ActualETA       *Date           `json:"actual_eta"`
	Notes           string          `json:"notes"`
	SalesEngineer   string          `json:"sales_engineer"`
	Division        string          `json:"division"`
	QuotationNumber string          `json:"quotation_number"`
	Nominal         decimal.Decimal `json:"nominal"`
	PaymentTerms    string          `json:"payment_terms"`
	PaymentProgress int             `json:"payment_progress"`
}

// PurchaseOrder builds an unsaved record from the input.
func (in PurchaseOrderInput) PurchaseOrder() *PurchaseOrder {
	po := &PurchaseOrder{
		PONumber:        strings.TrimSpace(in.PONumber),
		Customer:        strings.TrimSpace(in.Customer),
		Notes:           in.Notes,
		SalesEngineer:   strings.TrimSpace(in.SalesEngineer),
		Division:        strings.TrimSpace(in.Division),
		QuotationNumber: strings.TrimSpace(in.QuotationNumber),
		Nominal:         in.Nominal,
		PaymentTerms:    strings.TrimSpace(in.PaymentTerms),
		PaymentProgress: in.PaymentProgress,
	}
	if in.OrderDate != nil {
		po.OrderDate = *in.OrderDate
	}
	if in.ExpectedETA != nil {
		po.ExpectedETA = *in.ExpectedETA
	}
	if in.ActualETA != nil && !in.ActualETA.IsZero() {
		actual := *in.ActualETA
		po.ActualETA = &actual
	}
	return po
}

// PurchaseOrderPatch is a partial update. Nil fields are left unchanged;
// ActualETA can be cleared with an explicit null.
type PurchaseOrderPatch struct {
	PONumber        *string          `json:"po_number"`
	Customer        *string          `json:"customer"`
	OrderDate       *Date            `json:"order_date"`
	ExpectedETA     *Date            `json:"expected_eta"`
	ActualETA       NullableDate     `json:"actual_eta"`
	Notes           *string          `json:"notes"`
	SalesEngineer   *string          `json:"sales_engineer"`
	Division        *string          `json:"division"`
	QuotationNumber *string          `json:"quotation_number"`
	Nominal         *decimal.Decimal `json:"nominal"`
	PaymentTerms    *string          `json:"payment_terms"`
	PaymentProgress *int             `json:"payment_progress"`
}

// Apply merges the patch into po. The id is never touched.
func (p PurchaseOrderPatch) Apply(po *PurchaseOrder) {
	setString(&po.PONumber, p.PONumber)
	setString(&po.Customer, p.Customer)
	if p.OrderDate != nil {
		po.OrderDate = *p.OrderDate
	}
	if p.ExpectedETA != nil {
		po.ExpectedETA = *p.ExpectedETA
	}
	if p.ActualETA.Set {
		if p.ActualETA.Value == nil || p.ActualETA.Value.IsZero() {
			po.ActualETA = nil
		} else {
			actual := *p.ActualETA.Value
			po.ActualETA = &actual
		}
	}
	if p.Notes != nil {
		po.Notes = *p.Notes
	}
	setString(&po.SalesEngineer, p.SalesEngineer)
	setString(&po.Division, p.Division)
	setString(&po.QuotationNumber, p.QuotationNumber)
	if p.Nominal != nil {
		po.Nominal = *p.Nominal
	}
	setString(&po.PaymentTerms, p.PaymentTerms)
	if p.PaymentProgress != nil {
		po.PaymentProgress = *p.PaymentProgress
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// PurchaseOrderView is a PO together with its status as of a given day.
type PurchaseOrderView struct {
	PurchaseOrder
	Status   Status               `json:"status"`
	Delivery *DeliveryPerformance `json:"delivery,omitempty"`
}

// NewPurchaseOrderView classifies po as of today.
func NewPurchaseOrderView(po *PurchaseOrder, today Date) PurchaseOrderView {
	return PurchaseOrderView{
		PurchaseOrder: *po,
		Status:        Classify(po, today),
		Delivery:      Delivery(po),
	}
}

// POFilter narrows a PO listing. The zero value matches everything.
type POFilter struct {
	// Search matches customer or PO number, case-insensitive substring.
	Search        string `json:"search"`
	SalesEngineer string `json:"sales_engineer"`
	Division      string `json:"division"`
	Status        Status `json:"status"`
	Month         int    `json:"month"`
	Year          int    `json:"year"`
}

// Normalized returns the filter with surrounding whitespace removed from its
// text fields. Every consumer of a filter sees the normalized form.
func (f POFilter) Normalized() POFilter {
	f.Search = strings.TrimSpace(f.Search)
	f.SalesEngineer = strings.TrimSpace(f.SalesEngineer)
	f.Division = strings.TrimSpace(f.Division)
	return f
}

// OrderDateRange returns the [from, to) range of order dates implied by
// Year and Month. ok is false when no year is set.
func (f POFilter) OrderDateRange() (from, to Date, ok bool) {
	if f.Year <= 0 {
		return Date{}, Date{}, false
	}
	if f.Month >= 1 && f.Month <= 12 {
		from = NewDate(f.Year, time.Month(f.Month), 1)
		to = NewDate(f.Year, time.Month(f.Month)+1, 1)
		if f.Month == 12 {
			to = NewDate(f.Year+1, time.January, 1)
		}
		return from, to, true
	}
	return NewDate(f.Year, time.January, 1), NewDate(f.Year+1, time.January, 1), true
}

// Matches reports whether a classified PO satisfies the filter. The SQL layer
// applies most of it already; status is only known after classification.
func (f POFilter) Matches(v PurchaseOrderView) bool {
	if f.Status != "" && v.Status != f.Status {
		return false
	}
	if f.Month >= 1 && f.Month <= 12 && int(v.OrderDate.Month) != f.Month {
		return false
	}
	if f.Year > 0 && v.OrderDate.Year != f.Year {
		return false
	}
	if f.SalesEngineer != "" && !strings.EqualFold(v.SalesEngineer, f.SalesEngineer) {
		return false
	}
	if f.Division != "" && !strings.EqualFold(v.Division, f.Division) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(v.Customer), needle) &&
			!strings.Contains(strings.ToLower(v.PONumber), needle) {
			return false
		}
	}
	return true
}

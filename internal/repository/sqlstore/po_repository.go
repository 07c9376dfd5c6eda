package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/pomonitor/backend-go/internal/domain"
	"github.com/andresuchdata/pomonitor/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

const poColumns = `id, po_number, customer, order_date, expected_eta, actual_eta, notes,
	sales_engineer, division, quotation_number, nominal, payment_terms, payment_progress,
	created_at, updated_at`

type poRepository struct {
	db  *DB
	now func() time.Time
}

var _ repository.PORepository = (*poRepository)(nil)

func NewPORepository(db *DB) *poRepository {
	return &poRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (r *poRepository) Create(ctx context.Context, po *domain.PurchaseOrder) (*domain.PurchaseOrder, error) {
	now := r.now()
	query := `
		INSERT INTO purchase_orders (
			po_number, customer, order_date, expected_eta, actual_eta, notes,
			sales_engineer, division, quotation_number, nominal, payment_terms,
			payment_progress, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + poColumns

	var created domain.PurchaseOrder
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return tx.QueryRowxContext(ctx, tx.Rebind(query),
			po.PONumber,
			po.Customer,
			po.OrderDate,
			po.ExpectedETA,
			po.ActualETA,
			po.Notes,
			po.SalesEngineer,
			po.Division,
			po.QuotationNumber,
			po.Nominal,
			po.PaymentTerms,
			po.PaymentProgress,
			now,
			now,
		).StructScan(&created)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert purchase order: %w", err)
	}

	return &created, nil
}

func (r *poRepository) Update(ctx context.Context, po *domain.PurchaseOrder) (*domain.PurchaseOrder, error) {
	query := `
		UPDATE purchase_orders SET
			po_number = ?,
			customer = ?,
			order_date = ?,
			expected_eta = ?,
			actual_eta = ?,
			notes = ?,
			sales_engineer = ?,
			division = ?,
			quotation_number = ?,
			nominal = ?,
			payment_terms = ?,
			payment_progress = ?,
			updated_at = ?
		WHERE id = ?
		RETURNING ` + poColumns

	var updated domain.PurchaseOrder
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return tx.QueryRowxContext(ctx, tx.Rebind(query),
			po.PONumber,
			po.Customer,
			po.OrderDate,
			po.ExpectedETA,
			po.ActualETA,
			po.Notes,
			po.SalesEngineer,
			po.Division,
			po.QuotationNumber,
			po.Nominal,
			po.PaymentTerms,
			po.PaymentProgress,
			r.now(),
			po.ID,
		).StructScan(&updated)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{ID: po.ID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update purchase order %d: %w", po.ID, err)
	}

	return &updated, nil
}

func (r *poRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM purchase_orders WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete purchase order %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to delete purchase order %d: %w", id, err)
		}
		if n == 0 {
			return &domain.NotFoundError{ID: id}
		}
		return nil
	})
}

func (r *poRepository) Get(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	query := r.db.Rebind(`SELECT ` + poColumns + ` FROM purchase_orders WHERE id = ?`)

	var po domain.PurchaseOrder
	err := sqlx.GetContext(ctx, r.db, &po, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase order %d: %w", id, err)
	}

	return &po, nil
}

func (r *poRepository) List(ctx context.Context, filter domain.POFilter) ([]*domain.PurchaseOrder, error) {
	where, args := buildPOFilterClause(filter, r.db.lowerFunc())
	query := r.db.Rebind(`SELECT ` + poColumns + ` FROM purchase_orders` + where + ` ORDER BY id ASC`)

	orders := make([]*domain.PurchaseOrder, 0)
	if err := sqlx.SelectContext(ctx, r.db, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}

	return orders, nil
}

func (r *poRepository) GetYears(ctx context.Context) ([]int, error) {
	yearExpr := "CAST(EXTRACT(YEAR FROM order_date) AS INTEGER)"
	if r.db.isSQLite() {
		yearExpr = "CAST(substr(order_date, 1, 4) AS INTEGER)"
	}
	query := `SELECT DISTINCT ` + yearExpr + ` AS year FROM purchase_orders ORDER BY year`

	years := make([]int, 0)
	if err := sqlx.SelectContext(ctx, r.db, &years, query); err != nil {
		return nil, fmt.Errorf("failed to list order years: %w", err)
	}

	return years, nil
}

func (r *poRepository) GetSalesEngineers(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT sales_engineer
		FROM purchase_orders
		WHERE sales_engineer <> ''
		ORDER BY sales_engineer
	`

	engineers := make([]string, 0)
	if err := sqlx.SelectContext(ctx, r.db, &engineers, query); err != nil {
		return nil, fmt.Errorf("failed to list sales engineers: %w", err)
	}

	return engineers, nil
}

func (r *poRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// buildPOFilterClause turns a filter into a WHERE clause with ? placeholders.
// lower is the SQL lowercasing function of the dialect. Status and a month
// without a year are left to the caller.
func buildPOFilterClause(filter domain.POFilter, lower string) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)

	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		clauses = append(clauses, fmt.Sprintf(`(%[1]s(customer) LIKE ? ESCAPE '\' OR %[1]s(po_number) LIKE ? ESCAPE '\')`, lower))
		args = append(args, pattern, pattern)
	}

	if filter.SalesEngineer != "" {
		clauses = append(clauses, lower+"(sales_engineer) = ?")
		args = append(args, strings.ToLower(filter.SalesEngineer))
	}

	if filter.Division != "" {
		clauses = append(clauses, lower+"(division) = ?")
		args = append(args, strings.ToLower(filter.Division))
	}

	if from, to, ok := filter.OrderDateRange(); ok {
		clauses = append(clauses, "order_date >= ? AND order_date < ?")
		args = append(args, from, to)
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

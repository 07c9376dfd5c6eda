// Package report reads and writes PO lists as CSV.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andresuchdata/pomonitor/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

var header = []string{
	"ID", "PO Number", "Customer", "Sales Engineer", "Division", "Quotation Number",
	"Order Date", "Expected ETA", "Actual ETA", "Status", "Days Late",
	"Nominal", "Payment Terms", "Payment Progress", "Notes",
}

// WriteCSV writes classified POs with a header row.
func WriteCSV(w io.Writer, views []domain.PurchaseOrderView) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(header); err != nil {
		return err
	}

	for _, v := range views {
		actual := ""
		if v.ActualETA != nil {
			actual = v.ActualETA.String()
		}
		daysLate := ""
		if v.Delivery != nil {
			daysLate = strconv.Itoa(v.Delivery.DaysLate)
		}

		record := []string{
			strconv.FormatInt(v.ID, 10),
			v.PONumber,
			v.Customer,
			v.SalesEngineer,
			v.Division,
			v.QuotationNumber,
			v.OrderDate.String(),
			v.ExpectedETA.String(),
			actual,
			string(v.Status),
			daysLate,
			v.Nominal.StringFixed(2),
			v.PaymentTerms,
			strconv.Itoa(v.PaymentProgress),
			v.Notes,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ParseError points at the offending line of an import file.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Row is one parsed import line.
type Row struct {
	Line  int
	Input domain.PurchaseOrderInput
}

// ReadCSV parses an import file. The header row is matched by column name
// (case-insensitive, as written by WriteCSV or with snake_case names);
// unknown columns such as ID and Status are ignored. Required-field checks
// are left to validation.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	head, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, &ParseError{Line: 1, Err: err}
	}

	columns := make(map[string]int, len(head))
	for i, name := range head {
		columns[normalizeColumn(name)] = i
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}

		input, err := parseRecord(columns, record)
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		rows = append(rows, Row{Line: line, Input: input})
	}

	return rows, nil
}

func normalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
	return strings.ReplaceAll(name, " ", "_")
}

func parseRecord(columns map[string]int, record []string) (domain.PurchaseOrderInput, error) {
	get := func(name string) string {
		if i, ok := columns[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	in := domain.PurchaseOrderInput{
		PONumber:        get("po_number"),
		Customer:        get("customer"),
		Notes:           get("notes"),
		SalesEngineer:   get("sales_engineer"),
		Division:        get("division"),
		QuotationNumber: get("quotation_number"),
		PaymentTerms:    get("payment_terms"),
	}

	var err error
	if in.OrderDate, err = optionalDate(get("order_date")); err != nil {
		return in, err
	}
	if in.ExpectedETA, err = optionalDate(get("expected_eta")); err != nil {
		return in, err
	}
	if in.ActualETA, err = optionalDate(get("actual_eta")); err != nil {
		return in, err
	}

	if raw := get("nominal"); raw != "" {
		in.Nominal, err = decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
		if err != nil {
			return in, fmt.Errorf("invalid nominal %q: %w", raw, err)
		}
	}

	if raw := strings.TrimSuffix(get("payment_progress"), "%"); raw != "" {
		in.PaymentProgress, err = strconv.Atoi(raw)
		if err != nil {
			return in, fmt.Errorf("invalid payment progress %q: %w", raw, err)
		}
	}

	return in, nil
}

func optionalDate(raw string) (*domain.Date, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

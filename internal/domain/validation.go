package domain

import "strings"

// Validate gates writes. Checks run in a fixed order and the first failure is
// returned.
func (po *PurchaseOrder) Validate() error {
	switch {
	case strings.TrimSpace(po.PONumber) == "":
		return missing("po_number")
	case strings.TrimSpace(po.Customer) == "":
		return missing("customer")
	case po.OrderDate.IsZero():
		return missing("order_date")
	case po.ExpectedETA.IsZero():
		return missing("expected_eta")
	}

	if !po.OrderDate.IsValid() {
		return &ValidationError{Reason: ReasonOutOfRange, Field: "order_date", Message: "not a calendar date"}
	}
	if !po.ExpectedETA.IsValid() {
		return &ValidationError{Reason: ReasonOutOfRange, Field: "expected_eta", Message: "not a calendar date"}
	}

	if po.OrderDate.After(po.ExpectedETA) {
		return &ValidationError{
			Reason:  ReasonInvalidDateOrder,
			Field:   "expected_eta",
			Message: "expected ETA " + po.ExpectedETA.String() + " is before order date " + po.OrderDate.String(),
		}
	}

	if po.ActualETA != nil && !po.ActualETA.IsZero() && po.ActualETA.Before(po.OrderDate) {
		return &ValidationError{
			Reason:  ReasonInvalidDateOrder,
			Field:   "actual_eta",
			Message: "actual ETA " + po.ActualETA.String() + " is before order date " + po.OrderDate.String(),
		}
	}

	if po.Nominal.IsNegative() {
		return &ValidationError{Reason: ReasonOutOfRange, Field: "nominal", Message: "must not be negative"}
	}
	if po.PaymentProgress < 0 || po.PaymentProgress > 100 {
		return &ValidationError{Reason: ReasonOutOfRange, Field: "payment_progress", Message: "must be between 0 and 100"}
	}

	return nil
}

func missing(field string) *ValidationError {
	return &ValidationError{Reason: ReasonMissingField, Field: field, Message: "is required"}
}

package domain

import "strings"

// Status is the monitoring status of a purchase order. It is derived on every
// read and never persisted.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusCompleted Status = "COMPLETED"
	StatusOverdue   Status = "OVERDUE"
)

// AllStatuses lists statuses in display order.
var AllStatuses = []Status{StatusOpen, StatusCompleted, StatusOverdue}

var statusDescriptions = map[Status]string{
	StatusOpen:      "PO is still running and not past its expected ETA",
	StatusCompleted: "PO is delivered; an actual ETA is recorded",
	StatusOverdue:   "PO is past its expected ETA without an actual ETA",
}

// StatusDescription returns a human-readable definition for a status.
func StatusDescription(status Status) string {
	if desc, ok := statusDescriptions[status]; ok {
		return desc
	}

	return ""
}

// ParseStatus returns the status for a given label (case-insensitive).
func ParseStatus(label string) (Status, bool) {
	status := Status(strings.ToUpper(strings.TrimSpace(label)))
	_, ok := statusDescriptions[status]

	return status, ok
}

// Classify derives the status of po as of today. A recorded actual ETA always
// wins, so a late delivery is COMPLETED rather than OVERDUE. A PO is overdue
// only once today is strictly after the expected ETA.
func Classify(po *PurchaseOrder, today Date) Status {
	if po.ActualETA != nil && !po.ActualETA.IsZero() {
		return StatusCompleted
	}
	if today.After(po.ExpectedETA) {
		return StatusOverdue
	}
	return StatusOpen
}

// DeliveryPerformance describes how a completed PO was delivered against its
// commitment.
type DeliveryPerformance struct {
	OnTime   bool `json:"on_time"`
	DaysLate int  `json:"days_late"`
}

// Delivery reports delivery performance for a completed PO, or nil when no
// actual ETA is recorded.
func Delivery(po *PurchaseOrder) *DeliveryPerformance {
	if po.ActualETA == nil || po.ActualETA.IsZero() {
		return nil
	}
	late := po.ActualETA.DaysSince(po.ExpectedETA)
	if late < 0 {
		late = 0
	}
	return &DeliveryPerformance{
		OnTime:   late == 0,
		DaysLate: late,
	}
}

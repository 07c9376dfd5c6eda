package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newPO(orderDate, expected string) *PurchaseOrder {
	return &PurchaseOrder{
		PONumber:    "PO-100",
		Customer:    "Acme Corp",
		OrderDate:   MustParseDate(orderDate),
		ExpectedETA: MustParseDate(expected),
	}
}

func TestClassify_CompletedRegardlessOfToday(t *testing.T) {
	po := newPO("2024-01-01", "2024-01-10")
	actual := MustParseDate("2024-01-12")
	po.ActualETA = &actual

	for _, today := range []string{"2023-12-31", "2024-01-10", "2024-01-11", "2030-06-01"} {
		assert.Equal(t, StatusCompleted, Classify(po, MustParseDate(today)), today)
	}
}

func TestClassify_OpenOnExpectedDay(t *testing.T) {
	po := newPO("2024-01-01", "2024-01-10")

	assert.Equal(t, StatusOpen, Classify(po, MustParseDate("2024-01-10")))
	assert.Equal(t, StatusOpen, Classify(po, MustParseDate("2024-01-02")))
}

func TestClassify_OverdueDayAfterExpected(t *testing.T) {
	po := newPO("2024-01-01", "2024-01-10")

	assert.Equal(t, StatusOverdue, Classify(po, po.ExpectedETA.AddDays(1)))
	assert.Equal(t, StatusOverdue, Classify(po, MustParseDate("2025-01-01")))
}

func TestClassify_OverdueThenCompleted(t *testing.T) {
	po := newPO("2024-01-01", "2024-01-10")
	today := MustParseDate("2024-01-11")
	assert.Equal(t, StatusOverdue, Classify(po, today))

	actual := MustParseDate("2024-01-12")
	po.ActualETA = &actual
	assert.Equal(t, StatusCompleted, Classify(po, today))
}

func TestDelivery(t *testing.T) {
	po := newPO("2024-01-01", "2024-01-10")
	assert.Nil(t, Delivery(po))

	early := MustParseDate("2024-01-08")
	po.ActualETA = &early
	assert.Equal(t, &DeliveryPerformance{OnTime: true, DaysLate: 0}, Delivery(po))

	late := MustParseDate("2024-01-13")
	po.ActualETA = &late
	assert.Equal(t, &DeliveryPerformance{OnTime: false, DaysLate: 3}, Delivery(po))
}

func TestParseStatus(t *testing.T) {
	status, ok := ParseStatus(" overdue ")
	assert.True(t, ok)
	assert.Equal(t, StatusOverdue, status)

	_, ok = ParseStatus("shipped")
	assert.False(t, ok)
}

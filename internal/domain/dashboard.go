package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// StatusSummary is the KPI card for one status.
type StatusSummary struct {
	Status     Status          `json:"status"`
	Count      int             `json:"count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// DeliverySummary aggregates on-time delivery over completed POs.
type DeliverySummary struct {
	Completed   int     `json:"completed"`
	OnTime      int     `json:"on_time"`
	Late        int     `json:"late"`
	OnTimeRate  float64 `json:"on_time_rate"`
	AvgDaysLate float64 `json:"avg_days_late"`
}

// SalesEngineerRevenue is the total PO value booked by one sales engineer.
type SalesEngineerRevenue struct {
	SalesEngineer string          `json:"sales_engineer"`
	Count         int             `json:"count"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// DashboardSummary aggregates all dashboard data as of a given day.
type DashboardSummary struct {
	AsOf            Date            `json:"as_of"`
	StatusSummaries []StatusSummary `json:"status_summaries"`
	Delivery        DeliverySummary `json:"delivery"`
	TotalCount      int             `json:"total_count"`
	TotalValue      decimal.Decimal `json:"total_value"`

	RevenueBySalesEngineer []SalesEngineerRevenue `json:"revenue_by_sales_engineer"`
}

// Summarize builds the dashboard from classified POs.
func Summarize(views []PurchaseOrderView, asOf Date) *DashboardSummary {
	summary := &DashboardSummary{
		AsOf:       asOf,
		TotalValue: decimal.Zero,
	}

	byStatus := make(map[Status]*StatusSummary, len(AllStatuses))
	for _, status := range AllStatuses {
		summary.StatusSummaries = append(summary.StatusSummaries, StatusSummary{
			Status:     status,
			TotalValue: decimal.Zero,
		})
	}
	for i := range summary.StatusSummaries {
		byStatus[summary.StatusSummaries[i].Status] = &summary.StatusSummaries[i]
	}

	var totalDaysLate int
	revenue := make(map[string]*SalesEngineerRevenue)
	for _, v := range views {
		r, ok := revenue[v.SalesEngineer]
		if !ok {
			r = &SalesEngineerRevenue{SalesEngineer: v.SalesEngineer, TotalValue: decimal.Zero}
			revenue[v.SalesEngineer] = r
		}
		r.Count++
		r.TotalValue = r.TotalValue.Add(v.Nominal)

		s := byStatus[v.Status]
		s.Count++
		s.TotalValue = s.TotalValue.Add(v.Nominal)

		summary.TotalCount++
		summary.TotalValue = summary.TotalValue.Add(v.Nominal)

		if v.Delivery == nil {
			continue
		}
		summary.Delivery.Completed++
		if v.Delivery.OnTime {
			summary.Delivery.OnTime++
		} else {
			summary.Delivery.Late++
			totalDaysLate += v.Delivery.DaysLate
		}
	}

	summary.RevenueBySalesEngineer = make([]SalesEngineerRevenue, 0, len(revenue))
	for _, r := range revenue {
		summary.RevenueBySalesEngineer = append(summary.RevenueBySalesEngineer, *r)
	}
	// POs without a sales engineer group under "" and sort first.
	sort.Slice(summary.RevenueBySalesEngineer, func(i, j int) bool {
		return summary.RevenueBySalesEngineer[i].SalesEngineer < summary.RevenueBySalesEngineer[j].SalesEngineer
	})

	if summary.Delivery.Completed > 0 {
		summary.Delivery.OnTimeRate = float64(summary.Delivery.OnTime) / float64(summary.Delivery.Completed)
	}
	if summary.Delivery.Late > 0 {
		summary.Delivery.AvgDaysLate = float64(totalDaysLate) / float64(summary.Delivery.Late)
	}

	return summary
}

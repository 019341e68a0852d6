package database

import (
	"time"

	"go-pos-checkout/internal/models"
)

// SalesReportResult is the shape shared by the dashboard and the AI assistant
type SalesReportResult struct {
	TotalRevenue float64
	TotalCount   int64
}

// GetSalesReport totals completed sales within a date range. Refund reversing
// entries carry negative totals, so including them nets out refunded revenue.
func GetSalesReport(start, end time.Time) (*SalesReportResult, error) {
	var result SalesReportResult

	// COALESCE ensures we get 0 instead of NULL if no sales exist
	err := DB.Model(&models.Sale{}).
		Where("sale_time BETWEEN ? AND ?", start, end).
		Select("COALESCE(SUM(total), 0)").
		Scan(&result.TotalRevenue).Error

	if err != nil {
		return nil, err
	}

	err = DB.Model(&models.Sale{}).
		Where("sale_time BETWEEN ? AND ?", start, end).
		Where("payment_method <> ?", "refund").
		Count(&result.TotalCount).Error

	if err != nil {
		return nil, err
	}

	return &result, nil
}

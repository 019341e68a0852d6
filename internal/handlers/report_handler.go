package handlers

import (
	"net/http"

	"go-pos-checkout/internal/database"
	"go-pos-checkout/internal/models"

	"github.com/gin-gonic/gin"
)

// ReportData is the dashboard payload
type ReportData struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalOrders  int64   `json:"total_orders"`
	TopSelling   []struct {
		ProductName string  `json:"product_name"`
		Sold        int     `json:"sold"`
		Revenue     float64 `json:"revenue"`
	} `json:"top_selling"`
	RecentSales []models.Sale `json:"recent_sales"`
}

// --- GET: /api/reports ---
func GetSalesReport(c *gin.Context) {
	var data ReportData

	// All-time revenue; refund reversals net themselves out
	err := database.DB.Model(&models.Sale{}).
		Select("COALESCE(SUM(total), 0)").
		Scan(&data.TotalRevenue).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate revenue"})
		return
	}

	err = database.DB.Model(&models.Sale{}).
		Where("payment_method <> ?", "refund").
		Count(&data.TotalOrders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
		return
	}

	// Top 5 best sellers by units
	err = database.DB.Table("sale_items").
		Select("sale_items.name as product_name, SUM(sale_items.quantity) as sold, SUM(sale_items.line_total) as revenue").
		Joins("JOIN sales ON sale_items.sale_id = sales.id").
		Where("sales.payment_method <> ?", "refund").
		Group("sale_items.name").
		Order("sold desc").
		Limit(5).
		Scan(&data.TopSelling).Error

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top selling items"})
		return
	}

	// Last 10 transactions, newest first
	err = database.DB.Order("sale_time desc").Limit(10).Find(&data.RecentSales).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent sales"})
		return
	}

	c.JSON(http.StatusOK, data)
}

// --- DATA STRUCTURES FOR VALUATION REPORT ---

// ValuationItem is a single inventory row
type ValuationItem struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	CostPrice float64 `json:"cost_price"`
	TotalCost float64 `json:"total_cost"`
}

// CategoryGroup is one category's table
type CategoryGroup struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     float64         `json:"subtotal"`
}

type ValuationResponse struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal float64         `json:"grand_total"`
}

// --- GET: /api/reports/valuation ---
// GetStockValuation totals the cost value of everything on the shelves
func GetStockValuation(c *gin.Context) {
	var products []models.Product

	if err := database.DB.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventory"})
		return
	}

	var grandTotal float64
	groupedMap := make(map[string]*CategoryGroup)

	for _, p := range products {
		catName := p.Category
		if catName == "" {
			catName = "Uncategorized"
		}

		if _, exists := groupedMap[catName]; !exists {
			groupedMap[catName] = &CategoryGroup{
				CategoryName: catName,
				Items:        []ValuationItem{},
			}
		}

		itemTotal := float64(p.StockQuantity) * p.CostPrice

		groupedMap[catName].Items = append(groupedMap[catName].Items, ValuationItem{
			Name:      p.Name,
			Quantity:  p.StockQuantity,
			CostPrice: p.CostPrice,
			TotalCost: itemTotal,
		})

		groupedMap[catName].Subtotal += itemTotal
		grandTotal += itemTotal
	}

	var response ValuationResponse
	response.GrandTotal = grandTotal
	for _, group := range groupedMap {
		response.Categories = append(response.Categories, *group)
	}

	c.JSON(http.StatusOK, response)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"go-pos-checkout/internal/database"
	"go-pos-checkout/internal/models"
	"go-pos-checkout/internal/sales"

	"github.com/gin-gonic/gin"
)

// --- GET: Sales list, newest first, optional date window ---
func GetSales(c *gin.Context) {
	query := database.DB.Preload("Items").Preload("Customer")

	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("sale_time >= ?", t)
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("sale_time < ?", t.AddDate(0, 0, 1))
		}
	}

	var list []models.Sale
	if err := query.Order("sale_time desc").Limit(200).Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// --- GET: One sale with everything preloaded (receipt view) ---
func GetSale(c *gin.Context) {
	id := c.Param("id")

	var sale models.Sale
	err := database.DB.Preload("Items").Preload("Customer").First(&sale, id).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		return
	}

	c.JSON(http.StatusOK, sale)
}

// --- GET: Dashboard stat cards (today / this week / this month) ---
func GetSaleStats(c *gin.Context) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := dayStart.AddDate(0, 0, -int(now.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	type window struct {
		Revenue float64 `json:"revenue"`
		Count   int64   `json:"count"`
	}
	stats := gin.H{}

	for name, start := range map[string]time.Time{
		"today": dayStart,
		"week":  weekStart,
		"month": monthStart,
	} {
		report, err := database.GetSalesReport(start, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate stats"})
			return
		}
		stats[name] = window{Revenue: report.TotalRevenue, Count: report.TotalCount}
	}

	c.JSON(http.StatusOK, stats)
}

// --- POST: Refund a completed sale ---
func RefundSale(c *gin.Context) {
	saleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale id"})
		return
	}

	reversal, err := SalesAdapter.Refund(uint(saleID), currentUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, sales.ErrSaleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, sales.ErrAlreadyRefunded), errors.Is(err, sales.ErrNotRefundable):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refund sale"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sale refunded", "reversal": reversal})
}

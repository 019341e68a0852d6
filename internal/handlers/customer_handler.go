package handlers

import (
	"net/http"

	"go-pos-checkout/internal/database"
	"go-pos-checkout/internal/models"

	"github.com/gin-gonic/gin"
)

// --- GET: List customers, optional search by name/phone ---
func GetCustomers(c *gin.Context) {
	var customers []models.Customer

	query := database.DB
	if q := c.Query("q"); q != "" {
		query = query.Where("name LIKE ? OR phone LIKE ?", "%"+q+"%", "%"+q+"%")
	}

	if err := query.Order("name").Find(&customers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customers"})
		return
	}

	c.JSON(http.StatusOK, customers)
}

// --- POST: Register a loyalty customer ---
func AddCustomer(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if customer.Name == "" || customer.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and phone are required"})
		return
	}

	// New members start with a clean slate no matter what was posted
	customer.LoyaltyPoints = 0
	customer.TotalSpent = 0
	customer.PurchaseCount = 0
	customer.LastPurchase = nil

	if err := database.DB.Create(&customer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create customer"})
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// --- PUT: Update contact fields only. Loyalty balances move exclusively
// through completed sales and refunds, never through this endpoint. ---
func UpdateCustomer(c *gin.Context) {
	id := c.Param("id")

	var customer models.Customer
	if err := database.DB.First(&customer, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	var input struct {
		Name    *string `json:"name"`
		Phone   *string `json:"phone"`
		Email   *string `json:"email"`
		Address *string `json:"address"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&customer).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update customer"})
			return
		}
	}

	c.JSON(http.StatusOK, customer)
}

// --- DELETE ---
func DeleteCustomer(c *gin.Context) {
	id := c.Param("id")

	if err := database.DB.Delete(&models.Customer{}, id).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not delete customer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}

// --- GET: Purchase history, newest first ---
func GetCustomerHistory(c *gin.Context) {
	id := c.Param("id")

	var customer models.Customer
	if err := database.DB.First(&customer, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	var sales []models.Sale
	err := database.DB.Preload("Items").
		Where("customer_id = ?", customer.ID).
		Order("sale_time desc").
		Find(&sales).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": customer, "sales": sales})
}

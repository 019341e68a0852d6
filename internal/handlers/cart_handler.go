package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go-pos-checkout/internal/cart"
	"go-pos-checkout/internal/database"
	"go-pos-checkout/internal/models"
	"go-pos-checkout/internal/pricing"

	"github.com/gin-gonic/gin"
)

func currentUserID(c *gin.Context) uint {
	return c.MustGet("userID").(uint)
}

// cartView is the cart plus freshly computed totals. Totals are derived on
// every read, never stored.
type cartView struct {
	Lines      []models.CartLine `json:"lines"`
	CustomerID *uint             `json:"customer_id"`
	Discount   pricing.Discount  `json:"discount"`
	Totals     pricing.Totals    `json:"totals"`
}

func viewCart(userID uint) cartView {
	snapshot := Carts.Snapshot(userID)
	cfg := SettingsCache.Current()
	return cartView{
		Lines:      snapshot.Lines,
		CustomerID: snapshot.CustomerID,
		Discount:   snapshot.Discount,
		Totals:     pricing.Compute(snapshot.Lines, snapshot.Discount, cfg.TaxRate),
	}
}

// --- GET: Current cart with totals ---
func GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, viewCart(currentUserID(c)))
}

// --- POST: Add one unit of a product ---
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

func AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}

	var product models.Product
	if err := database.DB.First(&product, req.ProductID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	userID := currentUserID(c)
	if err := Carts.AddItem(userID, product); err != nil {
		switch {
		case errors.Is(err, cart.ErrOutOfStock):
			c.JSON(http.StatusBadRequest, gin.H{"error": product.Name + " is out of stock"})
		case errors.Is(err, cart.ErrStockCeiling):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only " + strconv.Itoa(product.StockQuantity) + " in stock"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to cart"})
		}
		return
	}

	c.JSON(http.StatusOK, viewCart(userID))
}

// --- PUT: Set a line's quantity. Zero removes, above-stock clamps. ---
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

func UpdateCartQuantity(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var req QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
		return
	}

	var product models.Product
	if err := database.DB.First(&product, productID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	userID := currentUserID(c)
	clamped, err := Carts.SetQuantity(userID, uint(productID), req.Quantity, product.StockQuantity)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product is not in the cart"})
		return
	}

	resp := gin.H{"cart": viewCart(userID)}
	if clamped {
		if product.StockQuantity <= 0 {
			resp["warning"] = product.Name + " is out of stock and was removed"
		} else {
			resp["warning"] = "Quantity reduced to available stock (" + strconv.Itoa(product.StockQuantity) + ")"
		}
	}
	c.JSON(http.StatusOK, resp)
}

// --- PUT: Record the chosen size/color for a line ---
type VariantRequest struct {
	Size  string `json:"size"`
	Color string `json:"color"`
}

func SelectCartVariant(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var req VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	userID := currentUserID(c)
	if err := Carts.SelectVariant(userID, uint(productID), req.Size, req.Color); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product is not in the cart"})
		return
	}

	c.JSON(http.StatusOK, viewCart(userID))
}

// --- DELETE: Remove a line unconditionally ---
func RemoveFromCart(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	userID := currentUserID(c)
	Carts.RemoveItem(userID, uint(productID))
	c.JSON(http.StatusOK, viewCart(userID))
}

// --- DELETE: Empty the whole cart ---
func ClearCart(c *gin.Context) {
	userID := currentUserID(c)
	Carts.Clear(userID)
	CheckoutFlow.Cancel(userID)
	c.JSON(http.StatusOK, viewCart(userID))
}

// --- PUT: Attach or detach the loyalty customer ---
type SelectCustomerRequest struct {
	CustomerID *uint `json:"customer_id"` // null detaches
}

func SelectCartCustomer(c *gin.Context) {
	var req SelectCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if req.CustomerID != nil {
		var customer models.Customer
		if err := database.DB.First(&customer, *req.CustomerID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
	}

	userID := currentUserID(c)
	Carts.SetCustomer(userID, req.CustomerID)
	c.JSON(http.StatusOK, viewCart(userID))
}

// --- POST: Redeem loyalty points as a discount ---
type ApplyPointsRequest struct {
	// No required tag: zero must reach the validation in pricing.ApplyPoints,
	// a required int would make gin reject it at bind time.
	Points int `json:"points"`
}

func ApplyCartPoints(c *gin.Context) {
	var req ApplyPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	userID := currentUserID(c)
	snapshot := Carts.Snapshot(userID)

	var customer *models.Customer
	if snapshot.CustomerID != nil {
		customer = &models.Customer{}
		if err := database.DB.First(customer, *snapshot.CustomerID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
	}

	cfg := SettingsCache.Current()
	subtotal := pricing.Compute(snapshot.Lines, pricing.Discount{}, cfg.TaxRate).Subtotal

	discount, err := pricing.ApplyPoints(customer, req.Points, subtotal, cfg.PointValue)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	discount.ExcludeVAT = snapshot.Discount.ExcludeVAT
	Carts.SetDiscount(userID, discount)
	c.JSON(http.StatusOK, viewCart(userID))
}

// --- DELETE: Remove the active discount. Safe when none is active. ---
func RemoveCartDiscount(c *gin.Context) {
	userID := currentUserID(c)
	Carts.ClearDiscount(userID)
	c.JSON(http.StatusOK, viewCart(userID))
}

// --- PUT: Toggle VAT suppression for this sale ---
type ExcludeVATRequest struct {
	ExcludeVAT bool `json:"exclude_vat"`
}

func SetCartExcludeVAT(c *gin.Context) {
	var req ExcludeVATRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	userID := currentUserID(c)
	Carts.SetExcludeVAT(userID, req.ExcludeVAT)
	c.JSON(http.StatusOK, viewCart(userID))
}

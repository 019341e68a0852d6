// Package sales turns a priced cart into a persisted sale and applies the
// follow-on effects: loyalty balance, stock decrement, webhook notification.
package sales

import (
	"errors"
	"log"
	"time"

	"go-pos-checkout/internal/cart"
	"go-pos-checkout/internal/models"
	"go-pos-checkout/internal/notify"
	"go-pos-checkout/internal/pricing"
	"go-pos-checkout/internal/settings"

	"gorm.io/gorm"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrSaleNotFound    = errors.New("sale not found")
	ErrAlreadyRefunded = errors.New("sale has already been refunded")
	ErrNotRefundable   = errors.New("only completed sales can be refunded")
)

type Adapter struct {
	db         *gorm.DB
	settings   *settings.Cache
	notifier   *notify.Notifier
	terminalID string
}

func NewAdapter(db *gorm.DB, cache *settings.Cache, notifier *notify.Notifier, terminalID string) *Adapter {
	return &Adapter{db: db, settings: cache, notifier: notifier, terminalID: terminalID}
}

// Persist writes the sale and runs its side effects in fixed order: insert
// the sale (abort on failure, nothing else moves), then loyalty, then stock
// per line, then the webhook. Steps after the insert are best-effort: the
// sale record is authoritative once created, and a failed stock patch or
// loyalty write is logged for out-of-band reconciliation, never rolled back.
// taxRate comes from the checkout flow, which pinned it when the customer was
// quoted; the settings cache may have moved since.
func (a *Adapter) Persist(userID uint, method string, c cart.Cart, taxRate float64) (*models.Sale, error) {
	if len(c.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	cfg := a.settings.Current()
	totals := pricing.Compute(c.Lines, c.Discount, taxRate)

	var customer *models.Customer
	if c.CustomerID != nil {
		customer = &models.Customer{}
		if err := a.db.First(customer, *c.CustomerID).Error; err != nil {
			return nil, err
		}
	}

	pointsEarned := 0
	if customer != nil {
		pointsEarned = pricing.PointsEarned(totals.Total, cfg.PointsPerAmount)
	}

	sale := models.Sale{
		CustomerID:    c.CustomerID,
		UserID:        userID,
		TerminalID:    a.terminalID,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Tax:           totals.Tax,
		Total:         totals.Total,
		PaymentMethod: method,
		PointsUsed:    c.Discount.PointsUsed,
		PointsEarned:  pointsEarned,
		Status:        "completed",
		SaleTime:      time.Now(),
	}
	for _, l := range c.Lines {
		sale.Items = append(sale.Items, models.SaleItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			SKU:       l.SKU,
			Category:  l.Category,
			Size:      l.Size,
			Color:     l.Color,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.UnitPrice * float64(l.Quantity),
		})
	}

	// Step 1: the sale itself. GORM inserts the items with it.
	if err := a.db.Create(&sale).Error; err != nil {
		return nil, err
	}

	// Step 2: loyalty, best-effort.
	if customer != nil {
		a.applyLoyalty(customer, &sale)
	}

	// Step 3: stock decrement per line, best-effort, never below zero.
	for _, item := range sale.Items {
		err := a.db.Model(&models.Product{}).
			Where("id = ?", item.ProductID).
			UpdateColumn("stock_quantity", gorm.Expr("GREATEST(stock_quantity - ?, 0)", item.Quantity)).Error
		if err != nil {
			log.Printf("sales: stock decrement failed for product %d on sale %d: %v", item.ProductID, sale.ID, err)
		}
	}

	// Step 4: webhook, fire-and-forget.
	if cfg.NotifyEnabled {
		a.notifier.SaleCompleted(cfg.NotifyWebhookURL, cfg.StoreName, &sale)
	}

	return &sale, nil
}

func (a *Adapter) applyLoyalty(customer *models.Customer, sale *models.Sale) {
	now := sale.SaleTime
	balance := customer.LoyaltyPoints - sale.PointsUsed + sale.PointsEarned
	if balance < 0 {
		balance = 0
	}
	updates := map[string]interface{}{
		"loyalty_points": balance,
		"total_spent":    customer.TotalSpent + sale.Total,
		"purchase_count": customer.PurchaseCount + 1,
		"last_purchase":  &now,
	}
	if err := a.db.Model(customer).Updates(updates).Error; err != nil {
		log.Printf("sales: loyalty update failed for customer %d on sale %d: %v", customer.ID, sale.ID, err)
	}
}

// Refund cancels a completed sale: the original is marked refunded and a
// reversing entry with negated amounts is recorded, stock is restored and
// the customer's loyalty effects are unwound. The original row itself is
// never edited beyond its status.
func (a *Adapter) Refund(saleID, userID uint) (*models.Sale, error) {
	var original models.Sale
	if err := a.db.Preload("Items").First(&original, saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	if original.Status == "refunded" {
		return nil, ErrAlreadyRefunded
	}
	if original.Status != "completed" || original.PaymentMethod == "refund" {
		return nil, ErrNotRefundable
	}

	reversal := models.Sale{
		CustomerID:    original.CustomerID,
		UserID:        userID,
		TerminalID:    a.terminalID,
		Subtotal:      -original.Subtotal,
		Discount:      -original.Discount,
		Tax:           -original.Tax,
		Total:         -original.Total,
		PaymentMethod: "refund",
		Status:        "completed",
		RefundOfID:    &original.ID,
		SaleTime:      time.Now(),
	}
	for _, item := range original.Items {
		reversal.Items = append(reversal.Items, models.SaleItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			SKU:       item.SKU,
			Category:  item.Category,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  -item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: -item.LineTotal,
		})
	}

	err := a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&original).Update("status", "refunded").Error; err != nil {
			return err
		}
		return tx.Create(&reversal).Error
	})
	if err != nil {
		return nil, err
	}

	// Restock and loyalty unwind follow the same best-effort rule as Persist.
	for _, item := range original.Items {
		err := a.db.Model(&models.Product{}).
			Where("id = ?", item.ProductID).
			UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error
		if err != nil {
			log.Printf("sales: restock failed for product %d on refund of sale %d: %v", item.ProductID, original.ID, err)
		}
	}

	if original.CustomerID != nil {
		var customer models.Customer
		if err := a.db.First(&customer, *original.CustomerID).Error; err == nil {
			balance := customer.LoyaltyPoints + original.PointsUsed - original.PointsEarned
			if balance < 0 {
				balance = 0
			}
			count := customer.PurchaseCount - 1
			if count < 0 {
				count = 0
			}
			updates := map[string]interface{}{
				"loyalty_points": balance,
				"total_spent":    customer.TotalSpent - original.Total,
				"purchase_count": count,
			}
			if err := a.db.Model(&customer).Updates(updates).Error; err != nil {
				log.Printf("sales: loyalty unwind failed for customer %d on refund of sale %d: %v", customer.ID, original.ID, err)
			}
		} else {
			log.Printf("sales: customer %d not found while refunding sale %d: %v", *original.CustomerID, original.ID, err)
		}
	}

	return &reversal, nil
}

package models

import (
	"time"
)

// User - staff member operating the register
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`    // Never return this in JSON
	Role         string    `json:"role"` // 'admin', 'cashier'
	CreatedAt    time.Time `json:"created_at"`
}

// Product - the inventory
type Product struct {
	ID            uint     `gorm:"primaryKey" json:"id"`
	Name          string   `json:"name"`
	SKU           string   `gorm:"index;size:64" json:"sku"` // barcode value
	Category      string   `json:"category"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"original_price"` // list price, 0 when not discounted
	CostPrice     float64  `json:"cost_price"`
	StockQuantity int      `json:"stock_quantity"`
	Sizes         []string `gorm:"serializer:json" json:"sizes"`
	Colors        []string `gorm:"serializer:json" json:"colors"`
	ImageURL      string   `json:"image_url"`
}

// Customer - loyalty member. Walk-in sales carry no customer at all.
type Customer struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `json:"name"`
	Phone         string     `gorm:"index;size:20" json:"phone"`
	Email         string     `json:"email"`
	Address       string     `json:"address"`
	LoyaltyPoints int        `json:"loyalty_points"` // never negative
	TotalSpent    float64    `json:"total_spent"`
	PurchaseCount int        `json:"purchase_count"`
	LastPurchase  *time.Time `json:"last_purchase"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Sale - the transaction header. Immutable once created; a refund marks it
// 'refunded' and records a reversing entry instead of editing it.
type Sale struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CustomerID    *uint      `json:"customer_id"` // nil = walk-in
	Customer      *Customer  `json:"customer,omitempty"`
	UserID        uint       `json:"user_id"` // who rang it up
	TerminalID    string     `gorm:"size:32" json:"terminal_id"`
	Subtotal      float64    `json:"subtotal"`
	Discount      float64    `json:"discount"`
	Tax           float64    `json:"tax"`
	Total         float64    `json:"total"`
	PaymentMethod string     `gorm:"size:16" json:"payment_method"` // 'cash', 'promptpay', 'card', 'refund'
	PointsUsed    int        `json:"points_used"`
	PointsEarned  int        `json:"points_earned"`
	Status        string     `gorm:"size:16" json:"status"` // 'completed', 'refunded'
	RefundOfID    *uint      `json:"refund_of_id"`          // set on reversing entries only
	SaleTime      time.Time  `json:"sale_time"`
	Items         []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
}

// SaleItem - one line of a sale, with product fields snapshotted at sale time
// so later catalog edits never rewrite history.
type SaleItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	SaleID    uint    `json:"sale_id"`
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Category  string  `json:"category"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"` // snapshot of price at time of sale
	LineTotal float64 `json:"line_total"`
}

// CartLine - one product in the active cart. Lives in memory only; display
// fields are snapshotted when the product is first added.
type CartLine struct {
	ProductID uint     `json:"product_id"`
	Name      string   `json:"name"`
	SKU       string   `json:"sku"`
	Category  string   `json:"category"`
	UnitPrice float64  `json:"unit_price"`
	Quantity  int      `json:"quantity"`
	Sizes     []string `json:"sizes"`
	Colors    []string `json:"colors"`
	Size      string   `json:"size"`  // selected variant
	Color     string   `json:"color"` // selected variant
}

// Settings - single-row store configuration. Loaded once and cached; the
// settings page is the only writer.
type Settings struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TaxRate          float64   `json:"tax_rate"`          // percent, default 7
	PointsPerAmount  float64   `json:"points_per_amount"` // baht of spend per 1 point earned
	PointValue       float64   `json:"point_value"`       // baht discount per point redeemed
	CashEnabled      bool      `json:"cash_enabled"`
	PromptPayEnabled bool      `json:"promptpay_enabled"`
	CardEnabled      bool      `json:"card_enabled"`
	PromptPayID      string    `gorm:"size:20" json:"promptpay_id"` // phone or tax id
	StripePublicKey  string    `json:"stripe_public_key"`
	StripeSecretKey  string    `json:"-"`
	StripePriceID    string    `json:"stripe_price_id"`
	StoreName        string    `json:"store_name"`
	StoreAddress     string    `json:"store_address"`
	StoreTaxID       string    `gorm:"size:20" json:"store_tax_id"`
	StorePhone       string    `gorm:"size:20" json:"store_phone"`
	LogoURL          string    `json:"logo_url"`
	NotifyEnabled    bool      `json:"notify_enabled"`
	NotifyWebhookURL string    `json:"notify_webhook_url"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PendingCheckout - cart state parked in the database while the browser is
// away at the hosted card-payment page. Keyed by a one-time token carried
// through the success/cancel return URLs and consumed exactly once.
type PendingCheckout struct {
	Token          string    `gorm:"primaryKey;size:36" json:"token"`
	UserID         uint      `json:"user_id"`
	CustomerID     *uint     `json:"customer_id"`
	CartJSON       string    `gorm:"type:text" json:"-"`
	PointsUsed     int       `json:"points_used"`
	DiscountAmount float64   `json:"discount_amount"`
	ExcludeVAT     bool      `json:"exclude_vat"`
	TaxRate        float64   `json:"tax_rate"`
	Total          float64   `json:"total"`
	CreatedAt      time.Time `json:"created_at"`
}

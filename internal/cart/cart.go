// Package cart holds the in-memory register carts, one per signed-in user.
// Mutations are purely local; nothing here touches the network or database.
package cart

import (
	"errors"
	"sync"

	"go-pos-checkout/internal/models"
	"go-pos-checkout/internal/pricing"
)

var (
	ErrOutOfStock   = errors.New("product is out of stock")
	ErrStockCeiling = errors.New("cannot add more than the available stock")
	ErrNotInCart    = errors.New("product is not in the cart")
)

// Cart is one user's active cart plus the checkout context that travels with
// it: the selected loyalty customer and the applied discount.
type Cart struct {
	Lines      []models.CartLine `json:"lines"`
	CustomerID *uint             `json:"customer_id"`
	Discount   pricing.Discount  `json:"discount"`
}

// Store keeps carts keyed by user id. The register UI is the single writer
// for its own cart; the mutex only guards against concurrent requests from
// the same session.
type Store struct {
	mu    sync.Mutex
	carts map[uint]*Cart
}

func NewStore() *Store {
	return &Store{carts: make(map[uint]*Cart)}
}

func (s *Store) cart(userID uint) *Cart {
	c, ok := s.carts[userID]
	if !ok {
		c = &Cart{}
		s.carts[userID] = c
	}
	return c
}

// AddItem puts one unit of the product into the cart. Repeat adds of the same
// product merge into the existing line. The product's current stock is the
// hard ceiling: an out-of-stock product is rejected outright, and an
// increment past the ceiling leaves the line unchanged.
func (s *Store) AddItem(userID uint, p models.Product) error {
	if p.StockQuantity <= 0 {
		return ErrOutOfStock
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	for i := range c.Lines {
		if c.Lines[i].ProductID == p.ID {
			if c.Lines[i].Quantity+1 > p.StockQuantity {
				return ErrStockCeiling
			}
			c.Lines[i].Quantity++
			return nil
		}
	}

	// Snapshot display fields now; later catalog edits must not change what
	// the cashier already rang up.
	c.Lines = append(c.Lines, models.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		SKU:       p.SKU,
		Category:  p.Category,
		UnitPrice: p.Price,
		Quantity:  1,
		Sizes:     p.Sizes,
		Colors:    p.Colors,
	})
	return nil
}

// SetQuantity sets a line's quantity directly. Zero or below removes the
// line. A quantity above the stock ceiling is clamped to it; the returned
// flag tells the caller a clamp happened so the UI can warn. Clamping to a
// ceiling of zero removes the line too: a line's quantity is always positive.
func (s *Store) SetQuantity(userID, productID uint, quantity, stock int) (clamped bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	for i := range c.Lines {
		if c.Lines[i].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return false, nil
		}
		if quantity > stock {
			if stock <= 0 {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
				return true, nil
			}
			c.Lines[i].Quantity = stock
			return true, nil
		}
		c.Lines[i].Quantity = quantity
		return false, nil
	}
	return false, ErrNotInCart
}

// SelectVariant records the chosen size/color on an existing line.
func (s *Store) SelectVariant(userID, productID uint, size, color string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Size = size
			c.Lines[i].Color = color
			return nil
		}
	}
	return ErrNotInCart
}

// RemoveItem deletes the line unconditionally.
func (s *Store) RemoveItem(userID, productID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// SetCustomer attaches a loyalty customer (nil detaches). Changing customer
// drops any active point redemption, since it was validated against the
// previous customer's balance.
func (s *Store) SetCustomer(userID uint, customerID *uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	c.CustomerID = customerID
	c.Discount = pricing.RemoveDiscount(c.Discount)
}

// SetDiscount stores an already-validated redemption.
func (s *Store) SetDiscount(userID uint, d pricing.Discount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart(userID).Discount = d
}

// ClearDiscount resets the redemption to zero. Idempotent.
func (s *Store) ClearDiscount(userID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cart(userID)
	c.Discount = pricing.RemoveDiscount(c.Discount)
}

// SetExcludeVAT toggles tax suppression for the current sale.
func (s *Store) SetExcludeVAT(userID uint, exclude bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart(userID).Discount.ExcludeVAT = exclude
}

// Snapshot returns a copy safe to read and price without holding the lock.
func (s *Store) Snapshot(userID uint) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	out := Cart{CustomerID: c.CustomerID, Discount: c.Discount}
	out.Lines = make([]models.CartLine, len(c.Lines))
	copy(out.Lines, c.Lines)
	return out
}

// Replace swaps in a full cart, used when restoring a pending checkout after
// a payment-page redirect.
func (s *Store) Replace(userID uint, c Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = &c
}

// Clear empties the cart, customer selection and discount. Called only after
// a sale has been persisted, or by an explicit cashier action.
func (s *Store) Clear(userID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}

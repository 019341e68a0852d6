// Package checkout drives a sale from the method chooser to a persisted
// record. Each register session is a small state machine: options leads to
// cash (immediate), promptpay (QR shown, waiting for the cashier to confirm
// the transfer landed) or a card redirect, then to confirmed or cancelled.
package checkout

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go-pos-checkout/internal/cart"
	"go-pos-checkout/internal/models"
	"go-pos-checkout/internal/payments"
	"go-pos-checkout/internal/pricing"
	"go-pos-checkout/internal/promptpay"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type State string

const (
	StateOptions        State = "options"
	StatePromptPay      State = "promptpay"
	StateStripeRedirect State = "stripe_redirect"
	StateConfirmed      State = "confirmed"
	StateCancelled      State = "cancelled"
)

const (
	MethodCash      = "cash"
	MethodPromptPay = "promptpay"
	MethodCard      = "card"
)

var (
	ErrEmptyCart              = errors.New("cart is empty")
	ErrUnknownMethod          = errors.New("unknown payment method")
	ErrMethodDisabled         = errors.New("payment method is not enabled")
	ErrPromptPayNotConfigured = errors.New("promptpay merchant id is not configured")
	ErrCardNotConfigured      = errors.New("stripe key or price is not configured")
	ErrNotAwaitingConfirm     = errors.New("no promptpay payment is awaiting confirmation")
	ErrPendingNotFound        = errors.New("pending checkout not found or already consumed")
)

// Persister is the sale persistence boundary. taxRate is the VAT percentage
// quoted to the customer when the payment started; totals are recomputed from
// it, not from whatever the settings say at persist time. The persister must
// not mutate the cart; the orchestrator clears it only after success.
type Persister interface {
	Persist(userID uint, method string, c cart.Cart, taxRate float64) (*models.Sale, error)
}

// SettingsSource is the synchronous settings read the orchestrator needs.
// Satisfied by *settings.Cache.
type SettingsSource interface {
	Current() models.Settings
}

// StartResult is what the register renders after picking a method. Exactly
// one of Sale, QR fields, or RedirectURL is populated, matching the state.
type StartResult struct {
	State       State        `json:"state"`
	Sale        *models.Sale `json:"sale,omitempty"`
	Amount      float64      `json:"amount,omitempty"`
	QRPayload   string       `json:"qr_payload,omitempty"`
	QRImage     string       `json:"qr_image,omitempty"` // base64 PNG
	RedirectURL string       `json:"redirect_url,omitempty"`
}

type Orchestrator struct {
	db        *gorm.DB
	settings  SettingsSource
	carts     *cart.Store
	persister Persister
	gateway   payments.RedirectCreator
	baseURL   string

	mu       sync.Mutex
	sessions map[uint]session
}

// session is one user's position in the state machine. For promptpay the cart
// and tax rate are parked when the QR is shown, so the confirmed sale records
// exactly the amount the QR encoded even if the cart or settings move in the
// meantime.
type session struct {
	state   State
	parked  cart.Cart
	taxRate float64
}

func NewOrchestrator(db *gorm.DB, cache SettingsSource, carts *cart.Store, persister Persister, gateway payments.RedirectCreator, baseURL string) *Orchestrator {
	return &Orchestrator{
		db:        db,
		settings:  cache,
		carts:     carts,
		persister: persister,
		gateway:   gateway,
		baseURL:   baseURL,
		sessions:  make(map[uint]session),
	}
}

// setState replaces the session outright, dropping any parked cart.
func (o *Orchestrator) setState(userID uint, s State) {
	o.mu.Lock()
	o.sessions[userID] = session{state: s}
	o.mu.Unlock()
}

func (o *Orchestrator) park(userID uint, s State, snapshot cart.Cart, taxRate float64) {
	o.mu.Lock()
	o.sessions[userID] = session{state: s, parked: snapshot, taxRate: taxRate}
	o.mu.Unlock()
}

func (o *Orchestrator) session(userID uint) session {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.sessions[userID]; ok {
		return s
	}
	return session{state: StateOptions}
}

// SessionState reports where the user's checkout currently stands.
func (o *Orchestrator) SessionState(userID uint) State {
	return o.session(userID).state
}

// Start enters the chosen payment branch. Re-starting from any non-terminal
// state is allowed; it is the cashier backing out to the method chooser.
func (o *Orchestrator) Start(userID uint, method string) (*StartResult, error) {
	snapshot := o.carts.Snapshot(userID)
	if len(snapshot.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	cfg := o.settings.Current()

	switch method {
	case MethodCash:
		if !cfg.CashEnabled {
			return nil, ErrMethodDisabled
		}
		return o.finish(userID, MethodCash, snapshot, cfg.TaxRate)

	case MethodPromptPay:
		if !cfg.PromptPayEnabled {
			return nil, ErrMethodDisabled
		}
		if cfg.PromptPayID == "" {
			return nil, ErrPromptPayNotConfigured
		}
		totals := pricing.Compute(snapshot.Lines, snapshot.Discount, cfg.TaxRate)
		payload, err := promptpay.Payload(cfg.PromptPayID, totals.Total)
		if err != nil {
			return nil, err
		}
		img, err := promptpay.QRImage(payload, 256)
		if err != nil {
			return nil, err
		}
		o.park(userID, StatePromptPay, snapshot, cfg.TaxRate)
		return &StartResult{
			State:     StatePromptPay,
			Amount:    totals.Total,
			QRPayload: payload,
			QRImage:   img,
		}, nil

	case MethodCard:
		if !cfg.CardEnabled {
			return nil, ErrMethodDisabled
		}
		if cfg.StripeSecretKey == "" || cfg.StripePriceID == "" {
			return nil, ErrCardNotConfigured
		}
		return o.startStripe(userID, snapshot, cfg)

	default:
		return nil, ErrUnknownMethod
	}
}

// startStripe parks the cart in the database under a one-time token, then
// asks the gateway for the hosted page. The token rides the return URLs so
// the sale can be completed after the browser comes back from the redirect.
func (o *Orchestrator) startStripe(userID uint, snapshot cart.Cart, cfg models.Settings) (*StartResult, error) {
	totals := pricing.Compute(snapshot.Lines, snapshot.Discount, cfg.TaxRate)

	cartJSON, err := json.Marshal(snapshot.Lines)
	if err != nil {
		return nil, err
	}

	pending := models.PendingCheckout{
		Token:          uuid.NewString(),
		UserID:         userID,
		CustomerID:     snapshot.CustomerID,
		CartJSON:       string(cartJSON),
		PointsUsed:     snapshot.Discount.PointsUsed,
		DiscountAmount: snapshot.Discount.Amount,
		ExcludeVAT:     snapshot.Discount.ExcludeVAT,
		TaxRate:        cfg.TaxRate,
		Total:          totals.Total,
	}
	if err := o.db.Create(&pending).Error; err != nil {
		return nil, err
	}

	// The redirect lands on the register app, which reads the marker and
	// calls the API with its own credentials.
	successURL := fmt.Sprintf("%s/checkout/return?token=%s", o.baseURL, pending.Token)
	cancelURL := fmt.Sprintf("%s/checkout/return?token=%s&cancelled=1", o.baseURL, pending.Token)

	redirectURL, err := o.gateway.CreateRedirect(cfg.StripeSecretKey, cfg.StripePriceID, 1, successURL, cancelURL)
	if err != nil {
		// The handoff never started; do not leave an orphaned token behind.
		o.db.Delete(&pending)
		return nil, err
	}

	o.setState(userID, StateStripeRedirect)
	return &StartResult{State: StateStripeRedirect, Amount: totals.Total, RedirectURL: redirectURL}, nil
}

// ConfirmPromptPay completes a QR payment after the cashier has seen the
// transfer arrive. There is no automatic status polling on this rail. The
// parked snapshot is persisted, not the live cart: the customer transferred
// the amount on the QR, so that is the sale of record.
func (o *Orchestrator) ConfirmPromptPay(userID uint) (*StartResult, error) {
	sess := o.session(userID)
	if sess.state != StatePromptPay {
		return nil, ErrNotAwaitingConfirm
	}
	return o.finish(userID, MethodPromptPay, sess.parked, sess.taxRate)
}

// CompleteStripe consumes the pending token on a successful return. The
// parked cart is restored and persisted as a card sale at the tax rate that
// was in effect when the customer left for the payment page; the token row is
// deleted only after persistence succeeds, so a backend hiccup on return is
// retryable.
func (o *Orchestrator) CompleteStripe(token string) (*models.Sale, error) {
	pending, err := o.takePending(token)
	if err != nil {
		return nil, err
	}

	var lines []models.CartLine
	if err := json.Unmarshal([]byte(pending.CartJSON), &lines); err != nil {
		return nil, err
	}
	restored := cart.Cart{
		Lines:      lines,
		CustomerID: pending.CustomerID,
		Discount: pricing.Discount{
			PointsUsed: pending.PointsUsed,
			Amount:     pending.DiscountAmount,
			ExcludeVAT: pending.ExcludeVAT,
		},
	}

	sale, err := o.persister.Persist(pending.UserID, MethodCard, restored, pending.TaxRate)
	if err != nil {
		return nil, err
	}

	o.db.Delete(&models.PendingCheckout{}, "token = ?", token)
	o.carts.Clear(pending.UserID)
	o.setState(pending.UserID, StateConfirmed)
	return sale, nil
}

// CancelStripe handles the cancel marker: clear the parked state, no sale,
// back to the method chooser. User-initiated, not an error.
func (o *Orchestrator) CancelStripe(token string) error {
	pending, err := o.takePending(token)
	if err != nil {
		return err
	}
	o.db.Delete(&models.PendingCheckout{}, "token = ?", token)
	o.setState(pending.UserID, StateCancelled)
	return nil
}

// Cancel backs a session out of any non-terminal branch.
func (o *Orchestrator) Cancel(userID uint) {
	o.setState(userID, StateOptions)
}

func (o *Orchestrator) takePending(token string) (*models.PendingCheckout, error) {
	var pending models.PendingCheckout
	err := o.db.First(&pending, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPendingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

// finish persists and, only on success, clears the cart and marks the
// session confirmed. On failure the cart, customer and discount are exactly
// as they were before the attempt.
func (o *Orchestrator) finish(userID uint, method string, snapshot cart.Cart, taxRate float64) (*StartResult, error) {
	sale, err := o.persister.Persist(userID, method, snapshot, taxRate)
	if err != nil {
		return nil, err
	}
	o.carts.Clear(userID)
	o.setState(userID, StateConfirmed)
	return &StartResult{State: StateConfirmed, Sale: sale, Amount: sale.Total}, nil
}

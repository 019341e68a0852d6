package checkout

import (
	"errors"
	"reflect"
	"testing"

	"go-pos-checkout/internal/cart"
	"go-pos-checkout/internal/models"
	"go-pos-checkout/internal/pricing"
)

type fakeSettings struct{ s models.Settings }

func (f *fakeSettings) Current() models.Settings { return f.s }

type fakePersister struct {
	fail     error
	lastUser uint
	lastMeth string
	lastCart cart.Cart
	lastRate float64
	calls    int
}

func (p *fakePersister) Persist(userID uint, method string, c cart.Cart, taxRate float64) (*models.Sale, error) {
	p.calls++
	if p.fail != nil {
		return nil, p.fail
	}
	p.lastUser = userID
	p.lastMeth = method
	p.lastCart = c
	p.lastRate = taxRate
	return &models.Sale{ID: 1, Total: 214, PaymentMethod: method, Status: "completed"}, nil
}

func allRailsOn() models.Settings {
	return models.Settings{
		TaxRate:          7,
		PointsPerAmount:  100,
		PointValue:       1,
		CashEnabled:      true,
		PromptPayEnabled: true,
		CardEnabled:      true,
		PromptPayID:      "0812345678",
		StripeSecretKey:  "sk_test_x",
		StripePriceID:    "price_x",
	}
}

func newTestOrchestrator(cfg models.Settings, p Persister) (*Orchestrator, *cart.Store) {
	carts := cart.NewStore()
	o := NewOrchestrator(nil, &fakeSettings{cfg}, carts, p, nil, "http://localhost:8080")
	return o, carts
}

func fillCart(t *testing.T, carts *cart.Store, userID uint) {
	t.Helper()
	err := carts.AddItem(userID, models.Product{ID: 10, Name: "Shirt", Price: 100, StockQuantity: 5})
	if err != nil {
		t.Fatal(err)
	}
	_, err = carts.SetQuantity(userID, 10, 2, 5)
	if err != nil {
		t.Fatal(err)
	}
}

func TestStart_EmptyCart(t *testing.T) {
	o, _ := newTestOrchestrator(allRailsOn(), &fakePersister{})
	if _, err := o.Start(1, MethodCash); !errors.Is(err, ErrEmptyCart) {
		t.Errorf("err = %v, want ErrEmptyCart", err)
	}
}

func TestStart_UnknownMethod(t *testing.T) {
	o, carts := newTestOrchestrator(allRailsOn(), &fakePersister{})
	fillCart(t, carts, 1)
	if _, err := o.Start(1, "cheque"); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("err = %v, want ErrUnknownMethod", err)
	}
}

func TestStart_MethodDisabled(t *testing.T) {
	cfg := allRailsOn()
	cfg.CashEnabled = false
	o, carts := newTestOrchestrator(cfg, &fakePersister{})
	fillCart(t, carts, 1)

	if _, err := o.Start(1, MethodCash); !errors.Is(err, ErrMethodDisabled) {
		t.Errorf("err = %v, want ErrMethodDisabled", err)
	}
}

func TestStart_PromptPayNotConfigured(t *testing.T) {
	cfg := allRailsOn()
	cfg.PromptPayID = ""
	o, carts := newTestOrchestrator(cfg, &fakePersister{})
	fillCart(t, carts, 1)

	if _, err := o.Start(1, MethodPromptPay); !errors.Is(err, ErrPromptPayNotConfigured) {
		t.Errorf("err = %v, want ErrPromptPayNotConfigured", err)
	}
}

func TestStart_CardNotConfigured(t *testing.T) {
	cfg := allRailsOn()
	cfg.StripePriceID = ""
	o, carts := newTestOrchestrator(cfg, &fakePersister{})
	fillCart(t, carts, 1)

	if _, err := o.Start(1, MethodCard); !errors.Is(err, ErrCardNotConfigured) {
		t.Errorf("err = %v, want ErrCardNotConfigured", err)
	}
}

func TestCashCheckout_Succeeds(t *testing.T) {
	p := &fakePersister{}
	o, carts := newTestOrchestrator(allRailsOn(), p)
	fillCart(t, carts, 1)

	result, err := o.Start(1, MethodCash)
	if err != nil {
		t.Fatal(err)
	}
	if result.State != StateConfirmed {
		t.Errorf("state = %s, want confirmed", result.State)
	}
	if result.Sale == nil || result.Sale.PaymentMethod != "cash" {
		t.Errorf("sale = %+v, want a cash sale", result.Sale)
	}
	if p.lastMeth != MethodCash || p.lastUser != 1 {
		t.Errorf("persister saw user=%d method=%s", p.lastUser, p.lastMeth)
	}
	if len(p.lastCart.Lines) != 1 || p.lastCart.Lines[0].Quantity != 2 {
		t.Errorf("persisted cart wrong: %+v", p.lastCart.Lines)
	}

	// Cart cleared only after success
	if n := len(carts.Snapshot(1).Lines); n != 0 {
		t.Errorf("cart has %d lines after confirmed sale, want 0", n)
	}
	if s := o.SessionState(1); s != StateConfirmed {
		t.Errorf("session state = %s, want confirmed", s)
	}
}

func TestCheckoutAbort_LeavesCartIntact(t *testing.T) {
	p := &fakePersister{fail: errors.New("backend down")}
	o, carts := newTestOrchestrator(allRailsOn(), p)
	fillCart(t, carts, 1)
	customerID := uint(7)
	carts.SetCustomer(1, &customerID)
	carts.SetDiscount(1, pricing.Discount{PointsUsed: 20, Amount: 20})

	before := carts.Snapshot(1)

	if _, err := o.Start(1, MethodCash); err == nil {
		t.Fatal("expected persistence failure")
	}

	after := carts.Snapshot(1)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("cart changed across failed checkout:\nbefore %+v\nafter  %+v", before, after)
	}
	if s := o.SessionState(1); s == StateConfirmed {
		t.Error("failed checkout must not confirm the session")
	}
}

func TestPromptPayFlow(t *testing.T) {
	p := &fakePersister{}
	o, carts := newTestOrchestrator(allRailsOn(), p)
	fillCart(t, carts, 1)

	result, err := o.Start(1, MethodPromptPay)
	if err != nil {
		t.Fatal(err)
	}
	if result.State != StatePromptPay {
		t.Errorf("state = %s, want promptpay", result.State)
	}
	if result.QRPayload == "" || result.QRImage == "" {
		t.Error("expected QR payload and image")
	}
	if result.Amount != 214 {
		t.Errorf("amount = %v, want 214 (200 + 7%% VAT)", result.Amount)
	}
	if p.calls != 0 {
		t.Error("nothing may be persisted before manual confirmation")
	}

	confirmed, err := o.ConfirmPromptPay(1)
	if err != nil {
		t.Fatal(err)
	}
	if confirmed.State != StateConfirmed || confirmed.Sale == nil {
		t.Errorf("confirm result = %+v", confirmed)
	}
	if p.lastMeth != MethodPromptPay {
		t.Errorf("method = %s, want promptpay", p.lastMeth)
	}
	if n := len(carts.Snapshot(1).Lines); n != 0 {
		t.Errorf("cart not cleared after confirm: %d lines", n)
	}
}

func TestConfirmPromptPay_PersistsSnapshotFromQR(t *testing.T) {
	p := &fakePersister{}
	o, carts := newTestOrchestrator(allRailsOn(), p)
	fillCart(t, carts, 1)

	result, err := o.Start(1, MethodPromptPay)
	if err != nil {
		t.Fatal(err)
	}

	// The cashier bumps the quantity while the QR is on screen. The customer
	// already transferred the QR amount, so the confirmed sale must record
	// the cart as it was when the QR was generated.
	if _, err := carts.SetQuantity(1, 10, 5, 5); err != nil {
		t.Fatal(err)
	}

	if _, err := o.ConfirmPromptPay(1); err != nil {
		t.Fatal(err)
	}
	if len(p.lastCart.Lines) != 1 || p.lastCart.Lines[0].Quantity != 2 {
		t.Errorf("persisted cart = %+v, want the 2-unit line from the QR", p.lastCart.Lines)
	}
	if result.Amount != 214 {
		t.Errorf("quoted amount = %v, want 214", result.Amount)
	}
}

func TestConfirmPromptPay_KeepsQuotedTaxRate(t *testing.T) {
	src := &fakeSettings{allRailsOn()}
	carts := cart.NewStore()
	p := &fakePersister{}
	o := NewOrchestrator(nil, src, carts, p, nil, "http://localhost:8080")
	fillCart(t, carts, 1)

	if _, err := o.Start(1, MethodPromptPay); err != nil {
		t.Fatal(err)
	}

	// A tax rate change lands between QR display and confirmation.
	src.s.TaxRate = 10

	if _, err := o.ConfirmPromptPay(1); err != nil {
		t.Fatal(err)
	}
	if p.lastRate != 7 {
		t.Errorf("persisted tax rate = %v, want the quoted 7", p.lastRate)
	}
}

func TestConfirmPromptPay_RequiresPendingQR(t *testing.T) {
	o, carts := newTestOrchestrator(allRailsOn(), &fakePersister{})
	fillCart(t, carts, 1)

	if _, err := o.ConfirmPromptPay(1); !errors.Is(err, ErrNotAwaitingConfirm) {
		t.Errorf("err = %v, want ErrNotAwaitingConfirm", err)
	}
}

func TestCancel_ReturnsToOptions(t *testing.T) {
	o, carts := newTestOrchestrator(allRailsOn(), &fakePersister{})
	fillCart(t, carts, 1)

	if _, err := o.Start(1, MethodPromptPay); err != nil {
		t.Fatal(err)
	}
	o.Cancel(1)

	if s := o.SessionState(1); s != StateOptions {
		t.Errorf("state = %s, want options", s)
	}
	// Backing out never touches the cart
	if n := len(carts.Snapshot(1).Lines); n != 1 {
		t.Errorf("cart has %d lines, want 1", n)
	}
}

// Package payments wraps the card gateway. The only operation this system
// ever needs is creating a hosted checkout page and getting its redirect URL;
// settlement and webhooks stay on Stripe's side.
package payments

import (
	"errors"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

var ErrNotConfigured = errors.New("card payments are not configured")

// RedirectCreator is what the checkout orchestrator depends on; tests swap in
// a fake so no network is involved.
type RedirectCreator interface {
	CreateRedirect(secretKey, priceID string, quantity int64, successURL, cancelURL string) (string, error)
}

// StripeGateway creates hosted Checkout sessions via the official SDK.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

func (g *StripeGateway) CreateRedirect(secretKey, priceID string, quantity int64, successURL, cancelURL string) (string, error) {
	if secretKey == "" || priceID == "" {
		return "", ErrNotConfigured
	}

	stripe.Key = secretKey

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(quantity),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}

	s, err := session.New(params)
	if err != nil {
		return "", err
	}
	return s.URL, nil
}

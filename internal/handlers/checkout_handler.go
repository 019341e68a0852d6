package handlers

import (
	"errors"
	"net/http"

	"go-pos-checkout/internal/checkout"

	"github.com/gin-gonic/gin"
)

// --- POST: Enter a payment branch ---
type StartCheckoutRequest struct {
	Method string `json:"method" binding:"required"` // cash | promptpay | card
}

func StartCheckout(c *gin.Context) {
	var req StartCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "method is required"})
		return
	}

	result, err := CheckoutFlow.Start(currentUserID(c), req.Method)
	if err != nil {
		c.JSON(checkoutStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// --- POST: Cashier confirms the PromptPay transfer arrived ---
func ConfirmPromptPay(c *gin.Context) {
	result, err := CheckoutFlow.ConfirmPromptPay(currentUserID(c))
	if err != nil {
		c.JSON(checkoutStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// --- POST: Back out of the current payment branch ---
func CancelCheckout(c *gin.Context) {
	CheckoutFlow.Cancel(currentUserID(c))
	c.JSON(http.StatusOK, gin.H{"state": checkout.StateOptions})
}

// --- GET: Where this session's checkout stands ---
func CheckoutState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": CheckoutFlow.SessionState(currentUserID(c))})
}

// --- GET: Return leg of the Stripe redirect. The token in the query is the
// one-time handle to the parked cart; the cancelled marker means the shopper
// backed out on the hosted page. ---
func StripeReturn(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	if c.Query("cancelled") == "1" {
		if err := CheckoutFlow.CancelStripe(token); err != nil {
			c.JSON(checkoutStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": checkout.StateCancelled, "message": "Payment cancelled, no sale was created"})
		return
	}

	sale, err := CheckoutFlow.CompleteStripe(token)
	if err != nil {
		c.JSON(checkoutStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": checkout.StateConfirmed, "sale": sale})
}

// checkoutStatus maps orchestrator errors onto HTTP codes: configuration and
// validation problems are the client's 4xx, anything else is a backend 500.
func checkoutStatus(err error) int {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrUnknownMethod),
		errors.Is(err, checkout.ErrMethodDisabled),
		errors.Is(err, checkout.ErrPromptPayNotConfigured),
		errors.Is(err, checkout.ErrCardNotConfigured),
		errors.Is(err, checkout.ErrNotAwaitingConfirm):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrPendingNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

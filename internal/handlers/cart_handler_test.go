package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-pos-checkout/internal/cart"
	"go-pos-checkout/internal/pricing"
	"go-pos-checkout/internal/settings"

	"github.com/gin-gonic/gin"
)

func newCartTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	Carts = cart.NewStore()
	SettingsCache = settings.NewCache(nil)

	r := gin.New()
	r.POST("/api/cart/points", func(c *gin.Context) { c.Set("userID", uint(1)) }, ApplyCartPoints)
	return r
}

// Zero points must pass the request binder and fail in the pricing layer,
// not be rejected as a missing field.
func TestApplyCartPoints_ZeroReachesValidation(t *testing.T) {
	r := newCartTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/cart/points", strings.NewReader(`{"points":0}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "Invalid input") {
		t.Errorf("zero points rejected at bind time: %s", body)
	}
	// No customer is attached, so the first pricing check fires.
	if !strings.Contains(body, pricing.ErrNoCustomer.Error()) {
		t.Errorf("body = %s, want the pricing error", body)
	}
}

func TestApplyCartPoints_MalformedBody(t *testing.T) {
	r := newCartTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/cart/points", strings.NewReader(`{"points":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

package handlers

import (
	"log"
	"os"

	"go-pos-checkout/internal/cart"
	"go-pos-checkout/internal/checkout"
	"go-pos-checkout/internal/database"
	"go-pos-checkout/internal/notify"
	"go-pos-checkout/internal/payments"
	"go-pos-checkout/internal/sales"
	"go-pos-checkout/internal/settings"
	"go-pos-checkout/internal/utils"
)

// Shared singletons, wired once from main after the database is up.
var (
	Carts         *cart.Store
	SettingsCache *settings.Cache
	SalesAdapter  *sales.Adapter
	CheckoutFlow  *checkout.Orchestrator
)

func Setup(baseURL string) {
	terminalID := utils.GetTerminalID()
	log.Println("Terminal ID:", terminalID)

	Carts = cart.NewStore()

	SettingsCache = settings.NewCache(database.DB)
	if err := SettingsCache.Load(); err != nil {
		log.Fatal("Failed to load settings:", err)
	}

	SalesAdapter = sales.NewAdapter(database.DB, SettingsCache, notify.NewNotifier(), terminalID)
	CheckoutFlow = checkout.NewOrchestrator(
		database.DB, SettingsCache, Carts, SalesAdapter, payments.NewStripeGateway(), baseURL)

	// Server-lifetime subscriber: an audit trail of configuration changes
	// made from the settings page.
	ch := SettingsCache.Subscribe()
	go func() {
		for s := range ch {
			log.Printf("settings updated: tax=%.2f%% rails cash=%v promptpay=%v card=%v notify=%v",
				s.TaxRate, s.CashEnabled, s.PromptPayEnabled, s.CardEnabled, s.NotifyEnabled)
		}
	}()
}

func envOr(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

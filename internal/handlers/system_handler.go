package handlers

import (
	"net/http"

	"go-pos-checkout/internal/utils"

	"github.com/gin-gonic/gin"
)

const Version = "1.4.0"

// GetSystemStatus tells the front end which register it is talking to and
// which payment rails are currently switched on.
func GetSystemStatus(c *gin.Context) {
	cfg := SettingsCache.Current()
	c.JSON(http.StatusOK, gin.H{
		"terminal_id": utils.GetTerminalID(),
		"version":     Version,
		"payment_methods": gin.H{
			"cash":      cfg.CashEnabled,
			"promptpay": cfg.PromptPayEnabled,
			"card":      cfg.CardEnabled,
		},
	})
}

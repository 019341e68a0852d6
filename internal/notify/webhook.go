// Package notify posts sale summaries to a chat webhook. Strictly
// fire-and-forget: a dead webhook must never fail a sale.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"go-pos-checkout/internal/models"
)

type Notifier struct {
	client *http.Client
}

func NewNotifier() *Notifier {
	return &Notifier{client: &http.Client{Timeout: 5 * time.Second}}
}

type saleMessage struct {
	Text string `json:"text"`
}

// SaleCompleted dispatches the summary on its own goroutine. Failures are
// logged and swallowed.
func (n *Notifier) SaleCompleted(webhookURL, storeName string, sale *models.Sale) {
	if webhookURL == "" {
		return
	}

	itemCount := 0
	for _, it := range sale.Items {
		itemCount += it.Quantity
	}
	msg := saleMessage{
		Text: fmt.Sprintf("%s: sale #%d, %d item(s), %.2f THB via %s",
			storeName, sale.ID, itemCount, sale.Total, sale.PaymentMethod),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		log.Println("notify: failed to encode sale summary:", err)
		return
	}

	go func() {
		resp, err := n.client.Post(webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Println("notify: webhook post failed:", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			log.Println("notify: webhook returned status", resp.StatusCode)
		}
	}()
}

package settings

import (
	"bytes"
	"encoding/json"
	"strconv"

	"go-pos-checkout/internal/models"
)

// FlexFloat accepts both 7 and "7" from clients. Older front ends sent the
// numeric settings as strings, so normalization happens once here at bind
// time and nowhere else.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) >= 2 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// UpdateInput is the settings PATCH body. Pointers distinguish "not sent"
// from zero values.
type UpdateInput struct {
	TaxRate          *FlexFloat `json:"tax_rate"`
	PointsPerAmount  *FlexFloat `json:"points_per_amount"`
	PointValue       *FlexFloat `json:"point_value"`
	CashEnabled      *bool      `json:"cash_enabled"`
	PromptPayEnabled *bool      `json:"promptpay_enabled"`
	CardEnabled      *bool      `json:"card_enabled"`
	PromptPayID      *string    `json:"promptpay_id"`
	StripePublicKey  *string    `json:"stripe_public_key"`
	StripeSecretKey  *string    `json:"stripe_secret_key"`
	StripePriceID    *string    `json:"stripe_price_id"`
	StoreName        *string    `json:"store_name"`
	StoreAddress     *string    `json:"store_address"`
	StoreTaxID       *string    `json:"store_tax_id"`
	StorePhone       *string    `json:"store_phone"`
	LogoURL          *string    `json:"logo_url"`
	NotifyEnabled    *bool      `json:"notify_enabled"`
	NotifyWebhookURL *string    `json:"notify_webhook_url"`
}

func (in UpdateInput) apply(s *models.Settings) {
	if in.TaxRate != nil {
		s.TaxRate = float64(*in.TaxRate)
	}
	if in.PointsPerAmount != nil {
		s.PointsPerAmount = float64(*in.PointsPerAmount)
	}
	if in.PointValue != nil {
		s.PointValue = float64(*in.PointValue)
	}
	if in.CashEnabled != nil {
		s.CashEnabled = *in.CashEnabled
	}
	if in.PromptPayEnabled != nil {
		s.PromptPayEnabled = *in.PromptPayEnabled
	}
	if in.CardEnabled != nil {
		s.CardEnabled = *in.CardEnabled
	}
	if in.PromptPayID != nil {
		s.PromptPayID = *in.PromptPayID
	}
	if in.StripePublicKey != nil {
		s.StripePublicKey = *in.StripePublicKey
	}
	if in.StripeSecretKey != nil {
		s.StripeSecretKey = *in.StripeSecretKey
	}
	if in.StripePriceID != nil {
		s.StripePriceID = *in.StripePriceID
	}
	if in.StoreName != nil {
		s.StoreName = *in.StoreName
	}
	if in.StoreAddress != nil {
		s.StoreAddress = *in.StoreAddress
	}
	if in.StoreTaxID != nil {
		s.StoreTaxID = *in.StoreTaxID
	}
	if in.StorePhone != nil {
		s.StorePhone = *in.StorePhone
	}
	if in.LogoURL != nil {
		s.LogoURL = *in.LogoURL
	}
	if in.NotifyEnabled != nil {
		s.NotifyEnabled = *in.NotifyEnabled
	}
	if in.NotifyWebhookURL != nil {
		s.NotifyWebhookURL = *in.NotifyWebhookURL
	}
}

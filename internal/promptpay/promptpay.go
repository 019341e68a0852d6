// Package promptpay builds EMVCo merchant-presented QR payloads for the
// PromptPay rail and renders them as scannable PNG images.
package promptpay

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	idPayloadFormat       = "00"
	idPointOfInitiation   = "01"
	idMerchantAccountInfo = "29"
	idCurrency            = "53"
	idAmount              = "54"
	idCountryCode         = "58"
	idCRC                 = "63"

	// Sub-tags inside the merchant account template
	subAID      = "00"
	subPhone    = "01"
	subNational = "02"
	subEWallet  = "03"

	aidPromptPay = "A000000677010111"
	currencyTHB  = "764"
)

var ErrInvalidTarget = errors.New("promptpay id must be a phone number, national id or e-wallet id")

// Payload encodes the merchant id and the exact sale amount. A non-zero
// amount produces a dynamic QR (point of initiation 12); the customer's
// banking app pre-fills the transfer with it.
func Payload(target string, amount float64) (string, error) {
	sub, formatted, err := formatTarget(target)
	if err != nil {
		return "", err
	}

	merchant := tlv(subAID, aidPromptPay) + tlv(sub, formatted)

	var b strings.Builder
	b.WriteString(tlv(idPayloadFormat, "01"))
	if amount > 0 {
		b.WriteString(tlv(idPointOfInitiation, "12")) // dynamic, one-shot
	} else {
		b.WriteString(tlv(idPointOfInitiation, "11")) // static, reusable
	}
	b.WriteString(tlv(idMerchantAccountInfo, merchant))
	b.WriteString(tlv(idCurrency, currencyTHB))
	if amount > 0 {
		b.WriteString(tlv(idAmount, fmt.Sprintf("%.2f", amount)))
	}
	b.WriteString(tlv(idCountryCode, "TH"))

	// CRC covers everything up to and including its own id+length
	payload := b.String() + idCRC + "04"
	return payload + fmt.Sprintf("%04X", crc16(payload)), nil
}

// QRImage renders the payload as a base64 PNG for the checkout dialog.
func QRImage(payload string, size int) (string, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// formatTarget classifies the merchant id by digit count: 10 digits is a
// phone number (stored as 0066 + number without the leading zero), 13 a
// national/tax id, 15 an e-wallet id.
func formatTarget(target string) (subTag, formatted string, err error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, target)

	switch len(digits) {
	case 10:
		return subPhone, "0066" + digits[1:], nil
	case 13:
		return subNational, digits, nil
	case 15:
		return subEWallet, digits, nil
	default:
		return "", "", ErrInvalidTarget
	}
}

func tlv(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// crc16 is CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF), the checksum the
// EMVCo QR spec mandates.
func crc16(s string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(s); i++ {
		crc ^= uint16(s[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

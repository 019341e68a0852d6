package promptpay

import (
	"errors"
	"strings"
	"testing"
)

func TestCRC16_CheckValue(t *testing.T) {
	// Standard CRC-16/CCITT-FALSE check value
	if got := crc16("123456789"); got != 0x29B1 {
		t.Errorf("crc16 = %04X, want 29B1", got)
	}
}

func TestPayload_PhoneDynamic(t *testing.T) {
	payload, err := Payload("0812345678", 481.50)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(payload, "000201") {
		t.Errorf("missing payload format indicator: %s", payload)
	}
	if !strings.Contains(payload, "010212") {
		t.Errorf("amount-bearing QR must be dynamic (010212): %s", payload)
	}
	if !strings.Contains(payload, "0016A000000677010111") {
		t.Errorf("missing PromptPay AID: %s", payload)
	}
	// Phone renders as 0066 + number without the leading zero
	if !strings.Contains(payload, "01130066812345678") {
		t.Errorf("phone not formatted for the merchant template: %s", payload)
	}
	if !strings.Contains(payload, "5303764") {
		t.Errorf("missing THB currency: %s", payload)
	}
	if !strings.Contains(payload, "5406481.50") {
		t.Errorf("missing amount field: %s", payload)
	}
	if !strings.Contains(payload, "5802TH") {
		t.Errorf("missing country code: %s", payload)
	}

	// Ends with 6304 + 4 uppercase hex digits, and the CRC verifies
	idx := strings.LastIndex(payload, "6304")
	if idx != len(payload)-8 {
		t.Fatalf("CRC field misplaced: %s", payload)
	}
	wantCRC := payload[idx+4:]
	if got := strings.ToUpper(wantCRC); got != wantCRC {
		t.Errorf("CRC not uppercase: %s", wantCRC)
	}
	if got := crc16(payload[:idx+4]); got != mustHex(t, wantCRC) {
		t.Errorf("CRC mismatch: computed %04X, payload says %s", got, wantCRC)
	}
}

func TestPayload_NoAmountIsStatic(t *testing.T) {
	payload, err := Payload("0812345678", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(payload, "010211") {
		t.Errorf("amount-less QR must be static (010211): %s", payload)
	}
	if strings.Contains(payload, "5406") {
		t.Errorf("static payload must not carry an amount: %s", payload)
	}
}

func TestPayload_TargetKinds(t *testing.T) {
	// Punctuated phone, 13-digit tax id, 15-digit e-wallet id
	tests := []struct {
		target string
		wantIn string
	}{
		{"081-234-5678", "01130066812345678"},
		{"1234567890123", "02131234567890123"},
		{"123456789012345", "0315123456789012345"},
	}
	for _, tt := range tests {
		payload, err := Payload(tt.target, 100)
		if err != nil {
			t.Fatalf("%s: %v", tt.target, err)
		}
		if !strings.Contains(payload, tt.wantIn) {
			t.Errorf("%s: payload %s missing %s", tt.target, payload, tt.wantIn)
		}
	}
}

func TestPayload_InvalidTarget(t *testing.T) {
	if _, err := Payload("12345", 100); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("err = %v, want ErrInvalidTarget", err)
	}
}

func TestQRImage(t *testing.T) {
	payload, err := Payload("0812345678", 250)
	if err != nil {
		t.Fatal(err)
	}
	img, err := QRImage(payload, 256)
	if err != nil {
		t.Fatal(err)
	}
	if img == "" {
		t.Error("expected base64 PNG data")
	}
}

func mustHex(t *testing.T, s string) uint16 {
	t.Helper()
	var v uint16
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d uint16
		switch {
		case c >= '0' && c <= '9':
			d = uint16(c - '0')
		case c >= 'A' && c <= 'F':
			d = uint16(c-'A') + 10
		default:
			t.Fatalf("bad hex %q", s)
		}
		v = v<<4 | d
	}
	return v
}

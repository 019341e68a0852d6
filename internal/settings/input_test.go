package settings

import (
	"encoding/json"
	"testing"

	"go-pos-checkout/internal/models"
)

func TestFlexFloat_AcceptsBothShapes(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{`7`, 7},
		{`"7"`, 7},
		{`7.5`, 7.5},
		{`"7.5"`, 7.5},
		{`"  0.5"`, 0}, // only clean numeric strings parse; see below
	}

	for _, tt := range tests {
		var f FlexFloat
		err := json.Unmarshal([]byte(tt.raw), &f)
		if tt.raw == `"  0.5"` {
			if err == nil {
				t.Errorf("%s: expected parse error for padded string", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tt.raw, err)
			continue
		}
		if float64(f) != tt.want {
			t.Errorf("%s: got %v, want %v", tt.raw, float64(f), tt.want)
		}
	}
}

func TestFlexFloat_EmptyStringIsZero(t *testing.T) {
	var f FlexFloat = 9
	if err := json.Unmarshal([]byte(`""`), &f); err != nil {
		t.Fatal(err)
	}
	if f != 0 {
		t.Errorf("empty string should normalize to 0, got %v", f)
	}
}

func TestUpdateInput_PartialApply(t *testing.T) {
	s := models.Settings{
		TaxRate:         7,
		PointsPerAmount: 100,
		PointValue:      1,
		StoreName:       "Old Name",
		PromptPayID:     "0812345678",
	}

	var in UpdateInput
	body := `{"tax_rate": "10", "store_name": "New Name", "promptpay_enabled": true}`
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatal(err)
	}

	in.apply(&s)

	if s.TaxRate != 10 {
		t.Errorf("tax rate = %v, want 10 (normalized from string)", s.TaxRate)
	}
	if s.StoreName != "New Name" {
		t.Errorf("store name = %q", s.StoreName)
	}
	if !s.PromptPayEnabled {
		t.Error("promptpay flag not applied")
	}
	// Untouched fields keep their values
	if s.PointsPerAmount != 100 || s.PointValue != 1 || s.PromptPayID != "0812345678" {
		t.Errorf("unsent fields changed: %+v", s)
	}
}

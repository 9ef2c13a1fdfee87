package gemini

import (
	"slices"
	"testing"
	"time"

	"gitlab.com/yelinaung/billed/internal/models"
)

func FuzzParseReceiptResponse(f *testing.F) {
	f.Add(`{"amount": "5.50", "vat": "1.10", "merchant": "Boulangerie", "date": "2024-01-15", "suggested_type": "Restaurants et bars", "confidence": 0.95}`)
	f.Add(`{"amount": "10", "merchant": "Shop"}`)
	f.Add(`{"amount": "0", "merchant": ""}`)
	f.Add("```json\n{\"amount\": \"10\", \"merchant\": \"Shop\"}\n```")
	f.Add(`{"amount": "abc"}`)
	f.Add(`{}`)
	f.Add(`not json`)
	f.Add(``)
	f.Add(`{"amount": "-5.00", "vat": "-1"}`)
	f.Add(`{"amount": "0", "merchant": "Test", "date": "invalid-date"}`)
	f.Add(`{"amount": "999999999999.99", "merchant": "Big"}`)
	f.Add(`{"amount": "5.50", "merchant": "Shop\"; DROP TABLE bills;--"}`)
	f.Add(`{"amount": "5.50", "merchant": "Café ☕", "suggested_type": "TRANSPORTS"}`)

	f.Fuzz(func(t *testing.T, input string) {
		result, err := parseReceiptResponse(input)
		if err != nil || result == nil {
			return
		}
		if result.Amount.IsNegative() || result.VAT.IsNegative() {
			t.Errorf("negative amount from %q: %v / %v", input, result.Amount, result.VAT)
		}
		if result.SuggestedType != "" && !slices.Contains(models.ExpenseTypes, result.SuggestedType) {
			t.Errorf("unknown type %q from %q", result.SuggestedType, input)
		}
		if result.Date != "" {
			if _, err := time.Parse(time.DateOnly, result.Date); err != nil {
				t.Errorf("unparseable date %q from %q", result.Date, input)
			}
		}
		if len(result.Merchant) > MaxMerchantLength {
			t.Errorf("merchant longer than %d: %d", MaxMerchantLength, len(result.Merchant))
		}
	})
}

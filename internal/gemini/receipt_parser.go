package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/billed/internal/models"
	"google.golang.org/genai"
)

// ParseReceiptTimeout bounds one receipt extraction call.
const ParseReceiptTimeout = 30 * time.Second

// ErrParseTimeout indicates the Gemini API call timed out.
var ErrParseTimeout = errors.New("receipt parsing timed out")

// ErrNoData indicates no usable data could be extracted from the receipt.
var ErrNoData = errors.New("no usable data extracted from receipt")

// ReceiptData is what could be read from a receipt image. Date is
// YYYY-MM-DD or empty, SuggestedType is one of models.ExpenseTypes or empty.
type ReceiptData struct {
	Amount        decimal.Decimal
	VAT           decimal.Decimal
	Date          string
	Merchant      string
	SuggestedType string
	Confidence    float64
}

// HasAmount reports whether a total was extracted.
func (r *ReceiptData) HasAmount() bool {
	return !r.Amount.IsZero()
}

// HasMerchant reports whether a merchant was extracted.
func (r *ReceiptData) HasMerchant() bool {
	return r.Merchant != ""
}

// IsEmpty reports whether nothing usable was extracted.
func (r *ReceiptData) IsEmpty() bool {
	return !r.HasAmount() && !r.HasMerchant() && r.Date == ""
}

type receiptResponse struct {
	Amount        string  `json:"amount"`
	VAT           string  `json:"vat"`
	Merchant      string  `json:"merchant"`
	Date          string  `json:"date"`
	SuggestedType string  `json:"suggested_type"`
	Confidence    float64 `json:"confidence"`
}

// ParseReceipt extracts bill values from a receipt image.
func (c *Client) ParseReceipt(ctx context.Context, image []byte, mimeType string) (*ReceiptData, error) {
	if len(image) == 0 {
		return nil, errors.New("image data is required")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, ParseReceiptTimeout)
	defer cancel()

	text, err := c.generate(timeoutCtx, []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
		{Text: buildReceiptPrompt(models.ExpenseTypes)},
	}, &genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrParseTimeout
		}
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	data, err := parseReceiptResponse(text)
	if err != nil {
		return nil, err
	}
	if data.IsEmpty() {
		return nil, ErrNoData
	}
	return data, nil
}

func buildReceiptPrompt(types []string) string {
	return fmt.Sprintf(`Analyze this receipt image and extract the following information.
Return ONLY a JSON object with no additional text or markdown formatting.

Required fields:
- amount: The total amount paid including tax (numeric string, e.g., "54.60")
- vat: The VAT amount shown on the receipt (numeric string, "0" if absent)
- merchant: The merchant/store name
- date: The date of purchase in YYYY-MM-DD format
- suggested_type: One of these expense types that best matches: %s
- confidence: Your confidence in the extraction accuracy (0.0 to 1.0)

If a field cannot be determined, use an empty string for text fields, "0" for amounts, or 0.0 for confidence.

Example response:
{"amount": "348", "vat": "70", "merchant": "SNCF", "date": "2004-04-04", "suggested_type": "Transports", "confidence": 0.95}`,
		strings.Join(types, ", "))
}

func parseReceiptResponse(response string) (*ReceiptData, error) {
	jsonText := extractJSON(response)
	if jsonText == "" {
		return nil, errors.New("no JSON found in receipt response")
	}

	var rr receiptResponse
	if err := json.Unmarshal([]byte(jsonText), &rr); err != nil {
		return nil, fmt.Errorf("failed to parse receipt response: %w", err)
	}

	data := &ReceiptData{
		Merchant:      SanitizeForPrompt(rr.Merchant, MaxMerchantLength),
		SuggestedType: matchExpenseType(rr.SuggestedType),
		Confidence:    rr.Confidence,
	}

	var err error
	if data.Amount, err = parseAmount("amount", rr.Amount); err != nil {
		return nil, err
	}
	if data.VAT, err = parseAmount("vat", rr.VAT); err != nil {
		return nil, err
	}

	if rr.Date != "" {
		if d, err := time.Parse(time.DateOnly, strings.TrimSpace(rr.Date)); err == nil {
			data.Date = d.Format(time.DateOnly)
		}
	}

	return data, nil
}

// parseAmount treats a negative value as missing.
func parseAmount(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse %s %q: %w", field, raw, err)
	}
	if d.IsNegative() {
		return decimal.Zero, nil
	}
	return d, nil
}

// matchExpenseType returns the known expense type equal to name ignoring case, or "".
func matchExpenseType(name string) string {
	name = strings.TrimSpace(name)
	for _, t := range models.ExpenseTypes {
		if strings.EqualFold(t, name) {
			return t
		}
	}
	return ""
}

// extractJSON returns the outermost JSON object in text. Gemini sometimes
// wraps it in markdown fences or a preamble.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(text, "}")
	if end <= start {
		return ""
	}
	return text[start : end+1]
}

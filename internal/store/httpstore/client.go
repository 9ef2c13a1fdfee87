// Package httpstore is the BillStore client of the bills REST API.
package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"gitlab.com/yelinaung/billed/internal/models"
	"gitlab.com/yelinaung/billed/internal/store"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// EmailHeader carries the session email on list requests.
const EmailHeader = "X-User-Email"

// maxErrorBody bounds how much of an error response is kept in the message.
const maxErrorBody = 512

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("store returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("store returned status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the bills REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ store.BillStore = (*Client)(nil)

// New creates a Client for baseURL. Requests are traced through otelhttp.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// List fetches the bills owned by email.
func (c *Client) List(ctx context.Context, email string) ([]models.Bill, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/bills", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create list request: %w", err)
	}
	req.Header.Set(EmailHeader, email)
	req.Header.Set("Accept", "application/json")

	var bills []models.Bill
	if err := c.do(req, http.StatusOK, &bills); err != nil {
		return nil, err
	}
	if bills == nil {
		bills = []models.Bill{}
	}
	return bills, nil
}

// Create uploads draft and its receipt as a multipart form.
func (c *Client) Create(ctx context.Context, draft models.Bill, file store.Upload) (*models.Bill, error) {
	body, contentType, err := encodeCreateForm(draft, file)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bills", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create bill request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(EmailHeader, draft.Email)

	var bill models.Bill
	if err := c.do(req, http.StatusCreated, &bill); err != nil {
		return nil, err
	}
	if bill.IsDraft() {
		return nil, errors.New("store accepted the bill without assigning an id")
	}
	return &bill, nil
}

func (c *Client) do(req *http.Request, want int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach store: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		return decodeStatusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode store response: %w", err)
	}
	return nil
}

func decodeStatusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}

func encodeCreateForm(draft models.Bill, file store.Upload) (io.Reader, string, error) {
	if file.Name == "" {
		return nil, "", errors.New("receipt file name is required")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"email", draft.Email},
		{"type", draft.Type},
		{"name", draft.Name},
		{"vat", draft.VAT.String()},
		{"amount", draft.Amount.String()},
		{"pct", strconv.Itoa(draft.Pct)},
		{"date", draft.Date},
		{"commentary", draft.Commentary},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f[0], err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close form: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

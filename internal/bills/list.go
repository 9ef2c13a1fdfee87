// Package bills loads, orders and formats the current employee's bills.
package bills

import (
	"context"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/billed/internal/logger"
	"gitlab.com/yelinaung/billed/internal/models"
	"gitlab.com/yelinaung/billed/internal/routes"
	"gitlab.com/yelinaung/billed/internal/session"
	"gitlab.com/yelinaung/billed/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("gitlab.com/yelinaung/billed/internal/bills")

// Row is a bill prepared for display. When formatting fails the display
// fields hold the raw values and Formatted is false.
type Row struct {
	models.Bill
	DisplayDate   string
	DisplayStatus string
	Formatted     bool
}

// Preview identifies the receipt currently shown.
type Preview struct {
	BillID   string
	FileURL  string
	FileName string
}

// List is the bills page of one session.
type List struct {
	store    store.BillStore
	session  session.Session
	navigate routes.Navigate
	preview  *Preview
}

// New creates a List for sess. A nil navigate ignores navigation requests.
func New(st store.BillStore, sess session.Session, navigate routes.Navigate) *List {
	if navigate == nil {
		navigate = routes.Noop
	}
	return &List{store: st, session: sess, navigate: navigate}
}

// GetBills fetches the session's bills, newest first. A store failure is
// returned as a *store.FetchError carrying the original error.
func (l *List) GetBills(ctx context.Context) ([]Row, error) {
	userHash := logger.HashEmail(l.session.Email)
	ctx, span := tracer.Start(ctx, "bills.GetBills",
		trace.WithAttributes(attribute.String("user.hash", userHash)))
	defer span.End()

	raw, err := l.store.List(ctx, l.session.Email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Log.Error().Err(err).
			Str("user_hash", userHash).
			Msg("Failed to fetch bills")
		return nil, store.AsFetchError("list", err)
	}

	sorted := slices.Clone(raw)
	SortByDateDesc(sorted)

	rows := make([]Row, 0, len(sorted))
	for _, b := range sorted {
		row := formatRow(b)
		if !row.Formatted {
			logger.Log.Warn().
				Str("bill_id", b.ID).
				Str("date", b.Date).
				Str("status", string(b.Status)).
				Msg("Bill shown unformatted")
		}
		rows = append(rows, row)
	}

	span.SetAttributes(attribute.Int("bills.count", len(rows)))
	logger.Log.Debug().
		Str("user_hash", userHash).
		Int("count", len(rows)).
		Msg("Bills fetched")

	return rows, nil
}

func formatRow(b models.Bill) Row {
	date, dateErr := FormatDate(b.Date)
	status, statusErr := FormatStatus(b.Status)
	if dateErr != nil || statusErr != nil {
		return Row{Bill: b, DisplayDate: b.Date, DisplayStatus: string(b.Status)}
	}
	return Row{Bill: b, DisplayDate: date, DisplayStatus: status, Formatted: true}
}

// SortByDateDesc orders bills by raw date string, most recent first.
// Bills with equal dates keep their relative order.
func SortByDateDesc(bills []models.Bill) {
	slices.SortStableFunc(bills, func(a, b models.Bill) int {
		return strings.Compare(b.Date, a.Date)
	})
}

// OpenReceipt marks bill as the previewed receipt and returns the preview.
func (l *List) OpenReceipt(bill models.Bill) Preview {
	p := Preview{BillID: bill.ID, FileURL: bill.FileURL, FileName: bill.FileName}
	l.preview = &p
	return p
}

// Previewed returns the receipt currently shown, if any.
func (l *List) Previewed() (Preview, bool) {
	if l.preview == nil {
		return Preview{}, false
	}
	return *l.preview, true
}

// CloseReceipt hides the receipt preview.
func (l *List) CloseReceipt() {
	l.preview = nil
}

// NewBill navigates to the new bill form.
func (l *List) NewBill() {
	l.navigate(routes.NewBill)
}

// TotalsByType sums bill amounts per expense type.
func TotalsByType(rows []Row) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, r := range rows {
		name := r.Type
		if name == "" {
			name = "Autre"
		}
		totals[name] = totals[name].Add(r.Amount)
	}
	return totals
}

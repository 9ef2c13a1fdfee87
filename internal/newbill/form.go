// Package newbill implements the new bill form: receipt selection and submission.
package newbill

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/billed/internal/logger"
	"gitlab.com/yelinaung/billed/internal/models"
	"gitlab.com/yelinaung/billed/internal/routes"
	"gitlab.com/yelinaung/billed/internal/session"
	"gitlab.com/yelinaung/billed/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "gitlab.com/yelinaung/billed/internal/newbill"

var (
	// ErrNoValidFile is returned by Submit while no accepted receipt is selected.
	ErrNoValidFile = errors.New("a jpg, jpeg or png receipt is required")
	// ErrInvalidFields is returned by Submit when the form values are out of range.
	ErrInvalidFields = errors.New("invalid bill fields")
)

var (
	tracer         = otel.Tracer(instrumentationName)
	submissions, _ = otel.Meter(instrumentationName).Int64Counter(
		"billed.bills.submitted",
		metric.WithDescription("New bill submissions by result"),
	)
)

// Fields holds the values typed into the form.
type Fields struct {
	Type       string
	Name       string
	Date       string
	Amount     decimal.Decimal
	VAT        decimal.Decimal
	Pct        int
	Commentary string
}

func (f Fields) withDefaults() Fields {
	f.Type = strings.TrimSpace(f.Type)
	f.Name = strings.TrimSpace(f.Name)
	f.Date = strings.TrimSpace(f.Date)
	if f.Pct == 0 {
		f.Pct = models.DefaultPct
	}
	return f
}

func (f Fields) validate() error {
	var problems []string
	if f.Amount.IsNegative() {
		problems = append(problems, "amount must not be negative")
	}
	if f.VAT.IsNegative() {
		problems = append(problems, "vat must not be negative")
	}
	if f.Pct < 0 {
		problems = append(problems, "pct must not be negative")
	}
	if _, err := time.Parse(time.DateOnly, f.Date); err != nil {
		problems = append(problems, fmt.Sprintf("date %q must be YYYY-MM-DD", f.Date))
	}
	if utf8.RuneCountInString(f.Commentary) > models.MaxCommentaryLength {
		problems = append(problems, fmt.Sprintf("commentary exceeds %d characters", models.MaxCommentaryLength))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidFields, strings.Join(problems, "; "))
	}
	return nil
}

// Form is the draft of a new bill owned by a single user.
type Form struct {
	store    store.BillStore
	session  session.Session
	navigate routes.Navigate

	state    FileState
	file     *File
	errorMsg string
	fields   Fields
}

// New creates an empty form for sess. A nil navigate ignores navigation requests.
func New(st store.BillStore, sess session.Session, navigate routes.Navigate) *Form {
	if navigate == nil {
		navigate = routes.Noop
	}
	return &Form{store: st, session: sess, navigate: navigate}
}

// SelectFile applies a file selection. A rejected file leaves the form in the
// invalid state with a persistent error message until an accepted file is chosen.
func (f *Form) SelectFile(file File) error {
	file.Name = strings.TrimSpace(file.Name)
	if err := ValidateFile(file.Name); err != nil {
		f.state = FileInvalid
		f.file = nil
		f.errorMsg = err.Error()
		logger.Log.Debug().
			Str("file", logger.SanitizeFileName(file.Name)).
			Msg("Receipt rejected")
		return err
	}

	if file.ContentType == "" {
		file.ContentType = ContentTypeFor(file.Name)
	}
	f.state = FileValid
	f.file = &file
	f.errorMsg = ""
	return nil
}

// State returns the file field state.
func (f *Form) State() FileState {
	return f.state
}

// ErrorMessage returns the inline file error, or "" when there is none.
func (f *Form) ErrorMessage() string {
	return f.errorMsg
}

// File returns the accepted receipt, if any.
func (f *Form) File() (File, bool) {
	if f.state != FileValid || f.file == nil {
		return File{}, false
	}
	return *f.file, true
}

// SetFields replaces the entered values.
func (f *Form) SetFields(fields Fields) {
	f.fields = fields
}

// Fields returns the entered values.
func (f *Form) Fields() Fields {
	return f.fields
}

// Submit sends the draft to the store and navigates back to the bills list.
// Entered values are kept on the form whatever the outcome.
func (f *Form) Submit(ctx context.Context, fields Fields) (*models.Bill, error) {
	f.fields = fields
	if f.state != FileValid || f.file == nil {
		return nil, ErrNoValidFile
	}

	values := fields.withDefaults()
	if err := values.validate(); err != nil {
		return nil, err
	}

	userHash := logger.HashEmail(f.session.Email)
	ctx, span := tracer.Start(ctx, "newbill.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("user.hash", userHash))

	draft := models.Bill{
		Email:      f.session.Email,
		Type:       values.Type,
		Name:       values.Name,
		VAT:        values.VAT,
		Amount:     values.Amount,
		Pct:        values.Pct,
		Date:       values.Date,
		Commentary: values.Commentary,
		FileName:   f.file.Name,
	}
	upload := store.Upload{Name: f.file.Name, ContentType: f.file.ContentType, Data: f.file.Data}

	bill, err := f.store.Create(ctx, draft, upload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "error")))
		logger.Log.Error().Err(err).
			Str("user_hash", userHash).
			Msg("Failed to create bill")
		return nil, store.AsFetchError("create", err)
	}

	submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "ok")))
	logger.Log.Info().
		Str("user_hash", userHash).
		Str("bill_id", bill.ID).
		Msg("Bill created")

	f.navigate(routes.Bills)
	return bill, nil
}

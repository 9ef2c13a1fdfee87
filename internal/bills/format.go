package bills

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gitlab.com/yelinaung/billed/internal/models"
)

// ErrMalformedDate is returned by FormatDate for unparseable dates.
var ErrMalformedDate = errors.New("malformed bill date")

// ErrUnknownStatus is returned by FormatStatus for statuses outside the known set.
var ErrUnknownStatus = errors.New("unknown bill status")

// Short French month labels: first three letters, capitalised, then a dot.
var frenchMonths = [12]string{
	"Jan.", "Fév.", "Mar.", "Avr.", "Mai.", "Jui.",
	"Jui.", "Aoû.", "Sep.", "Oct.", "Nov.", "Déc.",
}

var statusLabels = map[models.BillStatus]string{
	models.BillStatusPending:  "En attente",
	models.BillStatusAccepted: "Accepté",
	models.BillStatusRefused:  "Refusé",
}

// ParseDate accepts a YYYY-MM-DD date or an RFC 3339 timestamp.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if d, err := time.Parse(time.DateOnly, raw); err == nil {
		return d, nil
	}
	if d, err := time.Parse(time.RFC3339, raw); err == nil {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, raw)
}

// FormatDate renders a raw bill date like "4 Avr. 04".
func FormatDate(raw string) (string, error) {
	d, err := ParseDate(raw)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %s %02d", d.Day(), frenchMonths[d.Month()-1], d.Year()%100), nil
}

// FormatStatus returns the display label of a status.
func FormatStatus(status models.BillStatus) (string, error) {
	label, ok := statusLabels[status]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	return label, nil
}

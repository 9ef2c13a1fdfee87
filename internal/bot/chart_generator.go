package bot

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-analyze/charts"
	"gitlab.com/yelinaung/billed/internal/bills"
)

var errNoBills = errors.New("no bills to chart")

// GenerateBillsChart creates a pie chart of the bill amounts per expense type.
// Returns PNG image as bytes.
func GenerateBillsChart(rows []bills.Row) ([]byte, error) {
	totals := bills.TotalsByType(rows)

	names := make([]string, 0, len(totals))
	for name, total := range totals {
		if total.IsPositive() {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, errNoBills
	}
	slices.Sort(names)

	values := make([]float64, len(names))
	for i, name := range names {
		values[i] = totals[name].InexactFloat64()
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: "Notes de frais par type",
		}),
		charts.LegendLabelsOptionFunc(names),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf, nil
}

// chartFilename creates a filename like "notes_2026-01-31.png".
func chartFilename(now time.Time) string {
	return fmt.Sprintf("notes_%s.png", now.Format(time.DateOnly))
}

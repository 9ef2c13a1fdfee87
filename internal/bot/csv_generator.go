package bot

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"gitlab.com/yelinaung/billed/internal/bills"
)

// GenerateBillsCSV generates a CSV file from the rows of the bills list.
func GenerateBillsCSV(rows []bills.Row) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"ID", "Date", "Type", "Nom", "Montant", "TVA", "Pct", "Statut", "Commentaire", "Justificatif"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range rows {
		r := &rows[i]
		record := []string{
			r.ID,
			r.Date,
			r.Type,
			r.Name,
			r.Amount.StringFixed(2),
			r.VAT.StringFixed(2),
			strconv.Itoa(r.Pct),
			r.DisplayStatus,
			r.Commentary,
			r.FileURL,
		}

		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// exportFilename creates a filename like "notes_2026-01-31.csv".
func exportFilename(now time.Time) string {
	return fmt.Sprintf("notes_%s.csv", now.Format(time.DateOnly))
}

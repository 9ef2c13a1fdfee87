package bot

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/billed/internal/bills"
	"gitlab.com/yelinaung/billed/internal/models"
)

func TestGenerateBillsCSV(t *testing.T) {
	t.Parallel()

	rows := []bills.Row{
		{
			Bill: models.Bill{
				ID:         "47qAXb6fIm2zOKkLzMro",
				Date:       "2004-04-04",
				Type:       "Hôtel et logement",
				Name:       "encore",
				Amount:     decimal.NewFromInt(400),
				VAT:        decimal.NewFromInt(80),
				Pct:        20,
				Commentary: "séminaire, jour 2",
				FileURL:    "http://localhost:8080/receipts/a.png",
			},
			DisplayStatus: "En attente",
		},
	}

	data, err := GenerateBillsCSV(rows)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Montant", records[0][4])
	require.Equal(t, []string{
		"47qAXb6fIm2zOKkLzMro", "2004-04-04", "Hôtel et logement", "encore",
		"400.00", "80.00", "20", "En attente", "séminaire, jour 2", "http://localhost:8080/receipts/a.png",
	}, records[1])
}

func TestGenerateBillsCSV_Empty(t *testing.T) {
	t.Parallel()

	data, err := GenerateBillsCSV(nil)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/billed/internal/database"
	"gitlab.com/yelinaung/billed/internal/models"
)

func setupBillTest(t *testing.T) (*BillRepository, context.Context) {
	t.Helper()

	tx := database.TestTx(t)
	return NewBillRepository(tx), context.Background()
}

func newTestBill(email, date string) *models.Bill {
	return &models.Bill{
		Email:    email,
		Type:     "Hôtel et logement",
		Name:     "encore",
		VAT:      decimal.NewFromInt(80),
		Amount:   decimal.NewFromInt(400),
		Pct:      20,
		Date:     date,
		FileURL:  "https://example.com/receipts/x.jpg",
		FileName: "preview-facture-free-201801-pdf-1.jpg",
	}
}

func TestBillRepository_Create(t *testing.T) {
	repo, ctx := setupBillTest(t)

	t.Run("assigns id and pending status", func(t *testing.T) {
		bill := newTestBill("a@a", "2004-04-04")

		err := repo.Create(ctx, bill)
		require.NoError(t, err)
		require.NotEmpty(t, bill.ID)
		require.Equal(t, models.BillStatusPending, bill.Status)
		require.False(t, bill.CreatedAt.IsZero())
	})

	t.Run("keeps a caller supplied id", func(t *testing.T) {
		bill := newTestBill("a@a", "2003-03-03")
		bill.ID = "47qAXb6fIm2zOKkLzMro"

		require.NoError(t, repo.Create(ctx, bill))
		require.Equal(t, "47qAXb6fIm2zOKkLzMro", bill.ID)
	})
}

func TestBillRepository_GetByID(t *testing.T) {
	repo, ctx := setupBillTest(t)

	bill := newTestBill("a@a", "2004-04-04")
	bill.Commentary = "séminaire billed"
	require.NoError(t, repo.Create(ctx, bill))

	t.Run("retrieves existing bill", func(t *testing.T) {
		fetched, err := repo.GetByID(ctx, bill.ID)
		require.NoError(t, err)
		require.Equal(t, bill.ID, fetched.ID)
		require.True(t, bill.Amount.Equal(fetched.Amount))
		require.True(t, bill.VAT.Equal(fetched.VAT))
		require.Equal(t, "séminaire billed", fetched.Commentary)
		require.Equal(t, "2004-04-04", fetched.Date)
		require.Equal(t, models.BillStatusPending, fetched.Status)
	})

	t.Run("returns ErrBillNotFound for unknown id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		require.ErrorIs(t, err, ErrBillNotFound)
	})
}

func TestBillRepository_ListByEmail(t *testing.T) {
	repo, ctx := setupBillTest(t)

	for _, date := range []string{"2004-04-04", "2002-02-02", "2003-03-03", "2001-01-01"} {
		require.NoError(t, repo.Create(ctx, newTestBill("a@a", date)))
	}
	require.NoError(t, repo.Create(ctx, newTestBill("other@a", "2005-05-05")))

	t.Run("returns only the owner's bills in arrival order", func(t *testing.T) {
		bills, err := repo.ListByEmail(ctx, "a@a")
		require.NoError(t, err)
		require.Len(t, bills, 4)
		for _, b := range bills {
			require.Equal(t, "a@a", b.Email)
		}
	})

	t.Run("matches email case-insensitively", func(t *testing.T) {
		bills, err := repo.ListByEmail(ctx, "A@A")
		require.NoError(t, err)
		require.Len(t, bills, 4)
	})

	t.Run("returns empty for unknown owner", func(t *testing.T) {
		bills, err := repo.ListByEmail(ctx, "nobody@a")
		require.NoError(t, err)
		require.Empty(t, bills)
	})
}

func TestBillRepository_UpdateStatus(t *testing.T) {
	repo, ctx := setupBillTest(t)

	bill := newTestBill("a@a", "2004-04-04")
	require.NoError(t, repo.Create(ctx, bill))

	t.Run("accepts a bill", func(t *testing.T) {
		require.NoError(t, repo.UpdateStatus(ctx, bill.ID, models.BillStatusAccepted))

		fetched, err := repo.GetByID(ctx, bill.ID)
		require.NoError(t, err)
		require.Equal(t, models.BillStatusAccepted, fetched.Status)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, bill.ID, "approved")
		require.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("returns ErrBillNotFound for unknown id", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, "missing", models.BillStatusRefused)
		require.ErrorIs(t, err, ErrBillNotFound)
	})
}

package bills

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/billed/internal/models"
	"gitlab.com/yelinaung/billed/internal/routes"
	"gitlab.com/yelinaung/billed/internal/session"
	"gitlab.com/yelinaung/billed/internal/store"
	"gitlab.com/yelinaung/billed/internal/store/storetest"
	"pgregory.net/rapid"
)

var employee = session.Session{Type: models.UserTypeEmployee, Email: storetest.FixtureEmail}

func TestGetBills_OrdersNewestFirst(t *testing.T) {
	t.Parallel()

	fake := storetest.NewFake(storetest.Fixtures()...)
	list := New(fake, employee, nil)

	rows, err := list.GetBills(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 4)

	dates := make([]string, 0, len(rows))
	for _, r := range rows {
		dates = append(dates, r.Date)
	}
	require.Equal(t, []string{"2004-04-04", "2003-03-03", "2002-02-02", "2001-01-01"}, dates)

	first := rows[0]
	assert.True(t, first.Formatted)
	assert.Equal(t, "4 Avr. 04", first.DisplayDate)
	assert.Equal(t, "En attente", first.DisplayStatus)
	assert.Equal(t, "encore", first.Name)

	require.Equal(t, []string{storetest.FixtureEmail}, fake.ListCalls)
}

func TestGetBills_Empty(t *testing.T) {
	t.Parallel()

	list := New(storetest.NewFake(), employee, nil)

	rows, err := list.GetBills(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

func TestGetBills_FetchErrors(t *testing.T) {
	t.Parallel()

	for _, msg := range []string{"Erreur 404", "Erreur 500"} {
		t.Run(msg, func(t *testing.T) {
			t.Parallel()

			cause := errors.New(msg)
			fake := storetest.NewFake(storetest.Fixtures()...)
			fake.ListError = cause

			rows, err := New(fake, employee, nil).GetBills(context.Background())
			require.Nil(t, rows)
			require.Error(t, err)
			require.ErrorIs(t, err, cause)
			require.EqualError(t, err, msg)

			var fetchErr *store.FetchError
			require.ErrorAs(t, err, &fetchErr)
			require.Equal(t, "list", fetchErr.Op)
		})
	}
}

func TestGetBills_FailOpenFormatting(t *testing.T) {
	t.Parallel()

	corrupt := models.Bill{
		ID:     "corrupt",
		Email:  storetest.FixtureEmail,
		Date:   "yesterday",
		Status: models.BillStatusAccepted,
		Amount: decimal.NewFromInt(10),
	}
	unknown := models.Bill{
		ID:     "unknown-status",
		Email:  storetest.FixtureEmail,
		Date:   "2010-10-10",
		Status: "archived",
	}
	fake := storetest.NewFake(append(storetest.Fixtures(), corrupt, unknown)...)

	rows, err := New(fake, employee, nil).GetBills(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 6)

	byID := make(map[string]Row, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}

	got := byID["corrupt"]
	assert.False(t, got.Formatted)
	assert.Equal(t, "yesterday", got.DisplayDate)
	assert.Equal(t, "accepted", got.DisplayStatus)

	got = byID["unknown-status"]
	assert.False(t, got.Formatted)
	assert.Equal(t, "2010-10-10", got.DisplayDate)
	assert.Equal(t, "archived", got.DisplayStatus)

	assert.True(t, byID["47qAXb6fIm2zOKkLzMro"].Formatted)
}

func TestGetBills_DoesNotMutateStoreSlice(t *testing.T) {
	t.Parallel()

	fixtures := storetest.Fixtures()
	fake := storetest.NewFake(fixtures...)

	_, err := New(fake, employee, nil).GetBills(context.Background())
	require.NoError(t, err)
	require.Equal(t, fixtures, fake.Bills)
}

func TestSortByDateDesc_Stable(t *testing.T) {
	t.Parallel()

	bills := []models.Bill{
		{ID: "a", Date: "2020-01-01"},
		{ID: "b", Date: "2021-01-01"},
		{ID: "c", Date: "2020-01-01"},
		{ID: "d", Date: "2021-01-01"},
	}
	SortByDateDesc(bills)

	ids := make([]string, 0, len(bills))
	for _, b := range bills {
		ids = append(ids, b.ID)
	}
	require.Equal(t, []string{"b", "d", "a", "c"}, ids)
}

func TestSortByDateDesc_Property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		dates := rapid.SliceOf(rapid.SampledFrom([]string{
			"2001-01-01", "2002-02-02", "2003-03-03", "2004-04-04", "2004-04-05", "garbage",
		})).Draw(t, "dates")

		bills := make([]models.Bill, len(dates))
		for i, d := range dates {
			bills[i] = models.Bill{ID: fmt.Sprintf("%03d", i), Date: d}
		}
		SortByDateDesc(bills)

		for i := 1; i < len(bills); i++ {
			prev, cur := bills[i-1], bills[i]
			if prev.Date < cur.Date {
				t.Fatalf("not descending at %d: %q before %q", i, prev.Date, cur.Date)
			}
			if prev.Date == cur.Date && prev.ID > cur.ID {
				t.Fatalf("unstable at %d: %s before %s", i, prev.ID, cur.ID)
			}
		}
	})
}

func TestReceiptPreview(t *testing.T) {
	t.Parallel()

	list := New(storetest.NewFake(), employee, nil)

	_, ok := list.Previewed()
	require.False(t, ok)

	bill := storetest.Fixtures()[0]
	p := list.OpenReceipt(bill)
	require.Equal(t, bill.FileURL, p.FileURL)
	require.Equal(t, bill.FileName, p.FileName)

	got, ok := list.Previewed()
	require.True(t, ok)
	require.Equal(t, bill.ID, got.BillID)

	list.CloseReceipt()
	_, ok = list.Previewed()
	require.False(t, ok)
}

func TestNewBill_Navigates(t *testing.T) {
	t.Parallel()

	rec := &routes.Recorder{}
	list := New(storetest.NewFake(), employee, rec.Navigate)

	list.NewBill()
	require.Equal(t, []string{routes.NewBill}, rec.Paths)
}

func TestTotalsByType(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{Bill: models.Bill{Type: "Transports", Amount: decimal.NewFromInt(100)}},
		{Bill: models.Bill{Type: "Transports", Amount: decimal.RequireFromString("20.5")}},
		{Bill: models.Bill{Amount: decimal.NewFromInt(3)}},
	}

	totals := TotalsByType(rows)
	require.True(t, decimal.RequireFromString("120.5").Equal(totals["Transports"]))
	require.True(t, decimal.NewFromInt(3).Equal(totals["Autre"]))
}

// Package storetest provides an in-memory BillStore with call recording for tests.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/billed/internal/models"
	"gitlab.com/yelinaung/billed/internal/store"
)

// CreateCall captures one Create invocation.
type CreateCall struct {
	Draft models.Bill
	File  store.Upload
}

// Fake is an in-memory BillStore.
type Fake struct {
	mu sync.Mutex

	Bills       []models.Bill
	ListCalls   []string
	CreateCalls []CreateCall

	// ListError makes List fail with this error.
	ListError error
	// CreateError makes Create fail with this error.
	CreateError error

	nextID int
}

var _ store.BillStore = (*Fake)(nil)

// NewFake creates a Fake holding a copy of bills.
func NewFake(bills ...models.Bill) *Fake {
	return &Fake{Bills: append([]models.Bill(nil), bills...)}
}

// List returns the bills owned by email in insertion order.
func (f *Fake) List(_ context.Context, email string) ([]models.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ListCalls = append(f.ListCalls, email)
	if f.ListError != nil {
		return nil, f.ListError
	}

	out := []models.Bill{}
	for _, b := range f.Bills {
		if email == "" || strings.EqualFold(b.Email, email) {
			out = append(out, b)
		}
	}
	return out, nil
}

// Create stores the draft as a pending bill.
func (f *Fake) Create(_ context.Context, draft models.Bill, file store.Upload) (*models.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.CreateCalls = append(f.CreateCalls, CreateCall{Draft: draft, File: file})
	if f.CreateError != nil {
		return nil, f.CreateError
	}

	f.nextID++
	bill := draft
	bill.ID = fmt.Sprintf("fake-%d", f.nextID)
	bill.Status = models.BillStatusPending
	bill.FileName = file.Name
	bill.FileURL = "https://localhost:3456/images/" + file.Name
	f.Bills = append(f.Bills, bill)
	return &bill, nil
}

// CreateCount returns the number of Create calls.
func (f *Fake) CreateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.CreateCalls)
}

// ListCount returns the number of List calls.
func (f *Fake) ListCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ListCalls)
}

// FixtureEmail owns every fixture bill.
const FixtureEmail = "a@a"

// Fixtures returns four bills owned by FixtureEmail, dated
// 2004-04-04, 2002-02-02, 2003-03-03 and 2001-01-01 in that order.
func Fixtures() []models.Bill {
	return []models.Bill{
		{
			ID:         "47qAXb6fIm2zOKkLzMro",
			Email:      FixtureEmail,
			Type:       "Hôtel et logement",
			Name:       "encore",
			VAT:        decimal.NewFromInt(80),
			Amount:     decimal.NewFromInt(400),
			Pct:        20,
			Date:       "2004-04-04",
			Commentary: "séminaire billed",
			FileURL:    "https://test.storage.tld/v0/b/billable-677b6.a…f-1.jpg?alt=media&token=c1640e12-a24b-4b11-ae52-529112e9602a",
			FileName:   "preview-facture-free-201801-pdf-1.jpg",
			Status:     models.BillStatusPending,
		},
		{
			ID:       "qcCK3SzECmaZAGRrHjaC",
			Email:    FixtureEmail,
			Type:     "Restaurants et bars",
			Name:     "test2",
			VAT:      decimal.NewFromInt(40),
			Amount:   decimal.NewFromInt(200),
			Pct:      20,
			Date:     "2002-02-02",
			FileURL:  "https://test.storage.tld/v0/b/billable-677b6.a…f-1.jpg?alt=media&token=4df6ed2c-12c8-42a2-b013-346c1346f732",
			FileName: "preview-facture-free-201801-pdf-1.jpg",
			Status:   models.BillStatusRefused,
		},
		{
			ID:         "UIUZtnPQvnbFnB0ozvJh",
			Email:      FixtureEmail,
			Type:       "Services en ligne",
			Name:       "test3",
			VAT:        decimal.NewFromInt(60),
			Amount:     decimal.NewFromInt(300),
			Pct:        20,
			Date:       "2003-03-03",
			Commentary: "",
			FileURL:    "https://test.storage.tld/v0/b/billable-677b6.a…f-1.jpg?alt=media&token=e7f3cc54-5a0e-4b5c-b9e1-6f1a0f1d6a52",
			FileName:   "facture-client-php-exportee-dans-document-pdf-enregistre-sur-disque-dur.png",
			Status:     models.BillStatusAccepted,
		},
		{
			ID:       "BeKy5Mo4jkmdfPGYpTxZ",
			Email:    FixtureEmail,
			Type:     "Transports",
			Name:     "test1",
			Amount:   decimal.NewFromInt(100),
			Pct:      20,
			Date:     "2001-01-01",
			FileURL:  "https://test.storage.tld/v0/b/billable-677b6.a…61.jpeg?alt=media&token=7685cd61-c112-42bc-9929-8a799bb82d8b",
			FileName: "1592770761.jpeg",
			Status:   models.BillStatusRefused,
		},
	}
}

package store

import (
	"context"
	"errors"
	"fmt"

	"gitlab.com/yelinaung/billed/internal/logger"
	"gitlab.com/yelinaung/billed/internal/models"
	"gitlab.com/yelinaung/billed/internal/receipts"
	"gitlab.com/yelinaung/billed/internal/repository"
)

// ErrMissingOwner is returned when a draft has no owner email.
var ErrMissingOwner = errors.New("bill owner email is required")

// Local is the BillStore backed by PostgreSQL and the receipt storage.
type Local struct {
	bills     *repository.BillRepository
	receipts  *receipts.Storage
	publicURL string
}

// NewLocal creates a Local store. File URLs are built from publicURL.
func NewLocal(bills *repository.BillRepository, storage *receipts.Storage, publicURL string) *Local {
	return &Local{bills: bills, receipts: storage, publicURL: publicURL}
}

// List returns the bills owned by email.
func (l *Local) List(ctx context.Context, email string) ([]models.Bill, error) {
	bills, err := l.bills.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if bills == nil {
		bills = []models.Bill{}
	}
	return bills, nil
}

// Create stores the receipt, then persists the bill as pending. The receipt
// is removed again when the bill cannot be persisted.
func (l *Local) Create(ctx context.Context, draft models.Bill, file Upload) (*models.Bill, error) {
	if draft.Email == "" {
		return nil, ErrMissingOwner
	}

	key, err := l.receipts.Save(ctx, file.Name, file.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store receipt: %w", err)
	}

	bill := draft
	bill.ID = ""
	bill.Status = models.BillStatusPending
	bill.FileName = file.Name
	bill.FileURL = l.ReceiptURL(key)

	if err := l.bills.Create(ctx, &bill); err != nil {
		if rmErr := l.receipts.Delete(key); rmErr != nil {
			logger.Log.Error().Err(rmErr).Str("key", key).Msg("Failed to remove orphan receipt")
		}
		return nil, err
	}
	return &bill, nil
}

// UpdateStatus applies an approver decision to a bill.
func (l *Local) UpdateStatus(ctx context.Context, id string, status models.BillStatus) (*models.Bill, error) {
	if err := l.bills.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return l.bills.GetByID(ctx, id)
}

// Receipt returns the stored receipt content for key.
func (l *Local) Receipt(key string) ([]byte, error) {
	return l.receipts.Read(key)
}

// ReceiptURL returns the public URL of a stored receipt.
func (l *Local) ReceiptURL(key string) string {
	return l.publicURL + "/receipts/" + key
}

var _ BillStore = (*Local)(nil)

// Package store defines the remote bill store used by the bills list and the new bill form.
package store

import (
	"context"
	"errors"

	"gitlab.com/yelinaung/billed/internal/models"
)

// Upload is a receipt file attached to a new bill.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// BillStore exposes the bill operations of the remote store.
type BillStore interface {
	// List returns the bills owned by email.
	List(ctx context.Context, email string) ([]models.Bill, error)
	// Create persists draft with its receipt and returns the stored bill,
	// which carries an ID, the pending status and a file URL.
	Create(ctx context.Context, draft models.Bill, file Upload) (*models.Bill, error)
}

// FetchError reports that the remote store rejected an operation.
// Its message is the cause's message, unchanged.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return "fetch failed"
	}
	return e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsFetchError wraps err in a FetchError for op. A FetchError is returned as is
// and nil stays nil.
func AsFetchError(op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Op: op, Err: err}
}

// IsFetchError reports whether err came from the remote store.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

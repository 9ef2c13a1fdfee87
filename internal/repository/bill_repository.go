// Package repository implements PostgreSQL persistence for bills and employees.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/billed/internal/database"
	"gitlab.com/yelinaung/billed/internal/models"
)

// ErrBillNotFound is returned when no bill matches the requested ID.
var ErrBillNotFound = errors.New("bill not found")

// ErrInvalidStatus is returned when a status update names an unknown status.
var ErrInvalidStatus = errors.New("invalid bill status")

const billColumns = `id, email, type, name, vat, amount, pct, date, commentary,
	file_url, file_name, status, created_at`

// BillRepository handles bill database operations.
type BillRepository struct {
	db database.PGXDB
}

// NewBillRepository creates a new BillRepository.
func NewBillRepository(db database.PGXDB) *BillRepository {
	return &BillRepository{db: db}
}

// Create persists a bill. A UUID is assigned when the bill has no ID and the
// status defaults to pending.
func (r *BillRepository) Create(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.NewString()
	}
	if bill.Status == "" {
		bill.Status = models.BillStatusPending
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO bills (id, email, type, name, vat, amount, pct, date, commentary, file_url, file_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`, bill.ID, bill.Email, bill.Type, bill.Name, bill.VAT, bill.Amount, bill.Pct, bill.Date,
		bill.Commentary, bill.FileURL, bill.FileName, string(bill.Status),
	).Scan(&bill.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

// GetByID retrieves a bill by ID.
func (r *BillRepository) GetByID(ctx context.Context, id string) (*models.Bill, error) {
	row := r.db.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id = $1`, id)
	bill, err := scanBill(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBillNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// ListByEmail retrieves the bills owned by email in arrival order.
func (r *BillRepository) ListByEmail(ctx context.Context, email string) ([]models.Bill, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+billColumns+`
		FROM bills
		WHERE LOWER(email) = LOWER($1)
		ORDER BY created_at ASC, id ASC
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	return scanBills(rows)
}

// UpdateStatus moves a bill to the given status on behalf of the approver workflow.
func (r *BillRepository) UpdateStatus(ctx context.Context, id string, status models.BillStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE bills SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update bill status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBillNotFound
	}
	return nil
}

func scanBill(row pgx.Row) (*models.Bill, error) {
	var bill models.Bill
	var status string
	if err := row.Scan(
		&bill.ID, &bill.Email, &bill.Type, &bill.Name, &bill.VAT, &bill.Amount, &bill.Pct, &bill.Date,
		&bill.Commentary, &bill.FileURL, &bill.FileName, &status, &bill.CreatedAt,
	); err != nil {
		return nil, err
	}
	bill.Status = models.BillStatus(status)
	return &bill, nil
}

// scanBills is a helper to scan bill rows.
func scanBills(rows pgx.Rows) ([]models.Bill, error) {
	var bills []models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, *bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bills: %w", err)
	}
	return bills, nil
}

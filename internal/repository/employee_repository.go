package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/billed/internal/database"
	"gitlab.com/yelinaung/billed/internal/models"
)

// ErrEmployeeNotFound is returned when a Telegram account has no linked email.
var ErrEmployeeNotFound = errors.New("employee not found")

// EmployeeRepository links Telegram accounts to employee emails.
type EmployeeRepository struct {
	db database.PGXDB
}

// NewEmployeeRepository creates a new EmployeeRepository.
func NewEmployeeRepository(db database.PGXDB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Upsert creates or updates the email linked to a Telegram account.
func (r *EmployeeRepository) Upsert(ctx context.Context, telegramID int64, email string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO employees (telegram_id, email, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (telegram_id) DO UPDATE SET
			email = EXCLUDED.email,
			updated_at = NOW()
	`, telegramID, strings.TrimSpace(email))
	if err != nil {
		return fmt.Errorf("failed to upsert employee: %w", err)
	}
	return nil
}

// GetByTelegramID retrieves the employee linked to a Telegram account.
func (r *EmployeeRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.Employee, error) {
	var emp models.Employee
	err := r.db.QueryRow(ctx, `
		SELECT telegram_id, email, created_at, updated_at
		FROM employees WHERE telegram_id = $1
	`, telegramID).Scan(&emp.TelegramID, &emp.Email, &emp.CreatedAt, &emp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &emp, nil
}

// Delete unlinks a Telegram account.
func (r *EmployeeRepository) Delete(ctx context.Context, telegramID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM employees WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}

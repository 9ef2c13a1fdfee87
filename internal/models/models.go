// Package models defines the domain entities for the expense-report service.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPct is the percentage applied when the form leaves it empty.
const DefaultPct = 20

// MaxCommentaryLength is the maximum allowed length for bill commentaries.
const MaxCommentaryLength = 500

// MaxReceiptSize bounds the size of a receipt file in bytes.
const MaxReceiptSize = 10 << 20

// BillStatus represents the approval state of a bill.
type BillStatus string

// Bill statuses. Transitions out of pending are made by the approver workflow.
const (
	BillStatusPending  BillStatus = "pending"
	BillStatusAccepted BillStatus = "accepted"
	BillStatusRefused  BillStatus = "refused"
)

// Valid reports whether s is one of the known statuses.
func (s BillStatus) Valid() bool {
	switch s {
	case BillStatusPending, BillStatusAccepted, BillStatusRefused:
		return true
	default:
		return false
	}
}

// ExpenseTypes lists the expense classifications offered by the new bill form.
var ExpenseTypes = []string{
	"Transports",
	"Restaurants et bars",
	"Hôtel et logement",
	"Services en ligne",
	"IT et électronique",
	"Equipement et matériel",
	"Fournitures de bureau",
}

// User types stored in the session.
const (
	UserTypeEmployee = "Employee"
	UserTypeAdmin    = "Admin"
)

// Bill represents an expense report submitted by an employee.
type Bill struct {
	ID         string          `json:"id,omitempty"`
	Email      string          `json:"email"`
	Type       string          `json:"type"`
	Name       string          `json:"name"`
	VAT        decimal.Decimal `json:"vat"`
	Amount     decimal.Decimal `json:"amount"`
	Pct        int             `json:"pct"`
	Date       string          `json:"date"`
	Commentary string          `json:"commentary"`
	FileURL    string          `json:"fileUrl"`
	FileName   string          `json:"fileName"`
	Status     BillStatus      `json:"status"`
	CreatedAt  time.Time       `json:"createdAt,omitzero"`
}

// IsDraft reports whether the bill has not been persisted yet.
func (b *Bill) IsDraft() bool {
	return b.ID == ""
}

// Employee links a Telegram account to an employee email.
type Employee struct {
	TelegramID int64
	Email      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

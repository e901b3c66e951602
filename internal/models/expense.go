package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/event-crm/internal/apperr"
)

// Expense is a cost, optionally tied to one lead's event.
//
// LeadName is a snapshot of the lead's name taken when the expense was
// linked; it is not kept in sync with later renames.
type Expense struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Concept     string          `json:"concepto"`
	Description string          `json:"descripcion,omitempty"`
	Category    ExpenseCategory `json:"categoria"`
	Amount      decimal.Decimal `json:"monto"`

	LeadID   *uuid.UUID `json:"lead_id,omitempty"`
	LeadName string     `json:"lead_nombre,omitempty"`

	Provider      string        `json:"proveedor,omitempty"`
	Status        ExpenseStatus `json:"status"`
	PaidAt        *time.Time    `json:"fecha_pago,omitempty"`
	InvoiceNumber string        `json:"factura_numero,omitempty"`
	PaymentMethod string        `json:"metodo_pago,omitempty"`
	Notes         string        `json:"notas,omitempty"`
}

// NewExpense holds the fields accepted when creating an expense.
type NewExpense struct {
	Concept       string
	Description   string
	Category      ExpenseCategory
	Amount        decimal.Decimal
	LeadID        *uuid.UUID
	Provider      string
	Status        ExpenseStatus
	PaidAt        *time.Time
	InvoiceNumber string
	PaymentMethod string
	Notes         string
}

// Normalize trims text and defaults the status to pending.
func (n *NewExpense) Normalize() {
	n.Concept = strings.TrimSpace(n.Concept)
	if n.Status == "" {
		n.Status = ExpenseStatusPending
	}
	if n.LeadID != nil && *n.LeadID == uuid.Nil {
		n.LeadID = nil
	}
}

// Validate checks required fields, enums and the amount.
func (n *NewExpense) Validate() error {
	if n.Concept == "" {
		return apperr.Invalid("concepto", "is required")
	}
	if !n.Category.Valid() {
		return apperr.Invalid("categoria", "must be one of %s", joinValues(ExpenseCategories))
	}
	if n.Amount.IsNegative() {
		return apperr.Invalid("monto", "must not be negative")
	}
	if !n.Status.Valid() {
		return apperr.Invalid("status", "must be one of %s", joinValues(ExpenseStatuses))
	}
	return nil
}

// ExpenseUpdate is a partial update; nil fields are left untouched.
// Setting LeadID to uuid.Nil unlinks the expense.
type ExpenseUpdate struct {
	Concept       *string
	Description   *string
	Category      *ExpenseCategory
	Amount        *decimal.Decimal
	LeadID        *uuid.UUID
	Provider      *string
	Status        *ExpenseStatus
	PaidAt        *time.Time
	InvoiceNumber *string
	PaymentMethod *string
	Notes         *string
}

// IsEmpty reports whether the update sets nothing.
func (u *ExpenseUpdate) IsEmpty() bool {
	return *u == ExpenseUpdate{}
}

// Validate checks the fields that are being set.
func (u *ExpenseUpdate) Validate() error {
	if u.Concept != nil && strings.TrimSpace(*u.Concept) == "" {
		return apperr.Invalid("concepto", "is required")
	}
	if u.Category != nil && !u.Category.Valid() {
		return apperr.Invalid("categoria", "must be one of %s", joinValues(ExpenseCategories))
	}
	if u.Amount != nil && u.Amount.IsNegative() {
		return apperr.Invalid("monto", "must not be negative")
	}
	if u.Status != nil && !u.Status.Valid() {
		return apperr.Invalid("status", "must be one of %s", joinValues(ExpenseStatuses))
	}
	return nil
}

// ExpenseFilter narrows an expense listing.
type ExpenseFilter struct {
	LeadID   *uuid.UUID
	Category *ExpenseCategory
	Status   *ExpenseStatus
}

package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gitlab.com/yelinaung/event-crm/internal/apperr"
	"gitlab.com/yelinaung/event-crm/internal/database"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

const expenseColumns = `id, created_at, updated_at, concepto, descripcion, categoria, monto,
	lead_id, lead_nombre, proveedor, status, fecha_pago, factura_numero, metodo_pago, notas`

// ExpenseRepository handles expense database operations.
type ExpenseRepository struct {
	db database.PGXDB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db database.PGXDB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// List returns expenses matching filter, newest first.
func (r *ExpenseRepository) List(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, error) {
	var w whereBuilder
	if filter.LeadID != nil {
		w.add("lead_id = $%d", *filter.LeadID)
	}
	if filter.Category != nil {
		w.add("categoria = $%d", *filter.Category)
	}
	if filter.Status != nil {
		w.add("status = $%d", *filter.Status)
	}

	rows, err := r.db.Query(ctx, `SELECT `+expenseColumns+` FROM expenses`+w.clause()+` ORDER BY created_at DESC, id`, w.args...)
	if err != nil {
		return nil, translate("query expenses", err)
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		exp, err := scanExpense(rows)
		if err != nil {
			return nil, translate("scan expense", err)
		}
		expenses = append(expenses, *exp)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("iterate expenses", err)
	}
	return expenses, nil
}

// GetByID retrieves an expense by ID.
func (r *ExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	exp, err := scanExpense(r.db.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id))
	if err != nil {
		return nil, translate("get expense "+id.String(), err)
	}
	return exp, nil
}

// Create inserts an expense. leadName is the snapshot of the linked lead's
// name and is ignored when the expense has no lead.
func (r *ExpenseRepository) Create(ctx context.Context, in *models.NewExpense, leadName string) (*models.Expense, error) {
	if in.LeadID == nil {
		leadName = ""
	}
	exp, err := scanExpense(r.db.QueryRow(ctx, `
		INSERT INTO expenses (concepto, descripcion, categoria, monto, lead_id, lead_nombre,
			proveedor, status, fecha_pago, factura_numero, metodo_pago, notas)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+expenseColumns,
		in.Concept, in.Description, in.Category, in.Amount, in.LeadID, leadName,
		in.Provider, in.Status, in.PaidAt, in.InvoiceNumber, in.PaymentMethod, in.Notes,
	))
	if err != nil {
		return nil, translate("create expense", err)
	}
	return exp, nil
}

// Update applies a partial update. When u relinks the expense, leadName is
// stored as the new snapshot; uuid.Nil unlinks and clears it.
func (r *ExpenseRepository) Update(ctx context.Context, id uuid.UUID, u *models.ExpenseUpdate, leadName string) (*models.Expense, error) {
	var b updateBuilder
	if u.Concept != nil {
		b.set("concepto", *u.Concept)
	}
	if u.Description != nil {
		b.set("descripcion", *u.Description)
	}
	if u.Category != nil {
		b.set("categoria", *u.Category)
	}
	if u.Amount != nil {
		b.set("monto", *u.Amount)
	}
	if u.LeadID != nil {
		if *u.LeadID == uuid.Nil {
			b.set("lead_id", nil)
			b.set("lead_nombre", "")
		} else {
			b.set("lead_id", *u.LeadID)
			b.set("lead_nombre", leadName)
		}
	}
	if u.Provider != nil {
		b.set("proveedor", *u.Provider)
	}
	if u.Status != nil {
		b.set("status", *u.Status)
	}
	if u.PaidAt != nil {
		b.set("fecha_pago", *u.PaidAt)
	}
	if u.InvoiceNumber != nil {
		b.set("factura_numero", *u.InvoiceNumber)
	}
	if u.PaymentMethod != nil {
		b.set("metodo_pago", *u.PaymentMethod)
	}
	if u.Notes != nil {
		b.set("notas", *u.Notes)
	}

	if b.empty() {
		return r.GetByID(ctx, id)
	}

	sql, args := b.query("expenses", id, expenseColumns)
	exp, err := scanExpense(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate("update expense "+id.String(), err)
	}
	return exp, nil
}

// Delete removes an expense by ID.
func (r *ExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return translate("delete expense", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expense %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	var e models.Expense
	if err := row.Scan(
		&e.ID, &e.CreatedAt, &e.UpdatedAt, &e.Concept, &e.Description, &e.Category, &e.Amount,
		&e.LeadID, &e.LeadName, &e.Provider, &e.Status, &e.PaidAt, &e.InvoiceNumber, &e.PaymentMethod, &e.Notes,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

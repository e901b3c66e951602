// Package repository implements the PostgreSQL store for leads, expenses,
// inventory and notifications.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gitlab.com/yelinaung/event-crm/internal/apperr"
)

// PostgreSQL error codes mapped to validation failures.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// translate maps driver errors onto the application taxonomy: missing rows
// become ErrNotFound, constraint violations become ValidationErrors and
// everything else is a PersistenceError for op.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperr.Invalid(constraintField(pgErr), "already exists")
		case pgForeignKeyViolation:
			return apperr.Invalid(constraintField(pgErr), "references a missing record")
		case pgCheckViolation:
			return apperr.Invalid(constraintField(pgErr), "has an invalid value")
		}
	}
	return apperr.Persistence(op, err)
}

// constraintField guesses the column from a constraint name such as
// "expenses_lead_id_fkey" or "idx_inventory_items_codigo".
func constraintField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	name := strings.TrimSuffix(strings.TrimSuffix(pgErr.ConstraintName, "_fkey"), "_check")
	if pgErr.TableName != "" {
		name = strings.TrimPrefix(name, pgErr.TableName+"_")
		name = strings.TrimPrefix(name, "idx_"+pgErr.TableName+"_")
	}
	return name
}

// updateBuilder collects the SET list of a partial update.
type updateBuilder struct {
	sets []string
	args []any
}

func (b *updateBuilder) set(column string, value any) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func (b *updateBuilder) empty() bool {
	return len(b.sets) == 0
}

// query renders "UPDATE table SET ..., updated_at = NOW() WHERE id = $n
// RETURNING returning" and its arguments, with id appended last.
func (b *updateBuilder) query(table string, id any, returning string) (string, []any) {
	args := append(b.args, id)
	sql := fmt.Sprintf("UPDATE %s SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s",
		table, strings.Join(b.sets, ", "), len(args), returning)
	return sql, args
}

// whereBuilder collects AND-ed filter conditions.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, value any) {
	w.args = append(w.args, value)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

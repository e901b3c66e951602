package database

import (
	"context"
	"fmt"
	"strings"

	"gitlab.com/yelinaung/event-crm/internal/models"
)

// Tables lists the CRM tables in dependency order.
var Tables = []string{"notificaciones", "inventory_items", "expenses", "leads"}

// RunMigrations creates the database schema. Every statement is idempotent.
func RunMigrations(ctx context.Context, db PGXDB) error {
	for i, migration := range migrations() {
		if _, err := db.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

func migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS leads (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			nombre TEXT NOT NULL,
			email TEXT NOT NULL,
			telefono TEXT NOT NULL DEFAULT '',
			mensaje TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'new' ` + check("status", models.LeadStatuses) + `,
			priority TEXT NOT NULL DEFAULT 'media' ` + check("priority", models.LeadPriorities) + `,
			source TEXT NOT NULL DEFAULT 'website' ` + check("source", models.LeadSources) + `,
			estimated_value NUMERIC(14, 2) NOT NULL DEFAULT 0 CHECK (estimated_value >= 0),
			actual_value NUMERIC(14, 2) CHECK (actual_value >= 0),
			event_type TEXT NOT NULL DEFAULT '',
			event_date DATE,
			attendees INTEGER CHECK (attendees >= 0),
			last_contact_date TIMESTAMPTZ,
			next_followup_date TIMESTAMPTZ,
			notes TEXT NOT NULL DEFAULT '',
			assigned_to TEXT NOT NULL DEFAULT '',
			won_at TIMESTAMPTZ,
			lost_reason TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_event_date ON leads(event_date) WHERE status = 'won'`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			concepto TEXT NOT NULL,
			descripcion TEXT NOT NULL DEFAULT '',
			categoria TEXT NOT NULL ` + check("categoria", models.ExpenseCategories) + `,
			monto NUMERIC(14, 2) NOT NULL CHECK (monto >= 0),
			lead_id UUID REFERENCES leads(id) ON DELETE SET NULL,
			lead_nombre TEXT NOT NULL DEFAULT '',
			proveedor TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pendiente' ` + check("status", models.ExpenseStatuses) + `,
			fecha_pago TIMESTAMPTZ,
			factura_numero TEXT NOT NULL DEFAULT '',
			metodo_pago TEXT NOT NULL DEFAULT '',
			notas TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_lead_id ON expenses(lead_id)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_created_at ON expenses(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_categoria ON expenses(categoria)`,

		`CREATE TABLE IF NOT EXISTS inventory_items (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			nombre TEXT NOT NULL,
			descripcion TEXT NOT NULL DEFAULT '',
			categoria TEXT NOT NULL ` + check("categoria", models.InventoryCategories) + `,
			codigo TEXT NOT NULL DEFAULT '',
			cantidad_total INTEGER NOT NULL DEFAULT 0 CHECK (cantidad_total >= 0),
			cantidad_disponible INTEGER NOT NULL DEFAULT 0 CHECK (cantidad_disponible >= 0),
			cantidad_minima INTEGER CHECK (cantidad_minima >= 0),
			status TEXT NOT NULL DEFAULT 'disponible' ` + check("status", models.InventoryStatuses) + `,
			costo_unitario NUMERIC(14, 2) CHECK (costo_unitario >= 0),
			precio_renta NUMERIC(14, 2) CHECK (precio_renta >= 0),
			ubicacion TEXT NOT NULL DEFAULT '',
			proveedor TEXT NOT NULL DEFAULT '',
			notas TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_items_codigo ON inventory_items(codigo) WHERE codigo <> ''`,
		`CREATE INDEX IF NOT EXISTS idx_inventory_items_categoria ON inventory_items(categoria)`,

		`CREATE TABLE IF NOT EXISTS notificaciones (
			id BIGSERIAL PRIMARY KEY,
			mensaje TEXT NOT NULL,
			tipo TEXT NOT NULL DEFAULT 'info' ` + check("tipo", models.NotificationKinds) + `,
			leido BOOLEAN NOT NULL DEFAULT FALSE,
			lead_nombre TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notificaciones_unread ON notificaciones(created_at DESC) WHERE NOT leido`,
	}
}

// check renders a CHECK constraint restricting column to the enum values.
func check[T ~string](column string, values []T) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(string(v), "'", "''") + "'"
	}
	return fmt.Sprintf("CHECK (%s IN (%s))", column, strings.Join(quoted, ", "))
}

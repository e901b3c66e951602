package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/event-crm/internal/apperr"
	"gitlab.com/yelinaung/event-crm/internal/database"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

const inventoryColumns = `id, created_at, updated_at, nombre, descripcion, categoria, codigo,
	cantidad_total, cantidad_disponible, cantidad_minima, status,
	costo_unitario, precio_renta, ubicacion, proveedor, notas`

// InventoryRepository handles inventory database operations.
type InventoryRepository struct {
	db database.PGXDB
}

// NewInventoryRepository creates a new InventoryRepository.
func NewInventoryRepository(db database.PGXDB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// List returns inventory items matching filter, by name.
func (r *InventoryRepository) List(ctx context.Context, filter models.InventoryFilter) ([]models.InventoryItem, error) {
	var w whereBuilder
	if filter.Category != nil {
		w.add("categoria = $%d", *filter.Category)
	}
	if filter.Status != nil {
		w.add("status = $%d", *filter.Status)
	}

	rows, err := r.db.Query(ctx, `SELECT `+inventoryColumns+` FROM inventory_items`+w.clause()+` ORDER BY nombre, id`, w.args...)
	if err != nil {
		return nil, translate("query inventory", err)
	}
	defer rows.Close()

	items := make([]models.InventoryItem, 0)
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, translate("scan inventory item", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("iterate inventory", err)
	}
	return items, nil
}

// GetByID retrieves an inventory item by ID.
func (r *InventoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	item, err := scanInventoryItem(r.db.QueryRow(ctx, `SELECT `+inventoryColumns+` FROM inventory_items WHERE id = $1`, id))
	if err != nil {
		return nil, translate("get inventory item "+id.String(), err)
	}
	return item, nil
}

// Create inserts an item. The input must already be normalized.
func (r *InventoryRepository) Create(ctx context.Context, in *models.NewInventoryItem) (*models.InventoryItem, error) {
	item, err := scanInventoryItem(r.db.QueryRow(ctx, `
		INSERT INTO inventory_items (nombre, descripcion, categoria, codigo, cantidad_total,
			cantidad_disponible, cantidad_minima, status, costo_unitario, precio_renta,
			ubicacion, proveedor, notas)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+inventoryColumns,
		in.Name, in.Description, in.Category, in.Code, in.TotalQty,
		in.AvailableQty, in.MinQty, in.Status, nullDecimal(in.UnitCost), nullDecimal(in.RentalPrice),
		in.Location, in.Provider, in.Notes,
	))
	if err != nil {
		return nil, translate("create inventory item", err)
	}
	return item, nil
}

// Update applies a partial update and returns the stored item.
func (r *InventoryRepository) Update(ctx context.Context, id uuid.UUID, u *models.InventoryUpdate) (*models.InventoryItem, error) {
	var b updateBuilder
	if u.Name != nil {
		b.set("nombre", *u.Name)
	}
	if u.Description != nil {
		b.set("descripcion", *u.Description)
	}
	if u.Category != nil {
		b.set("categoria", *u.Category)
	}
	if u.Code != nil {
		b.set("codigo", *u.Code)
	}
	if u.TotalQty != nil {
		b.set("cantidad_total", *u.TotalQty)
	}
	if u.AvailableQty != nil {
		b.set("cantidad_disponible", *u.AvailableQty)
	}
	if u.MinQty != nil {
		b.set("cantidad_minima", *u.MinQty)
	}
	if u.Status != nil {
		b.set("status", *u.Status)
	}
	if u.UnitCost != nil {
		b.set("costo_unitario", *u.UnitCost)
	}
	if u.RentalPrice != nil {
		b.set("precio_renta", *u.RentalPrice)
	}
	if u.Location != nil {
		b.set("ubicacion", *u.Location)
	}
	if u.Provider != nil {
		b.set("proveedor", *u.Provider)
	}
	if u.Notes != nil {
		b.set("notas", *u.Notes)
	}

	if b.empty() {
		return r.GetByID(ctx, id)
	}

	sql, args := b.query("inventory_items", id, inventoryColumns)
	item, err := scanInventoryItem(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate("update inventory item "+id.String(), err)
	}
	return item, nil
}

// Delete removes an inventory item by ID.
func (r *InventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return translate("delete inventory item", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("inventory item %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func scanInventoryItem(row rowScanner) (*models.InventoryItem, error) {
	var i models.InventoryItem
	if err := row.Scan(
		&i.ID, &i.CreatedAt, &i.UpdatedAt, &i.Name, &i.Description, &i.Category, &i.Code,
		&i.TotalQty, &i.AvailableQty, &i.MinQty, &i.Status,
		&i.UnitCost, &i.RentalPrice, &i.Location, &i.Provider, &i.Notes,
	); err != nil {
		return nil, err
	}
	return &i, nil
}

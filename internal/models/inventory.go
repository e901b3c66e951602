package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/event-crm/internal/apperr"
)

// InventoryItem is a rentable or consumable asset.
type InventoryItem struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string            `json:"nombre"`
	Description string            `json:"descripcion,omitempty"`
	Category    InventoryCategory `json:"categoria"`
	Code        string            `json:"codigo,omitempty"`

	TotalQty     int  `json:"cantidad_total"`
	AvailableQty int  `json:"cantidad_disponible"`
	MinQty       *int `json:"cantidad_minima,omitempty"`

	Status      InventoryStatus     `json:"status"`
	UnitCost    decimal.NullDecimal `json:"costo_unitario"`
	RentalPrice decimal.NullDecimal `json:"precio_renta"`

	Location string `json:"ubicacion,omitempty"`
	Provider string `json:"proveedor,omitempty"`
	Notes    string `json:"notas,omitempty"`
}

// NewInventoryItem holds the fields accepted when creating an item.
// AvailableQty defaults to TotalQty when nil.
type NewInventoryItem struct {
	Name         string
	Description  string
	Category     InventoryCategory
	Code         string
	TotalQty     int
	AvailableQty *int
	MinQty       *int
	Status       InventoryStatus
	UnitCost     *decimal.Decimal
	RentalPrice  *decimal.Decimal
	Location     string
	Provider     string
	Notes        string
}

// Normalize trims text and applies the quantity and status defaults.
func (n *NewInventoryItem) Normalize() {
	n.Name = strings.TrimSpace(n.Name)
	n.Code = strings.TrimSpace(n.Code)
	if n.AvailableQty == nil {
		total := n.TotalQty
		n.AvailableQty = &total
	}
	if n.Status == "" {
		n.Status = InventoryStatusAvailable
	}
}

// Validate checks required fields, enums and quantities.
func (n *NewInventoryItem) Validate() error {
	if n.Name == "" {
		return apperr.Invalid("nombre", "is required")
	}
	if !n.Category.Valid() {
		return apperr.Invalid("categoria", "must be one of %s", joinValues(InventoryCategories))
	}
	if !n.Status.Valid() {
		return apperr.Invalid("status", "must be one of %s", joinValues(InventoryStatuses))
	}
	if n.TotalQty < 0 {
		return apperr.Invalid("cantidad_total", "must not be negative")
	}
	if n.AvailableQty != nil {
		if *n.AvailableQty < 0 {
			return apperr.Invalid("cantidad_disponible", "must not be negative")
		}
		if *n.AvailableQty > n.TotalQty {
			return apperr.Invalid("cantidad_disponible", "must not exceed cantidad_total")
		}
	}
	if n.MinQty != nil && *n.MinQty < 0 {
		return apperr.Invalid("cantidad_minima", "must not be negative")
	}
	if n.UnitCost != nil && n.UnitCost.IsNegative() {
		return apperr.Invalid("costo_unitario", "must not be negative")
	}
	if n.RentalPrice != nil && n.RentalPrice.IsNegative() {
		return apperr.Invalid("precio_renta", "must not be negative")
	}
	return nil
}

// InventoryUpdate is a partial update; nil fields are left untouched.
type InventoryUpdate struct {
	Name         *string
	Description  *string
	Category     *InventoryCategory
	Code         *string
	TotalQty     *int
	AvailableQty *int
	MinQty       *int
	Status       *InventoryStatus
	UnitCost     *decimal.Decimal
	RentalPrice  *decimal.Decimal
	Location     *string
	Provider     *string
	Notes        *string
}

// IsEmpty reports whether the update sets nothing.
func (u *InventoryUpdate) IsEmpty() bool {
	return *u == InventoryUpdate{}
}

// Validate checks the fields that are being set. The available/total
// invariant is only checked when both quantities arrive together.
func (u *InventoryUpdate) Validate() error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return apperr.Invalid("nombre", "is required")
	}
	if u.Category != nil && !u.Category.Valid() {
		return apperr.Invalid("categoria", "must be one of %s", joinValues(InventoryCategories))
	}
	if u.Status != nil && !u.Status.Valid() {
		return apperr.Invalid("status", "must be one of %s", joinValues(InventoryStatuses))
	}
	if u.TotalQty != nil && *u.TotalQty < 0 {
		return apperr.Invalid("cantidad_total", "must not be negative")
	}
	if u.AvailableQty != nil && *u.AvailableQty < 0 {
		return apperr.Invalid("cantidad_disponible", "must not be negative")
	}
	if u.TotalQty != nil && u.AvailableQty != nil && *u.AvailableQty > *u.TotalQty {
		return apperr.Invalid("cantidad_disponible", "must not exceed cantidad_total")
	}
	if u.MinQty != nil && *u.MinQty < 0 {
		return apperr.Invalid("cantidad_minima", "must not be negative")
	}
	if u.UnitCost != nil && u.UnitCost.IsNegative() {
		return apperr.Invalid("costo_unitario", "must not be negative")
	}
	if u.RentalPrice != nil && u.RentalPrice.IsNegative() {
		return apperr.Invalid("precio_renta", "must not be negative")
	}
	return nil
}

// InventoryFilter narrows an inventory listing.
type InventoryFilter struct {
	Category *InventoryCategory
	Status   *InventoryStatus
}

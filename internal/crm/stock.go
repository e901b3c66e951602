package crm

import (
	"cmp"
	"slices"

	"gitlab.com/yelinaung/event-crm/internal/models"
)

// IsLowStock reports whether an item has a reorder threshold and its
// available quantity is at or below it.
func IsLowStock(item *models.InventoryItem) bool {
	return item.MinQty != nil && item.AvailableQty <= *item.MinQty
}

// LowStock returns the low-stock items, scarcest first.
func LowStock(items []models.InventoryItem) []models.InventoryItem {
	out := make([]models.InventoryItem, 0)
	for i := range items {
		if IsLowStock(&items[i]) {
			out = append(out, items[i])
		}
	}
	slices.SortStableFunc(out, func(a, b models.InventoryItem) int {
		return cmp.Compare(a.AvailableQty, b.AvailableQty)
	})
	return out
}

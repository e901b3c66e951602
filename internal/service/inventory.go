package service

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/yelinaung/event-crm/internal/cache"
	"gitlab.com/yelinaung/event-crm/internal/crm"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

func (s *CRM) allInventory(ctx context.Context) ([]models.InventoryItem, error) {
	return cache.Load(ctx, s.cache, cache.KeyInventory, func(ctx context.Context) ([]models.InventoryItem, error) {
		return s.inventory.List(ctx, models.InventoryFilter{})
	})
}

// ListInventory returns items matching filter, by name.
func (s *CRM) ListInventory(ctx context.Context, filter models.InventoryFilter) ([]models.InventoryItem, error) {
	all, err := s.allInventory(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.InventoryItem, 0, len(all))
	for i := range all {
		if filter.Category != nil && all[i].Category != *filter.Category {
			continue
		}
		if filter.Status != nil && all[i].Status != *filter.Status {
			continue
		}
		out = append(out, all[i])
	}
	return out, nil
}

// GetInventoryItem reads one item from the store.
func (s *CRM) GetInventoryItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	return s.inventory.GetByID(ctx, id)
}

// CreateInventoryItem validates and stores an item. Available quantity
// defaults to the total.
func (s *CRM) CreateInventoryItem(ctx context.Context, in *models.NewInventoryItem) (*models.InventoryItem, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	item, err := s.inventory.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.mutated(ctx, cache.KeyInventory, "create", cache.KeyInventory)
	return item, nil
}

// UpdateInventoryItem applies a partial update.
func (s *CRM) UpdateInventoryItem(ctx context.Context, id uuid.UUID, u *models.InventoryUpdate) (*models.InventoryItem, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	item, err := s.inventory.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}
	s.mutated(ctx, cache.KeyInventory, "update", cache.KeyInventory)
	return item, nil
}

// UpdateQuantity sets only the available quantity.
func (s *CRM) UpdateQuantity(ctx context.Context, id uuid.UUID, available int) (*models.InventoryItem, error) {
	return s.UpdateInventoryItem(ctx, id, &models.InventoryUpdate{AvailableQty: &available})
}

// DeleteInventoryItem removes an item.
func (s *CRM) DeleteInventoryItem(ctx context.Context, id uuid.UUID) error {
	if err := s.inventory.Delete(ctx, id); err != nil {
		return err
	}
	s.mutated(ctx, cache.KeyInventory, "delete", cache.KeyInventory)
	return nil
}

// LowStock returns items at or below their minimum, scarcest first.
func (s *CRM) LowStock(ctx context.Context) ([]models.InventoryItem, error) {
	items, err := s.allInventory(ctx)
	if err != nil {
		return nil, err
	}
	return crm.LowStock(items), nil
}

// InventoryStats summarises stock value and availability.
func (s *CRM) InventoryStats(ctx context.Context) (models.InventoryStats, error) {
	items, err := s.allInventory(ctx)
	if err != nil {
		return models.InventoryStats{}, err
	}
	return crm.ComputeInventoryStats(items), nil
}

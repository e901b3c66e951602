package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/event-crm/internal/apperr"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

type inventoryRequest struct {
	Name         *string                   `json:"nombre"`
	Description  *string                   `json:"descripcion"`
	Category     *models.InventoryCategory `json:"categoria"`
	Code         *string                   `json:"codigo"`
	TotalQty     *int                      `json:"cantidad_total"`
	AvailableQty *int                      `json:"cantidad_disponible"`
	MinQty       *int                      `json:"cantidad_minima"`
	Status       *models.InventoryStatus   `json:"status"`
	UnitCost     *decimal.Decimal          `json:"costo_unitario"`
	RentalPrice  *decimal.Decimal          `json:"precio_renta"`
	Location     *string                   `json:"ubicacion"`
	Provider     *string                   `json:"proveedor"`
	Notes        *string                   `json:"notas"`
}

func (req *inventoryRequest) newItem() *models.NewInventoryItem {
	in := &models.NewInventoryItem{
		Name:         deref(req.Name),
		Description:  deref(req.Description),
		Code:         deref(req.Code),
		AvailableQty: req.AvailableQty,
		MinQty:       req.MinQty,
		UnitCost:     req.UnitCost,
		RentalPrice:  req.RentalPrice,
		Location:     deref(req.Location),
		Provider:     deref(req.Provider),
		Notes:        deref(req.Notes),
	}
	if req.Category != nil {
		in.Category = *req.Category
	}
	if req.TotalQty != nil {
		in.TotalQty = *req.TotalQty
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	return in
}

func (req *inventoryRequest) update() *models.InventoryUpdate {
	return &models.InventoryUpdate{
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Code:         req.Code,
		TotalQty:     req.TotalQty,
		AvailableQty: req.AvailableQty,
		MinQty:       req.MinQty,
		Status:       req.Status,
		UnitCost:     req.UnitCost,
		RentalPrice:  req.RentalPrice,
		Location:     req.Location,
		Provider:     req.Provider,
		Notes:        req.Notes,
	}
}

type quantityRequest struct {
	AvailableQty *int `json:"cantidad_disponible"`
}

func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	var filter models.InventoryFilter
	q := r.URL.Query()
	if v := q.Get("categoria"); v != "" {
		c, err := models.ParseInventoryCategory(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Category = &c
	}
	if v := q.Get("status"); v != "" {
		st, err := models.ParseInventoryStatus(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Status = &st
	}

	items, err := s.svc.ListInventory(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateInventoryItem(w http.ResponseWriter, r *http.Request) {
	var req inventoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := s.svc.CreateInventoryItem(r.Context(), req.newItem())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleGetInventoryItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := s.svc.GetInventoryItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateInventoryItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req inventoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := s.svc.UpdateInventoryItem(r.Context(), id, req.update())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req quantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.AvailableQty == nil {
		writeError(w, r, apperr.Invalid("cantidad_disponible", "is required"))
		return
	}
	item, err := s.svc.UpdateQuantity(r.Context(), id, *req.AvailableQty)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteInventoryItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.DeleteInventoryItem(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.LowStock(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleInventoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.InventoryStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

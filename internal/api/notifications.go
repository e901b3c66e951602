package api

import (
	"net/http"

	"gitlab.com/yelinaung/event-crm/internal/models"
)

type notificationRequest struct {
	Message  string                  `json:"mensaje"`
	Kind     models.NotificationKind `json:"tipo"`
	LeadName string                  `json:"lead_nombre"`
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListNotifications(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleUnreadNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListUnreadNotifications(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleNotificationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.NotificationStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := s.svc.Notify(r.Context(), &models.NewNotification{
		Message:  req.Message,
		Kind:     req.Kind,
		LeadName: req.LeadName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.MarkNotificationRead(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.MarkAllNotificationsRead(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.DeleteNotification(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

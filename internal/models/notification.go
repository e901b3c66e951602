package models

import (
	"strings"
	"time"

	"gitlab.com/yelinaung/event-crm/internal/apperr"
)

// MaxNotificationLength is the maximum allowed length for a notification message.
const MaxNotificationLength = 1000

// Notification is an in-app system message.
type Notification struct {
	ID        int64            `json:"id"`
	Message   string           `json:"mensaje"`
	Kind      NotificationKind `json:"tipo"`
	Read      bool             `json:"leido"`
	LeadName  string           `json:"lead_nombre,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewNotification holds the fields accepted when creating a notification.
// LeadName is a display label only.
type NewNotification struct {
	Message  string
	Kind     NotificationKind
	LeadName string
}

// Normalize trims text and defaults the kind to info.
func (n *NewNotification) Normalize() {
	n.Message = strings.TrimSpace(n.Message)
	n.LeadName = strings.TrimSpace(n.LeadName)
	if n.Kind == "" {
		n.Kind = NotificationInfo
	}
}

// Validate checks the message and kind.
func (n *NewNotification) Validate() error {
	if n.Message == "" {
		return apperr.Invalid("mensaje", "is required")
	}
	if len(n.Message) > MaxNotificationLength {
		return apperr.Invalid("mensaje", "must be at most %d characters", MaxNotificationLength)
	}
	if !n.Kind.Valid() {
		return apperr.Invalid("tipo", "must be one of %s", joinValues(NotificationKinds))
	}
	return nil
}

package models

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/event-crm/internal/apperr"
)

// MaxLeadNameLength is the maximum allowed length for lead names.
const MaxLeadNameLength = 200

// Lead is a sales opportunity progressing through the pipeline.
type Lead struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name    string `json:"nombre"`
	Email   string `json:"email"`
	Phone   string `json:"telefono,omitempty"`
	Message string `json:"mensaje,omitempty"`

	Status   LeadStatus   `json:"status"`
	Priority LeadPriority `json:"priority"`
	Source   LeadSource   `json:"source"`

	EstimatedValue decimal.Decimal     `json:"estimated_value"`
	ActualValue    decimal.NullDecimal `json:"actual_value"`

	EventType string     `json:"event_type,omitempty"`
	EventDate *time.Time `json:"event_date,omitempty"`
	Attendees *int       `json:"attendees,omitempty"`

	LastContactDate  *time.Time `json:"last_contact_date,omitempty"`
	NextFollowupDate *time.Time `json:"next_followup_date,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	AssignedTo       string     `json:"assigned_to,omitempty"`

	WonAt      *time.Time `json:"won_at,omitempty"`
	LostReason string     `json:"lost_reason,omitempty"`
}

// Revenue is the realised value of a lead: actual value when recorded,
// estimated value otherwise.
func (l *Lead) Revenue() decimal.Decimal {
	if l.ActualValue.Valid {
		return l.ActualValue.Decimal
	}
	return l.EstimatedValue
}

// IsActive reports whether the lead is still open in the pipeline.
func (l *Lead) IsActive() bool {
	return !l.Status.IsTerminal()
}

// NewLead holds the fields accepted when creating a lead.
type NewLead struct {
	Name           string
	Email          string
	Phone          string
	Message        string
	Status         LeadStatus
	Priority       LeadPriority
	Source         LeadSource
	EstimatedValue decimal.Decimal
	EventType      string
	EventDate      *time.Time
	Attendees      *int
	Notes          string
	AssignedTo     string
	WonAt          *time.Time
}

// Normalize trims text and fills defaults for omitted enums.
func (n *NewLead) Normalize() {
	n.Name = strings.TrimSpace(n.Name)
	n.Email = strings.TrimSpace(n.Email)
	n.Phone = strings.TrimSpace(n.Phone)
	if n.Status == "" {
		n.Status = LeadStatusNew
	}
	if n.Priority == "" {
		n.Priority = LeadPriorityMedium
	}
	if n.Source == "" {
		n.Source = LeadSourceWebsite
	}
}

// Validate checks required fields, enums and non-negative amounts.
func (n *NewLead) Validate() error {
	if err := validateName(n.Name); err != nil {
		return err
	}
	if err := validateEmail(n.Email); err != nil {
		return err
	}
	if !n.Status.Valid() {
		return apperr.Invalid("status", "must be one of %s", joinValues(LeadStatuses))
	}
	if !n.Priority.Valid() {
		return apperr.Invalid("priority", "must be one of %s", joinValues(LeadPriorities))
	}
	if !n.Source.Valid() {
		return apperr.Invalid("source", "must be one of %s", joinValues(LeadSources))
	}
	if n.EstimatedValue.IsNegative() {
		return apperr.Invalid("estimated_value", "must not be negative")
	}
	if n.Attendees != nil && *n.Attendees < 0 {
		return apperr.Invalid("attendees", "must not be negative")
	}
	return nil
}

// LeadUpdate is a partial update; nil fields are left untouched.
type LeadUpdate struct {
	Name             *string
	Email            *string
	Phone            *string
	Message          *string
	Status           *LeadStatus
	Priority         *LeadPriority
	Source           *LeadSource
	EstimatedValue   *decimal.Decimal
	ActualValue      *decimal.Decimal
	EventType        *string
	EventDate        *time.Time
	Attendees        *int
	LastContactDate  *time.Time
	NextFollowupDate *time.Time
	Notes            *string
	AssignedTo       *string
	WonAt            *time.Time
	LostReason       *string
}

// IsEmpty reports whether the update sets nothing.
func (u *LeadUpdate) IsEmpty() bool {
	return *u == LeadUpdate{}
}

// Validate checks the fields that are being set.
func (u *LeadUpdate) Validate() error {
	if u.Name != nil {
		if err := validateName(strings.TrimSpace(*u.Name)); err != nil {
			return err
		}
	}
	if u.Email != nil {
		if err := validateEmail(strings.TrimSpace(*u.Email)); err != nil {
			return err
		}
	}
	if u.Status != nil && !u.Status.Valid() {
		return apperr.Invalid("status", "must be one of %s", joinValues(LeadStatuses))
	}
	if u.Priority != nil && !u.Priority.Valid() {
		return apperr.Invalid("priority", "must be one of %s", joinValues(LeadPriorities))
	}
	if u.Source != nil && !u.Source.Valid() {
		return apperr.Invalid("source", "must be one of %s", joinValues(LeadSources))
	}
	if u.EstimatedValue != nil && u.EstimatedValue.IsNegative() {
		return apperr.Invalid("estimated_value", "must not be negative")
	}
	if u.ActualValue != nil && u.ActualValue.IsNegative() {
		return apperr.Invalid("actual_value", "must not be negative")
	}
	if u.Attendees != nil && *u.Attendees < 0 {
		return apperr.Invalid("attendees", "must not be negative")
	}
	return nil
}

// LeadFilter narrows a lead listing.
type LeadFilter struct {
	Status       *LeadStatus
	CreatedSince *time.Time
}

func validateName(name string) error {
	if name == "" {
		return apperr.Invalid("nombre", "is required")
	}
	if len(name) > MaxLeadNameLength {
		return apperr.Invalid("nombre", "must be at most %d characters", MaxLeadNameLength)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return apperr.Invalid("email", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.Invalid("email", "is not a valid address")
	}
	return nil
}

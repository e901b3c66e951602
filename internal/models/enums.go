// Package models defines the domain entities for the agency CRM.
package models

import (
	"slices"
	"strings"

	"gitlab.com/yelinaung/event-crm/internal/apperr"
)

// LeadStatus is a pipeline stage.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusProposal  LeadStatus = "proposal"
	LeadStatusWon       LeadStatus = "won"
	LeadStatusLost      LeadStatus = "lost"
)

// LeadStatuses lists the pipeline stages in board order.
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusProposal,
	LeadStatusWon,
	LeadStatusLost,
}

// Valid reports whether s is a known status.
func (s LeadStatus) Valid() bool { return slices.Contains(LeadStatuses, s) }

// IsTerminal reports whether s is won or lost.
func (s LeadStatus) IsTerminal() bool { return s == LeadStatusWon || s == LeadStatusLost }

// ParseLeadStatus normalizes and validates a status value.
func ParseLeadStatus(v string) (LeadStatus, error) {
	s := LeadStatus(normalize(v))
	if !s.Valid() {
		return "", apperr.Invalid("status", "must be one of %s", joinValues(LeadStatuses))
	}
	return s, nil
}

// LeadPriority is the sales priority of a lead.
type LeadPriority string

const (
	LeadPriorityLow    LeadPriority = "baja"
	LeadPriorityMedium LeadPriority = "media"
	LeadPriorityHigh   LeadPriority = "alta"
)

// LeadPriorities lists priorities from lowest to highest.
var LeadPriorities = []LeadPriority{LeadPriorityLow, LeadPriorityMedium, LeadPriorityHigh}

// Valid reports whether p is a known priority.
func (p LeadPriority) Valid() bool { return slices.Contains(LeadPriorities, p) }

// Rank orders priorities: higher is more urgent. Unknown values rank lowest.
func (p LeadPriority) Rank() int { return slices.Index(LeadPriorities, p) }

// ParseLeadPriority normalizes and validates a priority value.
func ParseLeadPriority(v string) (LeadPriority, error) {
	p := LeadPriority(normalize(v))
	if !p.Valid() {
		return "", apperr.Invalid("priority", "must be one of %s", joinValues(LeadPriorities))
	}
	return p, nil
}

// LeadSource is the intake channel of a lead.
type LeadSource string

const (
	LeadSourceWebsite   LeadSource = "website"
	LeadSourceInstagram LeadSource = "instagram"
	LeadSourceGoogle    LeadSource = "google"
	LeadSourceReferral  LeadSource = "referido"
)

// LeadSources lists the intake channels.
var LeadSources = []LeadSource{LeadSourceWebsite, LeadSourceInstagram, LeadSourceGoogle, LeadSourceReferral}

// Valid reports whether s is a known source.
func (s LeadSource) Valid() bool { return slices.Contains(LeadSources, s) }

// ParseLeadSource normalizes and validates a source value.
func ParseLeadSource(v string) (LeadSource, error) {
	s := LeadSource(normalize(v))
	if !s.Valid() {
		return "", apperr.Invalid("source", "must be one of %s", joinValues(LeadSources))
	}
	return s, nil
}

// AlertStatus classifies contact urgency.
type AlertStatus string

const (
	AlertOK      AlertStatus = "ok"
	AlertWarning AlertStatus = "warning"
	AlertUrgent  AlertStatus = "urgent"
)

// ExpenseCategory is the closed set of expense categories.
type ExpenseCategory string

const (
	ExpenseCategoryDecoration ExpenseCategory = "decoracion"
	ExpenseCategoryFurniture  ExpenseCategory = "mobiliario"
	ExpenseCategoryLighting   ExpenseCategory = "iluminacion"
	ExpenseCategoryAudio      ExpenseCategory = "audio"
	ExpenseCategoryCatering   ExpenseCategory = "catering"
	ExpenseCategoryTransport  ExpenseCategory = "transporte"
	ExpenseCategoryStaff      ExpenseCategory = "personal"
	ExpenseCategoryMarketing  ExpenseCategory = "marketing"
	ExpenseCategoryServices   ExpenseCategory = "servicios"
	ExpenseCategoryOther      ExpenseCategory = "otros"
)

// ExpenseCategories lists all ten expense categories.
var ExpenseCategories = []ExpenseCategory{
	ExpenseCategoryDecoration,
	ExpenseCategoryFurniture,
	ExpenseCategoryLighting,
	ExpenseCategoryAudio,
	ExpenseCategoryCatering,
	ExpenseCategoryTransport,
	ExpenseCategoryStaff,
	ExpenseCategoryMarketing,
	ExpenseCategoryServices,
	ExpenseCategoryOther,
}

// Valid reports whether c is a known category.
func (c ExpenseCategory) Valid() bool { return slices.Contains(ExpenseCategories, c) }

// ParseExpenseCategory normalizes and validates a category value.
func ParseExpenseCategory(v string) (ExpenseCategory, error) {
	c := ExpenseCategory(normalize(v))
	if !c.Valid() {
		return "", apperr.Invalid("categoria", "must be one of %s", joinValues(ExpenseCategories))
	}
	return c, nil
}

// ExpenseStatus is the payment state of an expense.
type ExpenseStatus string

const (
	ExpenseStatusPending   ExpenseStatus = "pendiente"
	ExpenseStatusPaid      ExpenseStatus = "pagado"
	ExpenseStatusCancelled ExpenseStatus = "cancelado"
)

// ExpenseStatuses lists the payment states.
var ExpenseStatuses = []ExpenseStatus{ExpenseStatusPending, ExpenseStatusPaid, ExpenseStatusCancelled}

// Valid reports whether s is a known expense status.
func (s ExpenseStatus) Valid() bool { return slices.Contains(ExpenseStatuses, s) }

// ParseExpenseStatus normalizes and validates an expense status value.
func ParseExpenseStatus(v string) (ExpenseStatus, error) {
	s := ExpenseStatus(normalize(v))
	if !s.Valid() {
		return "", apperr.Invalid("status", "must be one of %s", joinValues(ExpenseStatuses))
	}
	return s, nil
}

// InventoryCategory is the closed set of inventory categories.
type InventoryCategory string

const (
	InventoryCategoryDecoration InventoryCategory = "decoracion"
	InventoryCategoryFurniture  InventoryCategory = "mobiliario"
	InventoryCategoryLighting   InventoryCategory = "iluminacion"
	InventoryCategoryAudio      InventoryCategory = "audio"
	InventoryCategoryCatering   InventoryCategory = "catering"
	InventoryCategoryOther      InventoryCategory = "otros"
)

// InventoryCategories lists all six inventory categories.
var InventoryCategories = []InventoryCategory{
	InventoryCategoryDecoration,
	InventoryCategoryFurniture,
	InventoryCategoryLighting,
	InventoryCategoryAudio,
	InventoryCategoryCatering,
	InventoryCategoryOther,
}

// Valid reports whether c is a known inventory category.
func (c InventoryCategory) Valid() bool { return slices.Contains(InventoryCategories, c) }

// ParseInventoryCategory normalizes and validates an inventory category.
func ParseInventoryCategory(v string) (InventoryCategory, error) {
	c := InventoryCategory(normalize(v))
	if !c.Valid() {
		return "", apperr.Invalid("categoria", "must be one of %s", joinValues(InventoryCategories))
	}
	return c, nil
}

// InventoryStatus is the usage state of an inventory item.
type InventoryStatus string

const (
	InventoryStatusAvailable   InventoryStatus = "disponible"
	InventoryStatusInUse       InventoryStatus = "en-uso"
	InventoryStatusMaintenance InventoryStatus = "mantenimiento"
	InventoryStatusRetired     InventoryStatus = "baja"
)

// InventoryStatuses lists the usage states.
var InventoryStatuses = []InventoryStatus{
	InventoryStatusAvailable,
	InventoryStatusInUse,
	InventoryStatusMaintenance,
	InventoryStatusRetired,
}

// Valid reports whether s is a known inventory status.
func (s InventoryStatus) Valid() bool { return slices.Contains(InventoryStatuses, s) }

// ParseInventoryStatus normalizes and validates an inventory status.
func ParseInventoryStatus(v string) (InventoryStatus, error) {
	s := InventoryStatus(normalize(v))
	if !s.Valid() {
		return "", apperr.Invalid("status", "must be one of %s", joinValues(InventoryStatuses))
	}
	return s, nil
}

// NotificationKind is the severity of a notification.
type NotificationKind string

const (
	NotificationInfo    NotificationKind = "info"
	NotificationSuccess NotificationKind = "success"
	NotificationWarning NotificationKind = "warning"
	NotificationError   NotificationKind = "error"
)

// NotificationKinds lists the notification severities.
var NotificationKinds = []NotificationKind{
	NotificationInfo,
	NotificationSuccess,
	NotificationWarning,
	NotificationError,
}

// Valid reports whether k is a known kind.
func (k NotificationKind) Valid() bool { return slices.Contains(NotificationKinds, k) }

// ParseNotificationKind normalizes and validates a notification kind.
func ParseNotificationKind(v string) (NotificationKind, error) {
	k := NotificationKind(normalize(v))
	if !k.Valid() {
		return "", apperr.Invalid("tipo", "must be one of %s", joinValues(NotificationKinds))
	}
	return k, nil
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// Package crm holds the pure business rules of the pipeline: the lead
// lifecycle, inactivity alerts, aggregate statistics, event profit and
// stock monitoring. Nothing here performs I/O.
package crm

import (
	"cmp"
	"slices"
	"time"

	"gitlab.com/yelinaung/event-crm/internal/models"
)

// ApplyLifecycle applies the side effects of a status change to u.
// Moving a lead to won stamps WonAt with now unless the caller already
// supplied one. No other transition has side effects, and any status may
// move to any other status.
func ApplyLifecycle(u *models.LeadUpdate, now time.Time) {
	if u == nil || u.Status == nil {
		return
	}
	if *u.Status == models.LeadStatusWon && u.WonAt == nil {
		stamp := now
		u.WonAt = &stamp
	}
}

// ApplyCreateLifecycle stamps won_at on a lead created directly as won.
func ApplyCreateLifecycle(in *models.NewLead, now time.Time) {
	if in == nil || in.Status != models.LeadStatusWon || in.WonAt != nil {
		return
	}
	stamp := now
	in.WonAt = &stamp
}

// StatusChange builds the update for a kanban move. extra may carry
// additional fields such as LostReason or ActualValue; its Status is
// overridden.
func StatusChange(status models.LeadStatus, extra *models.LeadUpdate, now time.Time) models.LeadUpdate {
	var u models.LeadUpdate
	if extra != nil {
		u = *extra
	}
	u.Status = &status
	ApplyLifecycle(&u, now)
	return u
}

// Board groups leads into one column per status. Every status has a
// column, possibly empty. Columns are ordered by priority (highest first)
// and then by creation time (newest first).
func Board(leads []models.Lead) map[models.LeadStatus][]models.Lead {
	board := make(map[models.LeadStatus][]models.Lead, len(models.LeadStatuses))
	for _, s := range models.LeadStatuses {
		board[s] = []models.Lead{}
	}
	for _, l := range leads {
		if _, ok := board[l.Status]; !ok {
			continue
		}
		board[l.Status] = append(board[l.Status], l)
	}
	for s := range board {
		slices.SortStableFunc(board[s], compareByPriorityThenNewest)
	}
	return board
}

func compareByPriorityThenNewest(a, b models.Lead) int {
	if c := cmp.Compare(b.Priority.Rank(), a.Priority.Rank()); c != 0 {
		return c
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

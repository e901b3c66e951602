package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/event-crm/internal/apperr"
	"gitlab.com/yelinaung/event-crm/internal/database"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

const leadColumns = `id, created_at, updated_at, nombre, email, telefono, mensaje,
	status, priority, source, estimated_value, actual_value,
	event_type, event_date, attendees, last_contact_date, next_followup_date,
	notes, assigned_to, won_at, lost_reason`

// LeadRepository handles lead database operations.
type LeadRepository struct {
	db database.PGXDB
}

// NewLeadRepository creates a new LeadRepository.
func NewLeadRepository(db database.PGXDB) *LeadRepository {
	return &LeadRepository{db: db}
}

// List returns leads matching filter, newest first.
func (r *LeadRepository) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	var w whereBuilder
	if filter.Status != nil {
		w.add("status = $%d", *filter.Status)
	}
	if filter.CreatedSince != nil {
		w.add("created_at >= $%d", *filter.CreatedSince)
	}

	rows, err := r.db.Query(ctx, `SELECT `+leadColumns+` FROM leads`+w.clause()+` ORDER BY created_at DESC, id`, w.args...)
	if err != nil {
		return nil, translate("query leads", err)
	}
	defer rows.Close()

	leads := make([]models.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, translate("scan lead", err)
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("iterate leads", err)
	}
	return leads, nil
}

// GetByID retrieves a lead by ID.
func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	lead, err := scanLead(r.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if err != nil {
		return nil, translate("get lead "+id.String(), err)
	}
	return lead, nil
}

// Create inserts a lead. The input must already be normalized.
func (r *LeadRepository) Create(ctx context.Context, in *models.NewLead) (*models.Lead, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO leads (nombre, email, telefono, mensaje, status, priority, source,
			estimated_value, event_type, event_date, attendees, notes, assigned_to, won_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+leadColumns,
		in.Name, in.Email, in.Phone, in.Message, in.Status, in.Priority, in.Source,
		in.EstimatedValue, in.EventType, in.EventDate, in.Attendees, in.Notes, in.AssignedTo, in.WonAt,
	)
	lead, err := scanLead(row)
	if err != nil {
		return nil, translate("create lead", err)
	}
	return lead, nil
}

// Update applies a partial update and returns the stored lead. An empty
// update returns the current row.
func (r *LeadRepository) Update(ctx context.Context, id uuid.UUID, u *models.LeadUpdate) (*models.Lead, error) {
	var b updateBuilder
	if u.Name != nil {
		b.set("nombre", *u.Name)
	}
	if u.Email != nil {
		b.set("email", *u.Email)
	}
	if u.Phone != nil {
		b.set("telefono", *u.Phone)
	}
	if u.Message != nil {
		b.set("mensaje", *u.Message)
	}
	if u.Status != nil {
		b.set("status", *u.Status)
	}
	if u.Priority != nil {
		b.set("priority", *u.Priority)
	}
	if u.Source != nil {
		b.set("source", *u.Source)
	}
	if u.EstimatedValue != nil {
		b.set("estimated_value", *u.EstimatedValue)
	}
	if u.ActualValue != nil {
		b.set("actual_value", *u.ActualValue)
	}
	if u.EventType != nil {
		b.set("event_type", *u.EventType)
	}
	if u.EventDate != nil {
		b.set("event_date", *u.EventDate)
	}
	if u.Attendees != nil {
		b.set("attendees", *u.Attendees)
	}
	if u.LastContactDate != nil {
		b.set("last_contact_date", *u.LastContactDate)
	}
	if u.NextFollowupDate != nil {
		b.set("next_followup_date", *u.NextFollowupDate)
	}
	if u.Notes != nil {
		b.set("notes", *u.Notes)
	}
	if u.AssignedTo != nil {
		b.set("assigned_to", *u.AssignedTo)
	}
	if u.WonAt != nil {
		b.set("won_at", *u.WonAt)
	}
	if u.LostReason != nil {
		b.set("lost_reason", *u.LostReason)
	}

	if b.empty() {
		return r.GetByID(ctx, id)
	}

	sql, args := b.query("leads", id, leadColumns)
	lead, err := scanLead(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate("update lead "+id.String(), err)
	}
	return lead, nil
}

// Delete removes a lead. Linked expenses keep their snapshot name and lose
// the link.
func (r *LeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return translate("delete lead", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lead %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// PipelineStats computes the pipeline summary in SQL. monthStart bounds the
// current-month counters.
func (r *LeadRepository) PipelineStats(ctx context.Context, monthStart time.Time) (models.PipelineStats, error) {
	var s models.PipelineStats
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'new'),
			COUNT(*) FILTER (WHERE status = 'contacted'),
			COUNT(*) FILTER (WHERE status = 'proposal'),
			COUNT(*) FILTER (WHERE status = 'won'),
			COUNT(*) FILTER (WHERE status = 'lost'),
			COUNT(*),
			COALESCE(SUM(estimated_value) FILTER (WHERE status IN ('new', 'contacted', 'proposal')), 0),
			COALESCE(SUM(COALESCE(actual_value, estimated_value)) FILTER (WHERE status = 'won'), 0),
			COUNT(*) FILTER (WHERE created_at >= $1),
			COUNT(*) FILTER (WHERE status = 'won' AND won_at >= $1)
		FROM leads
	`, monthStart).Scan(
		&s.New, &s.Contacted, &s.Proposal, &s.Won, &s.Lost, &s.Total,
		&s.PipelineValue, &s.RevenueTotal, &s.NewThisMonth, &s.WonThisMonth,
	)
	if err != nil {
		return models.PipelineStats{}, translate("compute pipeline stats", err)
	}

	s.Active = s.New + s.Contacted + s.Proposal
	s.AvgDealSize = decimal.Zero
	s.ConversionRate = decimal.Zero
	if s.Won > 0 {
		s.AvgDealSize = s.RevenueTotal.DivRound(decimal.NewFromInt(int64(s.Won)), 2)
	}
	if s.Total > 0 {
		s.ConversionRate = decimal.NewFromInt(int64(s.Won) * 100).DivRound(decimal.NewFromInt(int64(s.Total)), 2)
	}
	return s, nil
}

// Distribution counts leads and sums estimated value per observed status,
// in pipeline order.
func (r *LeadRepository) Distribution(ctx context.Context) ([]models.StatusCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(estimated_value), 0)
		FROM leads
		GROUP BY status
		ORDER BY array_position(ARRAY['new', 'contacted', 'proposal', 'won', 'lost'], status)
	`)
	if err != nil {
		return nil, translate("query lead distribution", err)
	}
	defer rows.Close()

	out := make([]models.StatusCount, 0)
	for rows.Next() {
		var c models.StatusCount
		if err := rows.Scan(&c.Status, &c.Count, &c.TotalValue); err != nil {
			return nil, translate("scan lead distribution", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("iterate lead distribution", err)
	}
	return out, nil
}

func scanLead(row rowScanner) (*models.Lead, error) {
	var l models.Lead
	err := row.Scan(
		&l.ID, &l.CreatedAt, &l.UpdatedAt, &l.Name, &l.Email, &l.Phone, &l.Message,
		&l.Status, &l.Priority, &l.Source, &l.EstimatedValue, &l.ActualValue,
		&l.EventType, &l.EventDate, &l.Attendees, &l.LastContactDate, &l.NextFollowupDate,
		&l.Notes, &l.AssignedTo, &l.WonAt, &l.LostReason,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

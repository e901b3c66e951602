package repository

import (
	"context"
	"fmt"

	"gitlab.com/yelinaung/event-crm/internal/apperr"
	"gitlab.com/yelinaung/event-crm/internal/database"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

const notificationColumns = `id, mensaje, tipo, leido, lead_nombre, created_at`

// NotificationRepository handles notification database operations.
type NotificationRepository struct {
	db database.PGXDB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db database.PGXDB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// List returns all notifications, newest first.
func (r *NotificationRepository) List(ctx context.Context) ([]models.Notification, error) {
	return r.query(ctx, `SELECT `+notificationColumns+` FROM notificaciones ORDER BY created_at DESC, id DESC`)
}

// ListUnread returns unread notifications, newest first.
func (r *NotificationRepository) ListUnread(ctx context.Context) ([]models.Notification, error) {
	return r.query(ctx, `SELECT `+notificationColumns+` FROM notificaciones WHERE NOT leido ORDER BY created_at DESC, id DESC`)
}

func (r *NotificationRepository) query(ctx context.Context, sql string) ([]models.Notification, error) {
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, translate("query notifications", err)
	}
	defer rows.Close()

	out := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Message, &n.Kind, &n.Read, &n.LeadName, &n.CreatedAt); err != nil {
			return nil, translate("scan notification", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("iterate notifications", err)
	}
	return out, nil
}

// Create records a notification. The input must already be normalized.
func (r *NotificationRepository) Create(ctx context.Context, in *models.NewNotification) (*models.Notification, error) {
	var n models.Notification
	err := r.db.QueryRow(ctx, `
		INSERT INTO notificaciones (mensaje, tipo, lead_nombre)
		VALUES ($1, $2, $3)
		RETURNING `+notificationColumns,
		in.Message, in.Kind, in.LeadName,
	).Scan(&n.ID, &n.Message, &n.Kind, &n.Read, &n.LeadName, &n.CreatedAt)
	if err != nil {
		return nil, translate("create notification", err)
	}
	return &n, nil
}

// MarkRead flags one notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE notificaciones SET leido = TRUE WHERE id = $1`, id)
	if err != nil {
		return translate("mark notification read", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// MarkAllRead flags every unread notification as read and returns how many
// changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE notificaciones SET leido = TRUE WHERE NOT leido`)
	if err != nil {
		return 0, translate("mark all notifications read", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes a notification by ID.
func (r *NotificationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notificaciones WHERE id = $1`, id)
	if err != nil {
		return translate("delete notification", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

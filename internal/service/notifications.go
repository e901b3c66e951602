package service

import (
	"context"

	"gitlab.com/yelinaung/event-crm/internal/cache"
	"gitlab.com/yelinaung/event-crm/internal/crm"
	"gitlab.com/yelinaung/event-crm/internal/logger"
	"gitlab.com/yelinaung/event-crm/internal/models"
)

func (s *CRM) allNotifications(ctx context.Context) ([]models.Notification, error) {
	return cache.Load(ctx, s.cache, cache.KeyNotifications, s.notifications.List)
}

// ListNotifications returns every notification, newest first.
func (s *CRM) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	return s.allNotifications(ctx)
}

// ListUnreadNotifications returns the unread notifications, newest first.
// With store aggregates enabled the store filters them.
func (s *CRM) ListUnreadNotifications(ctx context.Context) ([]models.Notification, error) {
	if s.aggregates {
		return s.notifications.ListUnread(ctx)
	}
	all, err := s.allNotifications(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Notification, 0, len(all))
	for i := range all {
		if !all[i].Read {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// Notify records a notification. Any collaborator may call it.
func (s *CRM) Notify(ctx context.Context, in *models.NewNotification) (*models.Notification, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	n, err := s.notifications.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.mutated(ctx, cache.KeyNotifications, "create", cache.KeyNotifications)
	return n, nil
}

// MarkNotificationRead marks one notification read. A missing id fails
// with NotFound.
func (s *CRM) MarkNotificationRead(ctx context.Context, id int64) error {
	if err := s.notifications.MarkRead(ctx, id); err != nil {
		return err
	}
	s.mutated(ctx, cache.KeyNotifications, "mark_read", cache.KeyNotifications)
	return nil
}

// MarkAllNotificationsRead returns how many notifications changed.
func (s *CRM) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx)
	if err != nil {
		return 0, err
	}
	s.mutated(ctx, cache.KeyNotifications, "mark_all_read", cache.KeyNotifications)
	logger.Log.Debug().Int64("count", n).Msg("Notifications marked read")
	return n, nil
}

// DeleteNotification removes one notification.
func (s *CRM) DeleteNotification(ctx context.Context, id int64) error {
	if err := s.notifications.Delete(ctx, id); err != nil {
		return err
	}
	s.mutated(ctx, cache.KeyNotifications, "delete", cache.KeyNotifications)
	return nil
}

// NotificationStats counts unread notifications by kind.
func (s *CRM) NotificationStats(ctx context.Context) (models.NotificationStats, error) {
	all, err := s.allNotifications(ctx)
	if err != nil {
		return models.NotificationStats{}, err
	}
	return crm.ComputeNotificationStats(all), nil
}

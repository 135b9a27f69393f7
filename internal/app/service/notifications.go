package service

import (
	"context"
	"strings"

	"github.com/dalemusser/projectflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListNotifications returns a user's notifications, newest first. A
// malformed user id matches nothing.
func (s *Service) ListNotifications(ctx context.Context, userHex string) ([]models.Notification, error) {
	userID, err := primitive.ObjectIDFromHex(strings.TrimSpace(userHex))
	if err != nil {
		return []models.Notification{}, observe("list_notifications", nil)
	}
	ns, err := s.store.Notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, observe("list_notifications", storeErr("list notifications", "notification", err))
	}
	return ns, observe("list_notifications", nil)
}

// MarkNotificationRead sets read=true. Repeating it is harmless. Read state
// is not broadcast.
func (s *Service) MarkNotificationRead(ctx context.Context, idHex string) (models.Notification, error) {
	id, err := parsePathID("notification", idHex)
	if err != nil {
		return models.Notification{}, observe("mark_notification_read", err)
	}
	n, err := s.store.Notifications.MarkRead(ctx, id)
	if err != nil {
		return models.Notification{}, observe("mark_notification_read", storeErr("mark notification read", "notification", err))
	}
	return n, observe("mark_notification_read", nil)
}

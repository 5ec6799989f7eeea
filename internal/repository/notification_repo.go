package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"questbuddy/internal/models"
	"questbuddy/internal/storage"
)

// NotificationRepository serializes the notification log through the
// store under the notifications key.
type NotificationRepository struct {
	store storage.Store
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(store storage.Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

// List loads the full notification log, newest first
func (r *NotificationRepository) List(ctx context.Context) ([]models.Notification, error) {
	value, ok, err := r.store.Get(ctx, storage.KeyNotifications)
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}
	if !ok {
		return []models.Notification{}, nil
	}

	var notifications []models.Notification
	if err := json.Unmarshal([]byte(value), &notifications); err != nil {
		log.Printf("Failed to decode notification log, treating as empty: %v", err)
		return []models.Notification{}, nil
	}
	return notifications, nil
}

// Append adds a notification at the head of the log
func (r *NotificationRepository) Append(ctx context.Context, n models.Notification) error {
	notifications, err := r.List(ctx)
	if err != nil {
		return err
	}
	return r.saveAll(ctx, append([]models.Notification{n}, notifications...))
}

// MarkRead flags the notification with the given ID as read, reporting
// false when it does not exist.
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID string) (bool, error) {
	notifications, err := r.List(ctx)
	if err != nil {
		return false, err
	}

	for i := range notifications {
		if notifications[i].ID == notificationID {
			notifications[i].IsRead = true
			return true, r.saveAll(ctx, notifications)
		}
	}
	return false, nil
}

func (r *NotificationRepository) saveAll(ctx context.Context, notifications []models.Notification) error {
	data, err := json.Marshal(notifications)
	if err != nil {
		return fmt.Errorf("failed to encode notifications: %w", err)
	}
	if err := r.store.Set(ctx, storage.KeyNotifications, string(data)); err != nil {
		return fmt.Errorf("failed to save notifications: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"questbuddy/internal/models"
	"questbuddy/internal/repository"
)

// NotificationService records noteworthy events for the parent account
// and optionally forwards them by email.
type NotificationService struct {
	notifications *repository.NotificationRepository
	email         *EmailService
}

func NewNotificationService(notifications *repository.NotificationRepository, email *EmailService) *NotificationService {
	return &NotificationService{notifications: notifications, email: email}
}

// Notify appends a notification addressed to the given account and, when
// an email address is known, forwards it. Failures are logged, not
// returned: notifications never block the action that triggered them.
func (s *NotificationService) Notify(ctx context.Context, accountID, accountEmail string, kind models.NotificationType, title, message string) {
	n := models.Notification{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Title:     title,
		Message:   message,
		Type:      kind,
		CreatedAt: time.Now(),
	}
	if err := s.notifications.Append(ctx, n); err != nil {
		log.Printf("Failed to record notification for %s: %v", accountID, err)
		return
	}
	if s.email != nil && accountEmail != "" {
		if err := s.email.SendActivityEmail(ctx, accountEmail, title, message); err != nil {
			log.Printf("Failed to email notification: %v", err)
		}
	}
}

// ListFor returns the notifications addressed to an account, newest first.
func (s *NotificationService) ListFor(ctx context.Context, accountID string) ([]models.Notification, error) {
	all, err := s.notifications.List(ctx)
	if err != nil {
		return nil, err
	}
	mine := []models.Notification{}
	for _, n := range all {
		if n.AccountID == accountID {
			mine = append(mine, n)
		}
	}
	return mine, nil
}

// MarkRead flags a notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID string) error {
	found, err := s.notifications.MarkRead(ctx, notificationID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("notification %s not found", notificationID)
	}
	return nil
}

package models

import "time"

// NotificationType identifies the event a notification records
type NotificationType string

const (
	NotificationQuestCompleted NotificationType = "quest_completed"
	NotificationLevelUp        NotificationType = "level_up"
	NotificationRewardRedeemed NotificationType = "reward_redeemed"
)

// Notification is an append-only record of a noteworthy event, addressed
// to the parent account that owns the child involved.
type Notification struct {
	ID        string           `json:"id"`
	AccountID string           `json:"userId"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

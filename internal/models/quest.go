package models

import "time"

// Quest is a parent-defined task worth XP and spendable points.
// An empty AssignedTo list means the quest is visible to every child of
// the creating parent. A quest is immutable once completed apart from the
// one-time isCompleted/completedAt transition.
type Quest struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	XPReward    FlexInt    `json:"xpReward"`
	CoinReward  FlexInt    `json:"coinReward"`
	Category    string     `json:"category"`
	AssignedTo  []string   `json:"assignedTo"`
	CreatedBy   string     `json:"createdBy"`
	IsCompleted bool       `json:"isCompleted"`
	IsVerified  bool       `json:"isVerified"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	VerifiedAt  *time.Time `json:"verifiedAt,omitempty"`
}

// AssignedToChild reports whether the quest is visible to the given child:
// an empty assignment list means visible to all of the parent's children.
func (q *Quest) AssignedToChild(childID string) bool {
	if len(q.AssignedTo) == 0 {
		return true
	}
	for _, id := range q.AssignedTo {
		if id == childID {
			return true
		}
	}
	return false
}

// QuestDraft holds the caller-supplied fields for a new quest
type QuestDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	XPReward    FlexInt  `json:"xpReward"`
	CoinReward  FlexInt  `json:"coinReward"`
	Category    string   `json:"category"`
	AssignedTo  []string `json:"assignedTo"`
}

package models

import "time"

// Reward is a parent-defined item a child can buy with points. Rewards are
// deactivated rather than deleted so redemption history keeps resolving.
// MaxRedemptions of zero means a child may redeem the reward at most once.
type Reward struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Cost           FlexInt   `json:"cost"`
	Category       string    `json:"category"`
	IsActive       bool      `json:"isActive"`
	IsGlobal       bool      `json:"isGlobal"`
	AssignedTo     []string  `json:"assignedTo,omitempty"`
	MaxRedemptions FlexInt   `json:"maxRedemptions,omitempty"`
	RedeemedBy     []string  `json:"redeemedBy"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

// RedemptionCount returns how many times the given child has redeemed this reward
func (r *Reward) RedemptionCount(childID string) int {
	count := 0
	for _, id := range r.RedeemedBy {
		if id == childID {
			count++
		}
	}
	return count
}

// AvailableTo reports whether the reward can currently be redeemed by the
// given child: it must be active, global or assigned to the child, and not
// already exhausted by that child.
func (r *Reward) AvailableTo(childID string) bool {
	if !r.IsActive {
		return false
	}

	assigned := r.IsGlobal
	if !assigned {
		for _, id := range r.AssignedTo {
			if id == childID {
				assigned = true
				break
			}
		}
	}
	if !assigned {
		return false
	}

	count := r.RedemptionCount(childID)
	if count == 0 {
		return true
	}
	return r.MaxRedemptions > 0 && count < r.MaxRedemptions.Int()
}

// RewardDraft holds the caller-supplied fields for a new reward
type RewardDraft struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Cost           FlexInt  `json:"cost"`
	Category       string   `json:"category"`
	IsGlobal       bool     `json:"isGlobal"`
	AssignedTo     []string `json:"assignedTo"`
	MaxRedemptions FlexInt  `json:"maxRedemptions"`
}

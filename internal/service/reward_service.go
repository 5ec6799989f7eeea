package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"questbuddy/internal/models"
	"questbuddy/internal/repository"
)

// RewardService manages the reward catalog and redemption.
type RewardService struct {
	rewards       *repository.RewardRepository
	sessions      *SessionService
	notifications *NotificationService
}

func NewRewardService(rewards *repository.RewardRepository, sessions *SessionService, notifications *NotificationService) *RewardService {
	return &RewardService{
		rewards:       rewards,
		sessions:      sessions,
		notifications: notifications,
	}
}

// Create adds a reward owned by the signed-in parent.
func (s *RewardService) Create(ctx context.Context, draft models.RewardDraft) (*models.Reward, error) {
	account := s.sessions.ActiveAccount()
	if account == nil {
		return nil, ErrNotLoggedIn
	}
	if account.Role != models.RoleParent {
		return nil, ErrNotParentSession
	}

	assigned := draft.AssignedTo
	if assigned == nil {
		assigned = []string{}
	}
	reward := models.Reward{
		ID:             fmt.Sprintf("reward_%d", time.Now().UnixMilli()),
		Title:          draft.Title,
		Description:    draft.Description,
		Cost:           draft.Cost,
		Category:       draft.Category,
		IsActive:       true,
		IsGlobal:       draft.IsGlobal,
		AssignedTo:     assigned,
		MaxRedemptions: draft.MaxRedemptions,
		RedeemedBy:     []string{},
		CreatedBy:      account.ID,
		CreatedAt:      time.Now(),
	}

	all, err := s.rewards.List(ctx)
	if err != nil {
		return nil, err
	}
	all = append(all, reward)
	if err := s.rewards.SaveAll(ctx, all); err != nil {
		return nil, err
	}
	return &reward, nil
}

// Redeem spends a child's points on a reward. In a child session the
// spender is the signed-in child; in a parent session childID picks the
// roster entry. The balance check and the debit are atomic inside the
// session engine.
func (s *RewardService) Redeem(ctx context.Context, rewardID, childID string) error {
	account := s.sessions.ActiveAccount()
	if account == nil {
		return ErrNotLoggedIn
	}

	spenderID := childID
	if account.Role == models.RoleChild {
		spenderID = account.ChildID
	}
	if spenderID == "" {
		return ErrChildNotFound
	}

	reward, err := s.rewards.FindByID(ctx, rewardID)
	if err != nil {
		return err
	}
	if reward == nil {
		return ErrRewardNotFound
	}
	if !reward.AvailableTo(spenderID) {
		return fmt.Errorf("reward %s is not available to this child", rewardID)
	}

	entry := models.RedeemedRewardEntry{
		ID:         reward.ID,
		Name:       reward.Title,
		Cost:       reward.Cost,
		RedeemedAt: time.Now(),
		Category:   reward.Category,
	}

	// Count the redemption before the debit. A storage failure here costs
	// the child nothing; a failed debit rolls the count back.
	if _, err := s.rewards.Update(ctx, rewardID, func(r *models.Reward) {
		r.RedeemedBy = append(r.RedeemedBy, spenderID)
	}); err != nil {
		return fmt.Errorf("failed to record redemption on reward: %w", err)
	}
	if err := s.sessions.RecordRedemption(ctx, spenderID, entry, reward.Cost); err != nil {
		if _, rbErr := s.rewards.Update(ctx, rewardID, func(r *models.Reward) {
			r.RedeemedBy = removeLast(r.RedeemedBy, spenderID)
		}); rbErr != nil {
			log.Printf("Failed to roll back redemption count for %s on reward %s: %v", spenderID, rewardID, rbErr)
		}
		return err
	}

	if s.notifications != nil {
		parentID := account.ParentID
		if account.Role == models.RoleParent {
			parentID = account.ID
		}
		if parentID != "" {
			s.notifications.Notify(ctx, parentID, "",
				models.NotificationRewardRedeemed,
				"Reward redeemed",
				fmt.Sprintf("%s redeemed %q for %d points", spenderID, reward.Title, reward.Cost.Int()))
		}
	}
	return nil
}

// Deactivate retires a reward without deleting it, so past redemptions
// keep resolving.
func (s *RewardService) Deactivate(ctx context.Context, rewardID string) error {
	account := s.sessions.ActiveAccount()
	if account == nil {
		return ErrNotLoggedIn
	}
	if account.Role != models.RoleParent {
		return ErrNotParentSession
	}

	found, err := s.rewards.Update(ctx, rewardID, func(r *models.Reward) {
		if r.CreatedBy == account.ID {
			r.IsActive = false
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrRewardNotFound
	}
	return nil
}

// removeLast drops the last occurrence of id from ids.
func removeLast(ids []string, id string) []string {
	for i := len(ids) - 1; i >= 0; i-- {
		if ids[i] == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// ListForSession returns the rewards relevant to the signed-in account: a
// parent sees its whole catalog, a child sees what it can redeem right
// now.
func (s *RewardService) ListForSession(ctx context.Context) ([]models.Reward, error) {
	account := s.sessions.ActiveAccount()
	if account == nil {
		return nil, ErrNotLoggedIn
	}

	all, err := s.rewards.List(ctx)
	if err != nil {
		return nil, err
	}
	visible := []models.Reward{}
	for _, r := range all {
		switch account.Role {
		case models.RoleChild:
			if r.CreatedBy == account.ParentID && r.AvailableTo(account.ChildID) {
				visible = append(visible, r)
			}
		default:
			if r.CreatedBy == account.ID {
				visible = append(visible, r)
			}
		}
	}
	return visible, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"questbuddy/internal/models"
	"questbuddy/internal/repository"
)

// QuestService manages the quest catalog and routes completions through
// the session engine so progress lands on the right child.
type QuestService struct {
	quests        *repository.QuestRepository
	accounts      *repository.AccountRepository
	sessions      *SessionService
	notifications *NotificationService
}

func NewQuestService(quests *repository.QuestRepository, accounts *repository.AccountRepository, sessions *SessionService, notifications *NotificationService) *QuestService {
	return &QuestService{
		quests:        quests,
		accounts:      accounts,
		sessions:      sessions,
		notifications: notifications,
	}
}

// Create adds a quest owned by the signed-in parent.
func (s *QuestService) Create(ctx context.Context, draft models.QuestDraft) (*models.Quest, error) {
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
	quest := models.Quest{
		ID:          fmt.Sprintf("quest-%d", time.Now().UnixMilli()),
		Title:       draft.Title,
		Description: draft.Description,
		XPReward:    draft.XPReward,
		CoinReward:  draft.CoinReward,
		Category:    draft.Category,
		AssignedTo:  assigned,
		CreatedBy:   account.ID,
		CreatedAt:   time.Now(),
	}

	all, err := s.quests.List(ctx)
	if err != nil {
		return nil, err
	}
	all = append(all, quest)
	if err := s.quests.SaveAll(ctx, all); err != nil {
		return nil, err
	}
	return &quest, nil
}

// Complete marks a quest done for the signed-in child, credits XP and
// points, and notifies the parent. Completing an already completed quest
// fails: the one-time transition guards double crediting.
func (s *QuestService) Complete(ctx context.Context, questID string) (*models.Quest, bool, error) {
	account := s.sessions.ActiveAccount()
	if account == nil {
		return nil, false, ErrNotLoggedIn
	}
	if account.Role != models.RoleChild {
		return nil, false, ErrNotChildSession
	}

	quest, err := s.quests.FindByID(ctx, questID)
	if err != nil {
		return nil, false, err
	}
	if quest == nil {
		return nil, false, ErrQuestNotFound
	}
	if quest.IsCompleted {
		return nil, false, ErrQuestAlreadyComplete
	}

	now := time.Now()
	if _, err := s.quests.Update(ctx, questID, func(q *models.Quest) {
		q.IsCompleted = true
		q.CompletedAt = &now
	}); err != nil {
		return nil, false, err
	}
	quest.IsCompleted = true
	quest.CompletedAt = &now

	entry := models.CompletedQuestEntry{
		ID:           quest.ID,
		Title:        quest.Title,
		CompletedAt:  now,
		PointsEarned: quest.CoinReward,
		Category:     quest.Category,
	}
	leveledUp, err := s.sessions.RecordQuestCompletion(ctx, entry, quest.XPReward, quest.CoinReward)
	if err != nil {
		return nil, false, err
	}

	if s.notifications != nil && account.ParentID != "" {
		s.notifications.Notify(ctx, account.ParentID, "",
			models.NotificationQuestCompleted,
			"Quest completed",
			fmt.Sprintf("%s completed %q and earned %d points", account.Name, quest.Title, quest.CoinReward.Int()))
		if leveledUp {
			if refreshed := s.sessions.ActiveAccount(); refreshed != nil {
				s.notifications.Notify(ctx, account.ParentID, "",
					models.NotificationLevelUp,
					"Level up!",
					fmt.Sprintf("%s reached level %d", account.Name, refreshed.Level.Int()))
			}
		}
	}
	return quest, leveledUp, nil
}

// Verify lets the signed-in parent confirm a completed quest.
func (s *QuestService) Verify(ctx context.Context, questID string) error {
	account := s.sessions.ActiveAccount()
	if account == nil {
		return ErrNotLoggedIn
	}
	if account.Role != models.RoleParent {
		return ErrNotParentSession
	}

	now := time.Now()
	verified := false
	found, err := s.quests.Update(ctx, questID, func(q *models.Quest) {
		if q.CreatedBy != account.ID || !q.IsCompleted || q.IsVerified {
			return
		}
		q.IsVerified = true
		q.VerifiedAt = &now
		verified = true
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrQuestNotFound
	}
	if !verified {
		return fmt.Errorf("quest %s cannot be verified", questID)
	}
	return nil
}

// Remove deletes a quest owned by the signed-in parent.
func (s *QuestService) Remove(ctx context.Context, questID string) error {
	account := s.sessions.ActiveAccount()
	if account == nil {
		return ErrNotLoggedIn
	}
	if account.Role != models.RoleParent {
		return ErrNotParentSession
	}

	all, err := s.quests.List(ctx)
	if err != nil {
		return err
	}
	kept := all[:0]
	found := false
	for _, q := range all {
		if q.ID == questID && q.CreatedBy == account.ID {
			found = true
			continue
		}
		kept = append(kept, q)
	}
	if !found {
		return ErrQuestNotFound
	}
	return s.quests.SaveAll(ctx, kept)
}

// ListForSession returns the quests visible to the signed-in account: a
// parent sees what it created, a child sees its parent's quests that are
// assigned to it or to everyone.
func (s *QuestService) ListForSession(ctx context.Context) ([]models.Quest, error) {
	account := s.sessions.ActiveAccount()
	if account == nil {
		return nil, ErrNotLoggedIn
	}

	all, err := s.quests.List(ctx)
	if err != nil {
		return nil, err
	}
	visible := []models.Quest{}
	for _, q := range all {
		switch account.Role {
		case models.RoleChild:
			if q.CreatedBy == account.ParentID && q.AssignedToChild(account.ChildID) {
				visible = append(visible, q)
			}
		default:
			if q.CreatedBy == account.ID {
				visible = append(visible, q)
			}
		}
	}
	return visible, nil
}

// CleanupOrphaned drops quests whose creator is no longer a known
// account. Runs opportunistically, never as part of a user-visible
// operation's failure path.
func (s *QuestService) CleanupOrphaned(ctx context.Context) (int, error) {
	known := map[string]bool{}
	for _, id := range s.accounts.KnownIDs() {
		known[id] = true
	}
	if account := s.sessions.ActiveAccount(); account != nil {
		known[account.ID] = true
		if account.ParentID != "" {
			known[account.ParentID] = true
		}
	}

	all, err := s.quests.List(ctx)
	if err != nil {
		return 0, err
	}
	kept := all[:0]
	removed := 0
	for _, q := range all {
		if known[q.CreatedBy] {
			kept = append(kept, q)
		} else {
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	if err := s.quests.SaveAll(ctx, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

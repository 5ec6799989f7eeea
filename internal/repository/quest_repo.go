package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"questbuddy/internal/models"
	"questbuddy/internal/storage"
)

// QuestRepository serializes the quest ledger through the store under the
// quests key. An absent or unreadable record reads as an empty ledger.
type QuestRepository struct {
	store storage.Store
}

// NewQuestRepository creates a new quest repository
func NewQuestRepository(store storage.Store) *QuestRepository {
	return &QuestRepository{store: store}
}

// List loads every quest in the ledger
func (r *QuestRepository) List(ctx context.Context) ([]models.Quest, error) {
	value, ok, err := r.store.Get(ctx, storage.KeyQuests)
	if err != nil {
		return nil, fmt.Errorf("failed to load quests: %w", err)
	}
	if !ok {
		return []models.Quest{}, nil
	}

	var quests []models.Quest
	if err := json.Unmarshal([]byte(value), &quests); err != nil {
		log.Printf("Failed to decode quest ledger, treating as empty: %v", err)
		return []models.Quest{}, nil
	}
	return quests, nil
}

// FindByID returns the quest with the given ID, or nil if absent
func (r *QuestRepository) FindByID(ctx context.Context, questID string) (*models.Quest, error) {
	quests, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range quests {
		if quests[i].ID == questID {
			return &quests[i], nil
		}
	}
	return nil, nil
}

// SaveAll replaces the whole quest ledger
func (r *QuestRepository) SaveAll(ctx context.Context, quests []models.Quest) error {
	data, err := json.Marshal(quests)
	if err != nil {
		return fmt.Errorf("failed to encode quests: %w", err)
	}
	if err := r.store.Set(ctx, storage.KeyQuests, string(data)); err != nil {
		return fmt.Errorf("failed to save quests: %w", err)
	}
	return nil
}

// Update applies fn to the quest with the given ID and persists the
// ledger. It returns false without error when the quest does not exist.
func (r *QuestRepository) Update(ctx context.Context, questID string, fn func(*models.Quest)) (bool, error) {
	quests, err := r.List(ctx)
	if err != nil {
		return false, err
	}

	for i := range quests {
		if quests[i].ID == questID {
			fn(&quests[i])
			return true, r.SaveAll(ctx, quests)
		}
	}
	return false, nil
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"questbuddy/internal/models"
	"questbuddy/internal/storage"
)

// RewardRepository serializes the reward catalog through the store under
// the rewards key. An absent or unreadable record reads as an empty
// catalog.
type RewardRepository struct {
	store storage.Store
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(store storage.Store) *RewardRepository {
	return &RewardRepository{store: store}
}

// List loads every reward in the catalog
func (r *RewardRepository) List(ctx context.Context) ([]models.Reward, error) {
	value, ok, err := r.store.Get(ctx, storage.KeyRewards)
	if err != nil {
		return nil, fmt.Errorf("failed to load rewards: %w", err)
	}
	if !ok {
		return []models.Reward{}, nil
	}

	var rewards []models.Reward
	if err := json.Unmarshal([]byte(value), &rewards); err != nil {
		log.Printf("Failed to decode reward catalog, treating as empty: %v", err)
		return []models.Reward{}, nil
	}
	return rewards, nil
}

// FindByID returns the reward with the given ID, or nil if absent
func (r *RewardRepository) FindByID(ctx context.Context, rewardID string) (*models.Reward, error) {
	rewards, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rewards {
		if rewards[i].ID == rewardID {
			return &rewards[i], nil
		}
	}
	return nil, nil
}

// SaveAll replaces the whole reward catalog
func (r *RewardRepository) SaveAll(ctx context.Context, rewards []models.Reward) error {
	data, err := json.Marshal(rewards)
	if err != nil {
		return fmt.Errorf("failed to encode rewards: %w", err)
	}
	if err := r.store.Set(ctx, storage.KeyRewards, string(data)); err != nil {
		return fmt.Errorf("failed to save rewards: %w", err)
	}
	return nil
}

// Update applies fn to the reward with the given ID and persists the
// catalog. It returns false without error when the reward does not exist.
func (r *RewardRepository) Update(ctx context.Context, rewardID string, fn func(*models.Reward)) (bool, error) {
	rewards, err := r.List(ctx)
	if err != nil {
		return false, err
	}

	for i := range rewards {
		if rewards[i].ID == rewardID {
			fn(&rewards[i])
			return true, r.SaveAll(ctx, rewards)
		}
	}
	return false, nil
}

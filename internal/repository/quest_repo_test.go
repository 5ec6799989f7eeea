package repository

import (
	"context"
	"testing"
	"time"

	"questbuddy/internal/models"
	"questbuddy/internal/storage"
)

func TestQuestRepositoryRoundTrip(t *testing.T) {
	repo := NewQuestRepository(storage.NewMemStore())
	ctx := context.Background()

	quests, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(quests) != 0 {
		t.Errorf("empty store should list no quests, got %d", len(quests))
	}

	quest := models.Quest{
		ID:        "quest-1",
		Title:     "Make the bed",
		XPReward:  10,
		CreatedBy: "parent1",
		CreatedAt: time.Now(),
	}
	if err := repo.SaveAll(ctx, []models.Quest{quest}); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	found, err := repo.FindByID(ctx, "quest-1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found == nil || found.Title != "Make the bed" {
		t.Errorf("FindByID = %+v", found)
	}

	missing, err := repo.FindByID(ctx, "quest-2")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown quest, got %+v", missing)
	}
}

func TestQuestRepositoryUpdate(t *testing.T) {
	repo := NewQuestRepository(storage.NewMemStore())
	ctx := context.Background()

	if err := repo.SaveAll(ctx, []models.Quest{{ID: "quest-1", Title: "Original"}}); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	found, err := repo.Update(ctx, "quest-1", func(q *models.Quest) {
		q.IsCompleted = true
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !found {
		t.Fatal("Update should find quest-1")
	}

	quest, _ := repo.FindByID(ctx, "quest-1")
	if !quest.IsCompleted {
		t.Error("update was not persisted")
	}

	found, err = repo.Update(ctx, "quest-9", func(q *models.Quest) {})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if found {
		t.Error("Update should report false for unknown quest")
	}
}

func TestQuestRepositoryToleratesCorruptData(t *testing.T) {
	store := storage.NewMemStore()
	ctx := context.Background()
	if err := store.Set(ctx, storage.KeyQuests, "{not json"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	repo := NewQuestRepository(store)
	quests, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List should degrade, got error: %v", err)
	}
	if len(quests) != 0 {
		t.Errorf("corrupt data should list as empty, got %d", len(quests))
	}
}

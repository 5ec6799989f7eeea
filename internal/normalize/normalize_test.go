package normalize

import (
	"testing"
	"time"

	"questbuddy/internal/models"
)

func TestCompletedQuestDefaults(t *testing.T) {
	tests := []struct {
		name             string
		entry            models.CompletedQuestEntry
		expectedTitle    string
		expectedCategory string
	}{
		{
			name:             "bare id gets defaults",
			entry:            models.CompletedQuestEntry{ID: "quest-1"},
			expectedTitle:    DefaultQuestTitle,
			expectedCategory: DefaultQuestCategory,
		},
		{
			name: "full entry unchanged",
			entry: models.CompletedQuestEntry{
				ID:       "quest-2",
				Title:    "Feed the cat",
				Category: "pets",
			},
			expectedTitle:    "Feed the cat",
			expectedCategory: "pets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompletedQuest(tt.entry)
			if got.Title != tt.expectedTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.expectedTitle)
			}
			if got.Category != tt.expectedCategory {
				t.Errorf("Category = %q, want %q", got.Category, tt.expectedCategory)
			}
			if got.CompletedAt.IsZero() {
				t.Error("CompletedAt should be filled")
			}
		})
	}
}

func TestNormalizationIsIdempotent(t *testing.T) {
	entry := CompletedQuest(models.CompletedQuestEntry{ID: "quest-1"})
	again := CompletedQuest(entry)
	if entry != again {
		t.Errorf("second pass changed the entry: %+v vs %+v", entry, again)
	}

	reward := RedeemedReward(models.RedeemedRewardEntry{ID: "reward_1"})
	againR := RedeemedReward(reward)
	if reward != againR {
		t.Errorf("second pass changed the entry: %+v vs %+v", reward, againR)
	}
}

func TestMergeCompletedQuestsDeduplicates(t *testing.T) {
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	shared := models.CompletedQuestEntry{ID: "quest-1", Title: "Shared", Category: "chores", CompletedAt: at}
	onlyNew := models.CompletedQuestEntry{ID: "quest-2", Title: "New", Category: "chores", CompletedAt: at.Add(time.Hour)}
	onlyOld := models.CompletedQuestEntry{ID: "quest-3", Title: "Old", Category: "chores", CompletedAt: at.Add(-time.Hour)}

	merged := MergeCompletedQuests(
		[]models.CompletedQuestEntry{onlyNew, shared},
		[]models.CompletedQuestEntry{shared, onlyOld},
	)

	if len(merged) != 3 {
		t.Fatalf("expected 3 entries after dedupe, got %d", len(merged))
	}
	if merged[0].ID != "quest-2" {
		t.Errorf("newer entries should come first, got %s", merged[0].ID)
	}
	count := 0
	for _, e := range merged {
		if e.ID == "quest-1" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("shared entry appears %d times, want 1", count)
	}
}

func TestMergeKeepsRepeatedIDsWithDifferentTimes(t *testing.T) {
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	first := models.RedeemedRewardEntry{ID: "reward_1", Name: "Ice cream", RedeemedAt: at}
	second := models.RedeemedRewardEntry{ID: "reward_1", Name: "Ice cream", RedeemedAt: at.Add(time.Hour)}

	merged := MergeRedeemedRewards(
		[]models.RedeemedRewardEntry{second},
		[]models.RedeemedRewardEntry{first},
	)
	if len(merged) != 2 {
		t.Errorf("distinct redemptions of the same reward collapsed: got %d entries", len(merged))
	}
}

func TestChildRecordFloorsLevel(t *testing.T) {
	c := &models.ChildRecord{ID: "c1", Level: 0}
	ChildRecord(c)
	if c.Level != 1 {
		t.Errorf("Level = %d, want 1", c.Level)
	}
	if c.CompletedQuests == nil || c.RedeemedRewards == nil {
		t.Error("ledgers should never be nil after normalization")
	}
}

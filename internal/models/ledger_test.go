package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCompletedQuestEntryUnmarshal(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		expectedID   string
		expectedName string
		expectedPts  int
	}{
		{
			name:       "legacy bare string",
			input:      `"quest-123"`,
			expectedID: "quest-123",
		},
		{
			name:         "structured entry",
			input:        `{"id":"quest-1","title":"Wash dishes","pointsEarned":5,"category":"chores"}`,
			expectedID:   "quest-1",
			expectedName: "Wash dishes",
			expectedPts:  5,
		},
		{
			name:        "points as numeric string",
			input:       `{"id":"quest-2","pointsEarned":"15"}`,
			expectedID:  "quest-2",
			expectedPts: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entry CompletedQuestEntry
			if err := json.Unmarshal([]byte(tt.input), &entry); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if entry.ID != tt.expectedID {
				t.Errorf("ID = %q, want %q", entry.ID, tt.expectedID)
			}
			if entry.Title != tt.expectedName {
				t.Errorf("Title = %q, want %q", entry.Title, tt.expectedName)
			}
			if entry.PointsEarned.Int() != tt.expectedPts {
				t.Errorf("PointsEarned = %d, want %d", entry.PointsEarned.Int(), tt.expectedPts)
			}
		})
	}
}

func TestRedeemedRewardEntryUnmarshal(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		expectedID   string
		expectedCost int
	}{
		{
			name:       "legacy bare string",
			input:      `"reward_9"`,
			expectedID: "reward_9",
		},
		{
			name:         "structured entry",
			input:        `{"id":"reward_1","name":"Ice cream","cost":20}`,
			expectedID:   "reward_1",
			expectedCost: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entry RedeemedRewardEntry
			if err := json.Unmarshal([]byte(tt.input), &entry); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if entry.ID != tt.expectedID {
				t.Errorf("ID = %q, want %q", entry.ID, tt.expectedID)
			}
			if entry.Cost.Int() != tt.expectedCost {
				t.Errorf("Cost = %d, want %d", entry.Cost.Int(), tt.expectedCost)
			}
		})
	}
}

func TestMixedLedgerUnmarshal(t *testing.T) {
	input := `["quest-old",{"id":"quest-new","title":"Tidy room","completedAt":"2024-05-01T10:00:00Z","pointsEarned":5}]`

	var entries []CompletedQuestEntry
	if err := json.Unmarshal([]byte(input), &entries); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "quest-old" || entries[0].Title != "" {
		t.Errorf("legacy entry decoded wrong: %+v", entries[0])
	}
	if entries[1].Title != "Tidy room" {
		t.Errorf("structured entry decoded wrong: %+v", entries[1])
	}
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if !entries[1].CompletedAt.Equal(want) {
		t.Errorf("CompletedAt = %v, want %v", entries[1].CompletedAt, want)
	}
}

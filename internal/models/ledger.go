package models

import (
	"encoding/json"
	"time"
)

// CompletedQuestEntry is one append-only record of a quest completion.
// Older persisted histories stored completions as bare quest ID strings;
// UnmarshalJSON accepts that legacy shape so a mixed-version history loads
// without data loss. Descriptive fields of a legacy entry are left empty
// here and filled with defaults by the normalize package.
type CompletedQuestEntry struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CompletedAt  time.Time `json:"completedAt"`
	PointsEarned FlexInt   `json:"pointsEarned"`
	Category     string    `json:"category"`
}

func (e *CompletedQuestEntry) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*e = CompletedQuestEntry{ID: id}
		return nil
	}

	type entryAlias CompletedQuestEntry
	var a entryAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = CompletedQuestEntry(a)
	return nil
}

// RedeemedRewardEntry is one append-only record of a reward redemption.
// The same legacy bare-string contract applies as for CompletedQuestEntry.
type RedeemedRewardEntry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Cost       FlexInt   `json:"cost"`
	RedeemedAt time.Time `json:"redeemedAt"`
	Category   string    `json:"category"`
}

func (e *RedeemedRewardEntry) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*e = RedeemedRewardEntry{ID: id}
		return nil
	}

	type entryAlias RedeemedRewardEntry
	var a entryAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = RedeemedRewardEntry(a)
	return nil
}

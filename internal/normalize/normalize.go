// Package normalize coerces ledger entries from the mixed shapes found in
// persisted histories into one canonical structured form. Every boundary
// that merges ledger lists runs them through here, so nothing above this
// package ever sees a partial or legacy-shaped entry.
package normalize

import (
	"time"

	"questbuddy/internal/models"
)

// Defaults applied to fields a legacy entry could not carry
const (
	DefaultQuestTitle    = "Completed quest"
	DefaultQuestCategory = "custom"
	DefaultRewardName    = "Redeemed reward"
	DefaultRewardCategory = "other"
)

// CompletedQuest fills the descriptive fields of an entry that was
// synthesized from a bare quest ID. Total and idempotent: a fully-formed
// entry passes through unchanged.
func CompletedQuest(e models.CompletedQuestEntry) models.CompletedQuestEntry {
	if e.Title == "" {
		e.Title = DefaultQuestTitle
	}
	if e.Category == "" {
		e.Category = DefaultQuestCategory
	}
	if e.CompletedAt.IsZero() {
		e.CompletedAt = time.Now()
	}
	return e
}

// RedeemedReward is the redemption counterpart of CompletedQuest
func RedeemedReward(e models.RedeemedRewardEntry) models.RedeemedRewardEntry {
	if e.Name == "" {
		e.Name = DefaultRewardName
	}
	if e.Category == "" {
		e.Category = DefaultRewardCategory
	}
	if e.RedeemedAt.IsZero() {
		e.RedeemedAt = time.Now()
	}
	return e
}

// CompletedQuests normalizes every entry in a list, never returning nil
func CompletedQuests(entries []models.CompletedQuestEntry) []models.CompletedQuestEntry {
	out := make([]models.CompletedQuestEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, CompletedQuest(e))
	}
	return out
}

// RedeemedRewards normalizes every entry in a list, never returning nil
func RedeemedRewards(entries []models.RedeemedRewardEntry) []models.RedeemedRewardEntry {
	out := make([]models.RedeemedRewardEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, RedeemedReward(e))
	}
	return out
}

// MergeCompletedQuests concatenates two histories, newest side first, after
// normalizing both. The same event reaches a merge through more than one
// persisted copy (live session, child profile, parent roster), so entries
// are deduplicated by ID and timestamp, keeping the first occurrence.
func MergeCompletedQuests(newer, older []models.CompletedQuestEntry) []models.CompletedQuestEntry {
	seen := make(map[questKey]bool, len(newer)+len(older))
	out := make([]models.CompletedQuestEntry, 0, len(newer)+len(older))
	for _, e := range append(CompletedQuests(newer), CompletedQuests(older)...) {
		k := questKey{id: e.ID, at: e.CompletedAt.UnixNano()}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}

// MergeRedeemedRewards is the redemption counterpart of MergeCompletedQuests
func MergeRedeemedRewards(newer, older []models.RedeemedRewardEntry) []models.RedeemedRewardEntry {
	seen := make(map[questKey]bool, len(newer)+len(older))
	out := make([]models.RedeemedRewardEntry, 0, len(newer)+len(older))
	for _, e := range append(RedeemedRewards(newer), RedeemedRewards(older)...) {
		k := questKey{id: e.ID, at: e.RedeemedAt.UnixNano()}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}

type questKey struct {
	id string
	at int64
}

// ChildRecord normalizes both ledger lists of a roster entry in place
func ChildRecord(c *models.ChildRecord) {
	c.CompletedQuests = CompletedQuests(c.CompletedQuests)
	c.RedeemedRewards = RedeemedRewards(c.RedeemedRewards)
	if c.Level < 1 {
		c.Level = 1
	}
}

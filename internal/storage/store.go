// Package storage defines the key-value store the whole application
// persists through. Values are JSON text; every key may be absent on a
// fresh install and callers must treat a missing key as "no data".
package storage

import "context"

// Persisted store keys, stable across versions
const (
	KeyAccount       = "account"
	KeyChildProfile  = "child_profile"
	KeyQuests        = "quests"
	KeyRewards       = "rewards"
	KeyParentBackup  = "parent_backup"
	KeyNotifications = "notifications"
)

// AllKeys lists every key the application persists, in backup order
var AllKeys = []string{
	KeyAccount,
	KeyChildProfile,
	KeyQuests,
	KeyRewards,
	KeyParentBackup,
	KeyNotifications,
}

// Store is the asynchronous key-value persistence interface. Get reports
// absence through its boolean rather than an error; errors are reserved
// for real storage failures.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

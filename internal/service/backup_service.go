package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"questbuddy/internal/storage"
)

// BackupData represents the complete store backup structure. Entries are
// the raw persisted documents keyed by store key, so a backup survives
// schema drift in the documents themselves.
type BackupData struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Entries    map[string]string `json:"entries"`
}

// BackupService handles store backup and restore operations
type BackupService struct {
	store storage.Store
}

// NewBackupService creates a new backup service
func NewBackupService(store storage.Store) *BackupService {
	return &BackupService{store: store}
}

// Export writes a complete backup of the store to a file.
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	log.Println("Starting store export...")

	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Entries:    map[string]string{},
	}
	for _, key := range storage.AllKeys {
		value, ok, err := s.store.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to export %s: %w", key, err)
		}
		if ok {
			backup.Entries[key] = value
		}
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Store exported successfully to %s (%d entries)", outputPath, len(backup.Entries))
	return nil
}

// Import restores the store from a backup file. Keys present in the
// backup are overwritten; keys absent from it are left alone.
func (s *BackupService) Import(ctx context.Context, inputPath string) error {
	log.Printf("Starting store import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file)
}

// ImportFromReader restores the store from a backup reader (for file uploads)
func (s *BackupService) ImportFromReader(ctx context.Context, reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	for key, value := range backup.Entries {
		if err := s.store.Set(ctx, key, value); err != nil {
			return fmt.Errorf("failed to import %s: %w", key, err)
		}
	}

	log.Printf("Store import completed successfully (%d entries)", len(backup.Entries))
	return nil
}

// Clear removes every known store key.
func (s *BackupService) Clear(ctx context.Context) error {
	for _, key := range storage.AllKeys {
		if err := s.store.Remove(ctx, key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
		log.Printf("Cleared key: %s", key)
	}
	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"testing"

	"questbuddy/internal/models"
	"questbuddy/internal/storage"
)

func TestFindByCredential(t *testing.T) {
	repo := NewAccountRepository(storage.NewMemStore(), DefaultFixtures())
	ctx := context.Background()

	tests := []struct {
		name      string
		email     string
		secret    string
		wantMatch bool
	}{
		{name: "valid credentials", email: "parent@example.com", secret: "password123", wantMatch: true},
		{name: "wrong password", email: "parent@example.com", secret: "password124", wantMatch: false},
		{name: "email is case sensitive", email: "Parent@example.com", secret: "password123", wantMatch: false},
		{name: "unknown email", email: "nobody@example.com", secret: "password123", wantMatch: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := repo.FindByCredential(ctx, tt.email, tt.secret)
			if err != nil {
				t.Fatalf("FindByCredential failed: %v", err)
			}
			if (account != nil) != tt.wantMatch {
				t.Errorf("match = %v, want %v", account != nil, tt.wantMatch)
			}
		})
	}
}

func TestFindByCredentialChecksPersistedAccount(t *testing.T) {
	store := storage.NewMemStore()
	repo := NewAccountRepository(store, nil)
	ctx := context.Background()

	persisted := models.Account{
		ID:     "user_42",
		Email:  "registered@example.com",
		Secret: "secret",
		Role:   models.RoleParent,
	}
	data, _ := json.Marshal(persisted)
	if err := store.Set(ctx, storage.KeyAccount, string(data)); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	account, err := repo.FindByCredential(ctx, "registered@example.com", "secret")
	if err != nil {
		t.Fatalf("FindByCredential failed: %v", err)
	}
	if account == nil || account.ID != "user_42" {
		t.Errorf("persisted account not found: %+v", account)
	}
}

func TestFindByAccessCode(t *testing.T) {
	repo := NewAccountRepository(storage.NewMemStore(), DefaultFixtures())
	ctx := context.Background()

	tests := []struct {
		name        string
		code        string
		wantChildID string
	}{
		{name: "exact code", code: "CHILD1-CODE", wantChildID: "child1"},
		{name: "lowercase code", code: "child2-code", wantChildID: "child2"},
		{name: "whitespace around code", code: "  CHILD1-CODE ", wantChildID: "child1"},
		{name: "unknown code", code: "XXXX-XXXX", wantChildID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := repo.FindByAccessCode(ctx, tt.code)
			if err != nil {
				t.Fatalf("FindByAccessCode failed: %v", err)
			}
			if tt.wantChildID == "" {
				if match != nil {
					t.Errorf("expected no match, got child %s", match.Child.ID)
				}
				return
			}
			if match == nil {
				t.Fatal("expected a match, got none")
			}
			if match.Child.ID != tt.wantChildID {
				t.Errorf("Child.ID = %s, want %s", match.Child.ID, tt.wantChildID)
			}
			if match.Parent.ID != "parent1" {
				t.Errorf("Parent.ID = %s, want parent1", match.Parent.ID)
			}
		})
	}
}

func TestFindByAccessCodeFirstMatchWins(t *testing.T) {
	fixtures := DefaultFixtures()
	duplicate := fixtures[0].Clone()
	duplicate.ID = "parent2"
	duplicate.Children[0].ID = "other-child"
	fixtures = append(fixtures, duplicate)

	repo := NewAccountRepository(storage.NewMemStore(), fixtures)
	match, err := repo.FindByAccessCode(context.Background(), "CHILD1-CODE")
	if err != nil {
		t.Fatalf("FindByAccessCode failed: %v", err)
	}
	if match == nil || match.Child.ID != "child1" {
		t.Errorf("expected first fixture's child1 to win, got %+v", match)
	}
}

func TestRegisterAndUpsert(t *testing.T) {
	repo := NewAccountRepository(storage.NewMemStore(), nil)

	account := repo.Register(AccountDraft{
		Name:   "New Parent",
		Email:  "new@example.com",
		Secret: "pw",
	})
	if account.Role != models.RoleParent {
		t.Errorf("Role = %s, want parent", account.Role)
	}
	if account.Children == nil {
		t.Error("Children should be initialized")
	}

	found, err := repo.FindByCredential(context.Background(), "new@example.com", "pw")
	if err != nil {
		t.Fatalf("FindByCredential failed: %v", err)
	}
	if found == nil || found.ID != account.ID {
		t.Fatalf("registered account not in directory: %+v", found)
	}

	found.Name = "Renamed"
	repo.Upsert(found)
	again, _ := repo.FindByCredential(context.Background(), "new@example.com", "pw")
	if again.Name != "Renamed" {
		t.Errorf("upsert did not replace the record, name = %s", again.Name)
	}

	ids := repo.KnownIDs()
	if len(ids) != 1 || ids[0] != account.ID {
		t.Errorf("KnownIDs = %v, want [%s]", ids, account.ID)
	}
}

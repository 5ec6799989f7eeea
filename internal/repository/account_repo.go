package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"questbuddy/internal/credentials"
	"questbuddy/internal/models"
	"questbuddy/internal/storage"
)

// AccountRepository owns the directory of known accounts. The directory is
// an injected in-memory list seeded at startup (a stand-in for a real user
// service) plus whatever account is currently persisted in the store.
type AccountRepository struct {
	mu       sync.Mutex
	store    storage.Store
	accounts []*models.Account
}

// AccountDraft holds the caller-supplied fields for registration
type AccountDraft struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Secret string `json:"password"`
	Avatar string `json:"avatar"`
}

// AccessCodeMatch pairs a matched child with its owning parent account.
// Child points into Parent's roster.
type AccessCodeMatch struct {
	Parent *models.Account
	Child  *models.ChildRecord
}

// NewAccountRepository creates a repository seeded with the given fixture
// accounts. Fixtures are cloned so callers keep no aliases into the
// directory.
func NewAccountRepository(store storage.Store, fixtures []*models.Account) *AccountRepository {
	accounts := make([]*models.Account, 0, len(fixtures))
	for _, a := range fixtures {
		accounts = append(accounts, a.Clone())
	}
	return &AccountRepository{store: store, accounts: accounts}
}

// DefaultFixtures returns the development seed directory: one parent with
// two children holding known access codes.
func DefaultFixtures() []*models.Account {
	now := time.Now()
	return []*models.Account{
		{
			ID:     "parent1",
			Name:   "Parent User",
			Email:  "parent@example.com",
			Secret: "password123",
			Role:   models.RoleParent,
			Children: []models.ChildRecord{
				{
					ID:              "child1",
					Name:            "Child One",
					Level:           1,
					XP:              0,
					Points:          10,
					Avatar:          "👦",
					AccessCode:      "CHILD1-CODE",
					ParentID:        "parent1",
					CompletedQuests: []models.CompletedQuestEntry{},
					RedeemedRewards: []models.RedeemedRewardEntry{},
					CreatedAt:       now,
				},
				{
					ID:              "child2",
					Name:            "Child Two",
					Level:           2,
					XP:              150,
					Points:          25,
					Avatar:          "👧",
					AccessCode:      "CHILD2-CODE",
					ParentID:        "parent1",
					CompletedQuests: []models.CompletedQuestEntry{},
					RedeemedRewards: []models.RedeemedRewardEntry{},
					CreatedAt:       now,
				},
			},
			CreatedAt: now,
		},
	}
}

// FindByCredential returns the account matching both email and secret
// exactly, or nil when no account matches. The fixture directory is
// checked before the persisted current account.
func (r *AccountRepository) FindByCredential(ctx context.Context, email, secret string) (*models.Account, error) {
	r.mu.Lock()
	for _, a := range r.accounts {
		if a.Email == email && a.Secret == secret {
			match := a.Clone()
			r.mu.Unlock()
			return match, nil
		}
	}
	r.mu.Unlock()

	if current := r.readCurrent(ctx); current != nil {
		if current.Email == email && current.Secret == secret {
			return current, nil
		}
	}
	return nil, nil
}

// FindByAccessCode locates a child by access code across every known
// parent account. The code is trimmed and uppercased before comparison.
// Fixtures are searched before the persisted current account, in list
// order, and the first structural match wins; the ordering is the
// documented tie-break when two children carry the same code.
func (r *AccountRepository) FindByAccessCode(ctx context.Context, code string) (*AccessCodeMatch, error) {
	normalized := credentials.NormalizeAccessCode(code)
	if normalized == "" {
		return nil, nil
	}

	r.mu.Lock()
	for _, a := range r.accounts {
		if match := matchChild(a, normalized); match != nil {
			r.mu.Unlock()
			return match, nil
		}
	}
	r.mu.Unlock()

	if current := r.readCurrent(ctx); current != nil {
		if match := matchChild(current, normalized); match != nil {
			return match, nil
		}
	}
	return nil, nil
}

func matchChild(a *models.Account, normalizedCode string) *AccessCodeMatch {
	for i := range a.Children {
		if credentials.NormalizeAccessCode(a.Children[i].AccessCode) == normalizedCode {
			parent := a.Clone()
			return &AccessCodeMatch{Parent: parent, Child: &parent.Children[i]}
		}
	}
	return nil
}

// Register creates a parent account from the draft and adds it to the
// directory. The caller decides whether to persist it as the current
// session.
func (r *AccountRepository) Register(draft AccountDraft) *models.Account {
	account := &models.Account{
		ID:        fmt.Sprintf("user_%d", time.Now().UnixMilli()),
		Name:      draft.Name,
		Email:     draft.Email,
		Secret:    draft.Secret,
		Avatar:    draft.Avatar,
		Role:      models.RoleParent,
		Children:  []models.ChildRecord{},
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	r.accounts = append(r.accounts, account.Clone())
	r.mu.Unlock()

	return account
}

// Upsert replaces the directory entry with the same ID, or adds the
// account if it is not yet known.
func (r *AccountRepository) Upsert(account *models.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, a := range r.accounts {
		if a.ID == account.ID {
			r.accounts[i] = account.Clone()
			return
		}
	}
	r.accounts = append(r.accounts, account.Clone())
}

// KnownIDs returns the IDs of every account in the directory, used by the
// orphaned-quest cleanup predicate.
func (r *AccountRepository) KnownIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.accounts))
	for _, a := range r.accounts {
		ids = append(ids, a.ID)
	}
	return ids
}

// readCurrent loads the persisted current account. Storage failures and
// unreadable records degrade to "no data": login lookups must not fail
// because one stored record went bad.
func (r *AccountRepository) readCurrent(ctx context.Context) *models.Account {
	value, ok, err := r.store.Get(ctx, storage.KeyAccount)
	if err != nil {
		log.Printf("Failed to read current account: %v", err)
		return nil
	}
	if !ok {
		return nil
	}

	var account models.Account
	if err := json.Unmarshal([]byte(value), &account); err != nil {
		log.Printf("Failed to decode current account: %v", err)
		return nil
	}
	return &account
}

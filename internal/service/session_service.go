package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"questbuddy/internal/credentials"
	"questbuddy/internal/models"
	"questbuddy/internal/normalize"
	"questbuddy/internal/repository"
	"questbuddy/internal/storage"
)

// SessionService owns the device session: which account is active, the
// selected child profile, and the parent backup taken while a child is
// signed in. All reads and writes of the account, child_profile and
// parent_backup keys go through this service, serialized by its mutex.
type SessionService struct {
	mu       sync.Mutex
	store    storage.Store
	accounts *repository.AccountRepository

	state   models.SessionState
	account *models.Account
	child   *models.ChildRecord
}

func NewSessionService(store storage.Store, accounts *repository.AccountRepository) *SessionService {
	return &SessionService{
		store:    store,
		accounts: accounts,
		state:    models.StateLoggedOut,
	}
}

// Restore rebuilds session state from the store at startup. A persisted
// child-role account without a child profile is repaired from the session
// record's own fields.
func (s *SessionService) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account := s.readAccount(ctx, storage.KeyAccount)
	if account == nil {
		s.state = models.StateLoggedOut
		return
	}
	s.account = account

	if account.Role == models.RoleChild {
		child := s.readChildProfile(ctx)
		if child == nil {
			child = childRecordFromSession(account)
			log.Printf("Restored child session %s without a stored profile, rebuilt from session record", account.ID)
		}
		normalize.ChildRecord(child)
		s.child = child
		s.state = models.StateChildActive
		return
	}

	s.child = s.readChildProfile(ctx)
	s.state = models.StateParentActive
}

// State returns the current session state.
func (s *SessionService) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ActiveAccount returns a copy of the signed-in account, or nil.
func (s *SessionService) ActiveAccount() *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account.Clone()
}

// ActiveChild returns a copy of the selected child profile, or nil.
func (s *SessionService) ActiveChild() *models.ChildRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.child.Clone()
}

// Login signs in with an email and secret. On a parent match the first
// child in the roster is pre-selected so the dashboard has a profile to
// show.
func (s *SessionService) Login(ctx context.Context, email, secret string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.accounts.FindByCredential(ctx, email, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to look up credentials: %w", err)
	}
	if account == nil {
		return nil, ErrInvalidCredentials
	}
	if account.Role == models.RoleParent && account.Children == nil {
		account.Children = []models.ChildRecord{}
	}

	if err := s.writeJSON(ctx, storage.KeyAccount, account); err != nil {
		return nil, err
	}
	// A credential login starts a fresh session; a backup left behind by a
	// crashed child session belongs to nobody now.
	if err := s.store.Remove(ctx, storage.KeyParentBackup); err != nil {
		log.Printf("Failed to clear stale parent backup on login: %v", err)
	}

	if account.Role == models.RoleChild {
		child := childRecordFromSession(account)
		normalize.ChildRecord(child)
		if err := s.writeJSON(ctx, storage.KeyChildProfile, child); err != nil {
			return nil, err
		}
		s.account = account
		s.child = child
		s.state = models.StateChildActive
		return account.Clone(), nil
	}

	if len(account.Children) > 0 {
		child := account.Children[0].Clone()
		normalize.ChildRecord(child)
		if err := s.writeJSON(ctx, storage.KeyChildProfile, child); err != nil {
			return nil, err
		}
		s.child = child
	} else {
		if err := s.store.Remove(ctx, storage.KeyChildProfile); err != nil {
			log.Printf("Failed to clear child profile on login: %v", err)
		}
		s.child = nil
	}

	s.account = account
	s.state = models.StateParentActive
	return account.Clone(), nil
}

// Register creates a parent account and signs it in.
func (s *SessionService) Register(ctx context.Context, draft repository.AccountDraft) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account := s.accounts.Register(draft)
	if err := s.writeJSON(ctx, storage.KeyAccount, account); err != nil {
		return nil, err
	}
	if err := s.store.Remove(ctx, storage.KeyChildProfile); err != nil {
		log.Printf("Failed to clear child profile on registration: %v", err)
	}

	s.account = account
	s.child = nil
	s.state = models.StateParentActive
	return account.Clone(), nil
}

// LoginAsChild signs a child in by access code. The owning parent is
// persisted both as the backup and in the account directory, and a
// synthetic child-role session account takes over the account key. If the
// same child already held the device session, its in-flight progress
// carries over instead of the roster's values. Quest assignments are
// never touched at login: a quest with an empty assignment list stays
// visible to every sibling through the listing filter.
func (s *SessionService) LoginAsChild(ctx context.Context, code, avatar string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, err := s.accounts.FindByAccessCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up access code: %w", err)
	}
	if match == nil {
		return nil, ErrInvalidAccessCode
	}
	parent, child := match.Parent, match.Child

	// Read the prior session before the parent overwrites the account key.
	prior := s.readAccount(ctx, storage.KeyAccount)

	if avatar != "" {
		child.Avatar = avatar
	}
	normalize.ChildRecord(child)

	s.accounts.Upsert(parent)
	if err := s.writeJSON(ctx, storage.KeyAccount, parent); err != nil {
		return nil, err
	}
	if err := s.writeJSON(ctx, storage.KeyParentBackup, parent); err != nil {
		return nil, err
	}

	if err := s.writeJSON(ctx, storage.KeyChildProfile, child); err != nil {
		return nil, err
	}

	session := &models.Account{
		ID:              "child-" + child.ID,
		Name:            child.Name,
		Email:           child.ID + "@child.questbuddy",
		Role:            models.RoleChild,
		Avatar:          child.Avatar,
		ParentID:        parent.ID,
		ChildID:         child.ID,
		Points:          child.Points,
		XP:              child.XP,
		Level:           child.Level,
		CompletedQuests: normalize.CompletedQuests(child.CompletedQuests),
		RedeemedRewards: normalize.RedeemedRewards(child.RedeemedRewards),
		CreatedAt:       child.CreatedAt,
	}
	if prior != nil && prior.Role == models.RoleChild && prior.ChildID == child.ID {
		session.Points = prior.Points
		session.XP = prior.XP
		session.Level = prior.Level
		session.CompletedQuests = normalize.CompletedQuests(prior.CompletedQuests)
		session.RedeemedRewards = normalize.RedeemedRewards(prior.RedeemedRewards)
		if avatar == "" && prior.Avatar != "" {
			session.Avatar = prior.Avatar
		}
	}
	if session.Level < 1 {
		session.Level = 1
	}

	if err := s.writeJSON(ctx, storage.KeyAccount, session); err != nil {
		return nil, err
	}

	s.account = session
	s.child = child
	s.state = models.StateChildActive
	return session.Clone(), nil
}

// Logout ends the session. A child logout reconciles progress into the
// parent backup and hands the device back to the parent; a parent logout
// clears everything.
func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case models.StateLoggedOut:
		return nil

	case models.StateChildActive:
		snapshot := buildSnapshot(s.account, s.child)
		if err := s.syncChildToParentLocked(ctx, snapshot); err != nil {
			log.Printf("Failed to reconcile child progress on logout: %v", err)
		}
		if err := s.store.Remove(ctx, storage.KeyChildProfile); err != nil {
			log.Printf("Failed to clear child profile on logout: %v", err)
		}

		parent := s.readAccount(ctx, storage.KeyParentBackup)
		if parent == nil {
			// Nothing to return to, fall back to a full logout.
			s.clearSession(ctx)
			return nil
		}
		if err := s.writeJSON(ctx, storage.KeyAccount, parent); err != nil {
			return err
		}
		s.account = parent
		s.child = nil
		s.state = models.StateParentActive
		return nil

	default:
		s.clearSession(ctx)
		return nil
	}
}

// SelectChild switches the active child profile within a parent session.
// An unknown child ID is a no-op.
func (s *SessionService) SelectChild(ctx context.Context, childID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.StateParentActive {
		return ErrNotParentSession
	}
	child := s.account.FindChild(childID)
	if child == nil {
		return nil
	}
	selected := child.Clone()
	normalize.ChildRecord(selected)
	if err := s.writeJSON(ctx, storage.KeyChildProfile, selected); err != nil {
		return err
	}
	s.child = selected
	return nil
}

// UpdateAccount replaces the signed-in account record. The parent backup
// and the selected child profile are kept in step when they describe the
// same identity.
func (s *SessionService) UpdateAccount(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == models.StateLoggedOut {
		return ErrNotLoggedIn
	}
	if account == nil {
		return errors.New("account is required")
	}
	updated := account.Clone()
	if updated.Role == models.RoleParent && updated.Children == nil {
		updated.Children = []models.ChildRecord{}
	}

	s.accounts.Upsert(updated)
	if err := s.writeJSON(ctx, storage.KeyAccount, updated); err != nil {
		return err
	}
	if backup := s.readAccount(ctx, storage.KeyParentBackup); backup != nil && backup.ID == updated.ID {
		if err := s.writeJSON(ctx, storage.KeyParentBackup, updated); err != nil {
			return err
		}
	}
	s.account = updated

	if s.child != nil && updated.Role == models.RoleParent {
		if fresh := updated.FindChild(s.child.ID); fresh != nil {
			selected := fresh.Clone()
			normalize.ChildRecord(selected)
			if err := s.writeJSON(ctx, storage.KeyChildProfile, selected); err != nil {
				return err
			}
			s.child = selected
		}
	}
	return nil
}

// AddChild adds a child to the signed-in parent's roster with a freshly
// generated access code.
func (s *SessionService) AddChild(ctx context.Context, name, avatar string) (*models.ChildRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.StateParentActive {
		return nil, ErrNotParentSession
	}
	code, err := credentials.GenerateAccessCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate access code: %w", err)
	}
	child := models.ChildRecord{
		ID:              fmt.Sprintf("child_%d", time.Now().UnixMilli()),
		Name:            name,
		Avatar:          avatar,
		AccessCode:      code,
		Level:           1,
		ParentID:        s.account.ID,
		CompletedQuests: []models.CompletedQuestEntry{},
		RedeemedRewards: []models.RedeemedRewardEntry{},
		CreatedAt:       time.Now(),
	}
	s.account.Children = append(s.account.Children, child)
	if err := s.persistParentLocked(ctx); err != nil {
		return nil, err
	}
	return child.Clone(), nil
}

// RemoveChild drops a child from the roster. The quests the child was
// enrolled in keep their assignment entries; listings filter on the
// roster, not the other way around.
func (s *SessionService) RemoveChild(ctx context.Context, childID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.StateParentActive {
		return ErrNotParentSession
	}
	kept := s.account.Children[:0]
	found := false
	for _, c := range s.account.Children {
		if c.ID == childID {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return ErrChildNotFound
	}
	s.account.Children = kept
	if err := s.persistParentLocked(ctx); err != nil {
		return err
	}
	if s.child != nil && s.child.ID == childID {
		if err := s.store.Remove(ctx, storage.KeyChildProfile); err != nil {
			log.Printf("Failed to clear removed child profile: %v", err)
		}
		s.child = nil
	}
	return nil
}

// RegenerateAccessCode replaces a child's access code, invalidating the
// old one.
func (s *SessionService) RegenerateAccessCode(ctx context.Context, childID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.StateParentActive {
		return "", ErrNotParentSession
	}
	child := s.account.FindChild(childID)
	if child == nil {
		return "", ErrChildNotFound
	}
	code, err := credentials.GenerateAccessCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate access code: %w", err)
	}
	child.AccessCode = code
	if err := s.persistParentLocked(ctx); err != nil {
		return "", err
	}
	return code, nil
}

// SyncChildToParent folds a child snapshot into the parent record. The
// backup key always receives the merged parent; the account key only does
// when it currently holds the parent, because during an active child
// session it belongs to the child.
func (s *SessionService) SyncChildToParent(ctx context.Context, snapshot models.ChildSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncChildToParentLocked(ctx, snapshot)
}

// RecordQuestCompletion applies a completed quest to the active child
// session: the entry joins the ledger, XP and points are credited, the
// level is recomputed and the result is reconciled into the parent.
// Returns whether the credit crossed a level boundary.
func (s *SessionService) RecordQuestCompletion(ctx context.Context, entry models.CompletedQuestEntry, xpDelta, pointsDelta models.FlexInt) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.StateChildActive {
		return false, ErrNotChildSession
	}
	entry = normalize.CompletedQuest(entry)

	live, record := s.account, s.child
	oldLevel := live.Level
	live.XP += xpDelta
	live.Points += pointsDelta
	live.Level = levelForXP(live.XP)
	live.CompletedQuests = normalize.MergeCompletedQuests([]models.CompletedQuestEntry{entry}, live.CompletedQuests)

	record.XP = live.XP
	record.Points = live.Points
	record.Level = live.Level
	record.CompletedQuests = append([]models.CompletedQuestEntry(nil), live.CompletedQuests...)

	if err := s.writeJSON(ctx, storage.KeyAccount, live); err != nil {
		return false, err
	}
	if err := s.writeJSON(ctx, storage.KeyChildProfile, record); err != nil {
		return false, err
	}
	if err := s.syncChildToParentLocked(ctx, buildSnapshot(live, record)); err != nil {
		log.Printf("Failed to reconcile quest completion: %v", err)
	}
	return live.Level > oldLevel, nil
}

// RecordRedemption debits a child's balance and appends the redemption to
// the ledger. The spender resolves to the live session in a child session,
// or to the roster entry in a parent session. The check and the debit
// happen under the same lock, so the balance can never go negative.
func (s *SessionService) RecordRedemption(ctx context.Context, childID string, entry models.RedeemedRewardEntry, cost models.FlexInt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry = normalize.RedeemedReward(entry)

	switch s.state {
	case models.StateChildActive:
		live, record := s.account, s.child
		if childID != "" && live.ChildID != childID && record.ID != childID {
			return ErrChildNotFound
		}
		if live.Points < cost {
			return ErrInsufficientFunds
		}
		balance := live.Points - cost
		if balance < 0 {
			balance = 0
		}
		live.Points = balance
		live.RedeemedRewards = normalize.MergeRedeemedRewards([]models.RedeemedRewardEntry{entry}, live.RedeemedRewards)
		record.Points = balance
		record.RedeemedRewards = append([]models.RedeemedRewardEntry(nil), live.RedeemedRewards...)

		if err := s.writeJSON(ctx, storage.KeyAccount, live); err != nil {
			return err
		}
		if err := s.writeJSON(ctx, storage.KeyChildProfile, record); err != nil {
			return err
		}
		if err := s.syncChildToParentLocked(ctx, buildSnapshot(live, record)); err != nil {
			log.Printf("Failed to reconcile redemption: %v", err)
		}
		return nil

	case models.StateParentActive:
		child := s.account.FindChild(childID)
		if child == nil {
			return ErrChildNotFound
		}
		if child.Points < cost {
			return ErrInsufficientFunds
		}
		balance := child.Points - cost
		if balance < 0 {
			balance = 0
		}
		child.Points = balance
		child.RedeemedRewards = normalize.MergeRedeemedRewards([]models.RedeemedRewardEntry{entry}, child.RedeemedRewards)

		if err := s.persistParentLocked(ctx); err != nil {
			return err
		}
		if s.child != nil && s.child.ID == childID {
			selected := child.Clone()
			if err := s.writeJSON(ctx, storage.KeyChildProfile, selected); err != nil {
				return err
			}
			s.child = selected
		}
		return nil

	default:
		return ErrNotLoggedIn
	}
}

func (s *SessionService) syncChildToParentLocked(ctx context.Context, snapshot models.ChildSnapshot) error {
	if snapshot.ID == "" {
		return errors.New("child snapshot has no id")
	}

	parent := s.readAccount(ctx, storage.KeyParentBackup)
	if parent == nil {
		if current := s.readAccount(ctx, storage.KeyAccount); current != nil && current.Role == models.RoleParent {
			parent = current
		}
	}
	if parent == nil {
		return ErrNoParentRecord
	}
	if parent.Children == nil {
		parent.Children = []models.ChildRecord{}
	}

	if existing := parent.FindChild(snapshot.ID); existing != nil {
		existing.CompletedQuests = normalize.MergeCompletedQuests(snapshot.CompletedQuests, existing.CompletedQuests)
		existing.RedeemedRewards = normalize.MergeRedeemedRewards(snapshot.RedeemedRewards, existing.RedeemedRewards)
		if snapshot.Points != nil {
			existing.Points = *snapshot.Points
		}
		if snapshot.XP != nil {
			existing.XP = *snapshot.XP
		}
		if snapshot.Level != nil {
			existing.Level = *snapshot.Level
		}
		if snapshot.Name != "" {
			existing.Name = snapshot.Name
		}
		if snapshot.Avatar != "" {
			existing.Avatar = snapshot.Avatar
		}
	} else {
		parent.Children = append(parent.Children, models.ChildRecord{
			ID:              snapshot.ID,
			Name:            snapshot.Name,
			Avatar:          snapshot.Avatar,
			Points:          valueOr(snapshot.Points, 0),
			XP:              valueOr(snapshot.XP, 0),
			Level:           valueOr(snapshot.Level, 1),
			ParentID:        parent.ID,
			CompletedQuests: normalize.CompletedQuests(snapshot.CompletedQuests),
			RedeemedRewards: normalize.RedeemedRewards(snapshot.RedeemedRewards),
			CreatedAt:       time.Now(),
		})
	}
	for i := range parent.Children {
		normalize.ChildRecord(&parent.Children[i])
	}

	if err := s.writeJSON(ctx, storage.KeyParentBackup, parent); err != nil {
		return err
	}
	current := s.readAccount(ctx, storage.KeyAccount)
	if current == nil || current.Role == models.RoleParent {
		if err := s.writeJSON(ctx, storage.KeyAccount, parent); err != nil {
			return err
		}
		if s.state == models.StateParentActive && s.account != nil && s.account.ID == parent.ID {
			s.account = parent.Clone()
		}
	}
	s.accounts.Upsert(parent)
	return nil
}

// persistParentLocked writes the signed-in parent to the account key, the
// backup when it is the same identity, and the account directory.
func (s *SessionService) persistParentLocked(ctx context.Context) error {
	if err := s.writeJSON(ctx, storage.KeyAccount, s.account); err != nil {
		return err
	}
	if backup := s.readAccount(ctx, storage.KeyParentBackup); backup != nil && backup.ID == s.account.ID {
		if err := s.writeJSON(ctx, storage.KeyParentBackup, s.account); err != nil {
			return err
		}
	}
	s.accounts.Upsert(s.account)
	return nil
}

func (s *SessionService) clearSession(ctx context.Context) {
	for _, key := range []string{storage.KeyAccount, storage.KeyChildProfile, storage.KeyParentBackup} {
		if err := s.store.Remove(ctx, key); err != nil {
			log.Printf("Failed to clear %s on logout: %v", key, err)
		}
	}
	s.account = nil
	s.child = nil
	s.state = models.StateLoggedOut
}

func (s *SessionService) readAccount(ctx context.Context, key string) *models.Account {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		log.Printf("Failed to read %s: %v", key, err)
		return nil
	}
	if !ok {
		return nil
	}
	var account models.Account
	if err := json.Unmarshal([]byte(raw), &account); err != nil {
		log.Printf("Failed to decode %s: %v", key, err)
		return nil
	}
	return &account
}

func (s *SessionService) readChildProfile(ctx context.Context) *models.ChildRecord {
	raw, ok, err := s.store.Get(ctx, storage.KeyChildProfile)
	if err != nil {
		log.Printf("Failed to read %s: %v", storage.KeyChildProfile, err)
		return nil
	}
	if !ok {
		return nil
	}
	var child models.ChildRecord
	if err := json.Unmarshal([]byte(raw), &child); err != nil {
		log.Printf("Failed to decode %s: %v", storage.KeyChildProfile, err)
		return nil
	}
	return &child
}

func (s *SessionService) writeJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

// buildSnapshot captures the end-of-session view of a child. The live
// session account is authoritative for the economy fields; ledgers merge
// the session's entries over the stored profile's.
func buildSnapshot(live *models.Account, record *models.ChildRecord) models.ChildSnapshot {
	points, xp, level := live.Points, live.XP, live.Level
	snapshot := models.ChildSnapshot{
		ID:              live.ChildID,
		Name:            live.Name,
		Avatar:          live.Avatar,
		Points:          &points,
		XP:              &xp,
		Level:           &level,
		CompletedQuests: live.CompletedQuests,
		RedeemedRewards: live.RedeemedRewards,
	}
	if record != nil {
		if snapshot.ID == "" {
			snapshot.ID = record.ID
		}
		if snapshot.Name == "" {
			snapshot.Name = record.Name
		}
		if snapshot.Avatar == "" {
			snapshot.Avatar = record.Avatar
		}
		snapshot.CompletedQuests = normalize.MergeCompletedQuests(live.CompletedQuests, record.CompletedQuests)
		snapshot.RedeemedRewards = normalize.MergeRedeemedRewards(live.RedeemedRewards, record.RedeemedRewards)
	}
	return snapshot
}

// childRecordFromSession rebuilds a child profile from a child-role
// session account.
func childRecordFromSession(account *models.Account) *models.ChildRecord {
	id := account.ChildID
	if id == "" {
		id = account.ID
	}
	return &models.ChildRecord{
		ID:              id,
		Name:            account.Name,
		Avatar:          account.Avatar,
		Points:          account.Points,
		XP:              account.XP,
		Level:           account.Level,
		ParentID:        account.ParentID,
		CompletedQuests: normalize.CompletedQuests(account.CompletedQuests),
		RedeemedRewards: normalize.RedeemedRewards(account.RedeemedRewards),
		CreatedAt:       account.CreatedAt,
	}
}

func levelForXP(xp models.FlexInt) models.FlexInt {
	if xp < 0 {
		xp = 0
	}
	return xp/100 + 1
}

func valueOr(v *models.FlexInt, fallback models.FlexInt) models.FlexInt {
	if v == nil {
		return fallback
	}
	return *v
}

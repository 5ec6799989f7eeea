package service

import (
	"context"
	"errors"
	"testing"

	"questbuddy/internal/models"
	"questbuddy/internal/repository"
	"questbuddy/internal/storage"
)

func setupRewardTest(t *testing.T, cost models.FlexInt) (*testEnv, *models.Reward) {
	t.Helper()
	env := newTestEnv(t, repository.DefaultFixtures())
	ctx := context.Background()

	if _, err := env.sessions.Login(ctx, "parent@example.com", "password123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	reward, err := env.rewards.Create(ctx, models.RewardDraft{
		Title: "Movie night", Cost: cost, IsGlobal: true, Category: "fun",
	})
	if err != nil {
		t.Fatalf("create reward failed: %v", err)
	}
	return env, reward
}

// A child with 10 points cannot afford a 20-point reward; the balance
// must be left untouched.
func TestRedeemInsufficientFunds(t *testing.T) {
	env, reward := setupRewardTest(t, 20)
	ctx := context.Background()

	if _, err := env.sessions.LoginAsChild(ctx, "CHILD1-CODE", ""); err != nil {
		t.Fatalf("child login failed: %v", err)
	}

	err := env.rewards.Redeem(ctx, reward.ID, "")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}

	account := env.sessions.ActiveAccount()
	if account.Points != 10 {
		t.Errorf("failed redemption changed the balance: %d, want 10", account.Points)
	}
	if len(account.RedeemedRewards) != 0 {
		t.Errorf("failed redemption appended a ledger entry")
	}

	stored, err := repository.NewRewardRepository(env.store).FindByID(ctx, reward.ID)
	if err != nil {
		t.Fatalf("reload reward failed: %v", err)
	}
	if stored.RedemptionCount("child1") != 0 {
		t.Errorf("failed redemption left a count on the reward: %v", stored.RedeemedBy)
	}
}

// faultyStore fails writes to one key on demand.
type faultyStore struct {
	*storage.MemStore
	failKey string
	fail    bool
}

func (s *faultyStore) Set(ctx context.Context, key, value string) error {
	if s.fail && key == s.failKey {
		return errors.New("write failed")
	}
	return s.MemStore.Set(ctx, key, value)
}

// When the reward record cannot be persisted, the redemption must not go
// through: the child keeps its points and the ledger stays empty.
func TestRedeemRewardWriteFailureSpendsNothing(t *testing.T) {
	store := &faultyStore{MemStore: storage.NewMemStore(), failKey: storage.KeyRewards}
	accounts := repository.NewAccountRepository(store, repository.DefaultFixtures())
	sessions := NewSessionService(store, accounts)
	notifications := NewNotificationService(repository.NewNotificationRepository(store), nil)
	rewards := NewRewardService(repository.NewRewardRepository(store), sessions, notifications)
	ctx := context.Background()

	if _, err := sessions.Login(ctx, "parent@example.com", "password123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	reward, err := rewards.Create(ctx, models.RewardDraft{Title: "Movie night", Cost: 5, IsGlobal: true})
	if err != nil {
		t.Fatalf("create reward failed: %v", err)
	}
	if _, err := sessions.LoginAsChild(ctx, "CHILD2-CODE", ""); err != nil {
		t.Fatalf("child login failed: %v", err)
	}

	store.fail = true
	if err := rewards.Redeem(ctx, reward.ID, ""); err == nil {
		t.Fatal("redeem should fail when the reward cannot be persisted")
	}
	store.fail = false

	account := sessions.ActiveAccount()
	if account.Points != 25 {
		t.Errorf("Points = %d, want 25", account.Points)
	}
	if len(account.RedeemedRewards) != 0 {
		t.Errorf("failed redemption appended a ledger entry")
	}
}

func TestRedeemDebitsAndRecords(t *testing.T) {
	env, reward := setupRewardTest(t, 20)
	ctx := context.Background()

	// child2 starts with 25 points
	if _, err := env.sessions.LoginAsChild(ctx, "CHILD2-CODE", ""); err != nil {
		t.Fatalf("child login failed: %v", err)
	}

	if err := env.rewards.Redeem(ctx, reward.ID, ""); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	account := env.sessions.ActiveAccount()
	if account.Points != 5 {
		t.Errorf("Points = %d, want 5", account.Points)
	}
	if len(account.RedeemedRewards) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(account.RedeemedRewards))
	}
	entry := account.RedeemedRewards[0]
	if entry.ID != reward.ID || entry.Name != "Movie night" || entry.Cost != 20 {
		t.Errorf("ledger entry = %+v", entry)
	}

	stored, err := repository.NewRewardRepository(env.store).FindByID(ctx, reward.ID)
	if err != nil {
		t.Fatalf("reload reward failed: %v", err)
	}
	if stored.RedemptionCount("child2") != 1 {
		t.Errorf("redeemedBy missing child2: %v", stored.RedeemedBy)
	}
}

func TestRedeemNeverGoesNegative(t *testing.T) {
	env := newTestEnv(t, repository.DefaultFixtures())
	ctx := context.Background()

	if _, err := env.sessions.Login(ctx, "parent@example.com", "password123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	reward, err := env.rewards.Create(ctx, models.RewardDraft{
		Title: "Snack", Cost: 10, IsGlobal: true, MaxRedemptions: 5,
	})
	if err != nil {
		t.Fatalf("create reward failed: %v", err)
	}

	if _, err := env.sessions.LoginAsChild(ctx, "CHILD2-CODE", ""); err != nil {
		t.Fatalf("child login failed: %v", err)
	}

	// 25 points buys two at most; the third attempt must fail cleanly.
	for i := 0; i < 2; i++ {
		if err := env.rewards.Redeem(ctx, reward.ID, ""); err != nil {
			t.Fatalf("redeem %d failed: %v", i+1, err)
		}
	}
	if err := env.rewards.Redeem(ctx, reward.ID, ""); err == nil {
		t.Fatal("third redemption should fail")
	}

	if account := env.sessions.ActiveAccount(); account.Points < 0 {
		t.Errorf("balance went negative: %d", account.Points)
	}
}

func TestRedeemFromParentSession(t *testing.T) {
	env, reward := setupRewardTest(t, 20)
	ctx := context.Background()

	if err := env.rewards.Redeem(ctx, reward.ID, "child2"); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	parent := env.sessions.ActiveAccount()
	child := parent.FindChild("child2")
	if child.Points != 5 {
		t.Errorf("embedded child points = %d, want 5", child.Points)
	}
	if len(child.RedeemedRewards) != 1 {
		t.Errorf("expected 1 ledger entry on the embedded child, got %d", len(child.RedeemedRewards))
	}
}

func TestRedeemUnknownChildFromParentSession(t *testing.T) {
	env, reward := setupRewardTest(t, 1)

	err := env.rewards.Redeem(context.Background(), reward.ID, "nobody")
	if !errors.Is(err, ErrChildNotFound) {
		t.Errorf("err = %v, want ErrChildNotFound", err)
	}
}

func TestRewardAvailability(t *testing.T) {
	env := newTestEnv(t, repository.DefaultFixtures())
	ctx := context.Background()

	if _, err := env.sessions.Login(ctx, "parent@example.com", "password123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	global, err := env.rewards.Create(ctx, models.RewardDraft{Title: "Global", Cost: 1, IsGlobal: true})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := env.rewards.Create(ctx, models.RewardDraft{Title: "Only child1", Cost: 1, AssignedTo: []string{"child1"}}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	retired, err := env.rewards.Create(ctx, models.RewardDraft{Title: "Retired", Cost: 1, IsGlobal: true})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := env.rewards.Deactivate(ctx, retired.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	if _, err := env.sessions.LoginAsChild(ctx, "CHILD2-CODE", ""); err != nil {
		t.Fatalf("child login failed: %v", err)
	}
	visible, err := env.rewards.ListForSession(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	titles := map[string]bool{}
	for _, r := range visible {
		titles[r.Title] = true
	}
	if !titles["Global"] {
		t.Error("global reward should be visible")
	}
	if titles["Only child1"] {
		t.Error("reward assigned to child1 leaked to child2")
	}
	if titles["Retired"] {
		t.Error("deactivated reward should be hidden")
	}

	// A redeemed one-shot reward disappears from the list
	if err := env.rewards.Redeem(ctx, global.ID, ""); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	visible, _ = env.rewards.ListForSession(ctx)
	for _, r := range visible {
		if r.ID == global.ID {
			t.Error("redeemed one-shot reward still listed")
		}
	}
}

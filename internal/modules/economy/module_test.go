package economy

import (
	"context"
	"testing"

	"auron-bot/internal/config"
	"auron-bot/internal/storage"

	"go.uber.org/zap"
)

func TestMessageRewards(t *testing.T) {
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	module := New(store, config.EconomyConfig{RewardCoins: 5, RewardMessages: 3, CounterTTLMinutes: 30}, zap.NewNop())
	ctx := context.Background()

	module.HandleMessage(ctx, "g1", "u1")
	module.HandleMessage(ctx, "g1", "u1")
	if balance, _ := store.GetBalance(ctx, "g1", "u1"); balance != 0 {
		t.Fatalf("expected no reward before threshold, balance %d", balance)
	}

	module.HandleMessage(ctx, "g1", "u1")
	if balance, _ := store.GetBalance(ctx, "g1", "u1"); balance != 5 {
		t.Fatalf("expected reward of 5, balance %d", balance)
	}

	// Counter resets after a payout.
	module.HandleMessage(ctx, "g1", "u1")
	if balance, _ := store.GetBalance(ctx, "g1", "u1"); balance != 5 {
		t.Fatalf("expected no second reward yet, balance %d", balance)
	}

	// Separate users keep separate counters.
	module.HandleMessage(ctx, "g1", "u2")
	if balance, _ := store.GetBalance(ctx, "g1", "u2"); balance != 0 {
		t.Fatalf("expected no reward for u2, balance %d", balance)
	}
}

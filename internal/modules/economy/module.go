package economy

import (
	"context"
	"fmt"
	"time"

	"auron-bot/internal/config"
	"auron-bot/internal/storage"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Module rewards sustained chatting: every rewardMessages counted messages
// earn rewardCoins, written through the transactional balance ledger. The
// counters live in an expiring cache keyed by guild:user, so idle users fall
// out instead of accumulating forever.
type Module struct {
	store          *storage.Store
	counters       *cache.Cache
	rewardCoins    int
	rewardMessages int
	logger         *zap.Logger
}

func New(store *storage.Store, cfg config.EconomyConfig, logger *zap.Logger) *Module {
	ttl := time.Duration(cfg.CounterTTLMinutes) * time.Minute
	return &Module{
		store:          store,
		counters:       cache.New(ttl, 2*ttl),
		rewardCoins:    cfg.RewardCoins,
		rewardMessages: cfg.RewardMessages,
		logger:         logger,
	}
}

func (m *Module) HandleMessage(ctx context.Context, guildID, userID string) {
	key := guildID + ":" + userID
	count := 1
	if value, ok := m.counters.Get(key); ok {
		count = value.(int) + 1
	}

	if count < m.rewardMessages {
		m.counters.SetDefault(key, count)
		return
	}

	m.counters.Delete(key)
	description := fmt.Sprintf("Message activity reward (%d messages)", m.rewardMessages)
	if _, err := m.store.AddCoins(ctx, guildID, userID, m.rewardCoins, "earn", description); err != nil {
		m.logger.Warn("coin reward failed", zap.String("user_id", userID), zap.Error(err))
	}
}

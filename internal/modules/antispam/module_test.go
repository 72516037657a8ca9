package antispam

import (
	"context"
	"testing"
	"time"

	"auron-bot/internal/config"
	"auron-bot/internal/modules/modlog"
	"auron-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func TestBurstFlagging(t *testing.T) {
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	modLogger := modlog.NewLogger(store, zap.NewNop())

	module := New(config.Thresholds{SpamMessages: 2, SpamWindowSeconds: 10, SpamTimeoutMinutes: 10, Enforce: false}, modLogger, zap.NewNop())
	msg := &discordgo.MessageCreate{Message: &discordgo.Message{ID: "1", ChannelID: "c1", GuildID: "g1", Author: &discordgo.User{ID: "u1"}}}

	if flagged := module.HandleMessage(context.Background(), &discordgo.Session{}, msg); flagged {
		t.Fatalf("unexpected flag on first message")
	}
	if flagged := module.HandleMessage(context.Background(), &discordgo.Session{}, msg); flagged {
		t.Fatalf("unexpected flag at threshold")
	}
	if flagged := module.HandleMessage(context.Background(), &discordgo.Session{}, msg); !flagged {
		t.Fatalf("expected flag above threshold")
	}

	logs, err := store.ListModerationLogs(context.Background(), "g1", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 1 || logs[0].ActionType != "timeout" {
		t.Fatalf("expected one timeout log, got %+v", logs)
	}

	// Window was reset on the flag; the next message starts a fresh count.
	if flagged := module.HandleMessage(context.Background(), &discordgo.Session{}, msg); flagged {
		t.Fatalf("unexpected flag after reset")
	}
}

package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Evaluator scans the ledger on a fixed interval and fires a prompt into any
// channel whose quiet time has reached its guild's timeout. Each row is
// handled independently; a row that fails mid-tick is left as-is and will
// still report over-threshold on the next tick, so delivery is at-least-once.
type Evaluator struct {
	ledger  Ledger
	gateway Gateway
	prompts []string
	logger  *zap.Logger
	now     func() time.Time
	cron    *cron.Cron
}

func NewEvaluator(ledger Ledger, gateway Gateway, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		ledger:  ledger,
		gateway: gateway,
		prompts: DefaultPrompts,
		logger:  logger,
		now:     time.Now,
	}
}

// Start schedules EvaluateOnce every intervalSeconds. Ticks are serialized:
// if an evaluation is still in flight when the next tick fires, that tick is
// skipped with a warning rather than run concurrently.
func (e *Evaluator) Start(intervalSeconds int) error {
	if e.cron != nil {
		return fmt.Errorf("evaluator already started")
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{e.logger})))
	_, err := c.AddFunc(fmt.Sprintf("@every %ds", intervalSeconds), func() {
		e.EvaluateOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("schedule evaluator: %w", err)
	}
	c.Start()
	e.cron = c
	e.logger.Info("channel monitor started", zap.Int("interval_seconds", intervalSeconds))
	return nil
}

// Stop halts the schedule and waits for an in-flight tick to finish.
func (e *Evaluator) Stop() {
	if e.cron == nil {
		return
	}
	<-e.cron.Stop().Done()
	e.cron = nil
}

// EvaluateOnce runs a single tick over the full ledger snapshot.
func (e *Evaluator) EvaluateOnce(ctx context.Context) {
	channels, err := e.ledger.ListActiveChannels(ctx)
	if err != nil {
		e.logger.Warn("list monitored channels failed", zap.Error(err))
		return
	}

	now := e.now()
	for _, channel := range channels {
		e.evaluateChannel(ctx, channel, now)
	}
}

func (e *Evaluator) evaluateChannel(ctx context.Context, channel MonitoredChannel, now time.Time) {
	policy, err := e.ledger.GetPolicy(ctx, channel.GuildID)
	if err != nil {
		e.logger.Warn("policy lookup failed", zap.String("guild_id", channel.GuildID), zap.Error(err))
		return
	}
	timeout := ResolveTimeout(policy)

	elapsed := int(now.Sub(channel.LastActive).Minutes())
	if elapsed < timeout {
		return
	}

	// The guild or channel may have disappeared since registration.
	if !e.gateway.ResolveGuild(channel.GuildID) {
		return
	}
	if !e.gateway.ResolveChannel(channel.GuildID, channel.ChannelID) {
		return
	}

	prompt := pickPrompt(e.prompts)
	if err := e.gateway.SendPrompt(channel.ChannelID, prompt); err != nil {
		e.logger.Warn("prompt delivery failed",
			zap.String("guild_id", channel.GuildID),
			zap.String("channel_id", channel.ChannelID),
			zap.Error(err))
		return
	}

	// Resetting last_active here is what keeps the next tick from re-firing.
	if err := e.ledger.RecordNotificationSent(ctx, channel.ID); err != nil {
		e.logger.Warn("notification reset failed", zap.String("id", channel.ID), zap.Error(err))
		return
	}

	e.logger.Info("conversation breaker sent",
		zap.String("guild_id", channel.GuildID),
		zap.String("channel_id", channel.ChannelID),
		zap.Int("quiet_minutes", elapsed))
}

// cronLogger surfaces skipped ticks through zap. The cron chain only speaks
// through this logger when a tick is skipped or a job panics, so plain Info
// messages from it are warnings for us.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Warnw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}

package monitor

import (
	"context"

	"go.uber.org/zap"
)

// Recorder resets a monitored channel's quiet clock on inbound messages. It
// runs inline with the per-message pipeline, so it never returns an error:
// failures are logged and swallowed, and a message in an unmonitored channel
// is simply a no-op at the ledger.
type Recorder struct {
	ledger Ledger
	logger *zap.Logger
}

func NewRecorder(ledger Ledger, logger *zap.Logger) *Recorder {
	return &Recorder{ledger: ledger, logger: logger}
}

func (r *Recorder) Record(ctx context.Context, guildID, channelID string) {
	if err := r.ledger.TouchActivity(ctx, guildID, channelID); err != nil {
		r.logger.Warn("activity touch failed",
			zap.String("guild_id", guildID),
			zap.String("channel_id", channelID),
			zap.Error(err))
	}
}

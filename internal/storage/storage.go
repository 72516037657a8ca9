package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"auron-bot/internal/monitor"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db *sql.DB
}

type GuildSettings struct {
	GuildID       string
	ModLogChannel string
}

type ModerationLog struct {
	ID              int64
	GuildID         string
	UserID          string
	ModeratorID     string
	ActionType      string
	Reason          string
	Severity        string
	DurationMinutes int
	CreatedAt       time.Time
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *Store) Migrate() error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := migrations.ReadFile(path.Join("migrations", file))
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			if isIgnorableMigrationError(err) {
				continue
			}
			return fmt.Errorf("migration %s failed: %w", file, err)
		}
	}
	return nil
}

// UpsertMonitoredChannel starts (or restarts) monitoring for a channel. The
// upsert keys on (guild_id, channel_id) so at most one row exists per pair; a
// previously stopped row is reactivated with a fresh clock.
func (s *Store) UpsertMonitoredChannel(ctx context.Context, guildID, channelID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO monitored_channels (id, guild_id, channel_id, active, last_active)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(guild_id, channel_id) DO UPDATE SET
			active = 1,
			last_active = excluded.last_active
	`, uuid.NewString(), guildID, channelID, time.Now().Unix())
	return err
}

func (s *Store) DeactivateMonitoredChannel(ctx context.Context, guildID, channelID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE monitored_channels SET active = 0
		WHERE guild_id = ? AND channel_id = ?
	`, guildID, channelID)
	return err
}

func (s *Store) ListActiveChannels(ctx context.Context) ([]monitor.MonitoredChannel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, channel_id, active, last_active
		FROM monitored_channels
		WHERE active = 1
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMonitoredChannels(rows)
}

func (s *Store) ListGuildChannels(ctx context.Context, guildID string) ([]monitor.MonitoredChannel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, channel_id, active, last_active
		FROM monitored_channels
		WHERE guild_id = ? AND active = 1
	`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMonitoredChannels(rows)
}

func scanMonitoredChannels(rows *sql.Rows) ([]monitor.MonitoredChannel, error) {
	var channels []monitor.MonitoredChannel
	for rows.Next() {
		var ch monitor.MonitoredChannel
		var active int
		var lastActive int64
		if err := rows.Scan(&ch.ID, &ch.GuildID, &ch.ChannelID, &active, &lastActive); err != nil {
			return nil, err
		}
		ch.Active = active == 1
		ch.LastActive = time.Unix(lastActive, 0)
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// TouchActivity moves the quiet clock for an actively monitored channel. A
// message in an unmonitored channel matches nothing, which is not an error.
func (s *Store) TouchActivity(ctx context.Context, guildID, channelID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE monitored_channels SET last_active = ?
		WHERE guild_id = ? AND channel_id = ? AND active = 1
	`, time.Now().Unix(), guildID, channelID)
	return err
}

// RecordNotificationSent resets the quiet clock for a specific row after a
// conversation breaker went out.
func (s *Store) RecordNotificationSent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE monitored_channels SET last_active = ? WHERE id = ?
	`, time.Now().Unix(), id)
	return err
}

func (s *Store) GetPolicy(ctx context.Context, guildID string) (*monitor.InactivityPolicy, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT guild_id, timeout_minutes FROM inactivity_policies WHERE guild_id = ?
	`, guildID)

	var policy monitor.InactivityPolicy
	if err := row.Scan(&policy.GuildID, &policy.TimeoutMinutes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}

func (s *Store) UpsertInactivityPolicy(ctx context.Context, guildID string, timeoutMinutes int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inactivity_policies (guild_id, timeout_minutes)
		VALUES (?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET timeout_minutes = excluded.timeout_minutes
	`, guildID, timeoutMinutes)
	return err
}

func (s *Store) GetGuildSettings(ctx context.Context, guildID string, defaults GuildSettings) (GuildSettings, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT mod_log_channel FROM guild_settings WHERE guild_id = ?
	`, guildID)

	result := defaults
	result.GuildID = guildID

	if err := row.Scan(&result.ModLogChannel); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, nil
		}
		return GuildSettings{}, err
	}
	return result, nil
}

func (s *Store) UpsertGuildSettings(ctx context.Context, settings GuildSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guild_settings (guild_id, mod_log_channel)
		VALUES (?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET mod_log_channel = excluded.mod_log_channel
	`, settings.GuildID, settings.ModLogChannel)
	return err
}

func (s *Store) AddModerationLog(ctx context.Context, log ModerationLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO moderation_logs (guild_id, user_id, moderator_id, action_type, reason, severity, duration_minutes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, log.GuildID, log.UserID, log.ModeratorID, log.ActionType, log.Reason, log.Severity, log.DurationMinutes, log.CreatedAt.Unix())
	return err
}

func (s *Store) ListModerationLogs(ctx context.Context, guildID string, since time.Time) ([]ModerationLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, user_id, moderator_id, action_type, reason, severity, duration_minutes, created_at
		FROM moderation_logs
		WHERE guild_id = ? AND created_at >= ?
		ORDER BY created_at DESC
	`, guildID, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []ModerationLog
	for rows.Next() {
		var log ModerationLog
		var created int64
		if err := rows.Scan(&log.ID, &log.GuildID, &log.UserID, &log.ModeratorID, &log.ActionType, &log.Reason, &log.Severity, &log.DurationMinutes, &created); err != nil {
			return nil, err
		}
		log.CreatedAt = time.Unix(created, 0)
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func isIgnorableMigrationError(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "duplicate column name") || strings.Contains(message, "already exists")
}

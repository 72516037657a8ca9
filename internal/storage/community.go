package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type UserLevel struct {
	GuildID       string
	UserID        string
	Level         int
	XP            int
	TotalMessages int
	LastXPGain    time.Time
}

type AFKStatus struct {
	GuildID string
	UserID  string
	Reason  string
	SetAt   time.Time
}

func (s *Store) GetUserLevel(ctx context.Context, guildID, userID string) (UserLevel, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT guild_id, user_id, level, xp, total_messages, last_xp_gain
		FROM user_levels WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)

	var level UserLevel
	var lastGain int64
	err := row.Scan(&level.GuildID, &level.UserID, &level.Level, &level.XP, &level.TotalMessages, &lastGain)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserLevel{GuildID: guildID, UserID: userID, Level: 1}, nil
		}
		return UserLevel{}, err
	}
	level.LastXPGain = time.Unix(lastGain, 0)
	return level, nil
}

func (s *Store) UpsertUserLevel(ctx context.Context, level UserLevel) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_levels (guild_id, user_id, level, xp, total_messages, last_xp_gain)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(guild_id, user_id) DO UPDATE SET
			level = excluded.level,
			xp = excluded.xp,
			total_messages = excluded.total_messages,
			last_xp_gain = excluded.last_xp_gain
	`, level.GuildID, level.UserID, level.Level, level.XP, level.TotalMessages, level.LastXPGain.Unix())
	return err
}

func (s *Store) GetBalance(ctx context.Context, guildID, userID string) (int, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT balance FROM user_balances WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)

	var balance int
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return balance, nil
}

// AddCoins applies a balance delta and appends the matching ledger row in one
// transaction, so balance_after always reflects the stored balance.
func (s *Store) AddCoins(ctx context.Context, guildID, userID string, amount int, transactionType, description string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var balance int
	row := tx.QueryRowContext(ctx, `
		SELECT balance FROM user_balances WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)
	if err = row.Scan(&balance); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	err = nil

	balance += amount
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO user_balances (guild_id, user_id, balance)
		VALUES (?, ?, ?)
		ON CONFLICT(guild_id, user_id) DO UPDATE SET balance = excluded.balance
	`, guildID, userID, balance); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO economy_transactions (guild_id, user_id, amount, transaction_type, description, balance_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, guildID, userID, amount, transactionType, description, balance, time.Now().Unix()); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *Store) SetAFK(ctx context.Context, guildID, userID, reason string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO afk_status (guild_id, user_id, reason, set_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(guild_id, user_id) DO UPDATE SET
			reason = excluded.reason,
			set_at = excluded.set_at
	`, guildID, userID, reason, time.Now().Unix())
	return err
}

func (s *Store) GetAFK(ctx context.Context, guildID, userID string) (*AFKStatus, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT guild_id, user_id, reason, set_at FROM afk_status
		WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)

	var status AFKStatus
	var setAt int64
	if err := row.Scan(&status.GuildID, &status.UserID, &status.Reason, &setAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	status.SetAt = time.Unix(setAt, 0)
	return &status, nil
}

func (s *Store) ClearAFK(ctx context.Context, guildID, userID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM afk_status WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *Store) AddBlacklistEntry(ctx context.Context, guildID, entry string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO blacklist_entries (guild_id, entry) VALUES (?, ?)`, guildID, strings.ToLower(entry))
	return err
}

func (s *Store) RemoveBlacklistEntry(ctx context.Context, guildID, entry string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM blacklist_entries WHERE guild_id = ? AND entry = ?`, guildID, strings.ToLower(entry))
	return err
}

func (s *Store) ListBlacklistEntries(ctx context.Context, guildID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT entry FROM blacklist_entries WHERE guild_id = ? ORDER BY entry`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

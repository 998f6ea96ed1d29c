package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bigbadman-lab/onesol/internal/types"
)

// Repo persists leaderboard scores and user profiles in a single sqlite
// file. Scores are day-scoped: Today reads each device's best run for the
// given day, and PruneOlder drops rows past the retention window.
type Repo struct {
	db *sql.DB
}

// OpenRepo opens (or creates) the server database and runs migrations.
func OpenRepo(path string) (*Repo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &Repo{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *Repo) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scores (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			day           TEXT NOT NULL,
			uuid          TEXT NOT NULL,
			friendly_name TEXT NOT NULL,
			final_sol     REAL NOT NULL,
			correct_count INTEGER NOT NULL,
			created_at    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_day_uuid ON scores(day, uuid)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			uuid       TEXT PRIMARY KEY,
			nickname   TEXT NOT NULL DEFAULT '',
			email      TEXT NOT NULL DEFAULT '',
			updated_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("run migration: %w", err)
		}
	}
	return nil
}

// SubmitScore records one finished run under the given day.
func (r *Repo) SubmitScore(ctx context.Context, day string, sub types.ScoreSubmission) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO scores
		(day, uuid, friendly_name, final_sol, correct_count, created_at)
		VALUES (?, ?, ?, ?, ?, unixepoch())`,
		day, sub.UUID, sub.FriendlyName, sub.FinalSol, sub.CorrectCount)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	if sub.Email != "" {
		if err := r.UpsertProfile(ctx, types.Profile{UUID: sub.UUID, Email: sub.Email}); err != nil {
			return err
		}
	}
	return nil
}

// Today returns the given day's standings: each device's best run, highest
// balance first, nickname overriding the friendly name when set.
func (r *Repo) Today(ctx context.Context, day string, limit int) ([]types.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `SELECT s.uuid, s.friendly_name,
			COALESCE(p.nickname, '') AS nickname,
			MAX(s.final_sol) AS final_sol,
			s.correct_count
		FROM scores s
		LEFT JOIN profiles p ON p.uuid = s.uuid
		WHERE s.day = ?
		GROUP BY s.uuid
		ORDER BY final_sol DESC, s.created_at ASC
		LIMIT ?`, day, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []types.LeaderboardEntry
	for rows.Next() {
		var e types.LeaderboardEntry
		var uuid string
		if err := rows.Scan(&uuid, &e.FriendlyName, &e.Nickname, &e.FinalSol, &e.CorrectCount); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard rows: %w", err)
	}
	return entries, nil
}

// GetProfile returns the profile for a device UUID, or nil if none exists.
func (r *Repo) GetProfile(ctx context.Context, uuid string) (*types.Profile, error) {
	var p types.Profile
	err := r.db.QueryRowContext(ctx,
		`SELECT uuid, nickname, email FROM profiles WHERE uuid = ?`, uuid).
		Scan(&p.UUID, &p.Nickname, &p.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// UpsertProfile writes nickname and email for a device UUID, keeping any
// existing value whose incoming field is empty.
func (r *Repo) UpsertProfile(ctx context.Context, p types.Profile) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO profiles (uuid, nickname, email, updated_at)
		VALUES (?, ?, ?, unixepoch())
		ON CONFLICT(uuid) DO UPDATE SET
			nickname = CASE WHEN excluded.nickname != '' THEN excluded.nickname ELSE nickname END,
			email = CASE WHEN excluded.email != '' THEN excluded.email ELSE email END,
			updated_at = excluded.updated_at`,
		p.UUID, p.Nickname, p.Email)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// DeleteUser removes every score and the profile for a device UUID.
func (r *Repo) DeleteUser(ctx context.Context, uuid string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM scores WHERE uuid = ?`, uuid); err != nil {
		return fmt.Errorf("delete scores: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE uuid = ?`, uuid); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// PruneOlder deletes score rows from days before the retention window.
func (r *Repo) PruneOlder(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays).Format("2006-01-02")
	res, err := r.db.ExecContext(ctx, `DELETE FROM scores WHERE day < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune scores: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}

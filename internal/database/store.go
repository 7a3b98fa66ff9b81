// Package database provides the local storage layer for Yatter.
//
// It implements the Store interface using SQLite with WAL mode. The
// schema is managed by embedded golang-migrate migrations. The access
// token is sealed before it is written, so the database file alone does
// not reveal it. DBService is the primary entry point.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Mr-Dark-debug/yatter/internal/model"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// TokenStore persists the access token of the signed-in account.
type TokenStore interface {
	// GetAccessToken returns the stored token, or nil when none is stored.
	GetAccessToken(ctx context.Context) (*string, error)
	// SaveAccessToken replaces the stored credentials.
	SaveAccessToken(ctx context.Context, username, token string) error
	// ClearAccessToken removes the stored credentials.
	ClearAccessToken(ctx context.Context) error
	// GetUsername returns the username saved with the token, or "".
	GetUsername(ctx context.Context) (string, error)
}

// TimelineCache keeps the last fetched public timeline.
type TimelineCache interface {
	// SaveTimeline replaces the cached timeline, preserving order.
	SaveTimeline(ctx context.Context, statuses []model.Status) error
	// LoadTimeline returns up to limit cached statuses in timeline order.
	LoadTimeline(ctx context.Context, limit int) ([]model.Status, error)
}

// SyncLog records background sync runs.
type SyncLog interface {
	RecordSyncRun(ctx context.Context, run model.SyncRun) error
	LatestSyncRuns(ctx context.Context, limit int) ([]model.SyncRun, error)
}

// Store is the full storage surface.
type Store interface {
	TokenStore
	TimelineCache
	SyncLog
	// Close gracefully shuts down the database connection.
	Close() error
}

// DBService implements the Store interface using SQLite.
// It ensures thread-safe access through a read-write mutex.
type DBService struct {
	db     *sql.DB
	mu     sync.RWMutex
	path   string
	sealer *Sealer
}

// NewDBService opens the database at path, applies migrations and
// prepares the token sealer from masterKey.
//
// Use ":memory:" for in-memory databases (useful for testing).
func NewDBService(path string, masterKey []byte) (*DBService, error) {
	sealer, err := NewSealer(masterKey)
	if err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	// SQLite only supports one writer at a time, and an in-memory
	// database exists per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	svc := &DBService{
		db:     db,
		path:   path,
		sealer: sealer,
	}

	if err := svc.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return svc, nil
}

// migrate applies every pending embedded migration.
// The migrate instance is not closed since that would close db.
func (s *DBService) migrate() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("creating migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// ============================================================
// Token store
// ============================================================

// GetAccessToken returns the stored token, or nil when none is stored.
func (s *DBService) GetAccessToken(ctx context.Context) (*string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sealed []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT sealed_token FROM credentials WHERE id = 1`).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading access token: %w", err)
	}

	plain, err := s.sealer.Open(sealed)
	if err != nil {
		return nil, err
	}
	token := string(plain)
	return &token, nil
}

// SaveAccessToken seals token and replaces the stored credentials.
func (s *DBService) SaveAccessToken(ctx context.Context, username, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := s.sealer.Seal([]byte(token))
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (id, username, sealed_token, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			sealed_token = excluded.sealed_token,
			updated_at = excluded.updated_at
	`, username, sealed, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("saving access token for %s: %w", username, err)
	}
	return nil
}

// ClearAccessToken removes the stored credentials.
func (s *DBService) ClearAccessToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = 1`); err != nil {
		return fmt.Errorf("clearing access token: %w", err)
	}
	return nil
}

// GetUsername returns the username saved alongside the token.
func (s *DBService) GetUsername(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var username string
	err := s.db.QueryRowContext(ctx,
		`SELECT username FROM credentials WHERE id = 1`).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading username: %w", err)
	}
	return username, nil
}

// ============================================================
// Timeline cache
// ============================================================

// SaveTimeline replaces the cached timeline within a single transaction.
func (s *DBService) SaveTimeline(ctx context.Context, statuses []model.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning timeline transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	// media_attachments rows go with their statuses via ON DELETE CASCADE.
	if _, err := tx.ExecContext(ctx, `DELETE FROM statuses`); err != nil {
		return fmt.Errorf("clearing cached timeline: %w", err)
	}

	insertStatus, err := tx.PrepareContext(ctx, `
		INSERT INTO statuses (status_id, position, account_id, account_username,
			account_display_name, account_avatar, content, created_at, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(status_id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("preparing status insert: %w", err)
	}
	defer insertStatus.Close()

	insertMedia, err := tx.PrepareContext(ctx, `
		INSERT INTO media_attachments (status_id, media_id, position, media_type, url, description)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(status_id, media_id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("preparing media insert: %w", err)
	}
	defer insertMedia.Close()

	now := time.Now().UnixNano()
	for i, st := range statuses {
		var createdAt int64
		if !st.CreatedAt.IsZero() {
			createdAt = st.CreatedAt.UnixNano()
		}
		if _, err := insertStatus.ExecContext(ctx,
			st.ID, i, st.Account.ID, st.Account.Username,
			st.Account.DisplayName, st.Account.Avatar, st.Content,
			createdAt, now,
		); err != nil {
			return fmt.Errorf("caching status %s: %w", st.ID, err)
		}
		for j, m := range st.MediaAttachments {
			if _, err := insertMedia.ExecContext(ctx,
				st.ID, m.ID, j, m.Type, m.URL, m.Description,
			); err != nil {
				return fmt.Errorf("caching media %s of status %s: %w", m.ID, st.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing timeline transaction: %w", err)
	}
	return nil
}

// LoadTimeline returns up to limit cached statuses in timeline order.
// A non-positive limit means 100.
func (s *DBService) LoadTimeline(ctx context.Context, limit int) ([]model.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT status_id, account_id, account_username, account_display_name,
			account_avatar, content, created_at
		FROM statuses
		ORDER BY position ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying cached timeline: %w", err)
	}
	statuses, err := scanStatuses(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Status, len(statuses))
	for _, st := range statuses {
		byID[st.ID] = st
	}

	mrows, err := s.db.QueryContext(ctx, `
		SELECT m.status_id, m.media_id, m.media_type, m.url, m.description
		FROM media_attachments m
		INNER JOIN statuses s ON s.status_id = m.status_id
		ORDER BY s.position ASC, m.position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying cached media: %w", err)
	}
	defer mrows.Close()

	for mrows.Next() {
		var statusID string
		var m model.Media
		if err := mrows.Scan(&statusID, &m.ID, &m.Type, &m.URL, &m.Description); err != nil {
			return nil, fmt.Errorf("scanning media row: %w", err)
		}
		if st, ok := byID[statusID]; ok {
			st.MediaAttachments = append(st.MediaAttachments, m)
		}
	}
	if err := mrows.Err(); err != nil {
		return nil, fmt.Errorf("iterating media rows: %w", err)
	}

	result := make([]model.Status, len(statuses))
	for i, st := range statuses {
		result[i] = *st
	}
	return result, nil
}

// ============================================================
// Sync log
// ============================================================

// RecordSyncRun stores a finished sync run.
func (s *DBService) RecordSyncRun(ctx context.Context, run model.SyncRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errText *string
	if run.Error != "" {
		errText = &run.Error
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_runs (run_id, started_at, finished_at, status_count, error)
		VALUES (?, ?, ?, ?, ?)
	`, run.RunID, run.StartedAt, run.FinishedAt, run.StatusCount, errText)
	if err != nil {
		return fmt.Errorf("recording sync run %s: %w", run.RunID, err)
	}
	return nil
}

// LatestSyncRuns returns the most recent runs, newest first.
func (s *DBService) LatestSyncRuns(ctx context.Context, limit int) ([]model.SyncRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, started_at, finished_at, status_count, error
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync runs: %w", err)
	}
	defer rows.Close()

	var runs []model.SyncRun
	for rows.Next() {
		var r model.SyncRun
		var errText *string
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt, &r.StatusCount, &errText); err != nil {
			return nil, fmt.Errorf("scanning sync run: %w", err)
		}
		if errText != nil {
			r.Error = *errText
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close gracefully shuts down the database.
func (s *DBService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// ============================================================
// Scan Helpers
// ============================================================

func scanStatuses(rows *sql.Rows) ([]*model.Status, error) {
	var statuses []*model.Status
	for rows.Next() {
		st := &model.Status{}
		var createdAt int64
		if err := rows.Scan(
			&st.ID, &st.Account.ID, &st.Account.Username, &st.Account.DisplayName,
			&st.Account.Avatar, &st.Content, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning status row: %w", err)
		}
		if createdAt != 0 {
			st.CreatedAt = time.Unix(0, createdAt)
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

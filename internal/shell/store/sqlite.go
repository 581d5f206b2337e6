package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout is fixed-width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// =============================================================================
// Executor Interface - Shared by DB and Transaction
// =============================================================================

// executor abstracts database operations that can be performed on both
// a database connection and a transaction.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements DraftStore using SQLite.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}
	// Every connection to ":memory:" opens a separate database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Draft Operations
// =============================================================================

// draftRow represents a draft row in the database.
type draftRow struct {
	Key        string `db:"id"`
	Step       int    `db:"step"`
	TemplateID string `db:"template_id"`
	Data       string `db:"data"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

func (s *SQLiteStore) SaveDraft(ctx context.Context, draft *Draft) error {
	return saveDraft(ctx, s.db, s.now, draft)
}

func (s *SQLiteStore) GetDraft(ctx context.Context, key string) (*Draft, error) {
	return getDraft(ctx, s.db, key)
}

func (s *SQLiteStore) DeleteDraft(ctx context.Context, key string) error {
	return deleteDraft(ctx, s.db, key)
}

func (s *SQLiteStore) ListDrafts(ctx context.Context, opts ListOptions) ([]Draft, error) {
	return listDrafts(ctx, s.db, opts)
}

// WithTx runs fn inside a transaction, rolling back if it returns an error.
func (s *SQLiteStore) WithTx(ctx context.Context, fn func(DraftStore) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return NewStoreError("WithTx", "", "", "failed to begin transaction", ErrTxFailed)
	}

	txS := &txSQLiteStore{tx: tx, now: s.now}

	if err := fn(txS); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return NewStoreError("WithTx", "", "", fmt.Sprintf("rollback failed after error: %v", err), ErrTxFailed)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return NewStoreError("WithTx", "", "", "failed to commit transaction", ErrTxFailed)
	}

	return nil
}

// =============================================================================
// Transaction Store
// =============================================================================

// txSQLiteStore implements DraftStore within a transaction.
type txSQLiteStore struct {
	tx  *sqlx.Tx
	now func() time.Time
}

func (s *txSQLiteStore) SaveDraft(ctx context.Context, draft *Draft) error {
	return saveDraft(ctx, s.tx, s.now, draft)
}

func (s *txSQLiteStore) GetDraft(ctx context.Context, key string) (*Draft, error) {
	return getDraft(ctx, s.tx, key)
}

func (s *txSQLiteStore) DeleteDraft(ctx context.Context, key string) error {
	return deleteDraft(ctx, s.tx, key)
}

func (s *txSQLiteStore) ListDrafts(ctx context.Context, opts ListOptions) ([]Draft, error) {
	return listDrafts(ctx, s.tx, opts)
}

func (s *txSQLiteStore) WithTx(ctx context.Context, fn func(DraftStore) error) error {
	// Already in a transaction, just run the function
	return fn(s)
}

func (s *txSQLiteStore) Close() error {
	return nil
}

// =============================================================================
// Shared Implementations
// =============================================================================

func validateKey(op, key string) error {
	if strings.TrimSpace(key) == "" || len(key) > MaxKeyLength {
		return NewStoreError(op, "draft", key, "key must be 1 to 128 characters", ErrInvalidKey)
	}
	return nil
}

func saveDraft(ctx context.Context, exec executor, now func() time.Time, draft *Draft) error {
	if err := validateKey("SaveDraft", draft.Key); err != nil {
		return err
	}
	if !json.Valid(draft.Data) {
		return NewStoreError("SaveDraft", "draft", draft.Key, "data is not valid JSON", ErrInvalidData)
	}

	ts := now().UTC()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = ts
	}
	draft.UpdatedAt = ts

	query := `
		INSERT INTO drafts (id, step, template_id, data, created_at, updated_at)
		VALUES (:id, :step, :template_id, :data, :created_at, :updated_at)
		ON CONFLICT(id) DO UPDATE SET
			step = excluded.step,
			template_id = excluded.template_id,
			data = excluded.data,
			updated_at = excluded.updated_at`

	_, err := exec.NamedExecContext(ctx, query, map[string]any{
		"id":          draft.Key,
		"step":        draft.Step,
		"template_id": draft.TemplateID,
		"data":        string(draft.Data),
		"created_at":  draft.CreatedAt.UTC().Format(timeLayout),
		"updated_at":  draft.UpdatedAt.Format(timeLayout),
	})
	if err != nil {
		return NewStoreError("SaveDraft", "draft", draft.Key, err.Error(), err)
	}
	return nil
}

func getDraft(ctx context.Context, exec executor, key string) (*Draft, error) {
	query := `SELECT * FROM drafts WHERE id = ?`

	var row draftRow
	err := exec.GetContext(ctx, &row, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetDraft", "draft", key, "draft not found", ErrNotFound)
		}
		return nil, NewStoreError("GetDraft", "draft", key, err.Error(), err)
	}

	return rowToDraft(&row)
}

func deleteDraft(ctx context.Context, exec executor, key string) error {
	query := `DELETE FROM drafts WHERE id = ?`

	result, err := exec.ExecContext(ctx, query, key)
	if err != nil {
		return NewStoreError("DeleteDraft", "draft", key, err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("DeleteDraft", "draft", key, "draft not found", ErrNotFound)
	}

	return nil
}

func listDrafts(ctx context.Context, exec executor, opts ListOptions) ([]Draft, error) {
	opts = opts.Normalize()
	query := `SELECT id, step, template_id, '' AS data, created_at, updated_at
		FROM drafts ORDER BY updated_at DESC, id ASC LIMIT ? OFFSET ?`

	var rows []draftRow
	err := exec.SelectContext(ctx, &rows, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, NewStoreError("ListDrafts", "draft", "", err.Error(), err)
	}

	drafts := make([]Draft, 0, len(rows))
	for _, row := range rows {
		draft, err := rowToDraft(&row)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, *draft)
	}

	return drafts, nil
}

func rowToDraft(row *draftRow) (*Draft, error) {
	created, err := time.Parse(timeLayout, row.CreatedAt)
	if err != nil {
		return nil, NewStoreError("rowToDraft", "draft", row.Key, "invalid created_at", ErrInvalidData)
	}
	updated, err := time.Parse(timeLayout, row.UpdatedAt)
	if err != nil {
		return nil, NewStoreError("rowToDraft", "draft", row.Key, "invalid updated_at", ErrInvalidData)
	}

	d := &Draft{
		Key:        row.Key,
		Step:       row.Step,
		TemplateID: row.TemplateID,
		CreatedAt:  created,
		UpdatedAt:  updated,
	}
	if row.Data != "" {
		d.Data = json.RawMessage(row.Data)
	}
	return d, nil
}

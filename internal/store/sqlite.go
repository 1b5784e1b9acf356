package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"adminkit/internal/debug"
	appErrors "adminkit/internal/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	title      TEXT NOT NULL,
	body       TEXT NOT NULL DEFAULT '',
	published  INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection, updated_at);
`

// SQLiteStore keeps records in a single SQLite file.
type SQLiteStore struct {
	path string
	db   *sql.DB
	now  func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, appErrors.New(appErrors.CodeConfigurationError, "database path is required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, storeFailed("create database directory", err)
	}

	db, err := sql.Open("sqlite", buildDSN(trimmed))
	if err != nil {
		return nil, storeFailed("open sqlite db", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, storeFailed("ping sqlite db", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, storeFailed("migrate schema", err)
	}
	debug.Logger().Info("sqlite store opened", zap.String("path", trimmed))
	return &SQLiteStore{path: trimmed, db: db, now: time.Now}, nil
}

// buildDSN creates a read-write WAL DSN for the given path.
func buildDSN(dbPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(dbPath),
	}
	q := url.Values{}
	q.Set("mode", "rwc")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(3000)")
	u.RawQuery = q.Encode()
	return u.String()
}

// Path returns the database file.
func (s *SQLiteStore) Path() string { return s.path }

const selectColumns = `SELECT id, collection, title, body, published, created_at, updated_at FROM records`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		r                Record
		published        int
		created, updated int64
	)
	if err := row.Scan(&r.ID, &r.Collection, &r.Title, &r.Body, &published, &created, &updated); err != nil {
		return Record{}, err
	}
	r.Published = published != 0
	r.CreatedAt = time.Unix(0, created).UTC()
	r.UpdatedAt = time.Unix(0, updated).UTC()
	return r, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, collection string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		WHERE collection = ?
		ORDER BY updated_at DESC, id`, collection)
	if err != nil {
		return nil, storeFailed("query records", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, storeFailed("scan record", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailed("iterate records", err)
	}
	return records, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Record, error) {
	r, err := scanRecord(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, notFound(id)
	}
	if err != nil {
		return Record{}, storeFailed("get record", err)
	}
	return r, nil
}

// Create implements Store.
func (s *SQLiteStore) Create(ctx context.Context, r Record) (Record, error) {
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := s.now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM records WHERE id = ?`, r.ID).Scan(&exists); err != nil {
		return Record{}, storeFailed("check record", err)
	}
	if exists > 0 {
		return Record{}, appErrors.New(appErrors.CodeDuplicate, fmt.Sprintf("record %s already exists", r.ID), nil)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (id, collection, title, body, published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Collection, strings.TrimSpace(r.Title), r.Body, boolInt(r.Published), now.UnixNano(), now.UnixNano())
	if err != nil {
		return Record{}, storeFailed("insert record", err)
	}
	r.Title = strings.TrimSpace(r.Title)
	return r, nil
}

// Update implements Store.
func (s *SQLiteStore) Update(ctx context.Context, r Record) (Record, error) {
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	existing, err := s.Get(ctx, r.ID)
	if err != nil {
		return Record{}, err
	}
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = s.now().UTC()
	r.Title = strings.TrimSpace(r.Title)

	res, err := s.db.ExecContext(ctx, `
		UPDATE records
		SET collection = ?, title = ?, body = ?, published = ?, updated_at = ?
		WHERE id = ?`,
		r.Collection, r.Title, r.Body, boolInt(r.Published), r.UpdatedAt.UnixNano(), r.ID)
	if err != nil {
		return Record{}, storeFailed("update record", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Record{}, storeFailed("update record", err)
	}
	if n == 0 {
		return Record{}, notFound(r.ID)
	}
	return r, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return storeFailed("delete record", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeFailed("delete record", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM records WHERE collection = ?`, collection).Scan(&n); err != nil {
		return 0, storeFailed("count records", err)
	}
	return n, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

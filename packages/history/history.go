// Package history records executed requests and their responses in SQLite.
//
// Only responses that reached a server (Status > 0) are recorded. The table
// is pruned to the newest Limit entries after every insert.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/collection"
	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
	"github.com/google/uuid"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DefaultLimit is the number of entries kept when no limit is configured.
	DefaultLimit = 100
	// FileName is the database file inside the data directory.
	FileName = "history.db"

	connectTimeout = 5 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	timestamp INTEGER NOT NULL,
	name TEXT,
	method TEXT NOT NULL,
	url TEXT NOT NULL,
	status INTEGER NOT NULL,
	time_ms INTEGER NOT NULL,
	size INTEGER NOT NULL,
	request TEXT NOT NULL,
	response TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
`

// Entry is one recorded exchange.
type Entry struct {
	ID        string
	Timestamp time.Time
	Request   *model.Request
	Response  *model.HttpResponse
}

type Store struct {
	db    *sql.DB
	limit int
	now   func() time.Time
}

type Option func(*Store)

// WithLimit sets how many entries are kept. Values below 1 mean DefaultLimit.
func WithLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens (creating if needed) the history database at path.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	s := &Store{db: db, limit: DefaultLimit, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Add records req and resp. It reports false, without error, when resp did
// not come from a server.
func (s *Store) Add(ctx context.Context, req *model.Request, resp *model.HttpResponse) (bool, error) {
	if req == nil || resp == nil || resp.Status <= 0 {
		return false, nil
	}

	requestJSON, err := json.Marshal(collection.FromModel(req))
	if err != nil {
		return false, fmt.Errorf("failed to marshal request: %w", err)
	}
	responseJSON, err := json.Marshal(resp)
	if err != nil {
		return false, fmt.Errorf("failed to marshal response: %w", err)
	}

	ts := resp.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	method := req.Method
	if method == "" {
		method = model.MethodGet
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO history (id, timestamp, name, method, url, status, time_ms, size, request, response)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		ts.UnixMilli(),
		req.Name,
		string(method),
		req.URL,
		resp.Status,
		resp.TimeMs(),
		resp.Size,
		string(requestJSON),
		string(responseJSON),
	)
	if err != nil {
		return false, fmt.Errorf("failed to save history entry: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM history WHERE seq NOT IN (
			SELECT seq FROM history ORDER BY timestamp DESC, seq DESC LIMIT ?
		)`, s.limit)
	if err != nil {
		return false, fmt.Errorf("failed to prune history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit history entry: %w", err)
	}
	return true, nil
}

// List returns up to limit entries, newest first. limit < 1 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, timestamp, request, response FROM history ORDER BY timestamp DESC, seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry        Entry
			ts           int64
			requestJSON  string
			responseJSON string
		)
		if err := rows.Scan(&entry.ID, &ts, &requestJSON, &responseJSON); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		entry.Timestamp = time.UnixMilli(ts)

		var doc collection.Request
		if err := json.Unmarshal([]byte(requestJSON), &doc); err != nil {
			return nil, fmt.Errorf("corrupt history entry %s: %w", entry.ID, err)
		}
		if entry.Request, err = doc.ToModel(); err != nil {
			return nil, fmt.Errorf("corrupt history entry %s: %w", entry.ID, err)
		}

		entry.Response = &model.HttpResponse{}
		if err := json.Unmarshal([]byte(responseJSON), entry.Response); err != nil {
			return nil, fmt.Errorf("corrupt history entry %s: %w", entry.ID, err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("query failed: %w", err)
	}
	return n, nil
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

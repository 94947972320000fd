package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tracer/internal/services"
)

// ErrNotFound is returned when no entry matches an ID.
var ErrNotFound = fmt.Errorf("archive entry %w", services.ErrNotFound)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 20

// Entry is one archived analysis report together with the filter it was
// produced under.
type Entry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source"`
	Standard  string    `json:"standard"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Records   int       `json:"records"`
	NotMet    int       `json:"not_met"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Text      string    `json:"text"`
}

// Store manages archive persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const entryColumns = "id, created_at, source, standard, date_from, date_to, records, not_met, provider, model, report"

// Open initializes or connects to the archive database at path, creating
// parent directories as needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "archive", "open", "archive path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure archive dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save inserts entry with a fresh ID and creation time and returns the stored
// copy.
func (s *Store) Save(ctx context.Context, entry Entry) (Entry, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(entry.Text) == "" {
		return Entry{}, services.Wrap(services.ErrValidation, "archive", "save", "report text is empty", nil)
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = s.now().UTC()
	err := s.execWithRetry(ctx,
		"INSERT INTO analyses ("+entryColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		entry.ID,
		entry.CreatedAt.Format(time.RFC3339Nano),
		entry.Source,
		entry.Standard,
		entry.From,
		entry.To,
		entry.Records,
		entry.NotMet,
		entry.Provider,
		entry.Model,
		entry.Text,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert analysis: %w", err)
	}
	return entry, nil
}

// List returns up to limit entries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM analyses ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return entries, nil
}

// Get returns the entry with id, or ErrNotFound. A unique ID prefix is
// accepted so the short form printed by list works.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return Entry{}, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM analyses WHERE id = ? OR id LIKE ? ESCAPE '\\' ORDER BY id = ? DESC LIMIT 2",
		id, escapeLike(id)+"%", id)
	if err != nil {
		return Entry{}, fmt.Errorf("get analysis: %w", err)
	}
	defer rows.Close()

	var matches []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return Entry{}, err
		}
		matches = append(matches, entry)
	}
	if err := rows.Err(); err != nil {
		return Entry{}, fmt.Errorf("iterate analyses: %w", err)
	}
	switch {
	case len(matches) == 0:
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case matches[0].ID == id, len(matches) == 1:
		return matches[0], nil
	default:
		return Entry{}, services.Wrap(services.ErrValidation, "archive", "get",
			fmt.Sprintf("id prefix %q matches more than one entry", id), nil)
	}
}

// Delete removes the entry with id. Prefixes are resolved like Get.
func (s *Store) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)
	entry, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.execWithRetry(ctx, "DELETE FROM analyses WHERE id = ?", entry.ID); err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		entry   Entry
		created string
	)
	if err := row.Scan(
		&entry.ID,
		&created,
		&entry.Source,
		&entry.Standard,
		&entry.From,
		&entry.To,
		&entry.Records,
		&entry.NotMet,
		&entry.Provider,
		&entry.Model,
		&entry.Text,
	); err != nil {
		return Entry{}, fmt.Errorf("scan analysis: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	entry.CreatedAt = ts
	return entry, nil
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(value)
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// Package sqlite implements the document store on SQLite. Diaries,
// templates, and images live in one database file under the configured
// data directory; pane collections are stored as JSON text and validated
// against the pane registry whenever they are written or read.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/fundiary/fundiary/pkg/pane"
	"github.com/fundiary/fundiary/pkg/types"
)

// DBFile is the database file name inside DataDir.
const DBFile = "fundiary.db"

// timeLayout is fixed width so stored timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Compile-time interface check.
var _ types.Store = (*Backend)(nil)

// Backend implements types.Store on a SQLite database.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sqlx.DB
	registry *pane.Registry
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger for skipped rows and bound mismatches.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Backend) { b.logger = logger }
}

// WithClock replaces time.Now as the source of row timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// NewBackend creates a detached backend that validates panes with registry.
// Call Attach with a Config before use.
func NewBackend(registry *pane.Registry, opts ...Option) *Backend {
	b := &Backend{
		registry: registry,
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach opens or creates DataDir/fundiary.db and ensures the schema exists.
// Existing data is kept. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dsn := filepath.Join(dataDir, DBFile) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps pragmas in effect and serialises writers.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return err
	}

	b.bind(sqlx.NewDb(db, "sqlite"), config)
	return nil
}

// bind installs an open handle. The caller must hold b.mu.
func (b *Backend) bind(db *sqlx.DB, config types.Config) {
	b.db = db
	b.config = config
	b.attached = true
}

// Detach closes the database. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// Path returns the database file of the attached config.
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return filepath.Join(b.config.DataDir, DBFile)
}

// Diaries returns the diary table.
func (b *Backend) Diaries() types.DiaryTable { return &diariesTable{backend: b} }

// Templates returns the template table.
func (b *Backend) Templates() types.TemplateTable { return &templatesTable{backend: b} }

// Images returns the image table.
func (b *Backend) Images() types.ImageTable { return &imagesTable{backend: b} }

// read runs fn under the read lock when attached.
func (b *Backend) read(fn func(db *sqlx.DB) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.ErrStoreDetached
	}
	return fn(b.db)
}

// write runs fn under the write lock when attached.
func (b *Backend) write(fn func(db *sqlx.DB) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}
	return fn(b.db)
}

// timestamp returns the current time as stored, strictly after prev so that
// updatedAt increases on every write.
func (b *Backend) timestamp(prev time.Time) time.Time {
	now := b.now().UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// generateUUID generates a new UUID v7 for row IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

// Package index maintains the SQLite catalog of discovered skills, commands,
// and agents. The catalog is a rebuildable cache: discovery remains the
// source of truth, the index exists so that search and recommendation do not
// re-parse every SKILL.md on each query.
package index

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/skillet-cli/skillet/pkg/db"
	"github.com/skillet-cli/skillet/pkg/skills"
)

// Entry types stored in the catalog
const (
	EntryTypeSkill   = "skill"
	EntryTypeCommand = "command"
	EntryTypeAgent   = "agent"
)

// Entry is a single catalog record
type Entry struct {
	ID          string    `db:"id"`
	Type        string    `db:"entry_type"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Directory   string    `db:"directory"`
	Triggers    string    `db:"triggers"` // Newline-joined trigger phrases
	WordCount   int       `db:"word_count"`
	ScriptCount int       `db:"script_count"`
	Source      string    `db:"source"`
	ModTime     time.Time `db:"mod_time"`
	IndexedAt   time.Time `db:"indexed_at"`
}

// Stale reports whether the entry's backing file has changed on disk since
// it was indexed. For skills the tracked file is SKILL.md, so in-place edits
// count; for commands and agents the directory field is the markdown file
// itself. Timestamps lose sub-second precision on the round trip through
// SQLite, so the comparison has one second of slack.
func (e *Entry) Stale() bool {
	path := e.Directory
	if e.Type == EntryTypeSkill {
		path = filepath.Join(path, skills.SkillFileName)
	}

	info, err := os.Stat(path)
	if err != nil {
		return true
	}

	diff := info.ModTime().Sub(e.ModTime)
	if diff < 0 {
		diff = -diff
	}
	return diff > time.Second
}

// Run records a completed index rebuild
type Run struct {
	ID          string    `db:"id"`
	StartedAt   time.Time `db:"started_at"`
	CompletedAt time.Time `db:"completed_at"`
	EntryCount  int       `db:"entry_count"`
}

// Store wraps the catalog database
type Store struct {
	db *sqlx.DB
}

// Open opens the catalog at dbPath, creating and migrating it as needed
func Open(ctx context.Context, dbPath string) (*Store, error) {
	conn, err := db.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	runner := db.NewMigrationRunner(conn)
	if err := runner.Run(ctx, migrations); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to migrate catalog database")
	}

	return &Store{db: conn}, nil
}

// OpenDefault opens the catalog at the default location
func OpenDefault(ctx context.Context) (*Store, error) {
	dbPath, err := db.DefaultDBPath()
	if err != nil {
		return nil, err
	}
	return Open(ctx, dbPath)
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

var migrations = []db.Migration{
	{
		Version:     20250112090000,
		Description: "create catalog entries table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE entries (
					id TEXT PRIMARY KEY,
					entry_type TEXT NOT NULL,
					name TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					directory TEXT NOT NULL DEFAULT '',
					triggers TEXT NOT NULL DEFAULT '',
					word_count INTEGER NOT NULL DEFAULT 0,
					script_count INTEGER NOT NULL DEFAULT 0,
					source TEXT NOT NULL DEFAULT '',
					mod_time DATETIME NOT NULL,
					indexed_at DATETIME NOT NULL
				)
			`)
			if err != nil {
				return err
			}
			_, err = tx.Exec(`CREATE UNIQUE INDEX idx_entries_type_name ON entries(entry_type, name)`)
			if err != nil {
				return err
			}
			_, err = tx.Exec(`CREATE INDEX idx_entries_name ON entries(name)`)
			return err
		},
		Down: func(tx *sql.Tx) error {
			_, err := tx.Exec(`DROP TABLE IF EXISTS entries`)
			return err
		},
	},
	{
		Version:     20250112090500,
		Description: "create index runs table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE index_runs (
					id TEXT PRIMARY KEY,
					started_at DATETIME NOT NULL,
					completed_at DATETIME NOT NULL,
					entry_count INTEGER NOT NULL
				)
			`)
			return err
		},
		Down: func(tx *sql.Tx) error {
			_, err := tx.Exec(`DROP TABLE IF EXISTS index_runs`)
			return err
		},
	},
}

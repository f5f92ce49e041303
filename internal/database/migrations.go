package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// schemaVersion is the version the code expects. Upgrade steps are additive
// only: new columns get defaults, nothing is ever removed.
const schemaVersion = 4

// migration is one ordered schema upgrade step. Steps must be idempotent:
// they check the current state before mutating, so a step that failed half-way
// or was interrupted can safely run again on the next open.
type migration struct {
	version int
	name    string
	apply   func(db *sqlx.DB) error
}

var migrations = []migration{
	{1, "create flashcards table", createFlashcards},
	{2, "create categories and attach cards", createCategories},
	{3, "add card progress", addCardProgress},
	{4, "create interesting words table", createInterestingWords},
}

// Migrate applies every upgrade step between the stored schema version and
// the current one, in order. A failed step is logged and skipped; the stored
// version stops advancing at the first failure so the step is retried on the
// next open, while later idempotent steps still run to keep unaffected
// tables usable.
func Migrate() error {
	if err := ensureVersionTable(); err != nil {
		return err
	}

	current, err := storedVersion()
	if err != nil {
		return err
	}
	if current >= schemaVersion {
		return nil
	}

	advance := true
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := m.apply(DB); err != nil {
			logrus.WithError(err).Errorf("migration %d (%s) failed", m.version, m.name)
			advance = false
			continue
		}
		logrus.Debugf("applied migration %d (%s)", m.version, m.name)
		if advance {
			if err := setStoredVersion(m.version); err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureVersionTable() error {
	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			id INTEGER PRIMARY KEY,
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

func storedVersion() (int, error) {
	var version int
	err := DB.Get(&version, "SELECT version FROM schema_version WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		// No row yet means a fresh database
		if _, insErr := DB.Exec(rebind("INSERT INTO schema_version (id, version) VALUES (1, 0)")); insErr != nil {
			return 0, fmt.Errorf("failed to initialize schema version: %w", insErr)
		}
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func setStoredVersion(version int) error {
	_, err := DB.Exec(rebind("UPDATE schema_version SET version = ? WHERE id = 1"), version)
	if err != nil {
		return fmt.Errorf("failed to store schema version: %w", err)
	}
	return nil
}

func createFlashcards(db *sqlx.DB) error {
	_, err := db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS flashcards (
			id TEXT PRIMARY KEY,
			portuguese TEXT NOT NULL,
			russian TEXT NOT NULL,
			verbs TEXT NOT NULL DEFAULT '',
			explanation TEXT NOT NULL DEFAULT '',
			correct_count INTEGER NOT NULL DEFAULT 0,
			incorrect_count INTEGER NOT NULL DEFAULT 0,
			last_studied %s NULL,
			examples TEXT NOT NULL DEFAULT '[]'
		)
	`, timestampType()))
	if err != nil {
		return fmt.Errorf("failed to create flashcards table: %w", err)
	}
	return nil
}

func createCategories(db *sqlx.DB) error {
	_, err := db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
			word_count INTEGER NOT NULL DEFAULT 0
		)
	`, timestampType()))
	if err != nil {
		return fmt.Errorf("failed to create categories table: %w", err)
	}

	exists, err := columnExists("flashcards", "category_id")
	if err != nil {
		return err
	}
	if !exists {
		if _, err := db.Exec("ALTER TABLE flashcards ADD COLUMN category_id TEXT NOT NULL DEFAULT 'default'"); err != nil {
			return fmt.Errorf("failed to add category_id column: %w", err)
		}
	}
	// Default-fill cards created before categories existed
	_, err = db.Exec("UPDATE flashcards SET category_id = 'default' WHERE category_id IS NULL OR category_id = ''")
	if err != nil {
		return fmt.Errorf("failed to backfill category_id: %w", err)
	}
	return nil
}

func addCardProgress(db *sqlx.DB) error {
	exists, err := columnExists("flashcards", "progress")
	if err != nil {
		return err
	}
	if !exists {
		if _, err := db.Exec("ALTER TABLE flashcards ADD COLUMN progress REAL NOT NULL DEFAULT 0"); err != nil {
			return fmt.Errorf("failed to add progress column: %w", err)
		}
	}
	_, err = db.Exec("UPDATE flashcards SET progress = 0 WHERE progress IS NULL")
	if err != nil {
		return fmt.Errorf("failed to backfill progress: %w", err)
	}
	return nil
}

func createInterestingWords(db *sqlx.DB) error {
	_, err := db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS interesting_words (
			id TEXT PRIMARY KEY,
			word TEXT NOT NULL,
			created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)
	`, timestampType()))
	if err != nil {
		return fmt.Errorf("failed to create interesting_words table: %w", err)
	}
	_, err = db.Exec("CREATE INDEX IF NOT EXISTS idx_interesting_words_word ON interesting_words (word)")
	if err != nil {
		return fmt.Errorf("failed to create interesting_words index: %w", err)
	}
	return nil
}

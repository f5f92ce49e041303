package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database and applies pending
// schema migrations. PostgreSQL is selected when databaseURL is set,
// otherwise a SQLite file under dataDir is used.
func Connect(databaseURL, dataDir string) error {
	if databaseURL != "" {
		return Open("postgres", databaseURL)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return Open("sqlite3", filepath.Join(dataDir, "lembra.db"))
}

// Open connects with an explicit driver and DSN. Tests use it with
// "sqlite3" and ":memory:".
func Open(driver, dsn string) error {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	DB = db
	return Migrate()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// rebind converts "?" placeholders to "$n" when running on PostgreSQL
func rebind(query string) string {
	if DB.DriverName() == "postgres" {
		return sqlx.Rebind(sqlx.DOLLAR, query)
	}
	return query
}

// timestampType returns the column type used for time values
func timestampType() string {
	if DB.DriverName() == "postgres" {
		return "TIMESTAMPTZ"
	}
	return "TIMESTAMP"
}

// columnExists reports whether a column is present on a table
func columnExists(table, column string) (bool, error) {
	var count int
	var err error
	if DB.DriverName() == "postgres" {
		err = DB.Get(&count,
			"SELECT COUNT(*) FROM information_schema.columns WHERE table_name = $1 AND column_name = $2",
			table, column)
	} else {
		var cols []struct {
			CID       int     `db:"cid"`
			Name      string  `db:"name"`
			Type      string  `db:"type"`
			NotNull   int     `db:"notnull"`
			DfltValue *string `db:"dflt_value"`
			PK        int     `db:"pk"`
		}
		if err = DB.Select(&cols, fmt.Sprintf("PRAGMA table_info(%s)", table)); err == nil {
			for _, c := range cols {
				if strings.EqualFold(c.Name, column) {
					count = 1
					break
				}
			}
		}
	}
	if err != nil {
		return false, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	return count > 0, nil
}

// Package sqldb is the SQL-backed repository for threads, replies and their
// authors. PostgreSQL is the production store; SQLite serves development
// and tests. Queries are written with '?' placeholders and rebound per driver.
package sqldb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/itchan-dev/feedback/shared/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type Storage struct {
	db     *sqlx.DB
	driver string
}

// New connects to the database and applies the schema.
func New(ctx context.Context, driver, dsn string) (*Storage, error) {
	log := logger.Component("storage")
	log.Info("connecting to db", "driver", driver)

	db, err := Connect(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	storage := &Storage{db: db, driver: driver}
	if err := storage.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("successfully connected to db", "driver", driver)
	return storage, nil
}

func Connect(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "postgres":
	case "sqlite":
		// foreign keys are off by default in sqlite; busy_timeout smooths writer contention
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// a single connection serializes writers and keeps ":memory:" one database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

func (s *Storage) Migrate(ctx context.Context) error {
	schema := postgresSchema
	if s.driver == "sqlite" {
		schema = sqliteSchema
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// now is the timestamp written by the repository; databases round to microseconds.
func now() time.Time {
	return time.Now().UTC().Round(time.Microsecond)
}

package sqlstore

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/pomonitor/backend-go/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"modernc.org/sqlite"
)

// unicodeLower folds case for every script. SQLite's LOWER only folds ASCII.
const unicodeLower = "unicode_lower"

func init() {
	// modernc.org/sqlite registers as "sqlite", which sqlx does not know.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)

	if err := sqlite.RegisterDeterministicScalarFunction(unicodeLower, 1, sqliteUnicodeLower); err != nil {
		panic(fmt.Sprintf("register %s: %v", unicodeLower, err))
	}
}

func sqliteUnicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

// NewDB opens the configured store and makes sure the schema exists.
func NewDB(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite"
	}
	return Open(ctx, driver, cfg.DSN())
}

// Open connects with an explicit driver name and DSN.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("could not connect to %s: %w", driver, err)
	}

	weight := int64(10)
	if driver == "sqlite" {
		// One writer at a time; SQLite serializes writes anyway.
		db.SetMaxOpenConns(1)
		weight = 1
	} else {
		// Configure connection pool
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	store := &DB{
		DB:  db,
		sem: semaphore.NewWeighted(weight),
	}

	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug().Str("driver", driver).Msg("po store ready")
	return store, nil
}

// WithTx executes a function within a transaction
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	// Acquire semaphore
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

func (db *DB) isSQLite() bool {
	return db.DriverName() == "sqlite"
}

// lowerFunc names the SQL function that lowercases text the way
// strings.ToLower does.
func (db *DB) lowerFunc() string {
	if db.isSQLite() {
		return unicodeLower
	}
	return "LOWER"
}

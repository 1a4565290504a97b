package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/msomdec/book-catalog/internal/domain"
	"github.com/msomdec/book-catalog/internal/repository/sqlite/migrations"
)

const (
	// DriverModernc is the pure-Go driver and the default.
	DriverModernc = "sqlite"
	// DriverMattn is the cgo driver. It needs CGO_ENABLED=1 at build time.
	DriverMattn = "sqlite3"
)

// DB wraps the shared connection pool. Repositories borrow connections from
// it per statement; none of them own or close it.
type DB struct {
	SqlDB *sql.DB

	books      *BookRepository
	categories *CategoryRepository
	users      *UserRepository
}

type options struct {
	driver       string
	maxOpenConns int
}

// Option tunes how New opens the database.
type Option func(*options)

// WithDriver selects the registered database/sql driver name.
func WithDriver(driver string) Option {
	return func(o *options) { o.driver = driver }
}

// WithMaxOpenConns caps the pool size. Values below 1 are ignored.
func WithMaxOpenConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxOpenConns = n
		}
	}
}

// New opens a SQLite database at the given path and configures it for use.
// Every pooled connection gets WAL mode, foreign keys and a busy timeout.
func New(dbPath string, opts ...Option) (*DB, error) {
	o := options{driver: DriverModernc, maxOpenConns: 1}
	for _, opt := range opts {
		opt(&o)
	}

	dsn, err := buildDSN(o.driver, dbPath)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(o.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(o.maxOpenConns)

	if err := sqlDB.PingContext(context.Background()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{SqlDB: sqlDB}
	db.books = NewBookRepository(db)
	db.categories = NewCategoryRepository(db)
	db.users = NewUserRepository(db)
	return db, nil
}

func buildDSN(driver, dbPath string) (string, error) {
	switch driver {
	case DriverModernc:
		return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", nil
	case DriverMattn:
		return "file:" + dbPath + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", nil
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q", driver)
	}
}

// Migrate applies any pending embedded migrations.
func (db *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, db.SqlDB)
}

// Ping checks the store is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.SqlDB.PingContext(ctx)
}

// Close releases the pool.
func (db *DB) Close() error {
	return db.SqlDB.Close()
}

// Books returns the book repository bound to this pool.
func (db *DB) Books() *BookRepository { return db.books }

// Categories returns the category repository bound to this pool.
func (db *DB) Categories() *CategoryRepository { return db.categories }

// Users returns the user repository bound to this pool.
func (db *DB) Users() *UserRepository { return db.users }

// storeError logs a store failure with its operation name and wraps it so
// callers can tell it apart from a missing row.
func storeError(op string, err error) error {
	slog.Error("store operation failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %w", domain.ErrStore, op, err)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/msomdec/book-catalog/internal/domain"
	"github.com/msomdec/book-catalog/internal/repository/sqlite"
)

// Verify the SQLite types satisfy the domain interfaces at compile time.
var (
	_ domain.Database           = (*sqlite.DB)(nil)
	_ domain.BookRepository     = (*sqlite.BookRepository)(nil)
	_ domain.CategoryRepository = (*sqlite.CategoryRepository)(nil)
	_ domain.UserRepository     = (*sqlite.UserRepository)(nil)
)

// newTestDB opens a migrated database with the default categories seeded.
func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := db.Seed(ctx, sqlite.SeedOptions{Categories: []string{"Fiction", "History"}}); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return db
}

func TestNew(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file was not created")
	}

	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	var fkEnabled int
	if err := db.SqlDB.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		t.Fatalf("check foreign_keys: %v", err)
	}
	if fkEnabled != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fkEnabled)
	}
}

func TestNew_MattnDriver(t *testing.T) {
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"), sqlite.WithDriver(sqlite.DriverMattn))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	var fkEnabled int
	if err := db.SqlDB.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		t.Fatalf("check foreign_keys: %v", err)
	}
	if fkEnabled != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fkEnabled)
	}

	var journalMode string
	if err := db.SqlDB.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("check journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Fatalf("expected journal_mode=wal, got %s", journalMode)
	}

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"), sqlite.WithDriver("postgres"))
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestSeed_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	opts := sqlite.SeedOptions{
		Categories:    []string{"Ignored"},
		AdminEmail:    "admin@example.com",
		AdminPassword: "correct horse",
		BcryptCost:    4,
	}
	if err := db.Seed(ctx, opts); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := db.Seed(ctx, opts); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	categories, err := db.Categories().List(ctx)
	if err != nil {
		t.Fatalf("List categories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected the 2 seeded categories, got %d", len(categories))
	}

	users, err := db.Users().List(ctx)
	if err != nil {
		t.Fatalf("List users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 seeded user, got %d", len(users))
	}
	if users[0].Role != domain.RoleAdmin {
		t.Fatalf("expected seeded user to be Admin, got %s", users[0].Role)
	}
	if users[0].Password == "correct horse" {
		t.Fatal("expected password to be stored hashed")
	}
}

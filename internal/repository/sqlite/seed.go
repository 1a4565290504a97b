package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// SeedOptions controls the demo data inserted by Seed.
type SeedOptions struct {
	Categories    []string
	AdminEmail    string
	AdminPassword string
	BcryptCost    int
}

// DefaultSeedCategories is the category list a fresh catalog starts with.
var DefaultSeedCategories = []string{"Fiction", "Science Fiction", "History", "Biography", "Children"}

// Seed fills empty Category and BookUser tables. Tables that already hold
// rows are left alone, so it is safe to call on every start.
func (db *DB) Seed(ctx context.Context, opts SeedOptions) error {
	tx, err := db.SqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	empty, err := tableEmpty(ctx, tx, "Category")
	if err != nil {
		return err
	}
	if empty {
		for _, name := range opts.Categories {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO Category (CategoryName) VALUES (@name)`, sql.Named("name", name)); err != nil {
				return fmt.Errorf("seed category %s: %w", name, err)
			}
		}
		slog.Info("seeded categories", "count", len(opts.Categories))
	}

	empty, err = tableEmpty(ctx, tx, "BookUser")
	if err != nil {
		return err
	}
	if empty && opts.AdminEmail != "" && opts.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), opts.BcryptCost)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO BookUser (FirstName, LastName, Email, Password, Role)
			 VALUES ('Catalog', 'Admin', @email, @password, 'Admin')`,
			sql.Named("email", opts.AdminEmail), sql.Named("password", string(hash)),
		); err != nil {
			return fmt.Errorf("seed admin user: %w", err)
		}
		slog.Info("seeded admin user", "email", opts.AdminEmail)
	}

	return tx.Commit()
}

// tableEmpty only ever receives the fixed table names above.
func tableEmpty(ctx context.Context, tx *sql.Tx, table string) (bool, error) {
	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+table).Scan(&n); err != nil {
		return false, fmt.Errorf("count %s: %w", table, err)
	}
	return n == 0, nil
}

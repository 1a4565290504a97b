package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Book is a catalog record. ID is zero until the store assigns one.
type Book struct {
	ID          int64
	CategoryID  int64
	Name        string
	Description string
	Stock       int64
	Price       decimal.Decimal // currency, two decimal places
}

// BookRepository owns all book SQL. Store faults are returned wrapped in
// ErrStore; missing rows are reported as ErrNotFound.
type BookRepository interface {
	List(ctx context.Context) ([]Book, error)
	GetByID(ctx context.Context, id int64) (*Book, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]Book, error)
	// Create inserts the book and returns the row as persisted.
	Create(ctx context.Context, book *Book) (*Book, error)
	// Update overwrites every mutable column of the book identified by
	// book.ID and returns the row as persisted.
	Update(ctx context.Context, book *Book) (*Book, error)
	Delete(ctx context.Context, id int64) error
}

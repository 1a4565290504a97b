package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/msomdec/book-catalog/internal/domain"
)

// Book statements. Every value is bound through a named parameter.
const (
	bookColumns = `BookId, CategoryId, BookName, BookDescription, BookStock, BookPrice`

	sqlSelectAllBooks = `SELECT ` + bookColumns + ` FROM Book ORDER BY BookName ASC, BookId ASC`

	sqlSelectBookByID = `SELECT ` + bookColumns + ` FROM Book WHERE BookId = @id`

	sqlSelectBooksByCategory = `SELECT ` + bookColumns + ` FROM Book
		WHERE CategoryId = @categoryId ORDER BY BookName ASC, BookId ASC`

	sqlInsertBook = `INSERT INTO Book (CategoryId, BookName, BookDescription, BookStock, BookPrice)
		VALUES (@categoryId, @bookName, @bookDescription, @bookStock, @bookPrice)`

	// last_insert_rowid() is per connection, so this must run on the
	// transaction that performed the insert.
	sqlSelectLastInsertedBook = `SELECT ` + bookColumns + ` FROM Book WHERE BookId = last_insert_rowid()`

	sqlUpdateBook = `UPDATE Book SET CategoryId = @categoryId, BookName = @bookName,
		BookDescription = @bookDescription, BookStock = @bookStock, BookPrice = @bookPrice
		WHERE BookId = @id`

	sqlDeleteBook = `DELETE FROM Book WHERE BookId = @id`
)

// BookRepository implements domain.BookRepository using SQLite.
type BookRepository struct {
	db *sql.DB
}

// NewBookRepository creates a new SQLite-backed BookRepository.
func NewBookRepository(db *DB) *BookRepository {
	return &BookRepository{db: db.SqlDB}
}

func (r *BookRepository) List(ctx context.Context) ([]domain.Book, error) {
	rows, err := r.db.QueryContext(ctx, sqlSelectAllBooks)
	if err != nil {
		return nil, storeError("list books", err)
	}
	defer rows.Close()

	books, err := scanBooks(rows)
	if err != nil {
		return nil, storeError("list books", err)
	}
	return books, nil
}

func (r *BookRepository) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	book, err := scanBook(r.db.QueryRowContext(ctx, sqlSelectBookByID, sql.Named("id", id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeError("get book by id", err)
	}
	return book, nil
}

func (r *BookRepository) ListByCategory(ctx context.Context, categoryID int64) ([]domain.Book, error) {
	rows, err := r.db.QueryContext(ctx, sqlSelectBooksByCategory, sql.Named("categoryId", categoryID))
	if err != nil {
		return nil, storeError("list books by category", err)
	}
	defer rows.Close()

	books, err := scanBooks(rows)
	if err != nil {
		return nil, storeError("list books by category", err)
	}
	return books, nil
}

// Create inserts the book and re-reads the new row in the same transaction,
// so the returned record reflects whatever the store normalised.
func (r *BookRepository) Create(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeError("create book", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, sqlInsertBook, bookArgs(book)...); err != nil {
		return nil, storeError("create book", err)
	}

	created, err := scanBook(tx.QueryRowContext(ctx, sqlSelectLastInsertedBook))
	if err != nil {
		return nil, storeError("create book", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeError("create book", err)
	}
	return created, nil
}

// Update overwrites the book's columns and re-reads it. A missing id yields
// domain.ErrNotFound.
func (r *BookRepository) Update(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeError("update book", err)
	}
	defer tx.Rollback()

	args := append(bookArgs(book), sql.Named("id", book.ID))
	result, err := tx.ExecContext(ctx, sqlUpdateBook, args...)
	if err != nil {
		return nil, storeError("update book", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, storeError("update book", err)
	}
	if rows == 0 {
		return nil, domain.ErrNotFound
	}

	updated, err := scanBook(tx.QueryRowContext(ctx, sqlSelectBookByID, sql.Named("id", book.ID)))
	if err != nil {
		return nil, storeError("update book", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeError("update book", err)
	}
	return updated, nil
}

// Delete removes the book. Zero affected rows yields domain.ErrNotFound,
// whether the id never existed or was already deleted.
func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, sqlDeleteBook, sql.Named("id", id))
	if err != nil {
		return storeError("delete book", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeError("delete book", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func bookArgs(b *domain.Book) []any {
	return []any{
		sql.Named("categoryId", b.CategoryID),
		sql.Named("bookName", b.Name),
		sql.Named("bookDescription", b.Description),
		sql.Named("bookStock", b.Stock),
		sql.Named("bookPrice", b.Price.StringFixed(2)),
	}
}

func scanBook(row rowScanner) (*domain.Book, error) {
	var (
		b     domain.Book
		price decimal.Decimal
	)
	if err := row.Scan(&b.ID, &b.CategoryID, &b.Name, &b.Description, &b.Stock, &price); err != nil {
		return nil, err
	}
	b.Price = price.Round(2)
	return &b, nil
}

func scanBooks(rows *sql.Rows) ([]domain.Book, error) {
	books := []domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

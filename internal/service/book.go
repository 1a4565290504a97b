package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/msomdec/book-catalog/internal/domain"
	"github.com/msomdec/book-catalog/internal/events"
	"github.com/msomdec/book-catalog/internal/validator"
)

// EventPublisher receives book change notifications. Implementations must
// tolerate being called after the request that triggered them has finished.
type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}

// BookService is the only caller of both the validator and the book
// repository. Every write is validated before it reaches the store; reads
// pass through after their id is checked.
//
// Results are tagged through errors: domain.ErrInvalidInput for rejected
// input, domain.ErrNotFound for a missing row, domain.ErrStore for a store
// fault. Nothing is retried.
type BookService struct {
	books  domain.BookRepository
	events EventPublisher
}

// NewBookService creates a new BookService. events may be nil.
func NewBookService(books domain.BookRepository, events EventPublisher) *BookService {
	return &BookService{books: books, events: events}
}

// List returns every book ordered by name.
func (s *BookService) List(ctx context.Context) ([]domain.Book, error) {
	return s.books.List(ctx)
}

// GetByID validates rawID and returns the matching book.
func (s *BookService) GetByID(ctx context.Context, rawID any) (*domain.Book, error) {
	id, err := validator.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.books.GetByID(ctx, id)
}

// ListByCategory validates rawID and returns that category's books ordered
// by name. An unknown category yields an empty list.
func (s *BookService) ListByCategory(ctx context.Context, rawID any) ([]domain.Book, error) {
	categoryID, err := validator.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.books.ListByCategory(ctx, categoryID)
}

// Create validates raw and persists it, returning the stored record.
func (s *BookService) Create(ctx context.Context, raw validator.Raw) (*domain.Book, error) {
	book, err := validator.ValidateNewBook(raw)
	if err != nil {
		slog.Debug("create book: validation failed")
		return nil, err
	}

	created, err := s.books.Create(ctx, book)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.BookCreated, created.ID, created.CategoryID)
	return created, nil
}

// Update validates raw (including its id) and overwrites the stored book.
func (s *BookService) Update(ctx context.Context, raw validator.Raw) (*domain.Book, error) {
	book, err := validator.ValidateUpdateBook(raw)
	if err != nil {
		slog.Debug("update book: validation failed")
		return nil, err
	}

	updated, err := s.books.Update(ctx, book)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.BookUpdated, updated.ID, updated.CategoryID)
	return updated, nil
}

// Delete validates rawID and removes the book. Deleting a missing or
// already-deleted book yields domain.ErrNotFound.
func (s *BookService) Delete(ctx context.Context, rawID any) error {
	id, err := validator.ParseID(rawID)
	if err != nil {
		return err
	}

	if err := s.books.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, events.BookDeleted, id, 0)
	return nil
}

// publish never fails the request; a lost notification is only logged.
func (s *BookService) publish(ctx context.Context, key string, bookID, categoryID int64) {
	if s.events == nil {
		return
	}
	msg := events.BookChanged{BookID: bookID, CategoryID: categoryID, At: time.Now().UTC()}
	if err := s.events.PublishJSON(context.WithoutCancel(ctx), key, msg); err != nil {
		slog.Warn("publish book event", "key", key, "book_id", bookID, "error", err)
	}
}

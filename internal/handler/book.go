package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/book-catalog/internal/domain"
	"github.com/msomdec/book-catalog/internal/validator"
)

// BookService is the book use-case surface the handlers depend on.
type BookService interface {
	List(ctx context.Context) ([]domain.Book, error)
	GetByID(ctx context.Context, rawID any) (*domain.Book, error)
	ListByCategory(ctx context.Context, rawID any) ([]domain.Book, error)
	Create(ctx context.Context, raw validator.Raw) (*domain.Book, error)
	Update(ctx context.Context, raw validator.Raw) (*domain.Book, error)
	Delete(ctx context.Context, rawID any) error
}

// Messages returned for rejected input. Existing clients match on them.
const (
	msgInvalidParameter = "invalid parameter"
	msgInvalidBook      = "invalid book"
	msgBookUpdateFailed = "Book update failed"
	msgStoreFailure     = "internal server error"
)

// BookHandler serves /book.
type BookHandler struct {
	books  BookService
	strict bool
}

// NewBookHandler creates a new BookHandler. With strict set, rejected input
// is answered with 4xx instead of 200 and an error body.
func NewBookHandler(books BookService, strict bool) *BookHandler {
	return &BookHandler{books: books, strict: strict}
}

// HandleList handles GET /book.
func (h *BookHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookDTOs(books))
}

// HandleGet handles GET /book/{id}. A missing book is answered with null.
func (h *BookHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	book, err := h.books.GetByID(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeInvalidParameter(w, h.strict)
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusOK, nil)
	case err != nil:
		writeStoreError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, toBookDTO(book))
	}
}

// HandleListByCategory handles GET /book/bycat/{id}.
func (h *BookHandler) HandleListByCategory(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.ListByCategory(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeInvalidParameter(w, h.strict)
	case err != nil:
		writeStoreError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, toBookDTOs(books))
	}
}

// HandleCreate handles POST /book.
func (h *BookHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	book, err := h.books.Create(r.Context(), toRaw(body))
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeRejected(w, h.strict, msgInvalidBook)
	case err != nil:
		writeStoreError(w, r, err)
	default:
		slog.Info("book created", "book_id", book.ID, "subject", subject(r))
		writeJSON(w, http.StatusOK, toBookDTO(book))
	}
}

// HandleUpdate handles PUT /book. Updating a missing book is answered with
// null.
func (h *BookHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	book, err := h.books.Update(r.Context(), toRaw(body))
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeRejected(w, h.strict, msgBookUpdateFailed)
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusOK, nil)
	case err != nil:
		writeStoreError(w, r, err)
	default:
		slog.Info("book updated", "book_id", book.ID, "subject", subject(r))
		writeJSON(w, http.StatusOK, toBookDTO(book))
	}
}

// HandleDelete handles DELETE /book/{id} and answers true or false.
func (h *BookHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.books.Delete(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		if h.strict {
			writeError(w, http.StatusBadRequest, msgInvalidParameter)
			return
		}
		writeJSON(w, http.StatusOK, false)
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusOK, false)
	case err != nil:
		writeStoreError(w, r, err)
	default:
		slog.Info("book deleted", "book_id", r.PathValue("id"), "subject", subject(r))
		writeJSON(w, http.StatusOK, true)
	}
}

// subject names the token holder for audit logs.
func subject(r *http.Request) string {
	if claims := ClaimsFromContext(r.Context()); claims != nil {
		return claims.Subject
	}
	return ""
}

// writeInvalidParameter answers a malformed path id. Legacy clients expect
// the bare JSON string with a 200.
func writeInvalidParameter(w http.ResponseWriter, strict bool) {
	if strict {
		writeError(w, http.StatusBadRequest, msgInvalidParameter)
		return
	}
	writeJSON(w, http.StatusOK, msgInvalidParameter)
}

func writeRejected(w http.ResponseWriter, strict bool, message string) {
	status := http.StatusOK
	if strict {
		status = http.StatusUnprocessableEntity
	}
	writeError(w, status, message)
}

// writeStoreError hides store details from the client; the repository has
// already logged them.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "path", r.URL.Path, "request_id", RequestIDFromContext(r.Context()), "error", err)
	writeError(w, http.StatusInternalServerError, msgStoreFailure)
}

package handler

import (
	"context"
	"net/http"

	"github.com/msomdec/book-catalog/internal/domain"
)

// CategoryService is the category use-case surface the handlers depend on.
type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
}

// CategoryHandler serves /category.
type CategoryHandler struct {
	categories CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categories CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// HandleList handles GET /category.
func (h *CategoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTOs(categories))
}

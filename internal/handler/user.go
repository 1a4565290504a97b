package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/msomdec/book-catalog/internal/domain"
)

// UserService is the user lookup surface the handlers depend on.
type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, rawID any) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// UserHandler serves the read-only /user routes.
type UserHandler struct {
	users  UserService
	strict bool
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users UserService, strict bool) *UserHandler {
	return &UserHandler{users: users, strict: strict}
}

// HandleList handles GET /user.
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTOs(users))
}

// HandleGet handles GET /user/{id}.
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), r.PathValue("id"))
	h.writeUser(w, r, user, err)
}

// HandleGetByEmail handles GET /user/email/{email}.
func (h *UserHandler) HandleGetByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByEmail(r.Context(), r.PathValue("email"))
	h.writeUser(w, r, user, err)
}

func (h *UserHandler) writeUser(w http.ResponseWriter, r *http.Request, user *domain.User, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeInvalidParameter(w, h.strict)
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusOK, nil)
	case err != nil:
		writeStoreError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, toUserDTO(user))
	}
}

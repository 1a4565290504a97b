package handler

import (
	"net/http"

	"github.com/msomdec/book-catalog/internal/service"
)

// Scopes names the token scope each protected operation requires.
type Scopes struct {
	Create    string
	Update    string
	Delete    string
	ReadUsers string
}

// DefaultScopes are the scopes issued by the identity provider for this API.
var DefaultScopes = Scopes{
	Create:    "create:books",
	Update:    "update:books",
	Delete:    "delete:books",
	ReadUsers: "read:users",
}

// Dependencies are the collaborators RegisterRoutes wires into the mux.
type Dependencies struct {
	Books      BookService
	Categories CategoryService
	Users      UserService
	Auth       Authorizer
	DB         Pinger
	Scopes     Scopes

	// StrictStatus answers rejected input with 4xx instead of 200.
	StrictStatus bool
	// WriteLimiter throttles POST, PUT and DELETE per client. May be nil.
	WriteLimiter *service.TokenBucket
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	books := NewBookHandler(deps.Books, deps.StrictStatus)
	categories := NewCategoryHandler(deps.Categories)
	users := NewUserHandler(deps.Users, deps.StrictStatus)

	write := func(h http.HandlerFunc, scope string) http.Handler {
		return RateLimit(deps.WriteLimiter, RequireScopes(deps.Auth, h, scope))
	}

	mux.HandleFunc("GET /{$}", HandleIndex)
	mux.HandleFunc("GET /healthz", HandleHealthz(deps.DB))

	mux.HandleFunc("GET /book", books.HandleList)
	mux.HandleFunc("GET /book/{id}", books.HandleGet)
	mux.HandleFunc("GET /book/bycat/{id}", books.HandleListByCategory)
	mux.Handle("POST /book", write(books.HandleCreate, deps.Scopes.Create))
	mux.Handle("PUT /book", write(books.HandleUpdate, deps.Scopes.Update))
	mux.Handle("DELETE /book/{id}", write(books.HandleDelete, deps.Scopes.Delete))

	mux.HandleFunc("GET /category", categories.HandleList)

	mux.Handle("GET /user", RequireScopes(deps.Auth, http.HandlerFunc(users.HandleList), deps.Scopes.ReadUsers))
	mux.Handle("GET /user/{id}", RequireScopes(deps.Auth, http.HandlerFunc(users.HandleGet), deps.Scopes.ReadUsers))
	mux.Handle("GET /user/email/{email}", RequireScopes(deps.Auth, http.HandlerFunc(users.HandleGetByEmail), deps.Scopes.ReadUsers))
}

// Wrap applies the middleware shared by every route. RequestID runs first.
func Wrap(h http.Handler, allowedOrigins []string) http.Handler {
	h = SecurityHeaders(h)
	h = CORS(allowedOrigins, h)
	h = RecoverPanic(h)
	h = LogRequests(h)
	return RequestID(h)
}

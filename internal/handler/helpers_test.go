package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/book-catalog/internal/domain"
	"github.com/msomdec/book-catalog/internal/handler"
	"github.com/msomdec/book-catalog/internal/service"
	"github.com/msomdec/book-catalog/internal/validator"
)

const (
	testSecret   = "test-secret-for-handler-tests"
	testIssuer   = "https://issuer.example.com/"
	testAudience = "https://books.example.com"
)

func newTestAuth(t *testing.T) *service.AuthService {
	t.Helper()
	auth, err := service.NewAuthService(context.Background(), service.AuthConfig{
		Issuer:     testIssuer,
		Audience:   testAudience,
		HMACSecret: testSecret,
	})
	require.NoError(t, err)
	return auth
}

// tokenWith signs a token granting permissions.
func tokenWith(t *testing.T, permissions ...string) string {
	t.Helper()
	claims := service.AccessClaims{
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "auth0|tester",
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

// fakeBooks records every call so tests can assert the gate kept requests
// away from the service.
type fakeBooks struct {
	mu    sync.Mutex
	calls []string

	book  *domain.Book
	books []domain.Book
	err   error
	raw   validator.Raw
	rawID any
}

func (f *fakeBooks) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeBooks) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBooks) List(context.Context) ([]domain.Book, error) {
	f.record("List")
	return f.books, f.err
}

func (f *fakeBooks) GetByID(_ context.Context, rawID any) (*domain.Book, error) {
	f.record("GetByID")
	f.rawID = rawID
	return f.book, f.err
}

func (f *fakeBooks) ListByCategory(_ context.Context, rawID any) ([]domain.Book, error) {
	f.record("ListByCategory")
	f.rawID = rawID
	return f.books, f.err
}

func (f *fakeBooks) Create(_ context.Context, raw validator.Raw) (*domain.Book, error) {
	f.record("Create")
	f.raw = raw
	return f.book, f.err
}

func (f *fakeBooks) Update(_ context.Context, raw validator.Raw) (*domain.Book, error) {
	f.record("Update")
	f.raw = raw
	return f.book, f.err
}

func (f *fakeBooks) Delete(_ context.Context, rawID any) error {
	f.record("Delete")
	f.rawID = rawID
	return f.err
}

type fakeCategories struct {
	categories []domain.Category
	err        error
}

func (f *fakeCategories) List(context.Context) ([]domain.Category, error) {
	return f.categories, f.err
}

type fakeUsers struct {
	user  *domain.User
	users []domain.User
	err   error
}

func (f *fakeUsers) List(context.Context) ([]domain.User, error) {
	return f.users, f.err
}

func (f *fakeUsers) GetByID(context.Context, any) (*domain.User, error) {
	return f.user, f.err
}

func (f *fakeUsers) GetByEmail(context.Context, string) (*domain.User, error) {
	return f.user, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func sampleBook() *domain.Book {
	return &domain.Book{
		ID:          7,
		CategoryID:  1,
		Name:        "Dune",
		Description: "Classic sci-fi",
		Stock:       5,
		Price:       decimal.RequireFromString("12.9"),
	}
}

type testServer struct {
	*httptest.Server
	books *fakeBooks
	users *fakeUsers
}

func newFakeServer(t *testing.T, strict bool) *testServer {
	t.Helper()
	books := &fakeBooks{book: sampleBook()}
	users := &fakeUsers{}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Dependencies{
		Books:        books,
		Categories:   &fakeCategories{categories: []domain.Category{{ID: 1, Name: "Fiction"}}},
		Users:        users,
		Auth:         newTestAuth(t),
		DB:           fakePinger{},
		Scopes:       handler.DefaultScopes,
		StrictStatus: strict,
	})

	srv := httptest.NewServer(handler.Wrap(mux, nil))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, books: books, users: users}
}

func (s *testServer) do(t *testing.T, method, path, token, contentType, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, stringsReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func stringsReader(s string) io.Reader {
	if s == "" {
		return nil
	}
	return strings.NewReader(s)
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return strings.TrimSpace(string(b))
}

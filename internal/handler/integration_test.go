package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/book-catalog/internal/handler"
	"github.com/msomdec/book-catalog/internal/repository/sqlite"
	"github.com/msomdec/book-catalog/internal/service"
)

func newIntegrationServer(t *testing.T) *testServer {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Seed(ctx, sqlite.SeedOptions{Categories: []string{"Fiction", "History"}}))

	limiter := service.NewTokenBucket(100, 100)
	t.Cleanup(limiter.Stop)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Dependencies{
		Books:        service.NewBookService(db.Books(), nil),
		Categories:   service.NewCategoryService(db.Categories()),
		Users:        service.NewUserService(db.Users()),
		Auth:         newTestAuth(t),
		DB:           db,
		Scopes:       handler.DefaultScopes,
		WriteLimiter: limiter,
	})

	srv := httptest.NewServer(handler.Wrap(mux, nil))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv}
}

func TestIntegration_BookLifecycle(t *testing.T) {
	srv := newIntegrationServer(t)
	admin := tokenWith(t, "create:books", "update:books", "delete:books")

	// 1. Create.
	resp := srv.do(t, http.MethodPost, "/book", admin, "application/json",
		`{"CategoryId":1,"BookName":"Dune","BookDescription":"Classic sci-fi","BookStock":5,"BookPrice":12.99}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created handler.BookDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotZero(t, created.ID)
	assert.Equal(t, "Dune", created.Name)
	assert.Equal(t, "12.99", created.Price.String())

	// 2. Fetch by id.
	resp = srv.do(t, http.MethodGet, "/book/"+itoa(created.ID), "", "", "")
	var fetched handler.BookDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fetched))
	assert.Equal(t, created, fetched)

	// 3. Category listing.
	resp = srv.do(t, http.MethodGet, "/book/bycat/1", "", "", "")
	var byCat []handler.BookDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&byCat))
	assert.Len(t, byCat, 1)

	resp = srv.do(t, http.MethodGet, "/book/bycat/2", "", "", "")
	assert.Equal(t, "[]", readAll(t, resp))

	// 4. Update.
	resp = srv.do(t, http.MethodPut, "/book", admin, "application/json",
		`{"BookId":`+itoa(created.ID)+`,"CategoryId":2,"BookName":"Dune <Deluxe>","BookDescription":"d","BookStock":0,"BookPrice":"20"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated handler.BookDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Dune &lt;Deluxe&gt;", updated.Name)
	assert.Equal(t, "20.00", updated.Price.String())

	// 5. Rejected input changes nothing.
	resp = srv.do(t, http.MethodPost, "/book", admin, "application/json",
		`{"CategoryId":1,"BookName":"","BookDescription":"d","BookStock":1,"BookPrice":1}`)
	assert.JSONEq(t, `{"error":"invalid book"}`, readAll(t, resp))

	// 6. Dangling category is a store failure.
	resp = srv.do(t, http.MethodPost, "/book", admin, "application/json",
		`{"CategoryId":42,"BookName":"X","BookDescription":"d","BookStock":1,"BookPrice":1}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// 7. Delete twice.
	resp = srv.do(t, http.MethodDelete, "/book/"+itoa(created.ID), admin, "", "")
	assert.Equal(t, "true", readAll(t, resp))
	resp = srv.do(t, http.MethodDelete, "/book/"+itoa(created.ID), admin, "", "")
	assert.Equal(t, "false", readAll(t, resp))

	resp = srv.do(t, http.MethodGet, "/book/"+itoa(created.ID), "", "", "")
	assert.Equal(t, "null", readAll(t, resp))
}

func TestIntegration_Healthz(t *testing.T) {
	srv := newIntegrationServer(t)

	resp := srv.do(t, http.MethodGet, "/healthz", "", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"example.com/userstore/internal/domain"
	"example.com/userstore/internal/storage/memory"
	"example.com/userstore/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const notFoundBody = `{"message":"User Not Found !"}`

func ptr[T any](v T) *T { return &v }

func newTestHandler(t *testing.T, seed []domain.User, opts ...usecase.Option) http.Handler {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.Seed(context.Background(), seed))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(usecase.NewUserService(store, opts...), logger)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeUsers(t *testing.T, rec *httptest.ResponseRecorder) []domain.User {
	t.Helper()
	var items []domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	return items
}

func TestListUsers_Empty(t *testing.T) {
	h := newTestHandler(t, nil)
	rec := do(t, h, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestGetUser(t *testing.T) {
	h := newTestHandler(t, []domain.User{{ID: 1, Name: ptr("Carol")}})

	rec := do(t, h, http.MethodGet, "/users/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Carol"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "Not Found")
}

func TestMissingIDs_NotFound(t *testing.T) {
	h := newTestHandler(t, []domain.User{{ID: 1, Name: ptr("Carol")}})

	for _, id := range []string{"2", "abc", "1.5", "-", "99999999999999999999"} {
		for _, tc := range []struct{ method, body string }{
			{http.MethodGet, ""},
			{http.MethodPut, `{"name":"x"}`},
			{http.MethodDelete, ""},
		} {
			rec := do(t, h, tc.method, "/users/"+id, tc.body)
			assert.Equal(t, http.StatusNotFound, rec.Code, "%s /users/%s", tc.method, id)
			assert.JSONEq(t, notFoundBody, rec.Body.String(), "%s /users/%s", tc.method, id)
		}
	}
}

func TestCreateUser(t *testing.T) {
	h := newTestHandler(t, []domain.User{{ID: 1, Name: ptr("Carol")}})

	rec := do(t, h, http.MethodPost, "/user", `{"name":"Alice"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"Created !"}`, rec.Body.String())
	assert.Equal(t, "/users/2", rec.Header().Get("Location"))

	items := decodeUsers(t, do(t, h, http.MethodGet, "/users", ""))
	require.Len(t, items, 2)
	assert.Equal(t, ptr("Alice"), items[1].Name)

	rec = do(t, h, http.MethodGet, rec.Header().Get("Location"), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":2,"name":"Alice"}`, rec.Body.String())
}

func TestCreateUser_WithoutName(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := do(t, h, http.MethodPost, "/user", `{}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, h, http.MethodPost, "/user", "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/users", "")
	assert.JSONEq(t, `[{"id":1},{"id":2}]`, rec.Body.String())
}

func TestCreateUser_RequireName(t *testing.T) {
	h := newTestHandler(t, nil, usecase.WithRequireName(true))

	rec := do(t, h, http.MethodPost, "/user", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Name Required !"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/users", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateUser_MalformedJSON(t *testing.T) {
	h := newTestHandler(t, nil)
	rec := do(t, h, http.MethodPost, "/user", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid JSON !"}`, rec.Body.String())
}

func TestUpdateUser(t *testing.T) {
	h := newTestHandler(t, []domain.User{{ID: 1, Name: ptr("Carol")}})

	rec := do(t, h, http.MethodPut, "/users/1", `{"name":"Bob"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Bob"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/users/1", "")
	assert.JSONEq(t, `{"id":1,"name":"Bob"}`, rec.Body.String())
}

func TestDeleteUser(t *testing.T) {
	h := newTestHandler(t, []domain.User{
		{ID: 1, Name: ptr("Carol")},
		{ID: 2, Name: ptr("Dave")},
	})

	rec := do(t, h, http.MethodDelete, "/users/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"deleted !"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/users", "")
	assert.JSONEq(t, `[{"id":2,"name":"Dave"}]`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/users/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatedUsersAreAddressable(t *testing.T) {
	h := newTestHandler(t, nil)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/user", `{"name":"Alice"}`).Code)

	rec := do(t, h, http.MethodPut, "/users/1", `{"name":"Alicia"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Alicia"}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/users/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestID(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(headerRequestID))
}

type failingService struct{ Service }

func (failingService) List(context.Context) ([]domain.User, error) {
	return nil, errors.New("db down")
}

func TestStoreErrorIsInternal(t *testing.T) {
	h := New(failingService{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := do(t, h, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Internal Error !"}`, rec.Body.String())
}

func doWithType(t *testing.T, h http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateUser_BodyShapes(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantCode    int
		wantUsers   string
	}{
		{"plain text body", "text/plain", "hello", http.StatusCreated, `[{"id":1}]`},
		{"no content type", "", `{"name":"Alice"}`, http.StatusCreated, `[{"id":1}]`},
		{"json with charset", "application/json; charset=utf-8", `{"name":"Alice"}`, http.StatusCreated, `[{"id":1,"name":"Alice"}]`},
		{"numeric name", "application/json", `{"name":5}`, http.StatusCreated, `[{"id":1}]`},
		{"null name", "application/json", `{"name":null}`, http.StatusCreated, `[{"id":1}]`},
		{"array body", "application/json", `[]`, http.StatusCreated, `[{"id":1}]`},
		{"trailing whitespace", "application/json", "{\"name\":\"a\"}\n", http.StatusCreated, `[{"id":1,"name":"a"}]`},
		{"trailing data", "application/json", `{"name":"a"} trailing`, http.StatusBadRequest, `[]`},
		{"second value", "application/json", `{"name":"a"}{"name":"b"}`, http.StatusBadRequest, `[]`},
		{"scalar body", "application/json", `"Alice"`, http.StatusBadRequest, `[]`},
		{"broken json", "application/json", `{"name":`, http.StatusBadRequest, `[]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(t, nil)
			rec := doWithType(t, h, http.MethodPost, "/user", tc.contentType, tc.body)
			assert.Equal(t, tc.wantCode, rec.Code)
			if tc.wantCode == http.StatusBadRequest {
				assert.JSONEq(t, `{"message":"Invalid JSON !"}`, rec.Body.String())
			}
			assert.JSONEq(t, tc.wantUsers, do(t, h, http.MethodGet, "/users", "").Body.String())
		})
	}
}

func TestUpdateUser_NonJSONBodyClearsName(t *testing.T) {
	h := newTestHandler(t, []domain.User{{ID: 1, Name: ptr("Carol")}})

	rec := doWithType(t, h, http.MethodPut, "/users/1", "text/plain", "Bob")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1}`, rec.Body.String())

	rec = doWithType(t, h, http.MethodPut, "/users/1", "application/json", `{"name":"Bob"} x`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

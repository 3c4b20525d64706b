package accounts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upfafrica-backend/internal/api"
	"upfafrica-backend/internal/auth"
	"upfafrica-backend/internal/models"
	"upfafrica-backend/internal/storage"
)

type fakeStore struct {
	users map[string]*models.User
	seq   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*models.User)}
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return storage.ErrDuplicateEmail
		}
	}
	f.seq++
	user.CreatedAt = time.Unix(int64(f.seq), 0)
	user.UpdatedAt = user.CreatedAt
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok || u.IsDeleted {
		return nil, storage.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeStore) ListUsers(_ context.Context, page, perPage int) ([]models.User, error) {
	var all []models.User
	for _, u := range f.users {
		if !u.IsDeleted {
			all = append(all, *u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	start := (page - 1) * perPage
	if start >= len(all) {
		return nil, nil
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (f *fakeStore) CountUsers(_ context.Context) (int, error) {
	count := 0
	for _, u := range f.users {
		if !u.IsDeleted {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) UpdateUser(_ context.Context, id string, changes models.UserUpdate) (*models.User, error) {
	u, ok := f.users[id]
	if !ok || u.IsDeleted {
		return nil, storage.ErrNotFound
	}
	if changes.Email != nil {
		for otherID, other := range f.users {
			if otherID != id && other.Email == *changes.Email {
				return nil, storage.ErrDuplicateEmail
			}
		}
		u.Email = *changes.Email
	}
	if changes.Name != nil {
		u.Name = *changes.Name
	}
	if changes.IsActive != nil {
		u.IsActive = *changes.IsActive
	}
	clone := *u
	return &clone, nil
}

func (f *fakeStore) SoftDeleteUser(_ context.Context, id string) error {
	u, ok := f.users[id]
	if !ok || u.IsDeleted {
		return storage.ErrNotFound
	}
	u.IsDeleted = true
	return nil
}

func newTestRouter(t *testing.T) (*chi.Mux, *fakeStore, string) {
	t.Helper()
	store := newFakeStore()
	handler := NewHandler(store)
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)

	r := chi.NewRouter()
	handler.RegisterRoutes(r, tokens)

	token, err := tokens.Generate("admin-user")
	require.NoError(t, err)
	return r, store, token
}

func doRequest(r http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAccountsRequireAuth(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := doRequest(r, http.MethodGet, "/v1/accounts/", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAccountValidation(t *testing.T) {
	r, _, token := newTestRouter(t)

	rec := doRequest(r, http.MethodPost, "/v1/accounts/", `{"email":"","password":"longEnough1"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(r, http.MethodPost, "/v1/accounts/", `{"email":"a@b.com","password":"short"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountCRUDLifecycle(t *testing.T) {
	r, store, token := newTestRouter(t)

	rec := doRequest(r, http.MethodPost, "/v1/accounts/", `{"email":"carol@example.com","password":"longEnough1","name":"Carol"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password_hash")

	var created struct {
		Data models.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Data.ID
	require.NotEmpty(t, id)

	rec = doRequest(r, http.MethodGet, "/v1/accounts/"+id, "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "carol@example.com")

	rec = doRequest(r, http.MethodPut, "/v1/accounts/"+id, `{"name":"Carol Q"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Carol Q")
	assert.Equal(t, "carol@example.com", store.users[id].Email, "unsent fields stay put")

	rec = doRequest(r, http.MethodDelete, "/v1/accounts/"+id, "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(r, http.MethodGet, "/v1/accounts/"+id, "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(r, http.MethodDelete, "/v1/accounts/"+id, "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code, "double delete")
}

func TestListAccountsPagination(t *testing.T) {
	r, _, token := newTestRouter(t)

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		rec := doRequest(r, http.MethodPost, "/v1/accounts/", `{"email":"`+email+`","password":"longEnough1"}`, token)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(r, http.MethodGet, "/v1/accounts/?page=1&per_page=2", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var page api.PageEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.PerPage)
	assert.Len(t, page.Data.([]any), 2)

	rec = doRequest(r, http.MethodGet, "/v1/accounts/?page=2&per_page=2", "", token)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Data.([]any), 1)

	rec = doRequest(r, http.MethodGet, "/v1/accounts/count", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":3`)
}

func TestDeletedAccountsLeaveList(t *testing.T) {
	r, store, token := newTestRouter(t)

	rec := doRequest(r, http.MethodPost, "/v1/accounts/", `{"email":"gone@example.com","password":"longEnough1"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var created struct {
		Data models.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	require.NoError(t, store.SoftDeleteUser(context.Background(), created.Data.ID))

	rec = doRequest(r, http.MethodGet, "/v1/accounts/", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var page api.PageEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 0, page.Pagination.Total)
}

package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"upfafrica-backend/internal/api"
	"upfafrica-backend/internal/auth"
	"upfafrica-backend/internal/models"
	"upfafrica-backend/internal/storage"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, page, perPage int) ([]models.User, error)
	CountUsers(ctx context.Context) (int, error)
	UpdateUser(ctx context.Context, id string, changes models.UserUpdate) (*models.User, error)
	SoftDeleteUser(ctx context.Context, id string) error
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the account controller behind bearer auth.
func (h *Handler) RegisterRoutes(r chi.Router, tokens *auth.TokenIssuer) {
	r.Route("/v1/accounts", func(r chi.Router) {
		r.Use(tokens.Middleware)
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/count", h.Count)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

type createAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		api.BadRequest(w, "valid email required")
		return
	}
	if len(req.Password) < 8 {
		api.BadRequest(w, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR accounts: hash password: %v", err)
		api.ServerError(w)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		IsActive:     isActive,
	}

	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			api.BadRequest(w, "email already registered")
			return
		}
		log.Printf("ERROR accounts: create: %v", err)
		api.ServerError(w)
		return
	}

	api.Success(w, user)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", defaultPerPage)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > maxPerPage {
		perPage = defaultPerPage
	}

	users, err := h.store.ListUsers(r.Context(), page, perPage)
	if err != nil {
		log.Printf("ERROR accounts: list: %v", err)
		api.ServerError(w)
		return
	}

	total, err := h.store.CountUsers(r.Context())
	if err != nil {
		log.Printf("ERROR accounts: count: %v", err)
		api.ServerError(w)
		return
	}

	if users == nil {
		users = []models.User{}
	}
	api.Page(w, users, api.Pagination{Page: page, PerPage: perPage, Total: total})
}

func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	total, err := h.store.CountUsers(r.Context())
	if err != nil {
		log.Printf("ERROR accounts: count: %v", err)
		api.ServerError(w)
		return
	}
	api.Success(w, map[string]int{"count": total})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			api.NotFound(w, "account not found")
			return
		}
		log.Printf("ERROR accounts: get id=%s: %v", id, err)
		api.ServerError(w)
		return
	}
	api.Success(w, user)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var changes models.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		api.BadRequest(w, "invalid request body")
		return
	}
	if changes.Email != nil {
		trimmed := strings.TrimSpace(*changes.Email)
		if trimmed == "" || !strings.Contains(trimmed, "@") {
			api.BadRequest(w, "valid email required")
			return
		}
		changes.Email = &trimmed
	}

	user, err := h.store.UpdateUser(r.Context(), id, changes)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			api.NotFound(w, "account not found")
		case errors.Is(err, storage.ErrDuplicateEmail):
			api.BadRequest(w, "email already registered")
		default:
			log.Printf("ERROR accounts: update id=%s: %v", id, err)
			api.ServerError(w)
		}
		return
	}

	api.Success(w, user)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.SoftDeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			api.NotFound(w, "account not found")
			return
		}
		log.Printf("ERROR accounts: delete id=%s: %v", id, err)
		api.ServerError(w)
		return
	}
	api.Success(w, nil)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

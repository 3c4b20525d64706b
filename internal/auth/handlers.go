package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"upfafrica-backend/internal/api"
	"upfafrica-backend/internal/cache"
	"upfafrica-backend/internal/middleware"
	"upfafrica-backend/internal/models"
	"upfafrica-backend/internal/otp"
	"upfafrica-backend/internal/storage"
)

const (
	minPasswordLength = 8
	// A colliding live code is a one-in-billions draw; a handful of retries
	// is already overkill.
	maxIssueAttempts = 5
)

// Store is the persistence surface the auth flows need.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error
	FindUserByResetCode(ctx context.Context, code string) (*models.User, error)
	ConsumeResetCode(ctx context.Context, code, passwordHash string, now time.Time) (string, error)
}

// CodeSender delivers reset codes over the out-of-band channel.
type CodeSender interface {
	SendResetCode(ctx context.Context, email, code string, expiresAt time.Time) error
}

type Handler struct {
	store  Store
	codes  CodeSender
	tokens *TokenIssuer

	// now is swappable so expiry behavior is testable.
	now func() time.Time
}

func NewHandler(store Store, codes CodeSender, tokens *TokenIssuer) *Handler {
	return &Handler{
		store:  store,
		codes:  codes,
		tokens: tokens,
		now:    time.Now,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router, cacheClient cache.Client) {
	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.With(middleware.RateLimitLogin(cacheClient)).Post("/login", h.Login)
		r.With(middleware.RateLimitReset(cacheClient)).Post("/forgot-password", h.ForgotPassword)
		r.With(middleware.RateLimitVerify(cacheClient)).Post("/validate-otp", h.ValidateOTP)
		r.With(middleware.RateLimitVerify(cacheClient)).Put("/reset-password", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(h.tokens.Middleware)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
		})
	})
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register creates a new account
// @Summary Register account
// @Description Creates an account with a unique email and bcrypt-hashed password
// @Tags auth
// @Accept json
// @Produce json
// @Param account body registerRequest true "Account details"
// @Success 200 {object} api.Envelope "Created account"
// @Failure 400 {object} api.Envelope "Invalid or duplicate email, weak password"
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if !validEmail(req.Email) {
		api.BadRequest(w, "valid email required")
		return
	}
	if len(req.Password) < minPasswordLength {
		api.BadRequest(w, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR auth: hash password: %v", err)
		api.ServerError(w)
		return
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		IsActive:     true,
	}

	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			api.BadRequest(w, "email already registered")
			return
		}
		log.Printf("ERROR auth: create user: %v", err)
		api.ServerError(w)
		return
	}

	api.Success(w, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and returns a JWT token
// @Summary User login
// @Description Authenticates user with email and password, returns JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Login credentials"
// @Success 200 {object} api.Envelope "Token and user data"
// @Failure 400 {object} api.Envelope "Missing credentials"
// @Failure 401 {object} api.Envelope "Invalid credentials"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		api.BadRequest(w, "email and password required")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			api.Unauthorized(w)
			return
		}
		log.Printf("ERROR auth: load user by email: %v", err)
		api.ServerError(w)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		api.Unauthorized(w)
		return
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		log.Printf("ERROR auth: generate token: %v", err)
		api.ServerError(w)
		return
	}

	api.Success(w, map[string]any{
		"token": token,
		"user":  user,
	})
}

// Logout acknowledges the logout; tokens are stateless and expire on their own
// @Summary User logout
// @Tags auth
// @Produce json
// @Success 200 {object} api.Envelope
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	api.Success(w, nil)
}

// Me returns the current authenticated user
// @Summary Get current user
// @Tags auth
// @Produce json
// @Success 200 {object} api.Envelope "User data"
// @Failure 401 {object} api.Envelope "Unauthorized"
// @Failure 404 {object} api.Envelope "User not found"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		api.Unauthorized(w)
		return
	}

	user, err := h.store.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			api.NotFound(w, "user not found")
			return
		}
		log.Printf("ERROR auth: load user: %v", err)
		api.ServerError(w)
		return
	}

	api.Success(w, user)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword issues a single-use reset code and queues it for delivery
// @Summary Request password reset
// @Description Stores a fresh reset code on the account and sends it out of band. The code is never returned in the response.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body forgotPasswordRequest true "Account email"
// @Success 200 {object} api.Envelope
// @Failure 400 {object} api.Envelope "Missing or malformed email"
// @Failure 404 {object} api.Envelope "No active account for email"
// @Router /auth/forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if !validEmail(req.Email) {
		api.BadRequest(w, "valid email required")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			api.NotFound(w, "no account for that email")
			return
		}
		log.Printf("ERROR auth: load user by email: %v", err)
		api.ServerError(w)
		return
	}

	code, expiresAt, err := h.issueCode(r.Context(), user.ID)
	if err != nil {
		log.Printf("ERROR auth: issue reset code: %v", err)
		api.ServerError(w)
		return
	}

	if err := h.codes.SendResetCode(r.Context(), user.Email, code, expiresAt); err != nil {
		log.Printf("ERROR auth: queue reset code: %v", err)
		api.ServerError(w)
		return
	}

	api.Success(w, nil)
}

// issueCode stores a fresh code, retrying on the off chance it collides with
// another live code. Storing overwrites any prior unconsumed token, so only
// the newest code is ever valid.
func (h *Handler) issueCode(ctx context.Context, userID string) (string, time.Time, error) {
	expiresAt := h.now().Add(otp.Window)
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		code, err := otp.GenerateCode()
		if err != nil {
			return "", time.Time{}, err
		}
		err = h.store.SetResetCode(ctx, userID, code, expiresAt)
		if err == nil {
			return code, expiresAt, nil
		}
		if !errors.Is(err, storage.ErrDuplicateCode) {
			return "", time.Time{}, err
		}
	}
	return "", time.Time{}, storage.ErrDuplicateCode
}

type validateOTPRequest struct {
	OTP string `json:"otp"`
}

// ValidateOTP checks a submitted reset code
// @Summary Validate reset code
// @Description Read-only check; a wrong or expired code is a FAILURE envelope, not an error
// @Tags auth
// @Accept json
// @Produce json
// @Param request body validateOTPRequest true "Reset code"
// @Success 200 {object} api.Envelope "SUCCESS or FAILURE"
// @Failure 400 {object} api.Envelope "Missing otp field"
// @Router /auth/validate-otp [post]
func (h *Handler) ValidateOTP(w http.ResponseWriter, r *http.Request) {
	var req validateOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid request body")
		return
	}

	if req.OTP == "" {
		api.BadRequest(w, "otp required")
		return
	}

	user, err := h.store.FindUserByResetCode(r.Context(), req.OTP)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			api.Failure(w, "code invalid or expired")
			return
		}
		log.Printf("ERROR auth: find reset code: %v", err)
		api.ServerError(w)
		return
	}

	if !user.HasPendingReset(h.now()) {
		api.Failure(w, "code invalid or expired")
		return
	}

	// The token stays in place: validation is a read-only step so the same
	// code can still drive the reset that follows.
	api.Success(w, nil)
}

type resetPasswordRequest struct {
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword consumes a valid code and overwrites the password
// @Summary Reset password
// @Description Hashes the new password and clears the reset token in one atomic update; at most one reset succeeds per issued code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body resetPasswordRequest true "Reset code and new password"
// @Success 200 {object} api.Envelope "SUCCESS or FAILURE"
// @Failure 400 {object} api.Envelope "Missing code or newPassword"
// @Router /auth/reset-password [put]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid request body")
		return
	}

	if req.Code == "" || req.NewPassword == "" {
		api.BadRequest(w, "code and newPassword required")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		api.BadRequest(w, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR auth: hash password: %v", err)
		api.ServerError(w)
		return
	}

	if _, err := h.store.ConsumeResetCode(r.Context(), req.Code, string(hash), h.now()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			api.Failure(w, "code invalid or expired")
			return
		}
		log.Printf("ERROR auth: consume reset code: %v", err)
		api.ServerError(w)
		return
	}

	api.Success(w, nil)
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

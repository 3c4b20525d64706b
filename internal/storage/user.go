package storage

import (
	"context"
	"database/sql"
	"errors"

	"upfafrica-backend/internal/models"
)

const userColumns = `id, email, name, password_hash, is_active, is_deleted, reset_code, reset_expires_at, created_at, updated_at`

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, is_active, is_deleted)
		VALUES ($1, $2, $3, $4, $5, false)
		RETURNING created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err, "users_email_key") {
		return ErrDuplicateEmail
	}
	return err
}

func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_deleted = false`
	if err := s.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail resolves a login handle to an account that can still
// authenticate. Inactive and soft-deleted accounts are invisible here.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active = true AND is_deleted = false`
	if err := s.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Storage) ListUsers(ctx context.Context, page, perPage int) ([]models.User, error) {
	var users []models.User
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE is_deleted = false
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	err := s.db.SelectContext(ctx, &users, query, perPage, (page-1)*perPage)
	return users, err
}

func (s *Storage) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT count(*) FROM users WHERE is_deleted = false`)
	return count, err
}

func (s *Storage) UpdateUser(ctx context.Context, id string, changes models.UserUpdate) (*models.User, error) {
	var user models.User
	query := `
		UPDATE users
		SET email = COALESCE($2, email),
		    name = COALESCE($3, name),
		    is_active = COALESCE($4, is_active),
		    updated_at = now()
		WHERE id = $1 AND is_deleted = false
		RETURNING ` + userColumns + `
	`
	err := s.db.GetContext(ctx, &user, query, id, changes.Email, changes.Name, changes.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err, "users_email_key") {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &user, nil
}

func (s *Storage) SoftDeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET is_deleted = true, updated_at = now()
		WHERE id = $1 AND is_deleted = false
	`, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

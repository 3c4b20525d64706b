package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"upfafrica-backend/internal/models"
)

// SetResetCode stores a fresh code and expiry on the user, replacing any
// unconsumed prior token. A live-code collision anywhere in the table trips
// the partial unique index and surfaces as ErrDuplicateCode so the issuer
// can retry with a new code.
func (s *Storage) SetResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET reset_code = $2, reset_expires_at = $3, updated_at = now()
		WHERE id = $1 AND is_active = true AND is_deleted = false
	`, userID, code, expiresAt)
	if err != nil {
		if isUniqueViolation(err, "users_reset_code_key") {
			return ErrDuplicateCode
		}
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindUserByResetCode returns the user holding the code, expired or not.
// Callers decide what expiry means; returning expired rows lets the OTP
// check report "wrong or expired" without a second query.
func (s *Storage) FindUserByResetCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_code = $1 AND is_active = true AND is_deleted = false`
	if err := s.db.GetContext(ctx, &user, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ConsumeResetCode swaps in the new password hash and clears the token in a
// single compare-and-set statement. Two racing resets on the same code can
// both read it as valid, but only one UPDATE matches; the loser gets
// ErrNotFound and reports a stale code.
func (s *Storage) ConsumeResetCode(ctx context.Context, code, passwordHash string, now time.Time) (string, error) {
	var userID string
	query := `
		UPDATE users
		SET password_hash = $2, reset_code = NULL, reset_expires_at = NULL, updated_at = $3
		WHERE reset_code = $1 AND reset_expires_at > $3
		  AND is_active = true AND is_deleted = false
		RETURNING id
	`
	if err := s.db.QueryRowContext(ctx, query, code, passwordHash, now).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return userID, nil
}

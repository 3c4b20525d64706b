package models

import "time"

type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	Name         string     `json:"name" db:"name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	IsDeleted    bool       `json:"-" db:"is_deleted"`
	ResetCode    *string    `json:"-" db:"reset_code"`
	ResetExpires *time.Time `json:"-" db:"reset_expires_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// HasPendingReset reports whether a reset code is stored and still inside
// its expiry window at the given instant.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetCode != nil && u.ResetExpires != nil && now.Before(*u.ResetExpires)
}

// UserUpdate carries the mutable account fields for partial updates.
// Nil means "leave unchanged".
type UserUpdate struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

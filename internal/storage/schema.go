package storage

import "log"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id               UUID PRIMARY KEY,
	email            TEXT NOT NULL,
	name             TEXT NOT NULL DEFAULT '',
	password_hash    TEXT NOT NULL,
	is_active        BOOLEAN NOT NULL DEFAULT true,
	is_deleted       BOOLEAN NOT NULL DEFAULT false,
	reset_code       TEXT,
	reset_expires_at TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT users_email_key UNIQUE (email)
);

CREATE UNIQUE INDEX IF NOT EXISTS users_reset_code_key
	ON users (reset_code) WHERE reset_code IS NOT NULL;
`

// EnsureSchema provisions the users table and the partial unique index that
// keeps live reset codes globally unique.
func (s *Storage) EnsureSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	log.Println("INFO Database schema ensured")
	return nil
}

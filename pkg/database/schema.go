package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// statements are idempotent so the schema can be ensured on every boot.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		user_type TEXT NOT NULL,
		person_name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		course_name TEXT NOT NULL,
		course_number TEXT NOT NULL,
		professor TEXT NOT NULL,
		capacity INTEGER NOT NULL,
		enrolled_students INTEGER NOT NULL DEFAULT 0 CHECK (enrolled_students >= 0),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	// No uniqueness over (user_id, course_id): double registration is
	// permitted, matching the observed behavior of the system this replaces.
	`CREATE TABLE IF NOT EXISTS enrollments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users (id),
		course_id TEXT NOT NULL REFERENCES courses (id),
		created_at TIMESTAMPTZ NOT NULL
	)`,
	// enrollment_id intentionally carries no FK: dropping a course deletes the
	// enrollment but retains the student grade record.
	`CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		student_name TEXT NOT NULL,
		grade TEXT NOT NULL DEFAULT '',
		enrollment_id TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users (id),
		token TEXT NOT NULL UNIQUE,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		revoked BOOLEAN NOT NULL DEFAULT FALSE,
		revoked_at TIMESTAMPTZ,
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_enrollments_user ON enrollments (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_enrollments_course ON enrollments (course_id)`,
	`CREATE INDEX IF NOT EXISTS idx_students_enrollment ON students (enrollment_id)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user ON refresh_tokens (user_id)`,
}

// EnsureSchema creates the relational schema when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuskit/course-reg-api/internal/models"
)

// ErrNoCapacity is returned when the capacity-checked increment matched no
// row, i.e. the course is full or does not exist.
var ErrNoCapacity = errors.New("course full or not found")

// ErrNotEnrolled is returned when a drop finds no enrollment for the pair.
var ErrNotEnrolled = errors.New("not enrolled in course")

// RegistrationRepository runs the register/drop workflows. Both operations
// span two writes that must commit or roll back together so the
// enrolled_students counter never desyncs from the enrollment rows.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Register enrolls the user in the course. The counter increment is a
// conditional update, so two concurrent registrations cannot both pass the
// capacity check: the row predicate serializes read-check-increment.
func (r *RegistrationRepository) Register(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin register: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE courses SET enrolled_students = enrolled_students + 1, updated_at = $2 WHERE id = $1 AND enrolled_students < capacity`,
		courseID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("increment enrolled count: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrNoCapacity
	}

	enrollment := &models.Enrollment{
		ID:        uuid.NewString(),
		UserID:    userID,
		CourseID:  courseID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO enrollments (id, user_id, course_id, created_at) VALUES ($1, $2, $3, $4)`,
		enrollment.ID, enrollment.UserID, enrollment.CourseID, enrollment.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert enrollment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit register: %w", err)
	}
	return enrollment, nil
}

// Drop removes one enrollment for the (user, course) pair and decrements the
// counter, never below zero. The student grade record, if any, is retained.
func (r *RegistrationRepository) Drop(ctx context.Context, userID, courseID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin drop: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var enrollmentID string
	err = tx.GetContext(ctx, &enrollmentID,
		`SELECT id FROM enrollments WHERE user_id = $1 AND course_id = $2 ORDER BY created_at ASC LIMIT 1`,
		userID, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotEnrolled
		}
		return fmt.Errorf("find enrollment: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE courses SET enrolled_students = GREATEST(enrolled_students - 1, 0), updated_at = $2 WHERE id = $1`,
		courseID, time.Now().UTC()); err != nil {
		return fmt.Errorf("decrement enrolled count: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, enrollmentID); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit drop: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuskit/course-reg-api/internal/models"
)

// StudentRepository handles persistence of per-enrollment grade records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns a student record by its ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, student_name, grade, enrollment_id FROM students WHERE id = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by id: %w", err)
	}
	return &student, nil
}

// ListByCourse returns the gradable roster for a course by joining
// enrollments to their student records.
func (r *StudentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.RosterEntry, error) {
	const query = `SELECT s.id, s.student_name, s.grade
        FROM enrollments e
        JOIN students s ON s.enrollment_id = e.id
        WHERE e.course_id = $1
        ORDER BY s.student_name ASC`
	var entries []models.RosterEntry
	if err := r.db.SelectContext(ctx, &entries, query, courseID); err != nil {
		return nil, fmt.Errorf("list course roster: %w", err)
	}
	return entries, nil
}

// UpdateGrade overwrites the grade field of a student record.
func (r *StudentRepository) UpdateGrade(ctx context.Context, id, grade string) error {
	const query = `UPDATE students SET grade = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, grade); err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	return nil
}

// List returns all student records with total count.
func (r *StudentRepository) List(ctx context.Context, page, pageSize int) ([]models.Student, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT id, student_name, grade, enrollment_id FROM students ORDER BY student_name ASC LIMIT %d OFFSET %d`, pageSize, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, listQuery); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM students`); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	const query = `INSERT INTO students (id, student_name, grade, enrollment_id) VALUES (:id, :student_name, :grade, :enrollment_id)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update updates the mutable fields of a student record.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET student_name = :student_name, grade = :grade, enrollment_id = :enrollment_id WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student record.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM students WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

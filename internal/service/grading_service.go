package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/campuskit/course-reg-api/internal/models"
	appErrors "github.com/campuskit/course-reg-api/pkg/errors"
	"github.com/campuskit/course-reg-api/pkg/export"
)

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type studentGradeRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdateGrade(ctx context.Context, id, grade string) error
	ListByCourse(ctx context.Context, courseID string) ([]models.RosterEntry, error)
}

type enrollmentByIDReader interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
}

// GradingService serves rosters and grade updates.
type GradingService struct {
	courses     courseReader
	students    studentGradeRepository
	enrollments enrollmentByIDReader
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewGradingService constructs GradingService.
func NewGradingService(courses courseReader, students studentGradeRepository, enrollments enrollmentByIDReader, logger *zap.Logger) *GradingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradingService{
		courses:     courses,
		students:    students,
		enrollments: enrollments,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// Roster returns the course and its gradable student entries.
func (s *GradingService) Roster(ctx context.Context, courseID string) (*models.Roster, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	entries, err := s.students.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	return &models.Roster{Course: *course, Students: entries}, nil
}

// UpdateGrade overwrites a student's grade and returns the course id of the
// student's enrollment so the caller can be redirected back to the roster.
// The grade value itself is not validated.
func (s *GradingService) UpdateGrade(ctx context.Context, studentID, newGrade string) (string, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if err := s.students.UpdateGrade(ctx, student.ID, newGrade); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}

	s.logger.Info("grade updated", zap.String("student_id", student.ID), zap.String("grade", newGrade))

	// The enrollment lookup is explicit: student records can outlive their
	// enrollment, and that failure mode belongs to the caller.
	enrollment, err := s.enrollments.FindByID(ctx, student.EnrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "enrollment not found for student")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	return enrollment.CourseID, nil
}

// ExportRoster renders the course roster as CSV or PDF.
func (s *GradingService) ExportRoster(ctx context.Context, courseID, format string) ([]byte, string, error) {
	roster, err := s.Roster(ctx, courseID)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Student ID", "Student Name", "Grade"},
		Rows:    make([]map[string]string, 0, len(roster.Students)),
	}
	for _, entry := range roster.Students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student ID":   entry.StudentID,
			"Student Name": entry.StudentName,
			"Grade":        entry.Grade,
		})
	}

	title := fmt.Sprintf("%s %s roster", roster.Course.CourseNumber, roster.Course.CourseName)

	switch format {
	case "pdf":
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	case "", "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

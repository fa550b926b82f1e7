package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuskit/course-reg-api/internal/middleware"
	"github.com/campuskit/course-reg-api/internal/models"
	"github.com/campuskit/course-reg-api/internal/service"
)

type fakeCourses struct {
	course *models.Course
}

func (f *fakeCourses) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if f.course == nil || f.course.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.course, nil
}

type fakeStudents struct {
	student *models.Student
	grades  map[string]string
}

func (f *fakeStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if f.student == nil || f.student.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.student, nil
}

func (f *fakeStudents) UpdateGrade(ctx context.Context, id, grade string) error {
	if f.grades == nil {
		f.grades = make(map[string]string)
	}
	f.grades[id] = grade
	return nil
}

func (f *fakeStudents) ListByCourse(ctx context.Context, courseID string) ([]models.RosterEntry, error) {
	return nil, nil
}

type fakeEnrollmentLookup struct {
	enrollment *models.Enrollment
}

func (f *fakeEnrollmentLookup) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if f.enrollment == nil || f.enrollment.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.enrollment, nil
}

func TestUpdateGradeRedirectsToRoster(t *testing.T) {
	gin.SetMode(gin.TestMode)
	students := &fakeStudents{student: &models.Student{ID: "s1", StudentName: "Alice", EnrollmentID: "e1"}}
	enrollments := &fakeEnrollmentLookup{enrollment: &models.Enrollment{ID: "e1", CourseID: "c1"}}
	svc := service.NewGradingService(&fakeCourses{}, students, enrollments, zap.NewNop())
	handler := NewGradeHandler(svc)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/update_grade/s1", strings.NewReader("new_grade=A%2B"))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Params = gin.Params{{Key: "student_id", Value: "s1"}}

	handler.UpdateGrade(c)
	// Invoking the handler directly skips the gin engine, which is what
	// normally flushes the deferred status code after a bodyless redirect.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/course/c1", rec.Header().Get("Location"))
	assert.Equal(t, "A+", students.grades["s1"])
}

func TestUpdateGradeStudentMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewGradingService(&fakeCourses{}, &fakeStudents{}, &fakeEnrollmentLookup{}, zap.NewNop())
	handler := NewGradeHandler(svc)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/update_grade/missing", strings.NewReader("new_grade=A"))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Params = gin.Params{{Key: "student_id", Value: "missing"}}

	handler.UpdateGrade(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Student not found", flatMessage(t, rec.Body.Bytes()))
}

type staticValidator struct {
	claims *models.JWTClaims
}

func (s *staticValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	return s.claims, nil
}

// The roster route must stay public: browsers follow the grade-update
// redirect without an Authorization header.
func TestGradeRedirectLandsOnPublicRoster(t *testing.T) {
	gin.SetMode(gin.TestMode)
	students := &fakeStudents{student: &models.Student{ID: "s1", StudentName: "Alice", EnrollmentID: "e1"}}
	enrollments := &fakeEnrollmentLookup{enrollment: &models.Enrollment{ID: "e1", CourseID: "c1"}}
	courses := &fakeCourses{course: &models.Course{ID: "c1", CourseName: "Algorithms"}}
	grading := service.NewGradingService(courses, students, enrollments, zap.NewNop())

	r := gin.New()
	r.GET("/course/:course_id", NewCourseHandler(newRegistrationService(&fakeRegRepo{}), grading).Roster)
	r.POST("/update_grade/:student_id",
		middleware.JWT(&staticValidator{claims: &models.JWTClaims{UserID: "u1", UserType: models.TypeTeacher}}),
		NewGradeHandler(grading).UpdateGrade,
	)

	req := httptest.NewRequest(http.MethodPost, "/update_grade/s1", strings.NewReader("new_grade=B"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	require.Equal(t, "/course/c1", location)

	followUp := httptest.NewRequest(http.MethodGet, location, nil)
	followRec := httptest.NewRecorder()
	r.ServeHTTP(followRec, followUp)
	assert.Equal(t, http.StatusOK, followRec.Code)
}

func TestRosterCourseMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	grading := service.NewGradingService(&fakeCourses{}, &fakeStudents{}, &fakeEnrollmentLookup{}, zap.NewNop())
	handler := NewCourseHandler(newRegistrationService(&fakeRegRepo{}), grading)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/course/missing", nil)
	c.Params = gin.Params{{Key: "course_id", Value: "missing"}}

	handler.Roster(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuskit/course-reg-api/internal/middleware"
	"github.com/campuskit/course-reg-api/internal/models"
	"github.com/campuskit/course-reg-api/internal/repository"
	"github.com/campuskit/course-reg-api/internal/service"
)

type fakeRegRepo struct {
	registerErr error
	dropErr     error
}

func (f *fakeRegRepo) Register(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.Enrollment{ID: "e1", UserID: userID, CourseID: courseID}, nil
}

func (f *fakeRegRepo) Drop(ctx context.Context, userID, courseID string) error {
	return f.dropErr
}

type fakeCatalogRepo struct {
	courses []models.Course
}

func (f *fakeCatalogRepo) ListAll(ctx context.Context) ([]models.Course, error) {
	return f.courses, nil
}

func (f *fakeCatalogRepo) ListByProfessor(ctx context.Context, personName string) ([]models.Course, error) {
	return f.courses, nil
}

func (f *fakeCatalogRepo) ListRegisteredByUser(ctx context.Context, userID string) ([]models.CourseSummary, error) {
	return nil, nil
}

type fakeEnrollments struct{}

func (fakeEnrollments) ListCourseIDsByUser(ctx context.Context, userID string) ([]string, error) {
	return []string{"c1"}, nil
}

func newRegistrationService(repo *fakeRegRepo) *service.RegistrationService {
	return service.NewRegistrationService(repo, &fakeCatalogRepo{}, fakeEnrollments{}, nil, time.Minute, nil, zap.NewNop())
}

func studentContext(t *testing.T, method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Username: "jdoe", UserType: models.TypeStudent, PersonName: "John Doe"})
	return c, rec
}

func flatMessage(t *testing.T, body []byte) string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload["message"]
}

func TestRegisterSuccessMessage(t *testing.T) {
	handler := NewCourseHandler(newRegistrationService(&fakeRegRepo{}), nil)

	c, rec := studentContext(t, http.MethodPost, "/register_for_course/c1")
	c.Params = gin.Params{{Key: "course_id", Value: "c1"}}

	handler.Register(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Successfully registered for the course", flatMessage(t, rec.Body.Bytes()))
}

func TestRegisterCourseFullMessage(t *testing.T) {
	handler := NewCourseHandler(newRegistrationService(&fakeRegRepo{registerErr: repository.ErrNoCapacity}), nil)

	c, rec := studentContext(t, http.MethodPost, "/register_for_course/full")
	c.Params = gin.Params{{Key: "course_id", Value: "full"}}

	handler.Register(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Course is full or not found", flatMessage(t, rec.Body.Bytes()))
}

func TestDropSuccessMessage(t *testing.T) {
	handler := NewCourseHandler(newRegistrationService(&fakeRegRepo{}), nil)

	c, rec := studentContext(t, http.MethodPost, "/drop_course/c1")
	c.Params = gin.Params{{Key: "course_id", Value: "c1"}}

	handler.Drop(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Successfully dropped the course", flatMessage(t, rec.Body.Bytes()))
}

func TestDropNotEnrolledMessage(t *testing.T) {
	handler := NewCourseHandler(newRegistrationService(&fakeRegRepo{dropErr: repository.ErrNotEnrolled}), nil)

	c, rec := studentContext(t, http.MethodPost, "/drop_course/c1")
	c.Params = gin.Params{{Key: "course_id", Value: "c1"}}

	handler.Drop(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You are not enrolled in this course", flatMessage(t, rec.Body.Bytes()))
}

func TestRegisterUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCourseHandler(newRegistrationService(&fakeRegRepo{}), nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/register_for_course/c1", nil)
	c.Params = gin.Params{{Key: "course_id", Value: "c1"}}

	handler.Register(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListAllIncludesEnrolledIDs(t *testing.T) {
	svc := service.NewRegistrationService(&fakeRegRepo{}, &fakeCatalogRepo{courses: []models.Course{{ID: "c1", CourseName: "Algorithms"}}}, fakeEnrollments{}, nil, time.Minute, nil, zap.NewNop())
	handler := NewCourseHandler(svc, nil)

	c, rec := studentContext(t, http.MethodGet, "/get_all_courses")

	handler.ListAll(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.CourseCatalog `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Courses, 1)
	assert.Equal(t, []string{"c1"}, envelope.Data.EnrolledCourseIDs)
}

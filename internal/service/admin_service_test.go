package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuskit/course-reg-api/internal/models"
	appErrors "github.com/campuskit/course-reg-api/pkg/errors"
)

type fakeAdminCourses struct {
	courses map[string]*models.Course
	deleted []string
}

func newFakeAdminCourses(courses ...*models.Course) *fakeAdminCourses {
	f := &fakeAdminCourses{courses: make(map[string]*models.Course)}
	for _, c := range courses {
		f.courses[c.ID] = c
	}
	return f
}

func (f *fakeAdminCourses) FindByID(ctx context.Context, id string) (*models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return course, nil
}

func (f *fakeAdminCourses) ListAll(ctx context.Context) ([]models.Course, error) {
	out := make([]models.Course, 0, len(f.courses))
	for _, c := range f.courses {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeAdminCourses) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = "generated"
	}
	f.courses[course.ID] = course
	return nil
}

func (f *fakeAdminCourses) Update(ctx context.Context, course *models.Course) error {
	f.courses[course.ID] = course
	return nil
}

func (f *fakeAdminCourses) Delete(ctx context.Context, id string) error {
	delete(f.courses, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAdminEnrollments struct {
	enrollments map[string]*models.Enrollment
}

func (f *fakeAdminEnrollments) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	e, ok := f.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return e, nil
}

func (f *fakeAdminEnrollments) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, int, error) {
	return nil, 0, nil
}

func (f *fakeAdminEnrollments) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if f.enrollments == nil {
		f.enrollments = make(map[string]*models.Enrollment)
	}
	if enrollment.ID == "" {
		enrollment.ID = "e-generated"
	}
	f.enrollments[enrollment.ID] = enrollment
	return nil
}

func (f *fakeAdminEnrollments) Delete(ctx context.Context, id string) error {
	delete(f.enrollments, id)
	return nil
}

type fakeAdminStudents struct {
	students map[string]*models.Student
}

func (f *fakeAdminStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (f *fakeAdminStudents) List(ctx context.Context, page, pageSize int) ([]models.Student, int, error) {
	return nil, 0, nil
}

func (f *fakeAdminStudents) Create(ctx context.Context, student *models.Student) error {
	if f.students == nil {
		f.students = make(map[string]*models.Student)
	}
	if student.ID == "" {
		student.ID = "s-generated"
	}
	f.students[student.ID] = student
	return nil
}

func (f *fakeAdminStudents) Update(ctx context.Context, student *models.Student) error {
	f.students[student.ID] = student
	return nil
}

func (f *fakeAdminStudents) Delete(ctx context.Context, id string) error {
	delete(f.students, id)
	return nil
}

type recordingInvalidator struct {
	calls int
}

func (r *recordingInvalidator) InvalidateCatalog(ctx context.Context) {
	r.calls++
}

func newAdminService(courses *fakeAdminCourses, enrollments *fakeAdminEnrollments, students *fakeAdminStudents, invalidator *recordingInvalidator) *AdminService {
	return NewAdminService(newMockUserRepoAdmin(), courses, enrollments, students, invalidator, validator.New(), zap.NewNop())
}

type mockUserRepoAdmin struct {
	mockUserRepo
}

func newMockUserRepoAdmin() *mockUserRepoAdmin {
	return &mockUserRepoAdmin{mockUserRepo: *newMockUserRepo()}
}

func (m *mockUserRepoAdmin) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *mockUserRepoAdmin) Update(ctx context.Context, user *models.User) error {
	m.users[user.Username] = user
	return nil
}

func (m *mockUserRepoAdmin) Delete(ctx context.Context, id string) error {
	for username, user := range m.users {
		if user.ID == id {
			delete(m.users, username)
		}
	}
	return nil
}

func TestAdminCreateCourseInvalidatesCatalog(t *testing.T) {
	courses := newFakeAdminCourses()
	invalidator := &recordingInvalidator{}
	svc := newAdminService(courses, &fakeAdminEnrollments{}, &fakeAdminStudents{}, invalidator)

	course, err := svc.CreateCourse(context.Background(), CourseRequest{
		CourseName:   "Algorithms",
		CourseNumber: "CS101",
		Professor:    "Dr. Smith",
		Capacity:     30,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, 1, invalidator.calls)
}

func TestAdminUpdateCoursePreservesEnrolledCount(t *testing.T) {
	courses := newFakeAdminCourses(&models.Course{ID: "c1", CourseName: "Algorithms", CourseNumber: "CS101", Professor: "Dr. Smith", Capacity: 30, EnrolledStudents: 12})
	svc := newAdminService(courses, &fakeAdminEnrollments{}, &fakeAdminStudents{}, &recordingInvalidator{})

	updated, err := svc.UpdateCourse(context.Background(), "c1", CourseRequest{
		CourseName:   "Advanced Algorithms",
		CourseNumber: "CS201",
		Professor:    "Dr. Smith",
		Capacity:     25,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, updated.EnrolledStudents)
	assert.Equal(t, 25, updated.Capacity)
}

func TestAdminUpdateCourseNotFound(t *testing.T) {
	svc := newAdminService(newFakeAdminCourses(), &fakeAdminEnrollments{}, &fakeAdminStudents{}, &recordingInvalidator{})

	_, err := svc.UpdateCourse(context.Background(), "missing", CourseRequest{
		CourseName:   "X",
		CourseNumber: "X1",
		Professor:    "Y",
	})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestAdminCreateStudentRequiresEnrollment(t *testing.T) {
	svc := newAdminService(newFakeAdminCourses(), &fakeAdminEnrollments{}, &fakeAdminStudents{}, &recordingInvalidator{})

	_, err := svc.CreateStudent(context.Background(), StudentRequest{
		StudentName:  "Alice",
		EnrollmentID: "missing",
	})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestAdminCreateStudent(t *testing.T) {
	enrollments := &fakeAdminEnrollments{enrollments: map[string]*models.Enrollment{"e1": {ID: "e1", UserID: "u1", CourseID: "c1"}}}
	students := &fakeAdminStudents{}
	svc := newAdminService(newFakeAdminCourses(), enrollments, students, &recordingInvalidator{})

	student, err := svc.CreateStudent(context.Background(), StudentRequest{
		StudentName:  "Alice",
		Grade:        "A",
		EnrollmentID: "e1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.Contains(t, students.students, student.ID)
}

func TestAdminCreateUserInvalidType(t *testing.T) {
	svc := newAdminService(newFakeAdminCourses(), &fakeAdminEnrollments{}, &fakeAdminStudents{}, &recordingInvalidator{})

	_, err := svc.CreateUser(context.Background(), models.CreateAccountRequest{
		Username:   "jdoe",
		PersonName: "John Doe",
		Password:   "password",
		UserType:   "WIZARD",
	})
	require.Error(t, err)
	assert.Equal(t, "Invalid user type selected", appErrors.FromError(err).Message)
}

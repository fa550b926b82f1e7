package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/campuskit/course-reg-api/internal/models"
	"github.com/campuskit/course-reg-api/internal/repository"
	appErrors "github.com/campuskit/course-reg-api/pkg/errors"
)

const courseCatalogCacheKey = "courses:catalog"

type registrationRepository interface {
	Register(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
	Drop(ctx context.Context, userID, courseID string) error
}

type courseCatalogRepository interface {
	ListAll(ctx context.Context) ([]models.Course, error)
	ListByProfessor(ctx context.Context, personName string) ([]models.Course, error)
	ListRegisteredByUser(ctx context.Context, userID string) ([]models.CourseSummary, error)
}

type enrollmentReader interface {
	ListCourseIDsByUser(ctx context.Context, userID string) ([]string, error)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// RegistrationService orchestrates the register/drop workflow and course
// listings. Per (user, course) pair the state machine is
// Unregistered -> Registered -> Unregistered.
type RegistrationService struct {
	registrations registrationRepository
	courses       courseCatalogRepository
	enrollments   enrollmentReader
	cache         catalogCache
	cacheTTL      time.Duration
	metrics       *MetricsService
	logger        *zap.Logger
}

// NewRegistrationService constructs RegistrationService. cache and metrics
// may be nil.
func NewRegistrationService(
	registrations registrationRepository,
	courses courseCatalogRepository,
	enrollments enrollmentReader,
	cache catalogCache,
	cacheTTL time.Duration,
	metrics *MetricsService,
	logger *zap.Logger,
) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		registrations: registrations,
		courses:       courses,
		enrollments:   enrollments,
		cache:         cache,
		cacheTTL:      cacheTTL,
		metrics:       metrics,
		logger:        logger,
	}
}

// ListCourses returns every course plus the set of course ids the user is
// enrolled in. The course list is cached; the enrolled set is always fresh.
func (s *RegistrationService) ListCourses(ctx context.Context, userID string) (*models.CourseCatalog, error) {
	var courses []models.Course
	cacheHit := false
	if s.cache != nil {
		if err := s.cache.Get(ctx, courseCatalogCacheKey, &courses); err == nil {
			cacheHit = true
		}
	}
	s.metrics.RecordCacheOperation(cacheHit)

	if !cacheHit {
		var err error
		courses, err = s.courses.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, courseCatalogCacheKey, courses, s.cacheTTL); err != nil {
				s.logger.Warn("failed to cache course catalog", zap.Error(err))
			}
		}
	}

	enrolledIDs, err := s.enrollments.ListCourseIDsByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	return &models.CourseCatalog{Courses: courses, EnrolledCourseIDs: enrolledIDs}, nil
}

// Register enrolls the user in the course, enforcing the capacity invariant.
func (s *RegistrationService) Register(ctx context.Context, userID, courseID string) error {
	_, err := s.registrations.Register(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNoCapacity) {
			s.metrics.RecordRegistration("register", "full")
			return appErrors.ErrCourseFull
		}
		s.metrics.RecordRegistration("register", "error")
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register for course")
	}

	s.metrics.RecordRegistration("register", "ok")
	s.invalidateCatalog(ctx)
	s.logger.Info("registered for course", zap.String("user_id", userID), zap.String("course_id", courseID))
	return nil
}

// Drop removes the user's enrollment in the course.
func (s *RegistrationService) Drop(ctx context.Context, userID, courseID string) error {
	if err := s.registrations.Drop(ctx, userID, courseID); err != nil {
		if errors.Is(err, repository.ErrNotEnrolled) {
			s.metrics.RecordRegistration("drop", "not_enrolled")
			return appErrors.ErrNotEnrolled
		}
		s.metrics.RecordRegistration("drop", "error")
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to drop course")
	}

	s.metrics.RecordRegistration("drop", "ok")
	s.invalidateCatalog(ctx)
	s.logger.Info("dropped course", zap.String("user_id", userID), zap.String("course_id", courseID))
	return nil
}

// ListRegistered returns the courses the user is currently enrolled in.
func (s *RegistrationService) ListRegistered(ctx context.Context, userID string) ([]models.CourseSummary, error) {
	summaries, err := s.courses.ListRegisteredByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registered courses")
	}
	return summaries, nil
}

// ListTaught returns the courses whose professor field matches the teacher's
// display name.
func (s *RegistrationService) ListTaught(ctx context.Context, personName string) ([]models.Course, error) {
	courses, err := s.courses.ListByProfessor(ctx, personName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list taught courses")
	}
	return courses, nil
}

// InvalidateCatalog drops the cached course list. Admin course writes call
// this through the service so stale capacities never linger.
func (s *RegistrationService) InvalidateCatalog(ctx context.Context) {
	s.invalidateCatalog(ctx)
}

func (s *RegistrationService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "courses:*"); err != nil {
		s.logger.Warn("failed to invalidate course catalog cache", zap.Error(err))
	}
}

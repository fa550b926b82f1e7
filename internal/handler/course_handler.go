package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/course-reg-api/internal/middleware"
	"github.com/campuskit/course-reg-api/internal/service"
	appErrors "github.com/campuskit/course-reg-api/pkg/errors"
	"github.com/campuskit/course-reg-api/pkg/response"
)

// CourseHandler exposes the course catalog and the register/drop workflow.
type CourseHandler struct {
	registrations *service.RegistrationService
	grading       *service.GradingService
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(registrations *service.RegistrationService, grading *service.GradingService) *CourseHandler {
	return &CourseHandler{registrations: registrations, grading: grading}
}

// ListAll returns every course plus the requesting user's enrolled course ids.
func (h *CourseHandler) ListAll(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	catalog, err := h.registrations.ListCourses(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, catalog, nil)
}

// Register enrolls the current user in the course. The body is a flat
// {"message"} as the original clients expect.
func (h *CourseHandler) Register(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.registrations.Register(c.Request.Context(), claims.UserID, c.Param("course_id")); err != nil {
		appErr := appErrors.FromError(err)
		response.Message(c, appErr.Status, appErr.Message)
		return
	}

	response.Message(c, http.StatusOK, "Successfully registered for the course")
}

// Drop removes the current user's enrollment in the course.
func (h *CourseHandler) Drop(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.registrations.Drop(c.Request.Context(), claims.UserID, c.Param("course_id")); err != nil {
		appErr := appErrors.FromError(err)
		response.Message(c, appErr.Status, appErr.Message)
		return
	}

	response.Message(c, http.StatusOK, "Successfully dropped the course")
}

// StudentCourses lists the courses the current user is registered in.
func (h *CourseHandler) StudentCourses(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	summaries, err := h.registrations.ListRegistered(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"courses": summaries}, nil)
}

// TeacherCourses lists the courses taught by the current user, matched by
// display name.
func (h *CourseHandler) TeacherCourses(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	courses, err := h.registrations.ListTaught(c.Request.Context(), claims.PersonName)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"person_name": claims.PersonName,
		"username":    claims.Username,
		"courses":     courses,
	}, nil)
}

// Roster returns a course with its gradable students, 404 when the course
// does not exist.
func (h *CourseHandler) Roster(c *gin.Context) {
	roster, err := h.grading.Roster(c.Request.Context(), c.Param("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, roster, nil)
}

// ExportRoster downloads the roster as CSV (default) or PDF.
func (h *CourseHandler) ExportRoster(c *gin.Context) {
	courseID := c.Param("course_id")
	format := c.DefaultQuery("format", "csv")

	payload, contentType, err := h.grading.ExportRoster(c.Request.Context(), courseID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	ext := "csv"
	if format == "pdf" {
		ext = "pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=roster-%s.%s", courseID, ext))
	c.Data(http.StatusOK, contentType, payload)
}

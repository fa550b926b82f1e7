package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/course-reg-api/internal/service"
	appErrors "github.com/campuskit/course-reg-api/pkg/errors"
	"github.com/campuskit/course-reg-api/pkg/response"
)

// GradeHandler exposes the grade-update endpoint.
type GradeHandler struct {
	grading *service.GradingService
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(grading *service.GradingService) *GradeHandler {
	return &GradeHandler{grading: grading}
}

// UpdateGrade overwrites a student's grade and redirects back to the roster
// of the course the student's enrollment belongs to. A missing student yields
// a flat {"message"} 404.
func (h *GradeHandler) UpdateGrade(c *gin.Context) {
	newGrade := c.PostForm("new_grade")
	if newGrade == "" {
		var payload struct {
			NewGrade string `json:"new_grade"`
		}
		if err := c.ShouldBindJSON(&payload); err == nil {
			newGrade = payload.NewGrade
		}
	}

	courseID, err := h.grading.UpdateGrade(c.Request.Context(), c.Param("student_id"), newGrade)
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Status == http.StatusNotFound {
			response.Message(c, appErr.Status, appErr.Message)
			return
		}
		response.Error(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/course/"+courseID)
}

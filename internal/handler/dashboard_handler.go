package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/course-reg-api/internal/service"
	"github.com/campuskit/course-reg-api/pkg/response"
)

// DashboardHandler serves the student and teacher landing views.
type DashboardHandler struct {
	auth *service.AuthService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(auth *service.AuthService) *DashboardHandler {
	return &DashboardHandler{auth: auth}
}

// StudentView returns the student dashboard payload.
func (h *DashboardHandler) StudentView(c *gin.Context) {
	user, err := h.auth.FindByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"page":        "studentview",
		"person_name": user.PersonName,
	}, nil)
}

// TeacherView returns the teacher dashboard payload.
func (h *DashboardHandler) TeacherView(c *gin.Context) {
	user, err := h.auth.FindByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"page":        "teacherview",
		"person_name": user.PersonName,
		"username":    user.Username,
	}, nil)
}

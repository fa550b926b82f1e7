package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/course-reg-api/internal/middleware"
	"github.com/campuskit/course-reg-api/internal/models"
	"github.com/campuskit/course-reg-api/internal/service"
	appErrors "github.com/campuskit/course-reg-api/pkg/errors"
	"github.com/campuskit/course-reg-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Index is the entry page shell. Rendering is owned by the frontend; this
// endpoint names the view and its entry points.
func (h *AuthHandler) Index(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"page":            "login",
		"login_url":       "/login",
		"create_acc_url":  "/create_acc",
		"create_acc_page": "/create_acc_page",
	}, nil)
}

// CreateAccountPage is the account-creation page shell.
func (h *AuthHandler) CreateAccountPage(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"page":       "create_acc",
		"submit_url": "/create_acc",
		"user_types": []models.UserType{models.TypeAdmin, models.TypeStudent, models.TypeTeacher},
	}, nil)
}

// AllCoursesPage is the course-listing page shell.
func (h *AuthHandler) AllCoursesPage(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"page":        "all_courses",
		"courses_url": "/get_all_courses",
	}, nil)
}

// Login authenticates with username and password, form or JSON encoded, and
// returns tokens plus the role-based redirect target.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// CreateAccount registers a new account.
func (h *AuthHandler) CreateAccount(c *gin.Context) {
	var req models.CreateAccountRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid account payload"))
		return
	}

	info, err := h.service.CreateAccount(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{
		"message": "Account created successfully! Please log in.",
		"user":    info,
	})
}

// Refresh exchanges a refresh token for a fresh token pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid refresh payload"))
		return
	}

	res, err := h.service.RefreshToken(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Logout ends every session of the authenticated user.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Logout(c.Request.Context(), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"message": "You have been logged out."}, nil)
}

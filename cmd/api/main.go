package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campuskit/course-reg-api/api/swagger"
	"github.com/campuskit/course-reg-api/internal/handler"
	"github.com/campuskit/course-reg-api/internal/middleware"
	"github.com/campuskit/course-reg-api/internal/models"
	"github.com/campuskit/course-reg-api/internal/repository"
	"github.com/campuskit/course-reg-api/internal/service"
	"github.com/campuskit/course-reg-api/pkg/cache"
	"github.com/campuskit/course-reg-api/pkg/config"
	"github.com/campuskit/course-reg-api/pkg/database"
	"github.com/campuskit/course-reg-api/pkg/logger"
	corsmiddleware "github.com/campuskit/course-reg-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campuskit/course-reg-api/pkg/middleware/requestid"
)

// @title Course Registration API
// @version 1.0.0
// @description Course registration service: accounts, catalog, enrollment and grading
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		logr.Sugar().Fatalw("failed to ensure schema", "error", err)
	}
	cancel()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, course catalog caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})

	registrationSvc := service.NewRegistrationService(registrationRepo, courseRepo, enrollmentRepo, cacheRepo, cfg.Courses.CacheTTL, metricsSvc, logr)
	gradingSvc := service.NewGradingService(courseRepo, studentRepo, enrollmentRepo, logr)
	adminSvc := service.NewAdminService(userRepo, courseRepo, enrollmentRepo, studentRepo, registrationSvc, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	dashboardHandler := handler.NewDashboardHandler(authSvc)
	courseHandler := handler.NewCourseHandler(registrationSvc, gradingSvc)
	gradeHandler := handler.NewGradeHandler(gradingSvc)
	adminHandler := handler.NewAdminHandler(adminSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/", authHandler.Index)
	r.GET("/create_acc_page", authHandler.CreateAccountPage)
	r.GET("/all_courses", authHandler.AllCoursesPage)
	r.POST("/login", authHandler.Login)
	r.POST("/create_acc", authHandler.CreateAccount)
	r.POST("/refresh", authHandler.Refresh)

	// The roster view is public: the grade-update flow redirects browsers
	// here without an Authorization header.
	r.GET("/course/:course_id", courseHandler.Roster)

	authed := r.Group("/", middleware.JWT(authSvc))
	{
		authed.GET("/logout", authHandler.Logout)
		authed.GET("/student/:username", dashboardHandler.StudentView)
		authed.GET("/teacher/:username", dashboardHandler.TeacherView)
		authed.GET("/get_all_courses", courseHandler.ListAll)
		authed.POST("/register_for_course/:course_id", courseHandler.Register)
		authed.POST("/drop_course/:course_id", courseHandler.Drop)
		authed.GET("/student_courses", courseHandler.StudentCourses)
		authed.GET("/teacher/courses", courseHandler.TeacherCourses)
		authed.POST("/update_grade/:student_id", gradeHandler.UpdateGrade)
	}

	authed.GET("/course/:course_id/export",
		middleware.RequireTypes(models.TypeTeacher, models.TypeAdmin),
		courseHandler.ExportRoster,
	)

	admin := r.Group("/admin", middleware.AdminGate(authSvc))
	{
		admin.GET("", adminHandler.Panel)
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users", adminHandler.CreateUser)
		admin.PUT("/users/:id", adminHandler.UpdateUser)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)
		admin.GET("/courses", adminHandler.ListCourses)
		admin.POST("/courses", adminHandler.CreateCourse)
		admin.PUT("/courses/:id", adminHandler.UpdateCourse)
		admin.DELETE("/courses/:id", adminHandler.DeleteCourse)
		admin.GET("/enrollments", adminHandler.ListEnrollments)
		admin.POST("/enrollments", adminHandler.CreateEnrollment)
		admin.DELETE("/enrollments/:id", adminHandler.DeleteEnrollment)
		admin.GET("/students", adminHandler.ListStudents)
		admin.POST("/students", adminHandler.CreateStudent)
		admin.PUT("/students/:id", adminHandler.UpdateStudent)
		admin.DELETE("/students/:id", adminHandler.DeleteStudent)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

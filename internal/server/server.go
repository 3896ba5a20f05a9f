package server

import (
	"log"
	"net/http"
	"time"

	"anoa.com/educonnect/internal/config"
	"anoa.com/educonnect/internal/entity"
	"anoa.com/educonnect/internal/middleware"
	"anoa.com/educonnect/pkg/metrics"
	"anoa.com/educonnect/pkg/ratelimiter"
	"anoa.com/educonnect/pkg/request"
	"anoa.com/educonnect/pkg/storage"

	adminHttp "anoa.com/educonnect/internal/modules/admin/delivery/http"
	adminService "anoa.com/educonnect/internal/modules/admin/service"

	announcementRepo "anoa.com/educonnect/internal/modules/announcement/repository"
	assignmentRepo "anoa.com/educonnect/internal/modules/assignment/repository"
	courseRepo "anoa.com/educonnect/internal/modules/course/repository"
	materialRepo "anoa.com/educonnect/internal/modules/material/repository"
	submissionRepo "anoa.com/educonnect/internal/modules/submission/repository"

	enrollmentRepo "anoa.com/educonnect/internal/modules/enrollment/repository"
	enrollmentService "anoa.com/educonnect/internal/modules/enrollment/service"

	issueHttp "anoa.com/educonnect/internal/modules/issue/delivery/http"
	issueRepo "anoa.com/educonnect/internal/modules/issue/repository"
	issueService "anoa.com/educonnect/internal/modules/issue/service"

	notiHttp "anoa.com/educonnect/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/educonnect/internal/modules/notification/repository"
	notifService "anoa.com/educonnect/internal/modules/notification/service"

	reminderService "anoa.com/educonnect/internal/modules/reminder/service"

	searchService "anoa.com/educonnect/internal/modules/search/service"

	studentHttp "anoa.com/educonnect/internal/modules/student/delivery/http"
	studentService "anoa.com/educonnect/internal/modules/student/service"

	teacherHttp "anoa.com/educonnect/internal/modules/teacher/delivery/http"
	teacherService "anoa.com/educonnect/internal/modules/teacher/service"

	userHttp "anoa.com/educonnect/internal/modules/user/delivery/http"
	userRepo "anoa.com/educonnect/internal/modules/user/repository"
	userService "anoa.com/educonnect/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *reminderService.Scheduler
}

// NewServer wires every module. redisClient and search may be nil; realtime
// push, login rate limiting and material search are then disabled.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, fileStorage storage.FileStorage, search searchService.MeiliSearchService) (*Server, error) {
	userRepo := userRepo.NewUserRepository(db)
	courseRepo := courseRepo.NewCourseRepository(db)
	enrollmentRepo := enrollmentRepo.NewEnrollmentRepository(db)
	assignmentRepo := assignmentRepo.NewAssignmentRepository(db)
	submissionRepo := submissionRepo.NewSubmissionRepository(db)
	materialRepo := materialRepo.NewMaterialRepository(db)
	announcementRepo := announcementRepo.NewAnnouncementRepository(db)
	issueRepo := issueRepo.NewIssueRepository(db)

	authSvc := userService.NewAuthService(userRepo, ratelimiter.New(redisClient), userService.Options{
		Secret:           cfg.JWTSecret,
		TokenTTL:         cfg.JWTTTL,
		LoginMaxAttempts: cfg.LoginMaxAttempts,
		LoginLockout:     cfg.LoginLockout,
	})
	authHandler := userHttp.NewAuthHandler(authSvc)

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient, cfg.AllowedOrigins)

	enrollmentSvc := enrollmentService.NewEnrollmentService(enrollmentRepo, userRepo, courseRepo)

	issueSvc := issueService.NewIssueService(issueRepo)
	issueHandler := issueHttp.NewIssueHandler(issueSvc)

	adminSvc := adminService.NewAdminService(userRepo, courseRepo, enrollmentRepo, assignmentRepo, submissionRepo, materialRepo, issueRepo, fileStorage)
	adminHandler := adminHttp.NewAdminHandler(adminSvc, enrollmentSvc, cfg.MaxUploadBytes)

	teacherSvc := teacherService.NewTeacherService(assignmentRepo, submissionRepo, materialRepo, courseRepo, enrollmentRepo, announcementRepo, userRepo, notificationSvc, fileStorage, search)
	teacherHandler := teacherHttp.NewTeacherHandler(teacherSvc, cfg.MaxUploadBytes)

	studentSvc := studentService.NewStudentService(assignmentRepo, submissionRepo, materialRepo, courseRepo, enrollmentRepo, announcementRepo, fileStorage, search)
	studentHandler := studentHttp.NewStudentHandler(studentSvc, cfg.MaxUploadBytes)

	// Deadline reminders
	scheduler := reminderService.NewScheduler()
	reminder := reminderService.NewDeadlineReminder(assignmentRepo, submissionRepo, enrollmentRepo, notificationSvc, cfg.ReminderCron)
	if err := scheduler.Register(reminder); err != nil {
		return nil, err
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health", "/metrics"},
	}))
	router.Use(request.LimitBody(cfg.MaxUploadBytes))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/auth/me", authHandler.Me)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		protected.POST("/issues", issueHandler.Report)

		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/dashboard", adminHandler.Dashboard)

			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.POST("/users", adminHandler.CreateUser)
			adminGroup.PUT("/users/:id", adminHandler.UpdateUser)
			adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)

			adminGroup.GET("/courses", adminHandler.ListCourses)
			adminGroup.POST("/courses", adminHandler.CreateCourse)
			adminGroup.PUT("/courses/:id", adminHandler.UpdateCourse)
			adminGroup.DELETE("/courses/:id", adminHandler.DeleteCourse)

			adminGroup.GET("/enrollments", adminHandler.ListEnrollments)
			adminGroup.POST("/enrollments", adminHandler.Enroll)
			adminGroup.DELETE("/enrollments/:id", adminHandler.DropEnrollment)

			adminGroup.GET("/issues", issueHandler.List)
			adminGroup.PUT("/issues/:id/resolve", issueHandler.Resolve)
		}

		// Teacher routes
		teacherGroup := protected.Group("/teacher")
		teacherGroup.Use(authMiddleware.RequireRole(entity.RoleTeacher))
		{
			teacherGroup.GET("/dashboard", teacherHandler.Dashboard)

			teacherGroup.GET("/assignments", teacherHandler.ListAssignments)
			teacherGroup.POST("/assignments", teacherHandler.CreateAssignment)
			teacherGroup.GET("/assignments/:assignment_id/submissions", teacherHandler.ReviewSubmissions)
			teacherGroup.POST("/assignments/:assignment_id/bulk-grade", teacherHandler.BulkGrade)

			teacherGroup.GET("/submissions/:submission_id/download", teacherHandler.DownloadSubmission)
			teacherGroup.POST("/submissions/:submission_id/grade", teacherHandler.Grade)

			teacherGroup.GET("/courses/:course_id/students", teacherHandler.CourseStudents)
			teacherGroup.GET("/courses/:course_id/gradebook", teacherHandler.Gradebook)
			teacherGroup.GET("/courses/:course_id/materials", teacherHandler.ListMaterials)
			teacherGroup.POST("/courses/:course_id/materials", teacherHandler.UploadMaterial)

			teacherGroup.GET("/materials/:material_id/download", teacherHandler.DownloadMaterial)
			teacherGroup.DELETE("/materials/:material_id", teacherHandler.DeleteMaterial)

			teacherGroup.GET("/announcements", teacherHandler.ListAnnouncements)
			teacherGroup.POST("/announcements", teacherHandler.CreateAnnouncement)
		}

		// Student routes
		studentGroup := protected.Group("/student")
		studentGroup.Use(authMiddleware.RequireRole(entity.RoleStudent))
		{
			studentGroup.GET("/dashboard", studentHandler.Dashboard)
			studentGroup.GET("/assignments", studentHandler.Assignments)
			studentGroup.GET("/grades", studentHandler.Grades)
			studentGroup.GET("/search-token", studentHandler.SearchToken)

			studentGroup.POST("/assignments/:assignment_id/submit", studentHandler.Submit)
			studentGroup.GET("/assignments/:assignment_id/download", studentHandler.DownloadAssignment)
			studentGroup.GET("/submissions/:submission_id/download", studentHandler.DownloadSubmission)

			studentGroup.GET("/courses/:course_id/materials", studentHandler.CourseMaterials)
			studentGroup.GET("/materials/:material_id/download", studentHandler.DownloadMaterial)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   scheduler,
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the reminder scheduler and serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.scheduler.Start()
	defer s.scheduler.Stop()

	log.Printf("🌐 Listening on %s", addr)
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

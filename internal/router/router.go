package router

import (
	"net/http"
	"time"

	"github.com/derslik/derslik-backend/internal/config"
	"github.com/derslik/derslik-backend/internal/handler"
	"github.com/derslik/derslik-backend/internal/middleware"
	"github.com/derslik/derslik-backend/internal/model"
	"github.com/derslik/derslik-backend/internal/response"
	"github.com/derslik/derslik-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Course     *handler.CourseHandler
	Exam       *handler.ExamHandler
	Submission *handler.SubmissionHandler
	Grading    *handler.GradingHandler
	Gradebook  *handler.GradebookHandler
	Results    *handler.ResultsHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-SafeExamBrowser-ConfigKeyHash"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := middleware.RequireAuth(authService)
	requireSession := middleware.CheckSingleDeviceSession(authService)
	privileged := middleware.RequirePrivileged()

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/logout", requireAuth, handlers.Auth.Logout)
		auth.GET("/me", requireAuth, handlers.Auth.Me)
	}

	// ─── 2. User Management (Admin) ────────────────────────────────────
	users := router.Group("/api/v1/users")
	users.Use(requireAuth)
	{
		users.POST("", middleware.RequireRole(model.RoleAdmin), handlers.Auth.Register)
		users.DELETE("/:id/session", privileged, handlers.Auth.ResetSession)
	}

	// ─── 3. Courses ────────────────────────────────────────────────────
	courses := router.Group("/api/v1/courses")
	courses.Use(requireAuth, requireSession)
	{
		courses.GET("", privileged, handlers.Course.ListCourses)
		courses.POST("", privileged, handlers.Course.CreateCourse)
		courses.GET("/:courseId", handlers.Course.GetCourse)
		courses.PATCH("/:courseId", privileged, handlers.Course.UpdateCourse)
		courses.DELETE("/:courseId", privileged, handlers.Course.DeleteCourse)
		courses.POST("/:courseId/enrollments", privileged, handlers.Course.EnrollStudent)
		courses.GET("/:courseId/students", privileged, handlers.Course.ListStudents)

		// Exams of a course
		courses.GET("/:courseId/exams", handlers.Exam.ListExams)
		courses.POST("/:courseId/exams", privileged, handlers.Exam.CreateExam)

		// Gradebook structure of a course
		courses.GET("/:courseId/gradebook/categories", privileged, handlers.Gradebook.ListCategories)
		courses.POST("/:courseId/gradebook/categories", privileged, handlers.Gradebook.CreateCategory)
		courses.GET("/:courseId/gradebook/items", privileged, handlers.Gradebook.ListItems)
		courses.POST("/:courseId/gradebook/items", privileged, handlers.Gradebook.CreateItem)

		// Gradebook views
		courses.GET("/:courseId/gradebook/my-grades", middleware.RequireRole(model.RoleStudent), handlers.Gradebook.MyGrades)
		courses.GET("/:courseId/gradebook/students/:studentId/final", privileged, handlers.Gradebook.StudentFinalGrade)
		courses.GET("/:courseId/gradebook/leaderboard", handlers.Gradebook.Leaderboard)
		courses.GET("/:courseId/gradebook/export", privileged, handlers.Gradebook.ExportCSV)
	}

	// ─── 4. Exams ──────────────────────────────────────────────────────
	exams := router.Group("/api/v1/exams")
	exams.Use(requireAuth, requireSession)
	{
		exams.GET("/:examId", handlers.Exam.GetExam)
		exams.PATCH("/:examId", privileged, handlers.Exam.UpdateExam)
		exams.DELETE("/:examId", privileged, handlers.Exam.DeleteExam)

		exams.GET("/:examId/questions", handlers.Exam.ListQuestions)
		exams.POST("/:examId/questions", privileged, handlers.Exam.AddQuestion)
		exams.DELETE("/:examId/questions/:questionId", privileged, handlers.Exam.DeleteQuestion)

		exams.POST("/:examId/submissions", handlers.Submission.SubmitExam)
		exams.GET("/:examId/submissions", privileged, handlers.Submission.ListSubmissions)
		exams.POST("/:examId/omr", privileged, handlers.Submission.ImportOMR)
	}

	// ─── 5. Submissions and manual grading ─────────────────────────────
	submissions := router.Group("/api/v1/submissions")
	submissions.Use(requireAuth, requireSession)
	{
		submissions.GET("", handlers.Submission.ListMySubmissions)
		submissions.GET("/:submissionId", handlers.Submission.GetSubmission)
		submissions.GET("/:submissionId/grades", privileged, handlers.Grading.ListGrades)
		submissions.PUT("/:submissionId/questions/:questionId/grade", privileged, handlers.Grading.GradeQuestion)
	}

	// ─── 6. Gradebook (item scoped) ────────────────────────────────────
	gradebook := router.Group("/api/v1/gradebook")
	gradebook.Use(requireAuth, privileged)
	{
		gradebook.PATCH("/categories/:categoryId", handlers.Gradebook.UpdateCategory)
		gradebook.DELETE("/categories/:categoryId", handlers.Gradebook.DeleteCategory)

		gradebook.DELETE("/items/:itemId", handlers.Gradebook.DeleteItem)
		gradebook.PUT("/items/:itemId/grades", handlers.Gradebook.UpsertGrade)
		gradebook.POST("/items/:itemId/grades/bulk", handlers.Gradebook.BulkGrade)
		gradebook.GET("/items/:itemId/statistics", handlers.Gradebook.ItemStatistics)

		gradebook.POST("/sync-exam/:examId", handlers.Gradebook.SyncExam)
	}

	// ─── 7. WebSocket Group (WS Auth via query token) ──────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/exams/:examId/results", handlers.Results.StreamResults)
	}

	return router
}

package handlers

import (
	"net/http"
	"time"

	"coachdesk/internal/metrics"
	"coachdesk/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services are the dependencies the HTTP layer is built from.
type Services struct {
	Auth       *services.AuthService
	Students   *services.StudentService
	Attendance *services.AttendanceService
	Notes      *services.NoteService
	Tests      *services.TestService
	Reports    *services.ReportService
	Share      *services.ShareService
}

// RouterOptions configure middleware.
type RouterOptions struct {
	CORSOrigins []string
	// RequestLog enables gin's access log.
	RequestLog bool
}

// NewRouter builds the API. m may be nil, in which case /metrics is not served.
func NewRouter(svc Services, m *metrics.Metrics, opts RouterOptions) *gin.Engine {
	router := gin.New()

	router.Use(gin.CustomRecovery(recoverPanic))
	if opts.RequestLog {
		router.Use(gin.Logger())
	}
	if m != nil {
		router.Use(m.Middleware())
	}
	router.Use(corsMiddleware(opts.CORSOrigins))
	router.Use(SecurityHeadersMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	authHandler := NewAuthHandler(svc.Auth)
	studentHandler := NewStudentHandler(svc.Students)
	attendanceHandler := NewAttendanceHandler(svc.Attendance)
	noteHandler := NewNoteHandler(svc.Notes)
	testHandler := NewTestHandler(svc.Tests)
	classHandler := NewClassHandler(svc.Tests)
	reportHandler := NewReportHandler(svc.Reports, svc.Share)

	api := router.Group("/api")

	api.POST("/admin/login", authHandler.AdminLogin)
	api.POST("/student/login", authHandler.StudentLogin)

	// Download links carry the token in the query string.
	api.GET("/notes/:id/download", QueryTokenAuthMiddleware(svc.Auth), noteHandler.DownloadNote)
	api.GET("/admin/test-results-pdf/:id",
		QueryTokenAuthMiddleware(svc.Auth), AdminOnlyMiddleware(), reportHandler.TestResultsPDF)

	protected := api.Group("")
	protected.Use(AuthMiddleware(svc.Auth))
	{
		protected.GET("/notes", noteHandler.ListNotes)
	}

	admin := api.Group("/admin")
	admin.Use(AuthMiddleware(svc.Auth))
	admin.Use(AdminOnlyMiddleware())
	{
		admin.GET("/students", studentHandler.ListStudents)
		admin.POST("/students", studentHandler.CreateStudent)
		admin.POST("/students/:id/admission-form", studentHandler.UploadAdmissionForm)
		admin.GET("/students/:id/admission-form", studentHandler.AdmissionForm)
		admin.GET("/students/:id/admission-form/thumbnail", studentHandler.AdmissionFormThumbnail)
		admin.GET("/class-students", studentHandler.ListClassStudents)

		admin.POST("/attendance", attendanceHandler.MarkAttendance)
		admin.GET("/attendance", attendanceHandler.AttendanceOn)

		admin.POST("/notes", noteHandler.UploadNote)

		admin.POST("/tests", testHandler.CreateTest)
		admin.GET("/tests", testHandler.ListTests)
		admin.GET("/class-tests", testHandler.ListClassTests)
		admin.POST("/tests/:id/results", testHandler.RecordResults)
		admin.GET("/tests/:id/results", testHandler.ListTestResults)

		admin.POST("/select-class", classHandler.SelectClass)
		admin.GET("/current-class", classHandler.CurrentClass)

		admin.POST("/generate-test-results-pdf/:id", reportHandler.GenerateTestResultsPDF)
		admin.GET("/share-results-whatsapp/:id", reportHandler.ShareResults)
	}

	student := api.Group("/student")
	student.Use(AuthMiddleware(svc.Auth))
	student.Use(StudentOnlyMiddleware())
	{
		student.GET("/attendance", attendanceHandler.StudentAttendance)
		student.GET("/tests", testHandler.StudentTests)
		student.GET("/test-results/:id/pdf", reportHandler.StudentResultPDF)
		student.GET("/admission-form", studentHandler.OwnAdmissionForm)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found!"})
	})

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	for _, o := range origins {
		if o == "*" {
			config.AllowAllOrigins = true
			return cors.New(config)
		}
	}
	if len(origins) == 0 {
		config.AllowAllOrigins = true
		return cors.New(config)
	}

	config.AllowOrigins = origins
	return cors.New(config)
}

// Package app wires configuration, storage, repositories and services into a
// runnable API.
package app

import (
	"fmt"
	"log/slog"
	"strings"

	"coachdesk/internal/config"
	"coachdesk/internal/handlers"
	"coachdesk/internal/jwt"
	"coachdesk/internal/metrics"
	"coachdesk/internal/repository"
	"coachdesk/internal/services"
	"coachdesk/pkg/database"
	"coachdesk/pkg/report"
	"coachdesk/pkg/storage"
	"coachdesk/pkg/telegram"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"
)

// App holds the long-lived components.
type App struct {
	Config   *config.Config
	DB       *database.Database
	Storage  *storage.Storage
	Metrics  *metrics.Metrics
	Services handlers.Services
}

// New opens the database, makes sure the default admin exists and builds
// every service.
func New(cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.DBPath, gormLogLevel(cfg.LogLevel))
	if err != nil {
		return nil, err
	}

	vault, err := storage.NewStorage(cfg.UploadPath, cfg.MaxFileSize)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	verifier, err := services.NewCredentialVerifier(cfg.PasswordScheme)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	adminPassword, err := verifier.Hash(cfg.DefaultAdminPassword)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to hash default admin password: %w", err)
	}
	if err := db.CreateDefaultAdmin(cfg.DefaultAdminUsername, adminPassword); err != nil {
		_ = db.Close()
		return nil, err
	}

	adminRepo := repository.NewAdminRepository(db.DB)
	studentRepo := repository.NewStudentRepository(db.DB)
	testRepo := repository.NewTestRepository(db.DB)
	resultRepo := repository.NewTestResultRepository(db.DB)

	m := metrics.New()
	reports := services.NewReportService(testRepo, resultRepo, vault, report.NewRenderer(), m, services.ReportOptions{
		InstituteName:     cfg.InstituteName,
		WhatsAppGroupLink: cfg.WhatsAppGroupLink,
	})

	var broadcaster services.ResultsBroadcaster
	if cfg.TelegramEnabled() {
		notifier, err := telegram.NewNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			slog.Warn("telegram disabled", "error", err)
		} else {
			broadcaster = notifier
		}
	}

	return &App{
		Config:  cfg,
		DB:      db,
		Storage: vault,
		Metrics: m,
		Services: handlers.Services{
			Auth:       services.NewAuthService(adminRepo, studentRepo, jwt.NewManager(cfg.JWTSecret, cfg.JWTExpiration), verifier),
			Students:   services.NewStudentService(studentRepo, vault, verifier),
			Attendance: services.NewAttendanceService(repository.NewAttendanceRepository(db.DB), studentRepo),
			Notes:      services.NewNoteService(repository.NewNoteRepository(db.DB), vault),
			Tests:      services.NewTestService(testRepo, resultRepo, studentRepo, adminRepo, vault),
			Reports:    reports,
			Share: services.NewShareService(reports, resultRepo, vault, broadcaster, services.ShareOptions{
				WhatsAppGroupLink: cfg.WhatsAppGroupLink,
				WhatsAppShareBase: cfg.WhatsAppShareBase,
			}),
		},
	}, nil
}

// Router builds the HTTP handler.
func (a *App) Router() *gin.Engine {
	return handlers.NewRouter(a.Services, a.Metrics, handlers.RouterOptions{
		CORSOrigins: a.Config.CORSOrigins,
		RequestLog:  a.Config.Mode == gin.DebugMode,
	})
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	default:
		return logger.Warn
	}
}

package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"coachdesk/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps the gorm connection to the SQLite file.
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens (creating if needed) the SQLite database and migrates it.
func NewDatabase(dbPath string, logLevel logger.LogLevel) (*Database, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// foreign keys are off by default in SQLite
	dsn := dbPath + "?_foreign_keys=on"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// one writer at a time; SQLite serialises writes anyway
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	database := &Database{DB: db}

	if err := database.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return database, nil
}

// Migrate creates or updates the schema.
func (d *Database) Migrate() error {
	return d.DB.AutoMigrate(
		&models.Admin{},
		&models.Student{},
		&models.Attendance{},
		&models.Note{},
		&models.Test{},
		&models.TestResult{},
	)
}

// Close closes the underlying connection.
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateDefaultAdmin makes sure the built-in administrator exists.
// password must already be in the configured storage scheme.
func (d *Database) CreateDefaultAdmin(username, password string) error {
	var admin models.Admin
	result := d.DB.Where("username = ?", username).First(&admin)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		empty := ""
		admin = models.Admin{
			Username:      username,
			Password:      password,
			SelectedClass: &empty,
		}
		if err := d.DB.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to create default admin: %w", err)
		}
		return nil
	}
	if result.Error != nil {
		return fmt.Errorf("failed to look up default admin: %w", result.Error)
	}

	if admin.SelectedClass == nil {
		if err := d.DB.Model(&admin).Update("selected_class", "").Error; err != nil {
			return fmt.Errorf("failed to update default admin: %w", err)
		}
	}

	return nil
}

package repository

import (
	"context"
	"time"

	"coachdesk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttendanceRepository provides access to attendance records.
type AttendanceRepository interface {
	// UpsertMany writes every record, updating the present flag when a
	// record for the same (student_id, date) already exists.
	UpsertMany(ctx context.Context, records []models.Attendance) error
	ListByStudent(ctx context.Context, studentID uint) ([]models.Attendance, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.Attendance, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository creates an attendance repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) UpsertMany(ctx context.Context, records []models.Attendance) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range records {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "student_id"}, {Name: "date"}},
				DoUpdates: clause.AssignmentColumns([]string{"present"}),
			}).Create(&records[i]).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *attendanceRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Attendance, error) {
	var records []models.Attendance
	err := r.db.WithContext(ctx).Where("student_id = ?", studentID).Order("date ASC").Find(&records).Error
	return records, err
}

func (r *attendanceRepository) ListByDate(ctx context.Context, date time.Time) ([]models.Attendance, error) {
	var records []models.Attendance
	err := r.db.WithContext(ctx).Preload("Student").
		Where("date = ?", date).
		Order("student_id ASC").Find(&records).Error
	return records, err
}

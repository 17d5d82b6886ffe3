package models

import "time"

// Attendance is one student's presence on one date.
type Attendance struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StudentID uint      `json:"student_id" gorm:"not null;uniqueIndex:idx_attendance_student_date"`
	Date      time.Time `json:"date" gorm:"type:date;not null;uniqueIndex:idx_attendance_student_date"`
	Present   bool      `json:"present" gorm:"default:false"`

	Student *Student `json:"-" gorm:"foreignKey:StudentID"`
}

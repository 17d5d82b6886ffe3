package models

import "time"

// Student is an enrolled student. AdmissionNumber has the form PCC<class><5-digit seq>.
type Student struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	AdmissionNumber   string    `json:"admission_number" gorm:"size:50;uniqueIndex;not null"`
	Username          string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Password          string    `json:"-" gorm:"size:100;not null"`
	Name              string    `json:"name" gorm:"size:100;not null"`
	Email             string    `json:"email" gorm:"size:100"`
	Phone             string    `json:"phone" gorm:"size:20"`
	SchoolName        string    `json:"school_name" gorm:"size:200"`
	ClassLevel        string    `json:"class_level" gorm:"size:10;index;not null"` // 7th .. 12th
	AdmissionDate     time.Time `json:"admission_date" gorm:"type:date;not null"`
	AdmissionFormPath string    `json:"-" gorm:"size:255"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// HasAdmissionForm reports whether an admission form was uploaded.
func (s *Student) HasAdmissionForm() bool {
	return s.AdmissionFormPath != ""
}

// AdmissionPrefix returns the admission number prefix for a class level.
func AdmissionPrefix(classLevel string) string {
	return "PCC" + classLevel
}

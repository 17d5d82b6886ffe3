package models

import "time"

// Test is an examination held for one class level.
type Test struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"size:100;not null"`
	Subject    string    `json:"subject" gorm:"size:50;not null"`
	ClassLevel string    `json:"class_level" gorm:"size:10;index;not null"`
	Date       time.Time `json:"date" gorm:"type:date;not null"`
	MaxMarks   int       `json:"max_marks" gorm:"not null"`

	Results []TestResult `json:"-" gorm:"foreignKey:TestID"`
}

// TestResult holds a student's marks for a test.
//
// PDFPath points at the test-wide results sheet and is the same on every
// result of the test. ReportCardPath points at this result's own report card.
type TestResult struct {
	ID               uint    `json:"id" gorm:"primaryKey"`
	TestID           uint    `json:"test_id" gorm:"not null;uniqueIndex:idx_result_test_student"`
	StudentID        uint    `json:"student_id" gorm:"not null;uniqueIndex:idx_result_test_student"`
	MarksObtained    float64 `json:"marks_obtained" gorm:"not null"`
	PDFPath          *string `json:"-" gorm:"size:255"`
	ReportCardPath   *string `json:"-" gorm:"size:255"`
	SharedToWhatsApp bool    `json:"shared_to_whatsapp" gorm:"column:shared_to_whatsapp;default:false"`

	Test    *Test    `json:"-" gorm:"foreignKey:TestID"`
	Student *Student `json:"-" gorm:"foreignKey:StudentID"`
}

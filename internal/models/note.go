package models

import "time"

// Note is an uploaded study note.
type Note struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Title      string    `json:"title" gorm:"size:100;not null"`
	Subject    string    `json:"subject" gorm:"size:50;index;not null"`
	FilePath   string    `json:"-" gorm:"size:255;not null"`
	UploadDate time.Time `json:"upload_date" gorm:"type:date;not null"`
}

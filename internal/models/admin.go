package models

import "time"

// Admin is an institute administrator.
type Admin struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Username      string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Password      string    `json:"-" gorm:"size:100;not null"`
	SelectedClass *string   `json:"selected_class" gorm:"size:10"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

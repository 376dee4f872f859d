package models

import "time"

// User represents a registered member of the platform.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never serialized
	FirstName    string    `json:"first_name" gorm:"type:varchar(100)" validate:"required,max=100"`
	LastName     string    `json:"last_name" gorm:"type:varchar(100)" validate:"required,max=100"`
	NationalID   string    `json:"national_id" gorm:"type:varchar(20)" validate:"required,max=20"`
	District     string    `json:"district" gorm:"type:varchar(100)" validate:"required,max=100"`
	Interests    string    `json:"interests" gorm:"type:varchar(200)"` // comma-joined tags
	CreatedAt    time.Time `json:"created_at"`
}

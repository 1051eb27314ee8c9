package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	EmailVerified bool   `gorm:"default:false" json:"email_verified"`

	FullName string `json:"full_name"`
	Picture  string `json:"picture"`

	// Application-specific
	Username *string `gorm:"uniqueIndex" json:"username"` // Pointer so it can be null
	IsActive bool    `gorm:"default:true" json:"is_active"`
	IsAdmin  bool    `gorm:"default:false" json:"is_admin"`

	// Timestamps
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// CanAccessJob reports whether the user may observe a generation job
// owned by ownerID. Admins may observe any job.
func (u *User) CanAccessJob(ownerID uint) bool {
	return u.ID == ownerID || u.IsAdmin
}

package models

import (
	"time"
)

// Project statuses
const (
	ProjectStatusDraft      = "draft"
	ProjectStatusProcessing = "processing"
	ProjectStatusCompleted  = "completed"
	ProjectStatusFailed     = "failed"
)

type Project struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`
	Title  string `gorm:"size:255" json:"title"`

	// Generation input snapshot (JSON, binary image payloads reduced to metadata)
	Params string `gorm:"type:text" json:"params,omitempty"`

	Status    string  `gorm:"default:'draft'" json:"status"`
	LastError string  `gorm:"type:text" json:"last_error,omitempty"`
	Scenes    []Scene `gorm:"foreignKey:ProjectID" json:"scenes,omitempty"`

	// Export output
	VideoPath     string `json:"video_path,omitempty"`
	VideoFilename string `json:"video_filename,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

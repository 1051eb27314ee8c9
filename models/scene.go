package models

import "time"

type Scene struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ProjectID         uint      `gorm:"not null;index" json:"project_id"`
	SceneNumber       int       `gorm:"not null" json:"scene_number"`
	Narration         string    `gorm:"type:text;not null" json:"narration"`
	Duration          float64   `json:"duration"`
	DisplayDuration   string    `json:"display_duration"`
	VisualDescription string    `gorm:"type:text" json:"visual_description"`
	ImageURL          string    `gorm:"type:text" json:"image_url"`
	Placeholder       bool      `gorm:"default:false" json:"placeholder"`
	CreatedAt         time.Time `json:"created_at"`
}

func (Scene) TableName() string {
	return "scenes"
}

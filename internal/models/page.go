package models

import "time"

// Page is a dashboard page created through the page editor.
type Page struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:200;not null" json:"name"`
	Path          string    `gorm:"uniqueIndex;size:255;not null" json:"path"`
	ComponentPath string    `gorm:"column:component_path;size:500;not null" json:"component_path"`
	Layout        string    `gorm:"size:50;default:dashboard" json:"layout"`
	Role          string    `gorm:"size:50;default:user" json:"role"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Page) TableName() string { return "pages" }

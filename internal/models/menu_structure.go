package models

import (
	"time"

	"gorm.io/datatypes"
)

// MenuStructure holds the whole menu tree of one role as a JSON document.
// Writes replace the document; there is no per-item storage.
type MenuStructure struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Role      string         `gorm:"uniqueIndex;size:50;not null" json:"role"`
	Structure datatypes.JSON `json:"structure"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (MenuStructure) TableName() string { return "menu_structures" }

// MenuCategory is one titled group in a role's menu.
type MenuCategory struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Icon  string     `json:"icon,omitempty"`
	Order int        `json:"order"`
	Items []MenuItem `json:"items"`
}

type MenuItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Path  string `json:"path"`
	Icon  string `json:"icon,omitempty"`
	Order int    `json:"order"`
}

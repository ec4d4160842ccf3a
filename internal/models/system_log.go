package models

import "time"

// SystemLog is one audit-trail row. Module is the first segment under /api
// with dashes folded to underscores (setup, system_config, menu_structure,
// pages, upload); Action is the last segment, or the HTTP verb mapped to
// save/update/delete.
type SystemLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Level     string    `gorm:"size:16;index" json:"level"` // info, warning, error
	Module    string    `gorm:"size:64;index" json:"module"`
	Action    string    `gorm:"size:64" json:"action"`
	Message   string    `gorm:"type:text" json:"message"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Actor     string    `gorm:"size:255" json:"actor"` // signed-in email, or "anonymous"
	Status    int       `json:"status"`
	RequestID string    `gorm:"size:64;index" json:"request_id"`
	IP        string    `gorm:"size:64" json:"ip"`
	UserAgent string    `gorm:"size:512" json:"user_agent"`
	Extra     string    `gorm:"type:text" json:"extra"` // method, path and masked request body as JSON
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (SystemLog) TableName() string { return "system_logs" }

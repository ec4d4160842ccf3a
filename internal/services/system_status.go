package services

import (
	"context"
	"os"
	"time"

	"github.com/jboilerplate/portal/internal/config"
	"github.com/jboilerplate/portal/internal/manifest"
	"github.com/jboilerplate/portal/internal/models"
	"gorm.io/gorm"
)

// Config sources, most authoritative first.
const (
	ConfigSourceDB      = "db"
	ConfigSourceFile    = "file"
	ConfigSourceDefault = "default"
)

type DatabaseStatus struct {
	Connected bool   `json:"connected"`
	Driver    string `json:"driver"`
}

type SystemStatus struct {
	Env           string         `json:"env"`
	DB            DatabaseStatus `json:"db"`
	ConfigSource  string         `json:"configSource"`
	ModulesLoaded int            `json:"modulesLoaded"`
	UptimeMs      int64          `json:"uptimeMs"`
	Timestamp     time.Time      `json:"timestamp"`
}

type SystemStatusService struct {
	db      *gorm.DB
	cfg     *config.Config
	routes  *manifest.Store
	started time.Time
}

func NewSystemStatusService(db *gorm.DB, cfg *config.Config, routes *manifest.Store) *SystemStatusService {
	return &SystemStatusService{db: db, cfg: cfg, routes: routes, started: time.Now()}
}

func (s *SystemStatusService) Status(ctx context.Context) SystemStatus {
	status := SystemStatus{
		Env:          s.cfg.Server.Mode,
		DB:           DatabaseStatus{Driver: s.cfg.Database.Driver},
		ConfigSource: ConfigSourceDefault,
		UptimeMs:     time.Since(s.started).Milliseconds(),
		Timestamp:    time.Now().UTC(),
	}

	if sqlDB, err := s.db.DB(); err == nil && sqlDB.PingContext(ctx) == nil {
		status.DB.Connected = true
	}

	var rows int64
	if status.DB.Connected && s.db.WithContext(ctx).Model(&models.SystemConfig{}).Count(&rows).Error == nil && rows > 0 {
		status.ConfigSource = ConfigSourceDB
	} else if _, err := os.Stat(s.cfg.SystemConfigFilePath()); err == nil {
		status.ConfigSource = ConfigSourceFile
	}

	if entries, err := s.routes.Read(); err == nil {
		status.ModulesLoaded = len(entries)
	}
	return status
}

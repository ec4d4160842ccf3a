package models

import (
	"errors"
	"fmt"

	"github.com/jboilerplate/portal/internal/config"
	"github.com/jboilerplate/portal/internal/sysconfig"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the configured database. The returned handle is owned by the
// caller and passed explicitly to every service.
func InitDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	level := logger.Warn
	if debug {
		level = logger.Info
	}
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(level),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&SystemConfig{},
		&MenuStructure{},
		&Page{},
		&SystemLog{},
		&SchedulerLock{},
	)
}

// CoreTables are the tables whose presence marks a usable installation.
func CoreTables() []interface{} {
	return []interface{}{&User{}, &SystemConfig{}, &SystemLog{}}
}

// SeedDefaultData inserts the compiled-in system configuration rows that are
// still missing. Existing rows are never overwritten.
func SeedDefaultData(db *gorm.DB) error {
	defaults := sysconfig.Defaults().ToMap()
	for _, key := range sysconfig.Keys() {
		var existing SystemConfig
		err := db.Where(&SystemConfig{Key: key}).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		value, typ := sysconfig.EncodeValue(defaults[key])
		row := SystemConfig{Key: key, Value: value, Type: typ}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jboilerplate/portal/internal/cache"
	"github.com/jboilerplate/portal/internal/models"
	"github.com/jboilerplate/portal/internal/sysconfig"
	"github.com/jboilerplate/portal/pkg/logger"
	"gorm.io/gorm"
)

const systemConfigCacheKey = "system-config:db"

var ErrConfigFileNotFound = errors.New("system config file not found")

// SystemConfigService reads and writes the branding/theme rows and the JSON
// fallback file. DB reads go through the injected cache; every DB write
// invalidates it.
type SystemConfigService struct {
	db       *gorm.DB
	cache    cache.Store
	ttl      time.Duration
	filePath string
}

func NewSystemConfigService(db *gorm.DB, store cache.Store, ttl time.Duration, filePath string) *SystemConfigService {
	if store == nil {
		store = cache.NewMemoryStore()
	}
	return &SystemConfigService{db: db, cache: store, ttl: ttl, filePath: filePath}
}

// LoadDB returns every stored row as a key/value map, with number rows
// parsed back to float64.
func (s *SystemConfigService) LoadDB(ctx context.Context) (map[string]any, error) {
	var cached map[string]any
	if found, err := cache.GetJSON(ctx, s.cache, systemConfigCacheKey, &cached); err != nil {
		logger.Warn().Err(err).Msg("[SystemConfig] cache read failed")
	} else if found {
		return cached, nil
	}

	var rows []models.SystemConfig
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	values := make(map[string]any, len(rows))
	for _, row := range rows {
		values[row.Key] = sysconfig.DecodeValue(row.Value, row.Type)
	}

	if s.ttl > 0 {
		if err := cache.SetJSON(ctx, s.cache, systemConfigCacheKey, values, s.ttl); err != nil {
			logger.Warn().Err(err).Msg("[SystemConfig] cache write failed")
		}
	}
	return values, nil
}

// Config is the stored configuration merged over the defaults.
func (s *SystemConfigService) Config(ctx context.Context) (sysconfig.Config, error) {
	values, err := s.LoadDB(ctx)
	if err != nil {
		return sysconfig.Defaults(), err
	}
	return sysconfig.FromMap(values), nil
}

// SaveDB upserts every supplied key in one transaction. Null values are
// skipped. Returns the keys written in sorted order.
func (s *SystemConfigService) SaveDB(ctx context.Context, values map[string]any) ([]string, error) {
	keys := make([]string, 0, len(values))
	for key, v := range values {
		if v == nil || key == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, key := range keys {
			value, typ := sysconfig.EncodeValue(values[key])
			if err := upsertConfigRow(tx, key, value, typ); err != nil {
				return fmt.Errorf("save %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Invalidate(ctx)
	logger.Infof("[SystemConfig] saved %d keys", len(keys))
	return keys, nil
}

// Invalidate drops the cached DB snapshot.
func (s *SystemConfigService) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, systemConfigCacheKey); err != nil {
		logger.Warn().Err(err).Msg("[SystemConfig] cache invalidation failed")
	}
}

// LoadFile reads the JSON fallback file.
func (s *SystemConfigService) LoadFile() (map[string]any, error) {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrConfigFileNotFound
	}
	if err != nil {
		return nil, err
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	if values == nil {
		values = map[string]any{}
	}
	return values, nil
}

// SaveFile writes values to the JSON fallback file as given.
func (s *SystemConfigService) SaveFile(values map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0644)
}

func upsertConfigRow(tx *gorm.DB, key, value, typ string) error {
	var existing models.SystemConfig
	err := tx.Where(&models.SystemConfig{Key: key}).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&models.SystemConfig{Key: key, Value: value, Type: typ}).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&existing).Updates(map[string]interface{}{"value": value, "type": typ}).Error
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jboilerplate/portal/internal/models"
	"github.com/jboilerplate/portal/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrMenuStructureRequired = errors.New("role and structure required")

type MenuStructureService struct {
	db *gorm.DB
}

func NewMenuStructureService(db *gorm.DB) *MenuStructureService {
	return &MenuStructureService{db: db}
}

// Get returns the stored menu of a role, or nil when none is stored.
func (s *MenuStructureService) Get(ctx context.Context, role string) ([]models.MenuCategory, error) {
	var row models.MenuStructure
	err := s.db.WithContext(ctx).Where(&models.MenuStructure{Role: role}).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeStructure(row.Structure)
}

// Save replaces the whole menu document of a role. Concurrent saves are
// last-write-wins.
func (s *MenuStructureService) Save(ctx context.Context, role string, structure []models.MenuCategory) error {
	if role == "" || structure == nil {
		return ErrMenuStructureRequired
	}
	data, err := json.Marshal(structure)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.MenuStructure
		err := tx.Where(&models.MenuStructure{Role: role}).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Infof("[MenuStructure] creating menu structure for %s", role)
			return tx.Create(&models.MenuStructure{Role: role, Structure: datatypes.JSON(data)}).Error
		}
		if err != nil {
			return err
		}
		logger.Infof("[MenuStructure] updating menu structure for %s", role)
		return tx.Model(&existing).Update("structure", datatypes.JSON(data)).Error
	})
}

// RemovePath drops every item pointing at path from every stored menu.
// Only documents that actually contained the path are rewritten; the
// roles of those documents are returned.
func (s *MenuStructureService) RemovePath(ctx context.Context, path string) ([]string, error) {
	var rows []models.MenuStructure
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	var modified []string
	for _, row := range rows {
		structure, err := decodeStructure(row.Structure)
		if err != nil {
			logger.Warn().Err(err).Str("role", row.Role).Msg("[MenuStructure] skipping unreadable menu structure")
			continue
		}
		pruned, changed := pruneMenuPath(structure, path)
		if !changed {
			continue
		}
		data, err := json.Marshal(pruned)
		if err != nil {
			return modified, err
		}
		if err := s.db.WithContext(ctx).Model(&row).Update("structure", datatypes.JSON(data)).Error; err != nil {
			return modified, fmt.Errorf("update %s menu: %w", row.Role, err)
		}
		logger.Infof("[MenuStructure] removed %s from %s menu structure", path, row.Role)
		modified = append(modified, row.Role)
	}
	return modified, nil
}

// Count returns the number of stored menu documents.
func (s *MenuStructureService) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.MenuStructure{}).Count(&n).Error
	return n, err
}

func pruneMenuPath(structure []models.MenuCategory, path string) ([]models.MenuCategory, bool) {
	changed := false
	for i := range structure {
		items := structure[i].Items[:0]
		for _, item := range structure[i].Items {
			if item.Path == path {
				changed = true
				continue
			}
			items = append(items, item)
		}
		structure[i].Items = items
	}
	return structure, changed
}

func decodeStructure(raw datatypes.JSON) ([]models.MenuCategory, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var structure []models.MenuCategory
	if err := json.Unmarshal(raw, &structure); err != nil {
		return nil, err
	}
	return structure, nil
}

package services

import (
	"encoding/json"
	"time"

	"github.com/jboilerplate/portal/internal/models"
	"github.com/jboilerplate/portal/pkg/logger"
	"gorm.io/gorm"
)

// Log modules written by the portal.
const (
	ModuleSetup        = "setup"
	ModuleSystemConfig = "system_config"
	ModuleMenu         = "menu_structure"
	ModulePage         = "pages"
	ModuleAuth         = "auth"
	ModuleUpload       = "upload"
	ModuleUploadImage  = "upload_image"
)

// LogEntry is one audit record before it is stored.
type LogEntry struct {
	Module    string
	Action    string
	Message   string
	UserID    *uint
	Actor     string
	Status    int
	RequestID string
	IP        string
	UserAgent string
	Extra     interface{}
}

type SystemLogService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSystemLogService(db *gorm.DB) *SystemLogService {
	return &SystemLogService{db: db, now: time.Now}
}

func (s *SystemLogService) Info(e LogEntry) {
	s.write("info", e)
}

func (s *SystemLogService) Warning(e LogEntry) {
	s.write("warning", e)
}

func (s *SystemLogService) Error(e LogEntry) {
	s.write("error", e)
}

// write never fails the caller; a lost audit row is logged and dropped.
func (s *SystemLogService) write(level string, e LogEntry) {
	if s == nil || s.db == nil {
		return
	}

	var extraStr string
	if e.Extra != nil {
		if b, err := json.Marshal(e.Extra); err == nil {
			extraStr = string(b)
		}
	}

	row := &models.SystemLog{
		Level:     level,
		Module:    e.Module,
		Action:    e.Action,
		Message:   e.Message,
		UserID:    e.UserID,
		Actor:     e.Actor,
		Status:    e.Status,
		RequestID: e.RequestID,
		IP:        e.IP,
		UserAgent: e.UserAgent,
		Extra:     extraStr,
		CreatedAt: s.now(),
	}
	if err := s.db.Create(row).Error; err != nil {
		logger.Warn().Err(err).Str("module", e.Module).Str("action", e.Action).Msg("[SystemLog] failed to write log")
	}
}

type SystemLogListRequest struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	Level     string `form:"level"`
	Module    string `form:"module"`
	RequestID string `form:"request_id"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type SystemLogListResponse struct {
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Items    []models.SystemLog `json:"items"`
}

func (s *SystemLogService) List(req *SystemLogListRequest) (*SystemLogListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 50
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	var logs []models.SystemLog
	var total int64

	query := s.db.Model(&models.SystemLog{})

	if req.Level != "" {
		query = query.Where("level = ?", req.Level)
	}
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}
	if req.RequestID != "" {
		query = query.Where("request_id = ?", req.RequestID)
	}
	if req.StartDate != "" {
		query = query.Where("created_at >= ?", req.StartDate)
	}
	if req.EndDate != "" {
		query = query.Where("created_at <= ?", req.EndDate+" 23:59:59")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}

	return &SystemLogListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    logs,
	}, nil
}

// CleanupOldLogs deletes logs older than the specified number of days
// Returns the number of deleted records
func (s *SystemLogService) CleanupOldLogs(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoffTime := s.now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoffTime).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

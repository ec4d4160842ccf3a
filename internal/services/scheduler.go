package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jboilerplate/portal/internal/models"
	"github.com/jboilerplate/portal/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	logoRestoreSpec = "@every 1m"
	logCleanupSpec  = "0 3 * * *"

	logCleanupLock    = "log_cleanup"
	logCleanupLockTTL = 6 * time.Hour
)

// MaintenanceScheduler runs the periodic housekeeping jobs: restoring
// deleted logos and trimming old system logs.
type MaintenanceScheduler struct {
	cron          *cron.Cron
	db            *gorm.DB
	owner         string
	now           func() time.Time
	logos         *LogoService
	logs          *SystemLogService
	retentionDays int
}

// NewMaintenanceScheduler builds the scheduler. With a non-nil db the log
// cleanup runs on one instance per day, guarded by a scheduler_locks row.
func NewMaintenanceScheduler(db *gorm.DB, logos *LogoService, logs *SystemLogService, retentionDays int) *MaintenanceScheduler {
	host, _ := os.Hostname()
	return &MaintenanceScheduler{
		cron:          cron.New(),
		db:            db,
		owner:         fmt.Sprintf("%s:%d", host, os.Getpid()),
		now:           time.Now,
		logos:         logos,
		logs:          logs,
		retentionDays: retentionDays,
	}
}

// Start runs both jobs once and then schedules them.
func (m *MaintenanceScheduler) Start() error {
	m.RestoreLogos()
	m.CleanupLogs()

	if _, err := m.cron.AddFunc(logoRestoreSpec, m.RestoreLogos); err != nil {
		return err
	}
	if _, err := m.cron.AddFunc(logCleanupSpec, m.CleanupLogs); err != nil {
		return err
	}
	m.cron.Start()
	logger.Infof("[Scheduler] maintenance jobs started")
	return nil
}

// Stop waits for running jobs to finish or ctx to end.
func (m *MaintenanceScheduler) Stop(ctx context.Context) {
	done := m.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (m *MaintenanceScheduler) RestoreLogos() {
	if m.logos == nil {
		return
	}
	if _, err := m.logos.RestoreMissing(); err != nil {
		logger.Errorf("[Scheduler] logo restore failed: %v", err)
	}
}

func (m *MaintenanceScheduler) CleanupLogs() {
	if m.logs == nil {
		return
	}
	if m.retentionDays <= 0 {
		logger.Infof("[Scheduler] log cleanup disabled (retention_days <= 0)")
		return
	}
	if !m.tryLock(logCleanupLock, m.now().Format("2006-01-02"), logCleanupLockTTL) {
		logger.Infof("[Scheduler] log cleanup already claimed by another instance")
		return
	}
	deleted, err := m.logs.CleanupOldLogs(m.retentionDays)
	if err != nil {
		logger.Errorf("[Scheduler] failed to cleanup old logs: %v", err)
		return
	}
	if deleted > 0 {
		logger.Infof("[Scheduler] cleaned up %d logs older than %d days", deleted, m.retentionDays)
	}
}

// tryLock claims (name, key) until ttl passes. Expired claims are reclaimed;
// a live claim by anyone, this process included, wins.
func (m *MaintenanceScheduler) tryLock(name, key string, ttl time.Duration) bool {
	if m.db == nil {
		return true
	}
	now := m.now()
	if err := m.db.Where("lock_name = ? AND lock_key = ? AND expires_at < ?", name, key, now).
		Delete(&models.SchedulerLock{}).Error; err != nil {
		logger.Warn().Err(err).Str("lock", name).Msg("[Scheduler] failed to clear expired lock")
	}
	lock := models.SchedulerLock{LockName: name, LockKey: key, LockedBy: m.owner, LockedAt: now, ExpiresAt: now.Add(ttl)}
	return m.db.Create(&lock).Error == nil
}

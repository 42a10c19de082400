package services

import (
	"github.com/mkessler/taskhub/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// LogCleanupScheduler prunes expired audit rows once a day.
type LogCleanupScheduler struct {
	cron          *cron.Cron
	service       *SystemLogService
	retentionDays int
}

func NewLogCleanupScheduler(db *gorm.DB, retentionDays int) *LogCleanupScheduler {
	return &LogCleanupScheduler{
		cron:          cron.New(),
		service:       NewSystemLogService(db),
		retentionDays: retentionDays,
	}
}

// Start runs one cleanup immediately, then schedules a daily run at 03:00.
func (s *LogCleanupScheduler) Start() error {
	s.runCleanup()

	if _, err := s.cron.AddFunc("0 3 * * *", s.runCleanup); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *LogCleanupScheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *LogCleanupScheduler) runCleanup() {
	deleted, err := s.service.CleanupOldLogs(s.retentionDays)
	if err != nil {
		logger.Error().Err(err).Msg("audit log cleanup failed")
		return
	}
	if deleted > 0 {
		logger.Info().Int64("deleted", deleted).Int("retention_days", s.retentionDays).Msg("audit log cleanup")
	}
}

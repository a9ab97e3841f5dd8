package services

import (
	"sync"
	"time"

	"github.com/biou/admin-console/internal/config"
	"github.com/biou/admin-console/pkg/logger"
	"github.com/robfig/cron/v3"
)

// LogScheduler drives the retention cleanup and the periodic statistics
// snapshot from cron expressions in the config.
type LogScheduler struct {
	logs          *LogService
	cronScheduler *cron.Cron
	retentionDays int
	cleanupCron   string
	statsCron     string
	enabled       bool
	cleanupMu     sync.Mutex
}

func NewLogScheduler(logs *LogService, cfg *config.LogConfig) *LogScheduler {
	return &LogScheduler{
		logs:          logs,
		retentionDays: cfg.RetentionDays,
		cleanupCron:   cfg.CleanupCron,
		statsCron:     cfg.StatisticsCron,
		enabled:       cfg.CleanupEnabled(),
	}
}

func (s *LogScheduler) Start() {
	s.cronScheduler = cron.New()

	if _, err := s.cronScheduler.AddFunc(s.cleanupCron, s.runCleanup); err != nil {
		logger.Errorf("failed to schedule log cleanup (%q): %v", s.cleanupCron, err)
	}
	if _, err := s.cronScheduler.AddFunc(s.statsCron, s.runStatistics); err != nil {
		logger.Errorf("failed to schedule log statistics (%q): %v", s.statsCron, err)
	}

	s.cronScheduler.Start()
	logger.Infof("log scheduler started (cleanup %q, statistics %q, retention %d days)",
		s.cleanupCron, s.statsCron, s.retentionDays)
}

func (s *LogScheduler) Stop() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

// runCleanup is the cron entry point. Failures are logged and swallowed;
// an overlapping firing is skipped while a previous sweep is still running.
func (s *LogScheduler) runCleanup() {
	if !s.enabled {
		logger.Debugf("log auto-cleanup disabled, skipping scheduled run")
		return
	}
	if !s.cleanupMu.TryLock() {
		logger.Warnf("log cleanup still running, skipping overlapping firing")
		return
	}
	defer s.cleanupMu.Unlock()

	if _, err := s.logs.CleanExpiredLogs(s.retentionDays); err != nil {
		logger.Errorf("scheduled log cleanup failed: %v", err)
	}
}

// runStatistics logs an hourly snapshot of the last 24 hours of activity.
func (s *LogScheduler) runStatistics() {
	since := time.Now().Add(-24 * time.Hour)
	stats, err := s.logs.Statistics(since)
	if err != nil {
		logger.Errorf("scheduled log statistics failed: %v", err)
		return
	}
	logger.Infof("log statistics (24h): audit %d (%d failed), system %d (%d errors), login %d (%d failed)",
		stats.Audit.Total, stats.Audit.Fail,
		stats.System.Total, stats.System.Fail,
		stats.Login.Total, stats.Login.Fail)
}

// TriggerCleanup runs a cleanup immediately with the given retention and
// surfaces any failure to the caller.
func (s *LogScheduler) TriggerCleanup(retentionDays int) (*CleanupResult, error) {
	s.cleanupMu.Lock()
	defer s.cleanupMu.Unlock()
	return s.logs.CleanExpiredLogs(retentionDays)
}

// Package cron drives periodic regeneration on a cron schedule. Grounded
// on the scheduled-job pattern in other_examples'
// aicfo_scheduler/scheduler.go: a robfig/cron/v3 Cron wrapped with a zap
// logger adapter, a mutex-guarded run-statistics struct, and a Start/Stop
// lifecycle, retargeted from weekly AI-summary jobs to rolling-horizon
// schedule generation.
package cron

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/generator"
	"github.com/retailshift/scheduler/internal/repository"
	"github.com/retailshift/scheduler/internal/version"
)

// Config controls the periodic regeneration job.
type Config struct {
	// Schedule is a standard five-field cron expression, e.g. "0 3 * * 0"
	// for Sunday 03:00.
	Schedule string
	// HorizonDays is the length of the rolling horizon regenerated on each
	// firing, starting from the day the job runs.
	HorizonDays int
	Timezone    string
}

// DefaultConfig regenerates a four-week rolling horizon every Sunday at
// 03:00 UTC.
func DefaultConfig() Config {
	return Config{Schedule: "0 3 * * 0", HorizonDays: 28, Timezone: "UTC"}
}

// Stats tracks scheduler run history for introspection/health checks.
type Stats struct {
	TotalRuns      int64
	SuccessfulRuns int64
	FailedRuns     int64
	LastRunAt      time.Time
	LastError      string
}

// Scheduler periodically invokes the Generator Orchestrator.
type Scheduler struct {
	cron   *cron.Cron
	db     repository.Database
	store  *version.Store
	logger *zap.Logger
	config Config

	mu    sync.RWMutex
	stats Stats
}

type zapCronLogger struct{ logger *zap.Logger }

func (l *zapCronLogger) Printf(format string, args ...interface{}) {
	l.logger.Sugar().Infof(format, args...)
}

// New builds a Scheduler. It does not start the cron loop; call Start.
func New(db repository.Database, store *version.Store, logger *zap.Logger, config Config) (*Scheduler, error) {
	location, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return nil, err
	}
	c := cron.New(cron.WithLocation(location), cron.WithLogger(cron.VerbosePrintfLogger(&zapCronLogger{logger})))
	return &Scheduler{cron: c, db: db, store: store, logger: logger, config: config}, nil
}

// Start registers the regeneration job and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.config.Schedule, s.runOnce)
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop, waiting for any in-flight run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runOnce() {
	start := entity.Now()
	end := start.AddDate(0, 0, s.config.HorizonDays-1)

	result := generator.Generate(context.Background(), s.db, s.store, start, end, generator.Options{
		Notes: "scheduled rolling regeneration",
	})

	s.mu.Lock()
	s.stats.TotalRuns++
	s.stats.LastRunAt = entity.Now()
	if len(result.Errors) > 0 {
		s.stats.FailedRuns++
		s.stats.LastError = result.Errors[0]
	} else {
		s.stats.SuccessfulRuns++
		s.stats.LastError = ""
	}
	s.mu.Unlock()

	s.logger.Info("scheduled regeneration completed",
		zap.Time("horizon_start", start), zap.Time("horizon_end", end),
		zap.Int("assignments", len(result.Assignments)), zap.Strings("errors", result.Errors))
}

// Stats returns a copy of the current run statistics.
func (s *Scheduler) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

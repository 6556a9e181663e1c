// Package scheduler runs the storefront's periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"rentacar/internal/metrics"
)

const defaultJobTimeout = 10 * time.Minute

// JobFunc is one unit of scheduled work.
type JobFunc func(ctx context.Context) error

// Scheduler manages cron job scheduling.
type Scheduler struct {
	cron    *cron.Cron
	logger  *zerolog.Logger
	timeout time.Duration

	mu   sync.Mutex
	jobs map[string]JobFunc
}

// New creates a scheduler using standard five-field cron specs in UTC.
func New(logger *zerolog.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return &Scheduler{cron: c, logger: logger, timeout: defaultJobTimeout, jobs: make(map[string]JobFunc)}
}

// Add registers job under name on spec.
func (s *Scheduler) Add(name, spec string, job JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %s already registered", name)
	}
	if _, err := s.cron.AddFunc(spec, func() { _ = s.Run(name) }); err != nil {
		return fmt.Errorf("register job %s (%q): %w", name, spec, err)
	}
	s.jobs[name] = job
	s.logger.Info().Str("job", name).Str("schedule", spec).Msg("Cron job registered")
	return nil
}

// Run executes a registered job immediately.
func (s *Scheduler) Run(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %s", name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	err := job(ctx)
	metrics.IncJobRun(name, err)

	event := s.logger.Info()
	if err != nil {
		event = s.logger.Error().Err(err)
	}
	event.Str("job", name).Dur("duration", time.Since(start)).Msg("Cron job finished")
	return err
}

// Start begins the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.cron.Entries())).Msg("Cron scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Cron scheduler stopped")
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger *zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

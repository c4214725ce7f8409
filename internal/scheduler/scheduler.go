package scheduler

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"homeval/server/config"
	"homeval/server/internal/rollup"
)

// Scheduler triggers the aggregate rollup on a fixed cadence. The runner
// itself serializes concurrent runs; the scheduler only decides when to ask.
type Scheduler struct {
	runner   *rollup.Runner
	logger   *logrus.Logger
	interval time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup

	runOnStart bool
}

func NewScheduler(runner *rollup.Runner, cfg *config.Config, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		runner:     runner,
		logger:     logger,
		interval:   cfg.Rollup.Interval,
		stopChan:   make(chan struct{}),
		runOnStart: cfg.Rollup.RunOnStart,
	}
}

// Start begins the scheduled rollup loop.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	if s.runOnStart {
		s.logger.Info("Running startup rollup")
		s.runJob()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.logger.Info("Starting scheduled rollup")
			s.runJob()
		}
	}
}

func (s *Scheduler) runJob() {
	err := s.runner.TryRun(context.Background())
	switch {
	case errors.Is(err, rollup.ErrRollupInProgress):
		s.logger.Warn("Skipping rollup, previous run still in flight")
	case err != nil:
		s.logger.WithError(err).Error("Rollup failed")
	default:
		s.logger.Info("Rollup completed successfully")
	}
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

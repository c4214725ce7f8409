package rollup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"homeval/server/config"
	"homeval/server/internal/database"
	"homeval/server/internal/models"
)

// ErrRollupInProgress is returned when a run is requested while another run
// for the same store is still in flight.
var ErrRollupInProgress = errors.New("rollup already in progress")

// Source is the read side of the rollup: a full scan of the closed-transaction
// population.
type Source interface {
	ScanClosed(ctx context.Context) ([]models.ComparableTransaction, error)
}

// Runner recomputes the per-geography price-per-square-foot snapshot from
// scratch. Runs are serialized; a full-population scan is expensive and
// non-incremental, so at most one is in flight at a time.
type Runner struct {
	gdb    *gorm.DB
	source Source
	cfg    *config.Config
	logger *logrus.Logger
	now    func() time.Time

	mu      sync.Mutex
	running bool
}

func NewRunner(gdb *gorm.DB, source Source, cfg *config.Config, logger *logrus.Logger) *Runner {
	return &Runner{
		gdb:    gdb,
		source: source,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// TryRun executes one full recomputation, or returns ErrRollupInProgress when
// a run is already in flight.
func (r *Runner) TryRun(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrRollupInProgress
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	return r.run(ctx)
}

func (r *Runner) run(ctx context.Context) error {
	started := r.now()

	transactions, err := r.source.ScanClosed(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan closed transactions: %w", err)
	}

	summaries := Compute(transactions, started)

	var writeErr error
	for attempt := 0; attempt <= r.cfg.Rollup.MaxRetries; attempt++ {
		if attempt > 0 {
			r.logger.Infof("Retrying rollup write, attempt %d of %d", attempt, r.cfg.Rollup.MaxRetries)
			time.Sleep(time.Duration(r.cfg.Rollup.RetryDelay) * time.Second)
		}

		writeErr = r.gdb.Transaction(func(tx *gorm.DB) error {
			if err := database.ReplaceSummaries(tx, summaries); err != nil {
				return fmt.Errorf("failed to replace summary snapshot: %w", err)
			}
			return nil
		})

		if writeErr == nil {
			r.logger.WithFields(logrus.Fields{
				"transactions": len(transactions),
				"summaries":    len(summaries),
				"duration":     r.now().Sub(started).String(),
			}).Info("Successfully recomputed aggregate summaries")
			return nil
		}

		r.logger.Errorf("Rollup write failed: %v", writeErr)
	}

	return fmt.Errorf("failed to write rollup after %d attempts: %w", r.cfg.Rollup.MaxRetries, writeErr)
}

package rollup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"homeval/server/config"
	"homeval/server/internal/models"
)

type stubSource struct {
	transactions []models.ComparableTransaction
	err          error
	block        chan struct{}
}

func (s *stubSource) ScanClosed(_ context.Context) ([]models.ComparableTransaction, error) {
	if s.block != nil {
		<-s.block
	}
	return s.transactions, s.err
}

func testGorm(t *testing.T) *gorm.DB {
	t.Helper()
	// Named shared-cache memory database so every pooled connection sees the
	// same data within one test.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.AggregateSummary{}))
	return gdb
}

func runnerConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Rollup.MaxRetries = 1
	cfg.Rollup.RetryDelay = 0
	return cfg
}

func TestTryRun_WritesSnapshot(t *testing.T) {
	gdb := testGorm(t)
	source := &stubSource{transactions: []models.ComparableTransaction{
		closed("s1", models.DirectionSale, 500000, 1000, 30),
		closed("s2", models.DirectionSale, 700000, 1000, 10),
	}}

	r := NewRunner(gdb, source, runnerConfig(), logrus.New())
	require.NoError(t, r.TryRun(context.Background()))

	var count int64
	require.NoError(t, gdb.Model(&models.AggregateSummary{}).Count(&count).Error)
	assert.Equal(t, int64(6), count)
}

func TestTryRun_ReplacesPreviousSnapshot(t *testing.T) {
	gdb := testGorm(t)
	source := &stubSource{transactions: []models.ComparableTransaction{
		closed("s1", models.DirectionSale, 500000, 1000, 30),
	}}

	r := NewRunner(gdb, source, runnerConfig(), logrus.New())
	require.NoError(t, r.TryRun(context.Background()))
	require.NoError(t, r.TryRun(context.Background()))

	// Reruns converge instead of accumulating.
	var count int64
	require.NoError(t, gdb.Model(&models.AggregateSummary{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestTryRun_SerializesConcurrentRuns(t *testing.T) {
	gdb := testGorm(t)
	source := &stubSource{block: make(chan struct{})}

	r := NewRunner(gdb, source, runnerConfig(), logrus.New())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = r.TryRun(context.Background())
	}()

	// Wait for the first run to take the slot.
	assert.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.running
	}, time.Second, 5*time.Millisecond)

	err := r.TryRun(context.Background())
	assert.ErrorIs(t, err, ErrRollupInProgress)

	close(source.block)
	wg.Wait()

	// The slot frees up once the run finishes.
	require.NoError(t, r.TryRun(context.Background()))
}

func TestTryRun_SourceFaultPropagates(t *testing.T) {
	gdb := testGorm(t)
	source := &stubSource{err: errors.New("store unreachable")}

	r := NewRunner(gdb, source, runnerConfig(), logrus.New())
	err := r.TryRun(context.Background())

	require.Error(t, err)
	assert.ErrorContains(t, err, "store unreachable")
}

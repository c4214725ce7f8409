package tenant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeval/server/internal/models"
)

type countingStore struct {
	settings models.TenantSettings
	err      error
	calls    int
}

func (s *countingStore) GetSettings(_ context.Context, tenantID string) (models.TenantSettings, error) {
	s.calls++
	if s.err != nil {
		return models.TenantSettings{}, s.err
	}
	return s.settings, nil
}

func TestCachedStore_CachesWithinTTL(t *testing.T) {
	inner := &countingStore{settings: models.DefaultTenantSettings("t1")}
	store := NewCachedStore(inner, time.Minute)

	for i := 0; i < 5; i++ {
		settings, err := store.GetSettings(context.Background(), "t1")
		require.NoError(t, err)
		assert.Equal(t, "t1", settings.TenantID)
	}

	assert.Equal(t, 1, inner.calls)
}

func TestCachedStore_ExpiresAfterTTL(t *testing.T) {
	inner := &countingStore{settings: models.DefaultTenantSettings("t1")}
	store := NewCachedStore(inner, time.Minute)

	now := time.Now()
	store.now = func() time.Time { return now }

	_, err := store.GetSettings(context.Background(), "t1")
	require.NoError(t, err)

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = store.GetSettings(context.Background(), "t1")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedStore_SeparateTenants(t *testing.T) {
	inner := &countingStore{settings: models.DefaultTenantSettings("t1")}
	store := NewCachedStore(inner, time.Minute)

	_, err := store.GetSettings(context.Background(), "t1")
	require.NoError(t, err)
	_, err = store.GetSettings(context.Background(), "t2")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedStore_DoesNotCacheFailures(t *testing.T) {
	inner := &countingStore{err: errors.New("store down")}
	store := NewCachedStore(inner, time.Minute)

	_, err := store.GetSettings(context.Background(), "t1")
	require.Error(t, err)
	_, err = store.GetSettings(context.Background(), "t1")
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestDefaultTenantSettings(t *testing.T) {
	s := models.DefaultTenantSettings("t1")

	assert.Equal(t, "t1", s.TenantID)
	assert.Equal(t, int64(45000), s.SaleParkingValue)
	assert.Equal(t, int64(6000), s.SaleLockerValue)
	assert.Equal(t, int64(150), s.LeaseParkingValue)
	assert.Equal(t, int64(25), s.LeaseLockerValue)
	assert.False(t, s.InsightEnabled)

	assert.Equal(t, int64(45000), s.ParkingValue(models.DirectionSale))
	assert.Equal(t, int64(150), s.ParkingValue(models.DirectionLease))
	assert.Equal(t, int64(6000), s.LockerValue(models.DirectionSale))
	assert.Equal(t, int64(25), s.LockerValue(models.DirectionLease))
}

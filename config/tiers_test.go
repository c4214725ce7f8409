package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeval/server/internal/models"
)

func tiersConfig() *Config {
	cfg := &Config{}
	cfg.Matching.CommunityMinSamples = 5
	cfg.Matching.MunicipalityMinSamples = 8
	cfg.Matching.RegionMinSamples = 12
	cfg.Stats.CommunitySpreadPct = 5
	cfg.Stats.MunicipalitySpreadPct = 8
	cfg.Stats.RegionSpreadPct = 12
	return cfg
}

func TestTiers_OrderedNarrowestFirst(t *testing.T) {
	tiers := tiersConfig().Tiers(models.CategoryCondo)

	require.Len(t, tiers, 3)
	assert.Equal(t, models.GeoCommunity, tiers[0].Level)
	assert.Equal(t, models.GeoMunicipality, tiers[1].Level)
	assert.Equal(t, models.GeoRegion, tiers[2].Level)
}

func TestTiers_CondoStartsAtBuilding(t *testing.T) {
	tiers := tiersConfig().Tiers(models.CategoryCondo)
	assert.Equal(t, "building", tiers[0].Name)
}

func TestTiers_HomeStartsAtCommunity(t *testing.T) {
	tiers := tiersConfig().Tiers(models.CategoryHome)
	assert.Equal(t, "community", tiers[0].Name)
}

func TestTiers_CarryConfiguredThresholds(t *testing.T) {
	tiers := tiersConfig().Tiers(models.CategoryCondo)

	assert.Equal(t, 5, tiers[0].MinSamples)
	assert.Equal(t, 8, tiers[1].MinSamples)
	assert.Equal(t, 12, tiers[2].MinSamples)
	assert.Equal(t, 5.0, tiers[0].SpreadPct)
	assert.Equal(t, 12.0, tiers[2].SpreadPct)
}

package config

import "homeval/server/internal/models"

// Tiers returns the ordered widening search sequence for a property family,
// narrowest geography first. Condos start at the exact building; home-type
// properties start at the surrounding community instead, since single-family
// homes rarely repeat at a single address. Both use the same identifier slot.
func (c *Config) Tiers(category models.Category) []models.Tier {
	narrowest := "building"
	if category == models.CategoryHome {
		narrowest = "community"
	}

	return []models.Tier{
		{
			Level:      models.GeoCommunity,
			Name:       narrowest,
			MinSamples: c.Matching.CommunityMinSamples,
			SpreadPct:  c.Stats.CommunitySpreadPct,
		},
		{
			Level:      models.GeoMunicipality,
			Name:       "municipality",
			MinSamples: c.Matching.MunicipalityMinSamples,
			SpreadPct:  c.Stats.MunicipalitySpreadPct,
		},
		{
			Level:      models.GeoRegion,
			Name:       "region",
			MinSamples: c.Matching.RegionMinSamples,
			SpreadPct:  c.Stats.RegionSpreadPct,
		},
	}
}

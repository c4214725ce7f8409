package config

import (
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	// Server configuration
	Server struct {
		Port   string `env:"SERVER_PORT" envDefault:"5250"`
		DBPath string `env:"DB_PATH" envDefault:"database/homeval.db"`
	}

	// Matching configuration for the tiered comparable search
	Matching struct {
		// Transactions older than this horizon are dropped entirely
		LookbackMonths int `env:"MATCH_LOOKBACK_MONTHS" envDefault:"12"`

		// Maximum number of comparables selected at the chosen tier
		MaxComparables int `env:"MATCH_MAX_COMPARABLES" envDefault:"12"`

		// Minimum qualifying samples before a tier is accepted
		CommunityMinSamples    int `env:"MATCH_COMMUNITY_MIN_SAMPLES" envDefault:"5"`
		MunicipalityMinSamples int `env:"MATCH_MUNICIPALITY_MIN_SAMPLES" envDefault:"8"`
		RegionMinSamples       int `env:"MATCH_REGION_MIN_SAMPLES" envDefault:"12"`

		// Similarity score weights; lower total score means more similar
		BedroomWeight  float64 `env:"MATCH_BEDROOM_WEIGHT" envDefault:"1.0"`
		BathroomWeight float64 `env:"MATCH_BATHROOM_WEIGHT" envDefault:"0.5"`
		AreaWeight     float64 `env:"MATCH_AREA_WEIGHT" envDefault:"0.01"`
		RecencyWeight  float64 `env:"MATCH_RECENCY_WEIGHT" envDefault:"0.1"`
		TaxWeight      float64 `env:"MATCH_TAX_WEIGHT" envDefault:"0.0002"`
		LotWeight      float64 `env:"MATCH_LOT_WEIGHT" envDefault:"0.02"`

		// Factor applied to the lot weight for lease subjects, since tenants
		// value the structure more than the land
		LeaseLotFactor float64 `env:"MATCH_LEASE_LOT_FACTOR" envDefault:"0.25"`
	}

	// Stats configuration for the estimate calculation
	Stats struct {
		// Spread around the central value per tier, in percent
		CommunitySpreadPct    float64 `env:"STATS_COMMUNITY_SPREAD_PCT" envDefault:"5"`
		MunicipalitySpreadPct float64 `env:"STATS_MUNICIPALITY_SPREAD_PCT" envDefault:"8"`
		RegionSpreadPct       float64 `env:"STATS_REGION_SPREAD_PCT" envDefault:"12"`

		// Extra spread added when the tier's minimum sample was not met
		SmallSampleWidenPct float64 `env:"STATS_SMALL_SAMPLE_WIDEN_PCT" envDefault:"4"`

		// Absolute floor below which a low-confidence price is not shown
		MinDisplaySamples int `env:"STATS_MIN_DISPLAY_SAMPLES" envDefault:"3"`
	}

	// Insight configuration for narrative generation
	Insight struct {
		Endpoint       string        `env:"INSIGHT_ENDPOINT" envDefault:"https://api.openai.com/v1/chat/completions"`
		Model          string        `env:"INSIGHT_MODEL" envDefault:"gpt-4o-mini"`
		Timeout        time.Duration `env:"INSIGHT_TIMEOUT" envDefault:"8s"`
		MaxComparables int           `env:"INSIGHT_MAX_COMPARABLES" envDefault:"5"`
	}

	// Rollup configuration for the aggregate summary job
	Rollup struct {
		Interval   time.Duration `env:"ROLLUP_INTERVAL" envDefault:"24h"`
		RunOnStart bool          `env:"ROLLUP_RUN_ON_START" envDefault:"true"`
		MaxRetries int           `env:"ROLLUP_MAX_RETRIES" envDefault:"3"`
		RetryDelay int           `env:"ROLLUP_RETRY_DELAY" envDefault:"5"`
	}

	// TenantCache configuration for per-request settings caching
	TenantCache struct {
		TTL time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

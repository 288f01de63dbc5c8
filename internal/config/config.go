package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Port          string
	DatabasePath  string // SQLite database file path
	Environment   string // "production" enables JSON logging
	DefaultUserID string // user assumed when requests carry no user_id

	// Device and classification configuration
	DeviceCeiling        float64 // raw band-power ceiling used for calibration normalization
	TrailWindow          int     // prior samples consulted by the fluctuation rule
	InstabilityThreshold float64 // band range vs mean ratio that counts as fluctuating

	// Session analysis configuration
	MinStressPeriodMinutes int
	MinFocusWindowMinutes  int
	MinActivityMinutes     int // shorter derived timeline segments are merged away

	// Insight configuration
	StressHighThreshold      int     // stress periods per day before a stress_high insight
	FocusLowRatio            float64 // today/baseline focus ratio below which focus_low fires
	MinBaselineDays          int     // days of history required before comparative insights
	BaselineLookbackDays     int
	PatternLookbackDays      int
	PatternStrengthThreshold float64

	// Optimal window configuration
	BucketMinutes        int
	MinBucketSamples     int
	WindowMergeThreshold float64
	TopWindows           int

	// Runtime configuration
	CacheTTLSeconds         int
	BaselineCloseCron       string // UTC cron for the daily close job
	ScenariosPath           string // optional YAML scenario overrides
	TransitionWindowSeconds int    // ramp length applied at synthetic segment boundaries

	// Synthetic signal quality
	InjectArtifacts   bool    // add spikes/dropouts/saturation to mock sessions
	ArtifactSpikeRate float64 // per-sample probabilities
	ArtifactDropRate  float64
	ArtifactSatRate   float64
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "3001"),
		DatabasePath:  getEnv("DATABASE_PATH", "neuroinsights.db"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		DefaultUserID: getEnv("DEFAULT_USER_ID", "5e2f0d4e-7a4b-4c4e-9f3a-1d2c3b4a5968"),

		DeviceCeiling:        getFloatEnv("DEVICE_CEILING", 100),
		TrailWindow:          getIntEnv("TRAIL_WINDOW", 3),
		InstabilityThreshold: getFloatEnv("INSTABILITY_THRESHOLD", 0.5),

		MinStressPeriodMinutes: getIntEnv("MIN_STRESS_PERIOD_MINUTES", 5),
		MinFocusWindowMinutes:  getIntEnv("MIN_FOCUS_WINDOW_MINUTES", 15),
		MinActivityMinutes:     getIntEnv("MIN_ACTIVITY_MINUTES", 5),

		StressHighThreshold:      getIntEnv("STRESS_HIGH_THRESHOLD", 2),
		FocusLowRatio:            getFloatEnv("FOCUS_LOW_RATIO", 0.8),
		MinBaselineDays:          getIntEnv("MIN_BASELINE_DAYS", 7),
		BaselineLookbackDays:     getIntEnv("BASELINE_LOOKBACK_DAYS", 30),
		PatternLookbackDays:      getIntEnv("PATTERN_LOOKBACK_DAYS", 7),
		PatternStrengthThreshold: getFloatEnv("PATTERN_STRENGTH_THRESHOLD", 0.15),

		BucketMinutes:        getIntEnv("BUCKET_MINUTES", 30),
		MinBucketSamples:     getIntEnv("MIN_BUCKET_SAMPLES", 10),
		WindowMergeThreshold: getFloatEnv("WINDOW_MERGE_THRESHOLD", 0.5),
		TopWindows:           getIntEnv("TOP_WINDOWS", 3),

		CacheTTLSeconds:         getIntEnv("CACHE_TTL_SECONDS", 300),
		BaselineCloseCron:       getEnv("BASELINE_CLOSE_CRON", "10 0 * * *"),
		ScenariosPath:           getEnv("SCENARIOS_PATH", ""),
		TransitionWindowSeconds: getIntEnv("TRANSITION_WINDOW_SECONDS", 30),

		InjectArtifacts:   getBoolEnv("INJECT_ARTIFACTS", false),
		ArtifactSpikeRate: getFloatEnv("ARTIFACT_SPIKE_RATE", 0.01),
		ArtifactDropRate:  getFloatEnv("ARTIFACT_DROP_RATE", 0.005),
		ArtifactSatRate:   getFloatEnv("ARTIFACT_SAT_RATE", 0.005),
	}
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// TransitionSamples converts the transition window into a sample count at the
// one-minute session cadence. A window shorter than one minute still ramps
// over a single sample.
func (c *Config) TransitionSamples() int {
	samples := (c.TransitionWindowSeconds + 59) / 60
	if samples < 1 {
		samples = 1
	}
	return samples
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

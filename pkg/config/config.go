package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Request   RequestConfig   `yaml:"request"`
	Log       LogConfig       `yaml:"log"`
	DB        DBConfig        `yaml:"db"`
	Elevation ElevationConfig `yaml:"elevation"`
	Grid      GridConfig      `yaml:"grid"`
	Viewshed  ViewshedConfig  `yaml:"viewshed"`
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Retries int           `yaml:"retries"`
	Timeout Duration      `yaml:"timeout"`
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// ElevationConfig selects and tunes the elevation service's network
// strategy.
type ElevationConfig struct {
	Strategy            string   `yaml:"strategy"` // "tile" or "provider"
	Concurrency         int      `yaml:"concurrency"`
	BatchSize           int      `yaml:"batch_size"`
	TileBaseURL         string   `yaml:"tile_base_url"`
	ProviderPrimaryURL  string   `yaml:"provider_primary_url"`
	ProviderFallbackURL string   `yaml:"provider_fallback_url"`
	CacheTTL            Duration `yaml:"cache_ttl"`
}

// GridConfig holds candidate-lattice generation settings.
type GridConfig struct {
	SpacingM      Distance `yaml:"spacing"`
	DefaultRadius Distance `yaml:"default_radius"`
}

// ViewshedConfig holds the ray-sweep tunables.
type ViewshedConfig struct {
	RaySampleSpacingM   Distance `yaml:"ray_sample_spacing"`
	RayMaxDistanceM     Distance `yaml:"ray_max_distance"`
	CurvatureThresholdM Distance `yaml:"curvature_threshold"`
	HorizonMarginDeg    float64  `yaml:"horizon_margin_deg"`
	WorkerPoolSize      int      `yaml:"worker_pool_size"` // 0 uses runtime.NumCPU()
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(30 * time.Second),
			Backoff: BackoffConfig{
				BaseDelay: Duration(1 * time.Second),
				MaxDelay:  Duration(30 * time.Second),
			},
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/sunviewfinder.db",
		},
		Elevation: ElevationConfig{
			Strategy:            "tile",
			Concurrency:         2,
			BatchSize:           200,
			TileBaseURL:         "https://elevation-tiles-prod.s3.amazonaws.com/terrarium/{z}/{x}/{y}.png",
			ProviderPrimaryURL:  "https://api.open-elevation.com/api/v1/lookup",
			ProviderFallbackURL: "https://api.opentopodata.org/v1/aster30m",
			CacheTTL:            Duration(30 * 24 * time.Hour),
		},
		Grid: GridConfig{
			SpacingM:      Distance(350),
			DefaultRadius: Distance(10000),
		},
		Viewshed: ViewshedConfig{
			RaySampleSpacingM:   Distance(300),
			RayMaxDistanceM:     Distance(8000),
			CurvatureThresholdM: Distance(2000),
			HorizonMarginDeg:    0.5,
			WorkerPoolSize:      0,
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	// Read existing file if it exists
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		return cfg, nil
	}

	// If file does not exist, save defaults
	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# sunviewfinder configuration
# ---------------------
# Supported units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers), nm (nautical miles)

`)
	data = append(header, data...)

	// Inject a comment for the one enum-valued field.
	reStrategy := regexp.MustCompile(`(?m)^(\s+)strategy:`)
	data = reStrategy.ReplaceAll(data, []byte("${1}# Options: tile, provider\n${1}strategy:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return nil // File exists, do nothing
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write default config
	return Save(path, DefaultConfig())
}

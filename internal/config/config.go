package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
)

// Config holds everything tunable about the service. Values come from an
// optional YAML file, with environment variables taking precedence so
// deployments can override without editing the file.
type Config struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AdminTokenHash is a bcrypt hash of the admin bearer token.
	AdminTokenHash string `yaml:"admin_token_hash"`

	// LocationsFile seeds the working set when the database is empty.
	LocationsFile string `yaml:"locations_file"`

	// ApprovedURLHost is the only host allowed in a record's rivianUrl.
	ApprovedURLHost string `yaml:"approved_url_host"`

	SearchDebounceMs     int `yaml:"search_debounce_ms"`
	ComingSoonWindowDays int `yaml:"coming_soon_window_days"`

	Mapbox MapboxConfig `yaml:"mapbox"`
}

// MapboxConfig configures the forward-geocoding client.
type MapboxConfig struct {
	Token             string  `yaml:"token"`
	Endpoint          string  `yaml:"endpoint"`
	Countries         string  `yaml:"countries"`
	Types             string  `yaml:"types"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Load reads the YAML config at path (missing file is fine) and applies
// environment overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("ADMIN_TOKEN_HASH"); v != "" {
		cfg.AdminTokenHash = v
	}
	if v := os.Getenv("LOCATIONS_FILE"); v != "" {
		cfg.LocationsFile = v
	}
	if v := os.Getenv("MAPBOX_TOKEN"); v != "" {
		cfg.Mapbox.Token = v
	}
	if v := os.Getenv("SEARCH_DEBOUNCE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.SearchDebounceMs = ms
		}
	}

	if cfg.Port == "" {
		cfg.Port = "5050"
	}
	if cfg.ApprovedURLHost == "" {
		cfg.ApprovedURLHost = "rivian.com"
	}
	if cfg.SearchDebounceMs == 0 {
		cfg.SearchDebounceMs = 400
	}
	if cfg.ComingSoonWindowDays == 0 {
		cfg.ComingSoonWindowDays = 90
	}
	if cfg.Mapbox.Endpoint == "" {
		cfg.Mapbox.Endpoint = "https://api.mapbox.com/geocoding/v5/mapbox.places"
	}
	if cfg.Mapbox.Countries == "" {
		cfg.Mapbox.Countries = "us,ca"
	}
	if cfg.Mapbox.Types == "" {
		cfg.Mapbox.Types = "postcode,place,address,locality"
	}
	if cfg.Mapbox.RequestsPerSecond == 0 {
		cfg.Mapbox.RequestsPerSecond = 5
	}

	return cfg, nil
}

package config

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/samirrijal/detourmap/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Route     RouteConfig     `mapstructure:"route"`
	Map       MapConfig       `mapstructure:"map"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// BackendConfig points at the route planner.
type BackendConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

func (b BackendConfig) TimeoutDuration() time.Duration {
	return time.Duration(b.Timeout) * time.Second
}

// RouteConfig holds the fixed endpoints of the session route.
type RouteConfig struct {
	StartLon float64 `mapstructure:"start_lon"`
	StartLat float64 `mapstructure:"start_lat"`
	EndLon   float64 `mapstructure:"end_lon"`
	EndLat   float64 `mapstructure:"end_lat"`
}

func (r RouteConfig) Start() domain.Coordinate {
	return domain.Coordinate{Lon: r.StartLon, Lat: r.StartLat}
}

func (r RouteConfig) End() domain.Coordinate {
	return domain.Coordinate{Lon: r.EndLon, Lat: r.EndLat}
}

type MapConfig struct {
	Zoom    int    `mapstructure:"zoom"`
	TileURL string `mapstructure:"tile_url"`
}

// NATSConfig enables broker fan-out of map events when URL is set.
type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

func (n NATSConfig) Enabled() bool {
	return n.URL != ""
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.timeout", 10)
	v.SetDefault("route.start_lon", 67.131119)
	v.SetDefault("route.start_lat", 24.921264)
	v.SetDefault("route.end_lon", 67.0629)
	v.SetDefault("route.end_lat", 24.8413)
	v.SetDefault("map.zoom", 13)
	v.SetDefault("map.tile_url", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject", "detourmap.layers")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: DETOURMAP_BACKEND_BASE_URL → backend.base_url
	v.SetEnvPrefix("DETOURMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("backend.base_url must be an absolute URL, got %q", c.Backend.BaseURL))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, "backend.timeout must be positive")
	}
	if !validLonLat(c.Route.StartLon, c.Route.StartLat) {
		errs = append(errs, fmt.Sprintf("route start (%v, %v) is not a valid lon/lat", c.Route.StartLon, c.Route.StartLat))
	}
	if !validLonLat(c.Route.EndLon, c.Route.EndLat) {
		errs = append(errs, fmt.Sprintf("route end (%v, %v) is not a valid lon/lat", c.Route.EndLon, c.Route.EndLat))
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 22 {
		errs = append(errs, fmt.Sprintf("map.zoom must be 0-22, got %d", c.Map.Zoom))
	}
	if c.Map.TileURL == "" {
		errs = append(errs, "map.tile_url is required")
	}
	if c.NATS.Enabled() && c.NATS.Subject == "" {
		errs = append(errs, "nats.subject is required when nats.url is set")
	}
	if c.Telemetry.Enabled && c.Telemetry.OTLPAddr == "" {
		errs = append(errs, "telemetry.otlp_addr is required when telemetry is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validLonLat(lon, lat float64) bool {
	c := domain.Coordinate{Lon: lon, Lat: lat}
	return c.Valid() && math.Abs(lon) <= 180 && math.Abs(lat) <= 90
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oggyb/muzz-matcher/internal/scoring"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		Driver     string
		DSN        string
		Host       string
		Port       string
		User       string
		Password   string
		Name       string
		SQLitePath string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	GRPC struct {
		Host string
		Port string
	}

	HTTP struct {
		Host           string
		Port           string
		AllowedOrigins []string
	}

	Discovery struct {
		DefaultLimit    int
		MaxLimit        int
		GeoTimeout      time.Duration
		DefaultRadiusKm float64
		FallbackPool    int
	}

	Matching struct {
		Weights scoring.Weights
	}

	Notify struct {
		Channel string
		Timeout time.Duration
	}
}

// overlay is the subset of Config that can be tuned from a YAML file.
type overlay struct {
	Discovery *struct {
		DefaultLimit    int     `yaml:"default_limit"`
		MaxLimit        int     `yaml:"max_limit"`
		GeoTimeout      string  `yaml:"geo_timeout"`
		DefaultRadiusKm float64 `yaml:"default_radius_km"`
		FallbackPool    int     `yaml:"fallback_pool"`
	} `yaml:"discovery"`
	Matching *struct {
		Weights *scoring.Weights `yaml:"weights"`
	} `yaml:"matching"`
}

func New() *Config {
	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "development")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "matcher")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", "mysql"))
	cfg.DB.SQLitePath = getEnvDefault("SQLITE_PATH", "muzz.db")
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "muzz")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// HTTP gateway
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "127.0.0.1")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "8080")
	cfg.HTTP.AllowedOrigins = splitList(getEnvDefault("HTTP_ALLOWED_ORIGINS", "*"))

	// Discovery
	cfg.Discovery.DefaultLimit = getEnvInt("DISCOVERY_DEFAULT_LIMIT", 10)
	cfg.Discovery.MaxLimit = getEnvInt("DISCOVERY_MAX_LIMIT", 50)
	cfg.Discovery.GeoTimeout = getEnvDuration("DISCOVERY_GEO_TIMEOUT", 250*time.Millisecond)
	cfg.Discovery.DefaultRadiusKm = getEnvFloat("DISCOVERY_DEFAULT_RADIUS_KM", 50)
	cfg.Discovery.FallbackPool = getEnvInt("DISCOVERY_FALLBACK_POOL", 150)

	cfg.Matching.Weights = scoring.DefaultWeights()

	// Notifications
	cfg.Notify.Channel = getEnvDefault("NOTIFY_CHANNEL", "matches:created")
	cfg.Notify.Timeout = getEnvDuration("NOTIFY_TIMEOUT", 2*time.Second)

	return cfg
}

// Load builds the env-based config and applies the optional YAML overlay
// pointed to by MATCHING_CONFIG.
func Load() (*Config, error) {
	cfg := New()
	if path := strings.TrimSpace(os.Getenv("MATCHING_CONFIG")); path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyFile overlays discovery tuning and scorer weights from a YAML file.
// Fields absent from the file keep their current values.
func (c *Config) ApplyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read matching config %s: %w", path, err)
	}
	return c.ApplyYAML(raw)
}

// ApplyYAML is ApplyFile for an in-memory document.
func (c *Config) ApplyYAML(raw []byte) error {
	var o overlay
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return fmt.Errorf("parse matching config: %w", err)
	}

	if d := o.Discovery; d != nil {
		if d.DefaultLimit > 0 {
			c.Discovery.DefaultLimit = d.DefaultLimit
		}
		if d.MaxLimit > 0 {
			c.Discovery.MaxLimit = d.MaxLimit
		}
		if d.GeoTimeout != "" {
			timeout, err := time.ParseDuration(d.GeoTimeout)
			if err != nil {
				return fmt.Errorf("parse discovery.geo_timeout: %w", err)
			}
			c.Discovery.GeoTimeout = timeout
		}
		if d.DefaultRadiusKm > 0 {
			c.Discovery.DefaultRadiusKm = d.DefaultRadiusKm
		}
		if d.FallbackPool > 0 {
			c.Discovery.FallbackPool = d.FallbackPool
		}
	}

	if o.Matching != nil && o.Matching.Weights != nil {
		c.Matching.Weights = *o.Matching.Weights
	}
	return nil
}

// Validate reports configuration that would make the engine misbehave.
func (c *Config) Validate() error {
	if _, err := scoring.NewScorer(c.Matching.Weights); err != nil {
		return fmt.Errorf("matching config: %w", err)
	}
	if c.Discovery.DefaultLimit <= 0 || c.Discovery.MaxLimit < c.Discovery.DefaultLimit {
		return fmt.Errorf("discovery limits are inconsistent: default=%d max=%d",
			c.Discovery.DefaultLimit, c.Discovery.MaxLimit)
	}
	if c.Discovery.GeoTimeout <= 0 {
		return fmt.Errorf("discovery geo timeout must be positive")
	}
	switch c.DB.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	return nil
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v, err := strconv.Atoi(getEnvDefault(k, "")); err == nil {
		return v
	}
	return def
}

func getEnvFloat(k string, def float64) float64 {
	if v, err := strconv.ParseFloat(getEnvDefault(k, ""), 64); err == nil {
		return v
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnvDefault(k, "")); err == nil {
		return v
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

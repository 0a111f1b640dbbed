// Package config loads the portfolio server configuration from YAML with
// PORTFOLIO_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverLocal  = "local"
	DriverMinIO  = "minio"
	DriverS3     = "s3"
	DriverMemory = "memory"
)

// Config holds the whole server configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Storage       StorageConfig       `yaml:"storage"`
	Auth          AuthConfig          `yaml:"auth"`
	Search        SearchConfig        `yaml:"search"`
	PrivateAccess PrivateAccessConfig `yaml:"private_access"`
	Log           LogConfig           `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	MaxConnections  int           `yaml:"max_connections"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RateLimit is the per-client rate, in requests per second, of the
	// public tracking endpoints.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`

	// TrustProxy reads client addresses from X-Forwarded-For. Leave off
	// unless a reverse proxy rewrites that header.
	TrustProxy bool `yaml:"trust_proxy"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// StorageConfig selects and configures the media store.
type StorageConfig struct {
	Driver        string      `yaml:"driver"`
	Bucket        string      `yaml:"bucket"`
	Prefix        string      `yaml:"prefix"`
	PublicBaseURL string      `yaml:"public_base_url"`
	Local         LocalConfig `yaml:"local"`
	MinIO         MinIOConfig `yaml:"minio"`
	S3            S3Config    `yaml:"s3"`
}

// LocalConfig configures the filesystem media store.
type LocalConfig struct {
	Dir string `yaml:"dir"`
}

// MinIOConfig configures a MinIO or S3-compatible endpoint.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
	Region    string `yaml:"region"`
}

// S3Config configures AWS S3.
type S3Config struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// AuthConfig configures admin sessions.
type AuthConfig struct {
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// SearchConfig tunes gallery search.
type SearchConfig struct {
	ItemThreshold float64 `yaml:"item_threshold"`
	TagThreshold  float64 `yaml:"tag_threshold"`
	PopularLimit  int     `yaml:"popular_limit"`
}

// PrivateAccessConfig gates the private form. An empty password disables it.
type PrivateAccessConfig struct {
	Password string `yaml:"password"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			MaxConnections:  1024,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			RateLimit:       2,
			RateBurst:       10,
		},
		Database: DatabaseConfig{Path: "portfolio.db"},
		Storage: StorageConfig{
			Driver:        DriverLocal,
			Bucket:        "portfolio",
			PublicBaseURL: "/media",
			Local:         LocalConfig{Dir: "media"},
			MinIO:         MinIOConfig{Region: "us-east-1"},
			S3:            S3Config{Region: "us-east-1"},
		},
		Auth: AuthConfig{SessionTTL: 24 * time.Hour},
		Search: SearchConfig{
			ItemThreshold: 0.4,
			TagThreshold:  0.6,
			PopularLimit:  12,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from PORTFOLIO_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"PORTFOLIO_ADDR":             &c.Server.Addr,
		"PORTFOLIO_DB":               &c.Database.Path,
		"PORTFOLIO_STORAGE_DRIVER":   &c.Storage.Driver,
		"PORTFOLIO_STORAGE_BUCKET":   &c.Storage.Bucket,
		"PORTFOLIO_PUBLIC_BASE_URL":  &c.Storage.PublicBaseURL,
		"PORTFOLIO_MEDIA_DIR":        &c.Storage.Local.Dir,
		"PORTFOLIO_MINIO_ENDPOINT":   &c.Storage.MinIO.Endpoint,
		"PORTFOLIO_MINIO_ACCESS_KEY": &c.Storage.MinIO.AccessKey,
		"PORTFOLIO_MINIO_SECRET_KEY": &c.Storage.MinIO.SecretKey,
		"PORTFOLIO_S3_REGION":        &c.Storage.S3.Region,
		"PORTFOLIO_S3_ENDPOINT":      &c.Storage.S3.Endpoint,
		"PORTFOLIO_PRIVATE_PASSWORD": &c.PrivateAccess.Password,
		"PORTFOLIO_LOG_LEVEL":        &c.Log.Level,
		"PORTFOLIO_LOG_FORMAT":       &c.Log.Format,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"PORTFOLIO_MINIO_SECURE":  &c.Storage.MinIO.Secure,
		"PORTFOLIO_S3_PATH_STYLE": &c.Storage.S3.PathStyle,
		"PORTFOLIO_TRUST_PROXY":   &c.Server.TrustProxy,
	}
	for key, dst := range bools {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = b
	}
	return nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case DriverLocal, DriverMinIO, DriverS3, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.Storage.Driver == DriverMinIO && c.Storage.MinIO.Endpoint == "" {
		errs = append(errs, errors.New("storage.minio.endpoint is required"))
	}
	if (c.Storage.Driver == DriverMinIO || c.Storage.Driver == DriverS3) && c.Storage.Bucket == "" {
		errs = append(errs, errors.New("storage.bucket is required"))
	}

	for name, v := range map[string]float64{
		"search.item_threshold": c.Search.ItemThreshold,
		"search.tag_threshold":  c.Search.TagThreshold,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", name, v))
		}
	}
	if c.Search.PopularLimit < 0 {
		errs = append(errs, errors.New("search.popular_limit must not be negative"))
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		errs = append(errs, errors.New("server rate limit must not be negative"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("auth.session_ttl must be positive"))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

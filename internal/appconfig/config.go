// Package appconfig loads civictrackd's configuration from environment
// variables (with an optional civictrack.yaml overlay for local dev),
// the way the teacher's internal/config package splits boot-time keys
// from the rest of its settings. Unlike the teacher (which persists
// config into SQLite), every key here is either an env var or the
// overlay file — there is no settings table, since config here is
// deploy-time, not a per-repository user preference.
package appconfig

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the fully resolved set of environment-driven settings.
type Config struct {
	// HTTP / CORS
	HTTPAddr     string
	CORSOrigins  []string
	LogFormat    string // "json" or "text"
	LogLevel     string

	// Database
	DatabaseDSN     string
	DatabaseMaxConn int32

	// Auth (this service only consumes JWTs minted by the external
	// auth collaborator; see internal/auth)
	JWTSigningKey string
	JWTIssuer     string

	// Storage client (S3/MinIO compatible)
	StorageEndpoint  string
	StorageRegion    string
	StorageBucket    string
	StorageAccessKey string
	StorageSecretKey string
	StorageUseSSL    bool

	// Notifier (best-effort SMS/email)
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	SMTPAddr         string
	SMTPFrom         string

	// Routing
	FallbackTeamName string

	// Nearby search bounds (spec.md §4.F)
	NearbyDefaultRadiusM float64
	NearbyMaxRadiusM     float64
	NearbyMinRadiusM     float64

	// AnalyticsTimeout bounds long-running aggregate queries (spec.md §5).
	AnalyticsTimeout time.Duration

	// Telemetry. OTLPEndpoint empty means metrics are printed to stdout
	// instead of shipped to a collector — the same dev/prod split
	// LogFormat uses.
	OTLPEndpoint string
	ServiceName  string
}

// reloadableKeys lists the keys that are safe to change without a
// restart, mirroring the teacher's YamlOnlyKeys split between boot-time
// and live settings. Load does not consult it: its onReload callback
// receives the whole reloaded Config on any change of the overlay file.
var reloadableKeys = map[string]bool{
	"log_level":    true,
	"cors_origins": true,
}

// Load reads configuration from the environment (prefix CIVICTRACK_) and,
// if present, a YAML overlay file named civictrack.yaml in "." or
// /etc/civictrack; no .env file is read. onReload, if non-nil, is invoked
// with a freshly loaded Config whenever the overlay file changes on disk,
// whichever keys changed.
func Load(onReload func(*Config)) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CIVICTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("civictrack")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/civictrack")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("read config overlay: %w", err)
		}
	}

	cfg := fromViper(v)

	if onReload != nil {
		v.OnConfigChange(func(fsnotify.Event) {
			onReload(fromViper(v))
		})
		v.WatchConfig()
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("log_format", "json")
	v.SetDefault("log_level", "info")
	v.SetDefault("database_max_conn", 10)
	v.SetDefault("jwt_issuer", "civictrack-auth")
	v.SetDefault("storage_region", "us-east-1")
	v.SetDefault("storage_use_ssl", true)
	v.SetDefault("fallback_team_name", "")
	v.SetDefault("nearby_default_radius_m", 500.0)
	v.SetDefault("nearby_max_radius_m", 5000.0)
	v.SetDefault("nearby_min_radius_m", 100.0)
	v.SetDefault("analytics_timeout_seconds", 30)
	v.SetDefault("service_name", "civictrackd")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		HTTPAddr:             v.GetString("http_addr"),
		CORSOrigins:          v.GetStringSlice("cors_origins"),
		LogFormat:            v.GetString("log_format"),
		LogLevel:             v.GetString("log_level"),
		DatabaseDSN:          v.GetString("database_dsn"),
		DatabaseMaxConn:      int32(v.GetInt("database_max_conn")),
		JWTSigningKey:        v.GetString("jwt_signing_key"),
		JWTIssuer:            v.GetString("jwt_issuer"),
		StorageEndpoint:      v.GetString("storage_endpoint"),
		StorageRegion:        v.GetString("storage_region"),
		StorageBucket:        v.GetString("storage_bucket"),
		StorageAccessKey:     v.GetString("storage_access_key"),
		StorageSecretKey:     v.GetString("storage_secret_key"),
		StorageUseSSL:        v.GetBool("storage_use_ssl"),
		TwilioAccountSID:     v.GetString("twilio_account_sid"),
		TwilioAuthToken:      v.GetString("twilio_auth_token"),
		TwilioFromNumber:     v.GetString("twilio_from_number"),
		SMTPAddr:             v.GetString("smtp_addr"),
		SMTPFrom:             v.GetString("smtp_from"),
		FallbackTeamName:     v.GetString("fallback_team_name"),
		NearbyDefaultRadiusM: v.GetFloat64("nearby_default_radius_m"),
		NearbyMaxRadiusM:     v.GetFloat64("nearby_max_radius_m"),
		NearbyMinRadiusM:     v.GetFloat64("nearby_min_radius_m"),
		AnalyticsTimeout:     time.Duration(v.GetInt("analytics_timeout_seconds")) * time.Second,
		OTLPEndpoint:         v.GetString("otlp_endpoint"),
		ServiceName:          v.GetString("service_name"),
	}
}

// NewLogger builds the process-wide slog.Logger per LogFormat/LogLevel.
func NewLogger(cfg *Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.LogFormat) == "text" {
		handler = slog.NewTextHandler(stdout(), opts)
	} else {
		handler = slog.NewJSONHandler(stdout(), opts)
	}
	return slog.New(handler)
}

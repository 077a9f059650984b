package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const devJWTSecret = "mayday-development-secret"

type DatabaseConfig struct {
	URL        string `yaml:"url,omitempty"`
	SQLitePath string `yaml:"sqlitePath,omitempty"`
	LogQueries bool   `yaml:"logQueries,omitempty"`
	MaxRetries int    `yaml:"maxRetries" validate:"min=1,max=60"`
}

type RedisConfig struct {
	Host     string `yaml:"host,omitempty"`
	Port     string `yaml:"port,omitempty"`
	Password string `yaml:"password,omitempty"`
}

type MQTTConfig struct {
	Broker      string `yaml:"broker,omitempty" validate:"omitempty,url"`
	ClientID    string `yaml:"clientID,omitempty"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topicPrefix" validate:"required_with=Broker"`
}

type GeocodingConfig struct {
	Enabled   bool          `yaml:"enabled"`
	BaseURL   string        `yaml:"baseURL" validate:"required_if=Enabled true,omitempty,url"`
	UserAgent string        `yaml:"userAgent" validate:"required_if=Enabled true"`
	Timeout   time.Duration `yaml:"timeout" validate:"min=0"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" validate:"gt=0"`
	Burst int     `yaml:"burst" validate:"min=1"`
}

// Config represents the application configuration
type Config struct {
	AppEnv            string          `yaml:"appEnv" validate:"oneof=development production test"`
	Port              int             `yaml:"port" validate:"min=1,max=65535"`
	JWTSecret         string          `yaml:"jwtSecret" validate:"required,min=16"`
	TokenTTL          time.Duration   `yaml:"tokenTTL" validate:"min=1m"`
	CORSOrigins       []string        `yaml:"corsOrigins" validate:"min=1"`
	ReconcileInterval time.Duration   `yaml:"reconcileInterval" validate:"min=0"`
	Database          DatabaseConfig  `yaml:"database"`
	Redis             RedisConfig     `yaml:"redis"`
	MQTT              MQTTConfig      `yaml:"mqtt"`
	Geocoding         GeocodingConfig `yaml:"geocoding"`
	RateLimit         RateLimitConfig `yaml:"rateLimit"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Defaults returns the configuration used when nothing else is provided.
func Defaults() *Config {
	return &Config{
		AppEnv:            "development",
		Port:              8080,
		TokenTTL:          24 * time.Hour,
		CORSOrigins:       []string{"https://*", "http://localhost:5173"},
		ReconcileInterval: 15 * time.Minute,
		Database: DatabaseConfig{
			SQLitePath: "mayday.db",
			MaxRetries: 10,
		},
		MQTT: MQTTConfig{
			TopicPrefix: "mayday",
		},
		Geocoding: GeocodingConfig{
			Enabled:   true,
			BaseURL:   "https://nominatim.openstreetmap.org",
			UserAgent: "mayday-coordinator/1.0",
			Timeout:   10 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RPS:   10,
			Burst: 20,
		},
	}
}

// Load reads .env (when present), the optional YAML file named by CONFIG_FILE,
// then applies environment overrides and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := mergeFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" && cfg.AppEnv != "production" {
		cfg.JWTSecret = devJWTSecret
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads and validates the configuration from a specific YAML file,
// without consulting the environment.
func LoadFromPath(path string) (*Config, error) {
	cfg := Defaults()
	if err := mergeFile(cfg, path); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// UsesPostgres reports whether a Postgres DSN is configured; otherwise SQLite is used.
func (c *Config) UsesPostgres() bool {
	return c.Database.URL != ""
}

func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

func (c *Config) RedisAddr() string {
	port := c.Redis.Port
	if port == "" {
		port = "6379"
	}
	return fmt.Sprintf("%s:%s", c.Redis.Host, port)
}

func (c *Config) MQTTEnabled() bool {
	return c.MQTT.Broker != ""
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.AppEnv, "APP_ENV")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Database.SQLitePath, "SQLITE_PATH")
	setString(&cfg.Redis.Host, "REDIS_HOST")
	setString(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.MQTT.Broker, "MQTT_BROKER")
	setString(&cfg.MQTT.ClientID, "MQTT_CLIENT_ID")
	setString(&cfg.MQTT.Username, "MQTT_USERNAME")
	setString(&cfg.MQTT.Password, "MQTT_PASSWORD")
	setString(&cfg.MQTT.TopicPrefix, "MQTT_TOPIC_PREFIX")
	setString(&cfg.Geocoding.BaseURL, "GEOCODER_BASE_URL")
	setString(&cfg.Geocoding.UserAgent, "GEOCODER_USER_AGENT")

	if cfg.Database.URL == "" && os.Getenv("PG_HOST") != "" {
		cfg.Database.URL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			os.Getenv("PG_USER"), os.Getenv("PG_PASSWORD"), os.Getenv("PG_HOST"),
			envOr("PG_PORT", "5432"), os.Getenv("PG_DB"))
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	var err error
	if cfg.Port, err = intEnv("PORT", cfg.Port); err != nil {
		return err
	}
	if cfg.RateLimit.Burst, err = intEnv("RATE_LIMIT_BURST", cfg.RateLimit.Burst); err != nil {
		return err
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if cfg.RateLimit.RPS, err = strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
		}
	}
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", cfg.TokenTTL); err != nil {
		return err
	}
	if cfg.ReconcileInterval, err = durationEnv("RECONCILE_INTERVAL", cfg.ReconcileInterval); err != nil {
		return err
	}
	if cfg.Geocoding.Enabled, err = boolEnv("GEOCODING_ENABLED", cfg.Geocoding.Enabled); err != nil {
		return err
	}
	if cfg.Database.LogQueries, err = boolEnv("DB_LOGGING_ENABLED", cfg.Database.LogQueries); err != nil {
		return err
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

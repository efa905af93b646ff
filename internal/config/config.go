// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type RelayConfig struct {
	Gateway       string        `yaml:"gateway"` // telegram | noop
	Token         string        `yaml:"token"`
	TokenSource   string        `yaml:"token_source"` // env | keyring
	ChatID        int64         `yaml:"chat_id"`
	APIEndpoint   string        `yaml:"api_endpoint"`
	Wait          time.Duration `yaml:"wait"`
	UpdatesLimit  int           `yaml:"updates_limit"`
	CacheIdentity *bool         `yaml:"cache_identity"`
	Serialize     string        `yaml:"serialize"` // none | local | redis
	LockWait      time.Duration `yaml:"lock_wait"`
	LockTTL       time.Duration `yaml:"lock_ttl"`
	UpstreamTO    time.Duration `yaml:"upstream_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute"`
}

type HTTPConfig struct {
	Addr           string          `yaml:"addr"`
	RequestTimeout time.Duration   `yaml:"request_timeout"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	TrustProxy     bool            `yaml:"trust_proxy"` // take the client IP from X-Forwarded-For and friends
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type TracingConfig struct {
	Exporter    string `yaml:"exporter"` // none | stdout
	ServiceName string `yaml:"service_name"`
}

type Config struct {
	Relay   RelayConfig   `yaml:"relay"`
	Log     LogConfig     `yaml:"log"`
	HTTP    HTTPConfig    `yaml:"http"`
	Redis   RedisConfig   `yaml:"redis"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`

	Runtime RuntimeConfig `yaml:"-"`
}

// Environment variable names. The first two are the names existing
// deployments already export.
const (
	EnvBotToken    = "YOUR_BOT_TOKEN"
	EnvChatID      = "TELEGRAM_CHAT_ID"
	EnvAddr        = "NUMRELAY_ADDR"
	EnvLogLevel    = "NUMRELAY_LOG_LEVEL"
	EnvLogFormat   = "NUMRELAY_LOG_FORMAT"
	EnvRedisURL    = "NUMRELAY_REDIS_URL"
	EnvSerialize   = "NUMRELAY_SERIALIZE"
	EnvWait        = "NUMRELAY_WAIT"
	EnvTokenSource = "NUMRELAY_TOKEN_SOURCE"
	EnvAPIEndpoint = "NUMRELAY_API_ENDPOINT"
	EnvGateway     = "NUMRELAY_GATEWAY"
)

const (
	DefaultAPIEndpoint  = "https://api.telegram.org/bot%s/%s"
	DefaultWait         = 3500 * time.Millisecond
	DefaultUpdatesLimit = 15
)

// LoadConfig reads the optional YAML file at path, then applies .env and
// process environment overrides. A missing file is not an error.
func LoadConfig(path string, dev bool) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvBotToken); v != "" {
		cfg.Relay.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvChatID)); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvChatID, err)
		}
		cfg.Relay.ChatID = id
	}
	if v := os.Getenv(EnvWait); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWait, err)
		}
		cfg.Relay.Wait = d
	}
	setString(&cfg.HTTP.Addr, EnvAddr)
	setString(&cfg.Log.Level, EnvLogLevel)
	setString(&cfg.Log.Format, EnvLogFormat)
	setString(&cfg.Redis.URL, EnvRedisURL)
	setString(&cfg.Relay.Serialize, EnvSerialize)
	setString(&cfg.Relay.TokenSource, EnvTokenSource)
	setString(&cfg.Relay.APIEndpoint, EnvAPIEndpoint)
	setString(&cfg.Relay.Gateway, EnvGateway)
	return nil
}

func setString(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Relay.APIEndpoint == "" {
		cfg.Relay.APIEndpoint = DefaultAPIEndpoint
	}
	if cfg.Relay.Wait == 0 {
		cfg.Relay.Wait = DefaultWait
	}
	if cfg.Relay.UpdatesLimit <= 0 {
		cfg.Relay.UpdatesLimit = DefaultUpdatesLimit
	}
	if cfg.Relay.CacheIdentity == nil {
		on := true
		cfg.Relay.CacheIdentity = &on
	}
	if cfg.Relay.Gateway == "" {
		cfg.Relay.Gateway = "telegram"
	}
	if cfg.Relay.TokenSource == "" {
		cfg.Relay.TokenSource = "env"
	}
	if cfg.Relay.Serialize == "" {
		cfg.Relay.Serialize = "none"
	}
	if cfg.Relay.LockWait <= 0 {
		cfg.Relay.LockWait = 10 * time.Second
	}
	if cfg.Relay.LockTTL <= 0 {
		cfg.Relay.LockTTL = 30 * time.Second
	}
	if cfg.Relay.UpstreamTO <= 0 {
		cfg.Relay.UpstreamTO = 10 * time.Second
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Tracing.Exporter == "" {
		cfg.Tracing.Exporter = "none"
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "numrelay"
	}
}

// Validate checks the fields the relay cannot start without.
func (c *Config) Validate() error {
	switch c.Relay.Gateway {
	case "telegram", "noop":
	default:
		return fmt.Errorf("relay.gateway %q: must be telegram or noop", c.Relay.Gateway)
	}
	switch c.Relay.TokenSource {
	case "env":
		if c.Relay.Token == "" && c.Relay.Gateway != "noop" {
			return fmt.Errorf("relay.token (or %s) is required", EnvBotToken)
		}
	case "keyring":
	default:
		return fmt.Errorf("relay.token_source %q: must be env or keyring", c.Relay.TokenSource)
	}
	if c.Relay.ChatID == 0 {
		return fmt.Errorf("relay.chat_id (or %s) is required", EnvChatID)
	}
	if c.Relay.Wait < 0 {
		return errors.New("relay.wait must not be negative")
	}
	switch c.Relay.Serialize {
	case "none", "local":
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("relay.serialize=redis requires redis.url")
		}
	default:
		return fmt.Errorf("relay.serialize %q: must be none, local or redis", c.Relay.Serialize)
	}
	if c.HTTP.RateLimit.PerMinute > 0 && c.Redis.URL == "" {
		return errors.New("http.rate_limit requires redis.url")
	}
	return nil
}

// IdentityCached reports whether the bot identity may be reused across requests.
func (c RelayConfig) IdentityCached() bool {
	return c.CacheIdentity == nil || *c.CacheIdentity
}

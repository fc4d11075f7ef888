package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fjod/ishop4u/internal/api"
	"github.com/fjod/ishop4u/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	App   AppConfig
	API   APIConfig
	Cart  CartConfig
	Redis RedisConfig
	Kafka KafkaConfig
	HTTP  HTTPConfig
	Log   logger.Config
}

type AppConfig struct {
	Name string
	Env  string
}

// APIConfig points at the remote store.
type APIConfig struct {
	BaseURL         string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

type CartConfig struct {
	NotesDelay   time.Duration
	WriteTimeout time.Duration
}

// RedisConfig backs the catalog cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// KafkaConfig feeds the checkout poller. No brokers means no poller.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func (c APIConfig) Client() api.Config {
	return api.Config{
		BaseURL:         c.BaseURL,
		Timeout:         c.Timeout,
		BreakerFailures: c.BreakerFailures,
		BreakerCooldown: c.BreakerCooldown,
	}
}

func setDefaults(v *viper.Viper) {
	apiDefaults := api.DefaultConfig()
	logDefaults := logger.DefaultConfig()

	v.SetDefault("app.name", "ishop4u")
	v.SetDefault("app.env", "development")

	v.SetDefault("api.base_url", apiDefaults.BaseURL)
	v.SetDefault("api.timeout", apiDefaults.Timeout)
	v.SetDefault("api.breaker_failures", apiDefaults.BreakerFailures)
	v.SetDefault("api.breaker_cooldown", apiDefaults.BreakerCooldown)

	v.SetDefault("cart.notes_delay", 500*time.Millisecond)
	v.SetDefault("cart.write_timeout", 10*time.Second)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "checkout-outbox")
	v.SetDefault("kafka.group_id", "")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.request_timeout", 15*time.Second)
	v.SetDefault("http.shutdown_timeout", 30*time.Second)

	v.SetDefault("log.level", logDefaults.Level)
	v.SetDefault("log.format", logDefaults.Format)
	v.SetDefault("log.output", logDefaults.Output)
	v.SetDefault("log.time_format", logDefaults.TimeFormat)
}

// Load reads configuration with the following priority:
// ISHOP_-prefixed environment variables (ISHOP_API_BASE_URL), then the
// config file, then built-in defaults. With an empty path an optional
// ishop.yaml in the working directory is used.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ishop")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("ISHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		API: APIConfig{
			BaseURL:         v.GetString("api.base_url"),
			Timeout:         v.GetDuration("api.timeout"),
			BreakerFailures: v.GetUint32("api.breaker_failures"),
			BreakerCooldown: v.GetDuration("api.breaker_cooldown"),
		},
		Cart: CartConfig{
			NotesDelay:   v.GetDuration("cart.notes_delay"),
			WriteTimeout: v.GetDuration("cart.write_timeout"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetStringSlice("kafka.brokers")),
			Topic:   v.GetString("kafka.topic"),
			GroupID: v.GetString("kafka.group_id"),
		},
		HTTP: HTTPConfig{
			Addr:            v.GetString("http.addr"),
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			RequestTimeout:  v.GetDuration("http.request_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		Log: logger.Config{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			Output:     v.GetString("log.output"),
			TimeFormat: v.GetString("log.time_format"),
		},
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = cfg.App.Name
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList accepts both a yaml list and a comma separated env value.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute url, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.API.BreakerFailures == 0 {
		return fmt.Errorf("api.breaker_failures must be positive")
	}
	if c.Cart.NotesDelay < 0 {
		return fmt.Errorf("cart.notes_delay cannot be negative")
	}
	if c.Cart.WriteTimeout <= 0 {
		return fmt.Errorf("cart.write_timeout must be positive")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db cannot be negative")
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.App.Env == "production" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be json in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

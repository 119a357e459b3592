package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/adapters/out/queue"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorePostgres = "postgres"
	StoreFixture  = "fixture"
)

// Config is the service configuration. Every key can be set in a config
// file, in .env or as an environment variable (db.host -> DB_HOST).
type Config struct {
	HTTP struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"http"`

	Log struct {
		Level      string `mapstructure:"level"`
		File       string `mapstructure:"file"`
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups"`
		MaxAgeDays int    `mapstructure:"max_age_days"`
	} `mapstructure:"log"`

	// Store selects postgres or the fixture store, a sqlite file for demos.
	Store        string        `mapstructure:"store"`
	FixtureDSN   string        `mapstructure:"fixture_dsn"`
	DB           DBConfig      `mapstructure:"db"`
	StoreTimeout time.Duration `mapstructure:"store_timeout"`

	Dispatch struct {
		MinutesPerKm         float64       `mapstructure:"minutes_per_km"`
		CommissionRate       string        `mapstructure:"commission_rate"`
		PingDebounce         time.Duration `mapstructure:"ping_debounce"`
		NotificationInterval time.Duration `mapstructure:"notification_interval"`
		CentroidLat          float64       `mapstructure:"centroid_lat"`
		CentroidLng          float64       `mapstructure:"centroid_lng"`
		RollupSchedule       string        `mapstructure:"rollup_schedule"`
	} `mapstructure:"dispatch"`

	Geocoder struct {
		URL      string        `mapstructure:"url"`
		APIKey   string        `mapstructure:"api_key"`
		Timeout  time.Duration `mapstructure:"timeout"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"geocoder"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	AMQP struct {
		URL   string `mapstructure:"url"`
		Queue string `mapstructure:"queue"`
	} `mapstructure:"amqp"`

	Kafka struct {
		Brokers       string `mapstructure:"brokers"`
		TrackingTopic string `mapstructure:"tracking_topic"`
		DriversTopic  string `mapstructure:"drivers_topic"`
	} `mapstructure:"kafka"`

	Queue struct {
		Enabled     bool   `mapstructure:"enabled"`
		Addr        string `mapstructure:"addr"`
		Password    string `mapstructure:"password"`
		DB          int    `mapstructure:"db"`
		Name        string `mapstructure:"name"`
		Concurrency int    `mapstructure:"concurrency"`
		MaxRetry    int    `mapstructure:"max_retry"`
	} `mapstructure:"queue"`

	JWT struct {
		Secret string        `mapstructure:"secret"`
		TTL    time.Duration `mapstructure:"ttl"`
		Issuer string        `mapstructure:"issuer"`
	} `mapstructure:"jwt"`
}

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SslMode  string `mapstructure:"sslmode"`
}

// DSN renders the libpq connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SslMode)
}

// QueueConfig converts the queue section for the asynq adapters.
func (c Config) QueueConfig() queue.Config {
	return queue.Config{
		Addr:        c.Queue.Addr,
		Password:    c.Queue.Password,
		DB:          c.Queue.DB,
		Queue:       c.Queue.Name,
		Concurrency: c.Queue.Concurrency,
		MaxRetry:    c.Queue.MaxRetry,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("store", StorePostgres)
	v.SetDefault("fixture_dsn", "file:dispatch.db?cache=shared")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "dispatch")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "dispatch")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("store_timeout", 5*time.Second)

	v.SetDefault("dispatch.minutes_per_km", 2.0)
	v.SetDefault("dispatch.commission_rate", "0.15")
	v.SetDefault("dispatch.ping_debounce", 2*time.Second)
	v.SetDefault("dispatch.notification_interval", 5*time.Minute)
	v.SetDefault("dispatch.centroid_lat", -23.5505)
	v.SetDefault("dispatch.centroid_lng", -46.6333)
	v.SetDefault("dispatch.rollup_schedule", "0 */15 * * * *")

	v.SetDefault("geocoder.url", "")
	v.SetDefault("geocoder.api_key", "")
	v.SetDefault("geocoder.timeout", 3*time.Second)
	v.SetDefault("geocoder.cache_ttl", 24*time.Hour)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.queue", "dispatch.notifications")

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.tracking_topic", "dispatch.tracking")
	v.SetDefault("kafka.drivers_topic", "dispatch.drivers")

	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.addr", "localhost:6379")
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.name", queue.DefaultQueue)
	v.SetDefault("queue.concurrency", queue.DefaultConcurrency)
	v.SetDefault("queue.max_retry", queue.DefaultMaxRetry)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("jwt.issuer", "dispatch")
}

// LoadConfig reads .env when present, then the optional config file, then the
// environment. Later sources win.
func LoadConfig(cfgFile string) (Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Store != StorePostgres && cfg.Store != StoreFixture {
		return Config{}, fmt.Errorf("unknown store %q: want %s or %s", cfg.Store, StorePostgres, StoreFixture)
	}
	if err := cfg.checkJWTSecret(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// fixtureJWTSecret signs tokens for the fixture store when no secret is set.
const fixtureJWTSecret = "fixture-store-development-secret"

// MinJWTSecretLength is the shortest secret accepted for the postgres store.
const MinJWTSecretLength = 32

var placeholderJWTSecrets = map[string]bool{
	"change-me-in-production": true,
	fixtureJWTSecret:          true,
}

func (c *Config) checkJWTSecret() error {
	if c.Store == StoreFixture {
		if c.JWT.Secret == "" {
			c.JWT.Secret = fixtureJWTSecret
		}
		return nil
	}

	switch {
	case c.JWT.Secret == "":
		return errors.New("jwt.secret is required for the postgres store")
	case placeholderJWTSecrets[c.JWT.Secret]:
		return errors.New("jwt.secret is a placeholder value")
	case len(c.JWT.Secret) < MinJWTSecretLength:
		return fmt.Errorf("jwt.secret must be at least %d bytes", MinJWTSecretLength)
	}
	return nil
}

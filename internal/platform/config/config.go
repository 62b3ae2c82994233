// Package config assembles runtime configuration so main stays lean.
// Defaults are development-friendly; a YAML file overlays them and
// environment variables override both, which is the precedence deploy
// tooling expects.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	platstrings "namelease/pkg/platform/strings"
)

// Duration is a time.Duration that YAML files can spell as "30s".
// yaml.v3 has no native duration notation, only raw nanosecond ints.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML accepts either a duration string or nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value")
	}
	*d = Duration(n)
	return nil
}

// Config is the root of all runtime configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Store    StoreConfig    `yaml:"store"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Blob     BlobConfig     `yaml:"blob"`
	Registry RegistryConfig `yaml:"registry"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	JWTSigningKey   string   `yaml:"jwt_signing_key"`
	RequestTimeout  Duration `yaml:"request_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	RateLimitRPS    float64  `yaml:"rate_limit_rps"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
}

// LogConfig selects log verbosity and output encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoreConfig selects the lease/settings persistence backend.
type StoreConfig struct {
	Backend string `yaml:"backend"`
}

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
)

// PostgresConfig carries the connection string for the postgres backend.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig carries connection tuning for the redis backend.
type RedisConfig struct {
	URL          string   `yaml:"url"`
	PoolSize     int      `yaml:"pool_size"`
	MinIdleConns int      `yaml:"min_idle_conns"`
	DialTimeout  Duration `yaml:"dial_timeout"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
}

// SQLiteConfig carries the database path for the sqlite backend.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// KafkaConfig carries event pipeline settings. An empty broker list
// keeps events on the in-process sink.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Buffer  int      `yaml:"buffer"`
}

// BlobConfig selects the snapshot export destination.
type BlobConfig struct {
	Backend string   `yaml:"backend"`
	FSRoot  string   `yaml:"fs_root"`
	S3      S3Config `yaml:"s3"`
}

// Blob backends.
const (
	BlobNone   = "none"
	BlobMemory = "memory"
	BlobFS     = "fs"
	BlobS3     = "s3"
)

// S3Config carries object storage settings for snapshot export. Leaving
// the keys empty uses the default AWS credential chain; MinIO-style
// endpoints usually need them set.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// RegistryConfig seeds the registry on first boot. Once settings are
// persisted the stored copy is authoritative and these are ignored.
type RegistryConfig struct {
	AdminAccountID    string `yaml:"admin_account_id"`
	PricePerYear      int64  `yaml:"price_per_year"`
	RenewalMultiplier int64  `yaml:"renewal_multiplier"`
}

// defaults returns a configuration that boots with no external services.
func defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
			// Should be overridden in production.
			JWTSigningKey:   "dev-secret-key-change-in-production",
			RequestTimeout:  Duration(30 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
			RateLimitRPS:    50,
			RateLimitBurst:  100,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Backend: StoreMemory,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  Duration(5 * time.Second),
			ReadTimeout:  Duration(3 * time.Second),
			WriteTimeout: Duration(3 * time.Second),
		},
		Kafka: KafkaConfig{
			Topic:  "namelease.events",
			Buffer: 1024,
		},
		Blob: BlobConfig{
			Backend: BlobNone,
			S3:      S3Config{Region: "us-east-1"},
		},
		Registry: RegistryConfig{
			PricePerYear:      100,
			RenewalMultiplier: 2,
		},
	}
}

// Load builds the effective configuration. path may be empty, in which
// case NAMELEASE_CONFIG is consulted; a path that is set but unreadable
// is an error rather than a silent fallback to defaults.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path == "" {
		path = os.Getenv("NAMELEASE_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	}

	cfg.applyEnv()

	// Broker lists arrive comma-separated from env or as YAML arrays;
	// either way duplicates and padding are operator noise.
	cfg.Kafka.Brokers = platstrings.DedupeAndTrim(cfg.Kafka.Brokers)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	envStr("NAMELEASE_ADDR", &c.Server.Addr)
	envStr("NAMELEASE_JWT_SIGNING_KEY", &c.Server.JWTSigningKey)
	envDuration("NAMELEASE_REQUEST_TIMEOUT", &c.Server.RequestTimeout)
	envDuration("NAMELEASE_SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)
	envFloat("NAMELEASE_RATE_LIMIT_RPS", &c.Server.RateLimitRPS)
	envInt("NAMELEASE_RATE_LIMIT_BURST", &c.Server.RateLimitBurst)

	envStr("NAMELEASE_LOG_LEVEL", &c.Log.Level)
	envStr("NAMELEASE_LOG_FORMAT", &c.Log.Format)

	envStr("NAMELEASE_STORE_BACKEND", &c.Store.Backend)
	envStr("NAMELEASE_POSTGRES_DSN", &c.Postgres.DSN)
	envStr("NAMELEASE_REDIS_URL", &c.Redis.URL)
	envStr("NAMELEASE_SQLITE_PATH", &c.SQLite.Path)

	envList("NAMELEASE_KAFKA_BROKERS", &c.Kafka.Brokers)
	envStr("NAMELEASE_KAFKA_TOPIC", &c.Kafka.Topic)
	envInt("NAMELEASE_KAFKA_BUFFER", &c.Kafka.Buffer)

	envStr("NAMELEASE_BLOB_BACKEND", &c.Blob.Backend)
	envStr("NAMELEASE_BLOB_FS_ROOT", &c.Blob.FSRoot)
	envStr("NAMELEASE_S3_BUCKET", &c.Blob.S3.Bucket)
	envStr("NAMELEASE_S3_REGION", &c.Blob.S3.Region)
	envStr("NAMELEASE_S3_ENDPOINT", &c.Blob.S3.Endpoint)
	envBool("NAMELEASE_S3_PATH_STYLE", &c.Blob.S3.PathStyle)
	envStr("NAMELEASE_S3_ACCESS_KEY", &c.Blob.S3.AccessKey)
	envStr("NAMELEASE_S3_SECRET_KEY", &c.Blob.S3.SecretKey)

	envStr("NAMELEASE_ADMIN_ACCOUNT_ID", &c.Registry.AdminAccountID)
	envInt64("NAMELEASE_PRICE_PER_YEAR", &c.Registry.PricePerYear)
	envInt64("NAMELEASE_RENEWAL_MULTIPLIER", &c.Registry.RenewalMultiplier)
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreMemory, StorePostgres, StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	switch c.Blob.Backend {
	case BlobNone, BlobMemory, BlobFS, BlobS3:
	default:
		return fmt.Errorf("unknown blob backend %q", c.Blob.Backend)
	}
	if c.Store.Backend == StorePostgres && c.Postgres.DSN == "" {
		return fmt.Errorf("postgres backend requires NAMELEASE_POSTGRES_DSN")
	}
	if c.Store.Backend == StoreRedis && c.Redis.URL == "" {
		return fmt.Errorf("redis backend requires NAMELEASE_REDIS_URL")
	}
	if c.Store.Backend == StoreSQLite && c.SQLite.Path == "" {
		return fmt.Errorf("sqlite backend requires NAMELEASE_SQLITE_PATH")
	}
	if c.Registry.PricePerYear < 0 {
		return fmt.Errorf("price per year cannot be negative")
	}
	if c.Registry.RenewalMultiplier < 1 {
		return fmt.Errorf("renewal multiplier must be at least 1")
	}
	return nil
}

func envStr(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envInt64(key string, dst *int64) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envDuration(key string, dst *Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}

func envList(key string, dst *[]string) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.Split(v, ",")
	}
}

package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Badger    BadgerConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Content   ContentConfig   `mapstructure:"content"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

// StoreConfig 选择记录存储的后端: gorm / badger / redis / minio / memory
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

type DatabaseConfig struct {
	Driver    string `mapstructure:"driver"` // sqlite 或 mysql
	Path      string `mapstructure:"path"`   // sqlite 文件路径
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool `mapstructure:"parse_time"`
}

type BadgerConfig struct {
	Path     string `mapstructure:"path"`
	InMemory bool   `mapstructure:"in_memory"`
}

// RedisConfig redis 后端或检索缓存使用；Enabled 为 false 时只有 redis 后端会连接
type RedisConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Host     string
	Port     int
	Password string
	DB       int
}

type StorageConfig struct {
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioUseSSL   bool   `mapstructure:"minio_use_ssl"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

// ContentConfig 外部视频检索及请求队列的参数
type ContentConfig struct {
	YouTubeAPIKey     string        `mapstructure:"youtube_api_key"`
	DefaultMaxResults int           `mapstructure:"default_max_results"`
	Cooldown          time.Duration `mapstructure:"cooldown"`
	Gap               time.Duration `mapstructure:"gap"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"` // 0 表示不限时
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	StaleTTL          time.Duration `mapstructure:"stale_ttl"`
	BreakerFailures   uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout    time.Duration `mapstructure:"breaker_timeout"`
}

type AnalyticsConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// Location 返回统计日期使用的时区，解析失败时退回本地时区
func (c AnalyticsConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("store.backend", "gorm")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/dashboard.db")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("badger.path", "data/badger")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("storage.minio_bucket", "learning-records")
	v.SetDefault("content.default_max_results", 5)
	v.SetDefault("content.cooldown", time.Second)
	v.SetDefault("content.gap", 500*time.Millisecond)
	v.SetDefault("content.request_timeout", 15*time.Second)
	v.SetDefault("content.cache_ttl", 24*time.Hour)
	v.SetDefault("content.stale_ttl", 7*24*time.Hour)
	v.SetDefault("content.breaker_failures", 5)
	v.SetDefault("content.breaker_timeout", time.Minute)
	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("LEARNING_DASHBOARD")
	v.AutomaticEnv()

	setDefaults(v)

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "SERVER_PORT")

	// Store / Database
	v.BindEnv("store.backend", "STORE_BACKEND")
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.path", "DATABASE_PATH")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// MinIO
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Content
	v.BindEnv("content.youtube_api_key", "YOUTUBE_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "gorm", "badger", "redis", "minio", "memory":
	default:
		return fmt.Errorf("unsupported store backend %q", c.Store.Backend)
	}

	if c.Store.Backend == "gorm" && c.Database.Driver != "sqlite" && c.Database.Driver != "mysql" {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Content.Cooldown < 0 || c.Content.Gap < 0 || c.Content.RequestTimeout < 0 {
		return fmt.Errorf("content delays must not be negative")
	}

	if c.Content.DefaultMaxResults <= 0 {
		c.Content.DefaultMaxResults = 5
	}

	return nil
}

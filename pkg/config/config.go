package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session backends for the monitor screen.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Monitor  MonitorConfig
	Reports  ReportsConfig
	Seating  SeatingConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MonitorConfig tunes the monitor screen session.
type MonitorConfig struct {
	AutoSwitchDelay time.Duration
	BannerDuration  time.Duration
	SessionTTL      time.Duration
	SessionBackend  string
}

// ReportsConfig governs report caching.
type ReportsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// SeatingConfig holds the seating chart geometry constants.
type SeatingConfig struct {
	GridSize      float64
	SnapThreshold float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	backend := strings.ToLower(v.GetString("MONITOR_SESSION_BACKEND"))
	if backend != SessionBackendRedis {
		backend = SessionBackendMemory
	}
	cfg.Monitor = MonitorConfig{
		AutoSwitchDelay: parseDuration(v.GetString("MONITOR_AUTO_SWITCH_DELAY"), 0),
		BannerDuration:  parseDuration(v.GetString("MONITOR_BANNER_DURATION"), 1500*time.Millisecond),
		SessionTTL:      parseDuration(v.GetString("MONITOR_SESSION_TTL"), 12*time.Hour),
		SessionBackend:  backend,
	}

	cfg.Reports = ReportsConfig{
		CacheEnabled: v.GetBool("ENABLE_REPORT_CACHE"),
		CacheTTL:     parseDuration(v.GetString("REPORT_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Seating = SeatingConfig{
		GridSize:      positiveFloat(v.GetFloat64("SEATING_GRID_SIZE"), 20),
		SnapThreshold: positiveFloat(v.GetFloat64("SEATING_SNAP_THRESHOLD"), 40),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "academic_monitor")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "academic-monitor")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MONITOR_AUTO_SWITCH_DELAY", "0s")
	v.SetDefault("MONITOR_BANNER_DURATION", "1500ms")
	v.SetDefault("MONITOR_SESSION_TTL", "12h")
	v.SetDefault("MONITOR_SESSION_BACKEND", SessionBackendMemory)

	v.SetDefault("ENABLE_REPORT_CACHE", false)
	v.SetDefault("REPORT_CACHE_TTL", "5m")

	v.SetDefault("SEATING_GRID_SIZE", 20)
	v.SetDefault("SEATING_SNAP_THRESHOLD", 40)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func positiveFloat(value, fallback float64) float64 {
	if value <= 0 {
		return fallback
	}
	return value
}

// isMissingFile covers SetConfigFile, which reports a missing .env as a path error instead of ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

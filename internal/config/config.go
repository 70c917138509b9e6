package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/clinic-api/internal/model"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Outbox    OutboxConfig    `mapstructure:"outbox"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Clinic    ClinicConfig    `mapstructure:"clinic"`
	Geo       GeoConfig       `mapstructure:"geo"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
	Security  SecurityConfig  `mapstructure:"security"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
	// URL, when set, wins over the individual fields
	URL string `mapstructure:"url"`
}

func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	Expiry time.Duration `mapstructure:"expiry"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	MaxRetries   int    `mapstructure:"max_retries"`
}

type OutboxConfig struct {
	BatchSize       int           `mapstructure:"batch_size"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	CleanupSchedule string        `mapstructure:"cleanup_schedule"`
	Retention       time.Duration `mapstructure:"retention"`
}

type WorkerConfig struct {
	// HealthPort serves /health and /metrics for the background worker
	HealthPort int `mapstructure:"health_port"`
}

type ClinicConfig struct {
	Name        string `mapstructure:"name"`
	TimeZone    string `mapstructure:"time_zone"`
	OpenHour    int    `mapstructure:"open_hour"`
	CloseHour   int    `mapstructure:"close_hour"`
	SlotMinutes int    `mapstructure:"slot_minutes"`
}

func (c ClinicConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load clinic time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func (c ClinicConfig) WorkingHours() (model.WorkingHours, error) {
	loc, err := c.Location()
	if err != nil {
		return model.WorkingHours{}, err
	}
	return model.WorkingHours{
		Open:     time.Duration(c.OpenHour) * time.Hour,
		Close:    time.Duration(c.CloseHour) * time.Hour,
		Location: loc,
	}, nil
}

func (c ClinicConfig) SlotLength() time.Duration {
	return time.Duration(c.SlotMinutes) * time.Minute
}

type GeoConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	AllowedMethods []string      `mapstructure:"allowed_methods"`
	AllowedHeaders []string      `mapstructure:"allowed_headers"`
	MaxAge         time.Duration `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SecurityConfig struct {
	EncryptionKey string `mapstructure:"encryption_key"`
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
}

// overrides are read from CLINIC_* variables last
type overrides struct {
	Port          int    `envconfig:"PORT"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	RedisURL      string `envconfig:"REDIS_URL"`
	JWTSecret     string `envconfig:"JWT_SECRET"`
	EncryptionKey string `envconfig:"ENCRYPTION_KEY"`
	LogLevel      string `envconfig:"LOG_LEVEL"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "clinic")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrations_dir", "migrations")

	v.SetDefault("jwt.issuer", "clinic-api")
	v.SetDefault("jwt.expiry", 12*time.Hour)

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.max_retries", 3)

	v.SetDefault("outbox.batch_size", 50)
	v.SetDefault("outbox.poll_interval", 5*time.Second)
	v.SetDefault("outbox.max_retries", 5)
	v.SetDefault("outbox.retry_delay", 30*time.Second)
	v.SetDefault("outbox.cleanup_schedule", "@every 1h")
	v.SetDefault("outbox.retention", 7*24*time.Hour)

	v.SetDefault("worker.health_port", 8081)

	v.SetDefault("clinic.name", "Clinic")
	v.SetDefault("clinic.time_zone", "Asia/Manila")
	v.SetDefault("clinic.open_hour", 8)
	v.SetDefault("clinic.close_hour", 17)
	v.SetDefault("clinic.slot_minutes", 30)

	v.SetDefault("geo.base_url", "https://psgc.gitlab.io/api")
	v.SetDefault("geo.timeout", 10*time.Second)
	v.SetDefault("geo.cache_ttl", 24*time.Hour)

	v.SetDefault("smtp.port", 587)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"})
	v.SetDefault("cors.max_age", 12*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("security.bcrypt_cost", 12)
}

// Load reads .env, then the yaml file at path (or config.yaml in . and ./config when path is
// empty), then environment variables. A missing config file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var o overrides
	if err := envconfig.Process("clinic", &o); err != nil {
		return nil, fmt.Errorf("failed to read CLINIC_ environment: %w", err)
	}
	cfg.apply(o)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) apply(o overrides) {
	if o.Port != 0 {
		c.Server.Port = o.Port
	}
	if o.DatabaseURL != "" {
		c.Database.URL = o.DatabaseURL
	}
	if o.RedisURL != "" {
		c.Redis.URL = o.RedisURL
	}
	if o.JWTSecret != "" {
		c.JWT.Secret = o.JWTSecret
	}
	if o.EncryptionKey != "" {
		c.Security.EncryptionKey = o.EncryptionKey
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
}

func (c *Config) Validate() error {
	var problems []string
	if c.JWT.Secret == "" {
		problems = append(problems, "jwt.secret is required")
	}
	switch len(c.Security.EncryptionKey) {
	case 16, 24, 32:
	default:
		problems = append(problems, "security.encryption_key must be 16, 24 or 32 bytes")
	}
	if c.Clinic.OpenHour < 0 || c.Clinic.CloseHour > 24 || c.Clinic.OpenHour >= c.Clinic.CloseHour {
		problems = append(problems, "clinic working hours are invalid")
	}
	if c.Clinic.SlotMinutes < int(model.MinAppointmentDuration/time.Minute) {
		problems = append(problems, "clinic.slot_minutes is below the minimum appointment length")
	}
	if _, err := c.Clinic.Location(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Digest       DigestConfig
	Sendgrid     SendgridConfig
	Sessions     SessionsConfig
	Alerts       AlertsConfig
	Admin        AdminConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOCKPING_APP_ENV" required:"true"`
	Port         string `envconfig:"STOCKPING_APP_PORT" required:"true"`
	URL          string `envconfig:"STOCKPING_APP_URL"`
	LogLevel     string `envconfig:"STOCKPING_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKPING_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"STOCKPING_SERVICE_KIND" default:"worker"`
}

type DBConfig struct {
	DSN    string `envconfig:"STOCKPING_DB_DSN"`
	Driver string `envconfig:"STOCKPING_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOCKPING_DB_HOST"`
	LegacyPort     int    `envconfig:"STOCKPING_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOCKPING_DB_USER"`
	LegacyPassword string `envconfig:"STOCKPING_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOCKPING_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOCKPING_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKPING_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKPING_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKPING_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKPING_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOCKPING_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOCKPING_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKPING_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKPING_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOCKPING_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKPING_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKPING_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKPING_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKPING_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// DigestConfig controls the digest delivery job.
type DigestConfig struct {
	Frequency  string        `envconfig:"STOCKPING_DIGEST_FREQUENCY" default:"daily"`
	Interval   time.Duration `envconfig:"STOCKPING_DIGEST_INTERVAL" default:"1h"`
	RunOnStart bool          `envconfig:"STOCKPING_DIGEST_RUN_ON_START" default:"false"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"STOCKPING_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"STOCKPING_SENDGRID_FROM_EMAIL" default:"alertas@stockping.app"`
	BaseURL     string `envconfig:"STOCKPING_SENDGRID_BASE_URL" default:"https://api.sendgrid.com"`
}

type SessionsConfig struct {
	CleanupInterval time.Duration `envconfig:"STOCKPING_SESSION_CLEANUP_INTERVAL" default:"1h"`
}

type AlertsConfig struct {
	SentRetentionDays int `envconfig:"STOCKPING_ALERT_SENT_RETENTION_DAYS" default:"90"`
}

type AdminConfig struct {
	Token string `envconfig:"STOCKPING_ADMIN_TOKEN"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOCKPING_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

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
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Lalamove     LalamoveConfig
	OCR          OCRConfig
	Cron         CronConfig
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
	Env          string `envconfig:"TAHANAN_APP_ENV" required:"true"`
	Port         string `envconfig:"TAHANAN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TAHANAN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TAHANAN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TAHANAN_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TAHANAN_DB_DSN"`
	Driver string `envconfig:"TAHANAN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TAHANAN_DB_HOST"`
	LegacyPort     int    `envconfig:"TAHANAN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TAHANAN_DB_USER"`
	LegacyPassword string `envconfig:"TAHANAN_DB_PASSWORD"`
	LegacyName     string `envconfig:"TAHANAN_DB_NAME"`
	LegacySSLMode  string `envconfig:"TAHANAN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TAHANAN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TAHANAN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TAHANAN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TAHANAN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TAHANAN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TAHANAN_REDIS_ADDR"`
	Password     string        `envconfig:"TAHANAN_REDIS_PASSWORD"`
	DB           int           `envconfig:"TAHANAN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TAHANAN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TAHANAN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TAHANAN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TAHANAN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TAHANAN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TAHANAN_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TAHANAN_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TAHANAN_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TAHANAN_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TAHANAN_AUTO_MIGRATE" default:"false"`
}

type LalamoveConfig struct {
	APIKey  string        `envconfig:"TAHANAN_LALAMOVE_API_KEY"`
	Secret  string        `envconfig:"TAHANAN_LALAMOVE_SECRET"`
	BaseURL string        `envconfig:"TAHANAN_LALAMOVE_BASE_URL" default:"https://rest.sandbox.lalamove.com"`
	Market  string        `envconfig:"TAHANAN_LALAMOVE_MARKET" default:"PH"`
	Timeout time.Duration `envconfig:"TAHANAN_LALAMOVE_TIMEOUT" default:"10s"`
}

type OCRConfig struct {
	Endpoint string        `envconfig:"TAHANAN_OCR_ENDPOINT"`
	Timeout  time.Duration `envconfig:"TAHANAN_OCR_TIMEOUT" default:"15s"`
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"TAHANAN_CRON_INTERVAL" default:"1h"`
	LockTTL         time.Duration `envconfig:"TAHANAN_CRON_LOCK_TTL" default:"55m"`
	EscalationDays  int           `envconfig:"TAHANAN_CRON_ESCALATION_DAYS" default:"7"`
	SimulateCourier bool          `envconfig:"TAHANAN_CRON_SIMULATE_COURIER" default:"false"`
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

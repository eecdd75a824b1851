package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "PAINTMART_DB_DSN"
	EnvDBHost = "PAINTMART_DB_HOST"
	EnvDBUser = "PAINTMART_DB_USER"
	EnvDBName = "PAINTMART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Checkout     CheckoutConfig
	Cron         CronConfig
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
	Env          string `envconfig:"PAINTMART_APP_ENV" required:"true"`
	Port         string `envconfig:"PAINTMART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PAINTMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PAINTMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PAINTMART_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PAINTMART_DB_DSN"`
	Driver string `envconfig:"PAINTMART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PAINTMART_DB_HOST"`
	LegacyPort     int    `envconfig:"PAINTMART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PAINTMART_DB_USER"`
	LegacyPassword string `envconfig:"PAINTMART_DB_PASSWORD"`
	LegacyName     string `envconfig:"PAINTMART_DB_NAME"`
	LegacySSLMode  string `envconfig:"PAINTMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PAINTMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PAINTMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PAINTMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PAINTMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PAINTMART_REDIS_URL" required:"true"`
	Password     string        `envconfig:"PAINTMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"PAINTMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PAINTMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PAINTMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PAINTMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PAINTMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PAINTMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PAINTMART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PAINTMART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PAINTMART_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PAINTMART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PAINTMART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PAINTMART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PAINTMART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PAINTMART_ARGON_KEY_LEN" default:"32"`
}

type CheckoutConfig struct {
	DefaultShippingFee int64 `envconfig:"PAINTMART_CHECKOUT_DEFAULT_SHIPPING_FEE" default:"30000"`
	FreeShippingOver   int64 `envconfig:"PAINTMART_CHECKOUT_FREE_SHIPPING_OVER" default:"500000"`
}

type CronConfig struct {
	Interval             time.Duration `envconfig:"PAINTMART_CRON_INTERVAL" default:"24h"`
	InvoiceCompleteAfter time.Duration `envconfig:"PAINTMART_CRON_INVOICE_COMPLETE_AFTER" default:"168h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PAINTMART_AUTO_MIGRATE" default:"false"`
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

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "MTUK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Cart         CartConfig
	Square       SquareConfig
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
	if err := cfg.Redis.ensureTarget(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MTUK_APP_ENV" required:"true"`
	Port         string `envconfig:"MTUK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MTUK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MTUK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MTUK_DB_DSN"`
	Driver string `envconfig:"MTUK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MTUK_DB_HOST"`
	Port     int    `envconfig:"MTUK_DB_PORT" default:"5432"`
	User     string `envconfig:"MTUK_DB_USER"`
	Password string `envconfig:"MTUK_DB_PASSWORD"`
	Name     string `envconfig:"MTUK_DB_NAME"`
	SSLMode  string `envconfig:"MTUK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MTUK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MTUK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MTUK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MTUK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MTUK_REDIS_URL"`
	Address      string        `envconfig:"MTUK_REDIS_ADDR"`
	Password     string        `envconfig:"MTUK_REDIS_PASSWORD"`
	DB           int           `envconfig:"MTUK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MTUK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MTUK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MTUK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MTUK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MTUK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ensureTarget checks that the client has somewhere to connect: either a
// full URL or a bare address with the discrete credential fields.
func (r RedisConfig) ensureTarget() error {
	if r.URL == "" && r.Address == "" {
		return fmt.Errorf("either MTUK_REDIS_URL or MTUK_REDIS_ADDR is required")
	}
	return nil
}

// CartConfig tunes cart snapshot persistence. SnapshotTTL bounds how long an
// abandoned cart survives in Redis; zero keeps snapshots forever.
// StoreIdleTTL bounds how long an untouched in-process store stays resident
// before it is swept and left to restore from its snapshot.
type CartConfig struct {
	SnapshotTTL   time.Duration `envconfig:"MTUK_CART_SNAPSHOT_TTL" default:"720h"`
	StoreIdleTTL  time.Duration `envconfig:"MTUK_CART_STORE_IDLE_TTL" default:"30m"`
	SessionCookie string        `envconfig:"MTUK_CART_SESSION_COOKIE" default:"mtuk_session"`
	SessionMaxAge time.Duration `envconfig:"MTUK_CART_SESSION_MAX_AGE" default:"720h"`
}

type SquareConfig struct {
	AccessToken string `envconfig:"MTUK_SQUARE_ACCESS_TOKEN"`
	LocationID  string `envconfig:"MTUK_SQUARE_LOCATION_ID"`
	Env         string `envconfig:"MTUK_SQUARE_ENV" default:"sandbox"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MTUK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		"MTUK_DB_HOST": db.Host,
		"MTUK_DB_USER": db.User,
		"MTUK_DB_NAME": db.Name,
	}
	for _, key := range []string{"MTUK_DB_HOST", "MTUK_DB_USER", "MTUK_DB_NAME"} {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either MTUK_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

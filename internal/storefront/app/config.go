package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/mailx"
)

// EnvFile is read from the working directory when present. Real environment
// variables take precedence over it.
const EnvFile = "storefront.env"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	AppSecret     string        // Required: HS256 session signing secret
	Issuer        string        // Optional: iss claim on sessions (default: storefront)
	SessionTTL    time.Duration // Optional: session lifetime (default: 1 year)
	CookieSecure  bool          // Optional: mark the session cookie Secure (default: false)
	CookieDomain  string        // Optional: session cookie domain
	ResetTokenTTL time.Duration // Optional: reset token lifetime (default: 1h)
	FrontendURL   string        // Optional: base of reset links (default: http://localhost:7777)

	BootstrapToken string // Optional: if set, required to perform bootstrap

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // SQLite database file (default: ./storefront.db)
	DatabaseURL    string // Postgres DSN, required for the postgres driver
	PepperFile     string // Path to the password pepper (default: ./pepper)

	SMTP mailx.SMTPConfig // Host empty means reset emails are only logged

	S3             S3Config
	ImageUploadTTL time.Duration // Presigned upload lifetime (default: 15m)

	Env                 string // Environment (dev, staging, prod) (default: dev)
	LogLevel            string // Log level (debug, info, warn, error) (default: info)
	LogFormat           string // Log format (json, text) (default: json)
	Port                int    // HTTP server port (default: 4444)
	ShutdownGracePeriod time.Duration

	RateLimits httpx.RateLimits
}

// S3Config locates the item image bucket. An empty Bucket disables uploads.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // Optional: S3-compatible endpoint such as MinIO
	AccessKey string // Optional: falls back to the default AWS credential chain
	SecretKey string
	PublicURL string // Optional: base URL objects are served from
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SESSION_ISSUER", "storefront")
	v.SetDefault("SESSION_TTL", jwtx.DefaultSessionTTL.String())
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("RESET_TOKEN_TTL", "1h")
	v.SetDefault("FRONTEND_URL", "http://localhost:7777")
	v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_FILE", "storefront.db")
	v.SetDefault("PEPPER_FILE", "pepper")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_FROM", "storefront@localhost")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("IMAGE_UPLOAD_TTL", "15m")
	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("PORT", 4444)
	v.SetDefault("SHUTDOWN_GRACE_PERIOD", "10s")
	v.SetDefault("TRUST_PROXY_HEADERS", false)
}

// LoadConfig reads configuration from the environment, overlaid on EnvFile.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetConfigFile(EnvFile)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", EnvFile, err)
	}
	v.AutomaticEnv()
	setDefaults(v)

	defaults := httpx.DefaultRateLimits()
	cfg := Config{
		AppSecret:      v.GetString("APP_SECRET"),
		Issuer:         v.GetString("SESSION_ISSUER"),
		SessionTTL:     getDuration(v, "SESSION_TTL", jwtx.DefaultSessionTTL),
		CookieSecure:   v.GetBool("COOKIE_SECURE"),
		CookieDomain:   v.GetString("COOKIE_DOMAIN"),
		ResetTokenTTL:  getDuration(v, "RESET_TOKEN_TTL", time.Hour),
		FrontendURL:    v.GetString("FRONTEND_URL"),
		BootstrapToken: v.GetString("BOOTSTRAP_TOKEN"),
		DatabaseDriver: v.GetString("DATABASE_DRIVER"),
		DatabaseFile:   v.GetString("DATABASE_FILE"),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		PepperFile:     v.GetString("PEPPER_FILE"),
		SMTP: mailx.SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("MAIL_FROM"),
			Insecure: v.GetBool("SMTP_INSECURE"),
		},
		S3: S3Config{
			Bucket:    v.GetString("S3_BUCKET"),
			Region:    v.GetString("S3_REGION"),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			PublicURL: v.GetString("S3_PUBLIC_URL"),
		},
		ImageUploadTTL:      getDuration(v, "IMAGE_UPLOAD_TTL", 15*time.Minute),
		Env:                 v.GetString("ENV"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		LogFormat:           v.GetString("LOG_FORMAT"),
		Port:                v.GetInt("PORT"),
		ShutdownGracePeriod: getDuration(v, "SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		RateLimits: httpx.RateLimits{
			Strict:   getRateLimit(v, "STRICT", defaults.Strict),
			Moderate: getRateLimit(v, "MODERATE", defaults.Moderate),
			Lenient:  getRateLimit(v, "LENIENT", defaults.Lenient),
		},
	}

	return cfg, nil
}

// Validate reports the first setting the service cannot start with.
func (c Config) Validate() error {
	switch {
	case c.AppSecret == "":
		return errors.New("APP_SECRET is required")
	case len(c.AppSecret) < jwtx.MinSecretLength:
		return fmt.Errorf("APP_SECRET must be at least %d bytes", jwtx.MinSecretLength)
	case c.SessionTTL <= 0:
		return errors.New("SESSION_TTL must be positive")
	case c.ResetTokenTTL <= 0:
		return errors.New("RESET_TOKEN_TTL must be positive")
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	for name, rl := range map[string]httpx.RateLimitConfig{
		"STRICT":   c.RateLimits.Strict,
		"MODERATE": c.RateLimits.Moderate,
		"LENIENT":  c.RateLimits.Lenient,
	} {
		if rl.RequestsPerWindow <= 0 || rl.Window <= 0 || rl.Burst <= 0 {
			return fmt.Errorf("RATELIMIT_%s_* must all be positive", name)
		}
	}
	return nil
}

// getDuration accepts Go durations ("1h", "30m") or a bare number of minutes.
func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	raw := v.GetString(key)
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if minutes, err := strconv.Atoi(raw); err == nil {
		return time.Duration(minutes) * time.Minute
	}
	return def
}

func getRateLimit(v *viper.Viper, profile string, def httpx.RateLimitConfig) httpx.RateLimitConfig {
	prefix := "RATELIMIT_" + profile + "_"
	cfg := def
	if v.IsSet(prefix + "REQUESTS") {
		cfg.RequestsPerWindow = v.GetInt(prefix + "REQUESTS")
	}
	cfg.Window = getDuration(v, prefix+"WINDOW", def.Window)
	if v.IsSet(prefix + "BURST") {
		cfg.Burst = v.GetInt(prefix + "BURST")
	}
	cfg.TrustProxyHeaders = v.GetBool("TRUST_PROXY_HEADERS")
	return cfg
}

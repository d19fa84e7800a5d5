package letterpress

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for a letterpress server.
type Config struct {
	Env string `env:"LETTERPRESS_ENV,default=dev"` // "dev" or "prod"

	Addr        string `env:"LETTERPRESS_ADDR,default=:3000"`         // API listen address
	MetricsAddr string `env:"LETTERPRESS_METRICS_ADDR,default=:8081"` // Prometheus listener, empty disables it

	DatabasePath string `env:"LETTERPRESS_DATABASE_PATH,default=data/letterpress.db"`

	ExportDir      string        `env:"LETTERPRESS_EXPORT_DIR,default=exports"`
	ExportLang     string        `env:"LETTERPRESS_EXPORT_LANG,default=en"`
	ExportCacheTTL time.Duration `env:"LETTERPRESS_EXPORT_CACHE_TTL,default=5m"`

	SessionSecret string `env:"LETTERPRESS_SESSION_SECRET"` // random per process when unset
	CookieSecure  bool   `env:"LETTERPRESS_COOKIE_SECURE,default=false"`
	BodyLimit     string `env:"LETTERPRESS_BODY_LIMIT,default=50M"`

	CORSOrigins []string `env:"LETTERPRESS_CORS_ORIGINS,default=*"` // credentials are only allowed with explicit origins

	UploadRateLimit  int           `env:"LETTERPRESS_UPLOAD_RATE_LIMIT,default=30"` // image conversions per window and client
	UploadRateWindow time.Duration `env:"LETTERPRESS_UPLOAD_RATE_WINDOW,default=1m"`

	LogLevel  string `env:"LETTERPRESS_LOG_LEVEL,default=info"`
	LogFormat string `env:"LETTERPRESS_LOG_FORMAT"` // "console" or "json"
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig(ctx context.Context) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("letterpress: parsing env vars: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate rejects values setDefaults cannot repair.
func (c Config) validate() error {
	if c.UploadRateLimit <= 0 {
		return fmt.Errorf("letterpress: upload rate limit must be positive, got %d", c.UploadRateLimit)
	}
	if c.UploadRateWindow <= 0 {
		return fmt.Errorf("letterpress: upload rate window must be positive, got %s", c.UploadRateWindow)
	}
	if c.ExportCacheTTL < 0 {
		return fmt.Errorf("letterpress: export cache TTL must not be negative, got %s", c.ExportCacheTTL)
	}
	return nil
}

// IsProduction reports whether the server runs with production settings.
func (c Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

func (c *Config) setDefaults() {
	if c.Env == "" {
		c.Env = "dev"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/letterpress.db"
	}
	if c.ExportDir == "" {
		c.ExportDir = "exports"
	}
	if c.ExportLang == "" {
		c.ExportLang = "en"
	}
	if c.ExportCacheTTL == 0 {
		c.ExportCacheTTL = 5 * time.Minute
	}
	if c.BodyLimit == "" {
		c.BodyLimit = "50M"
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	if c.UploadRateLimit == 0 {
		c.UploadRateLimit = 30
	}
	if c.UploadRateWindow == 0 {
		c.UploadRateWindow = time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
		if c.IsProduction() {
			c.LogFormat = "json"
		}
	}
	if c.SessionSecret == "" {
		c.SessionSecret = rand.Text() + rand.Text()
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithStore makes the App use an already opened store instead of opening
// Config.DatabasePath. The caller keeps ownership and closes it.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
		a.ownsStore = false
	}
}

// WithLogger replaces the logger built from Config.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

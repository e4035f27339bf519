package blogcms

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/eringen/blogcms/content"
	"github.com/eringen/blogcms/media"
)

// Config holds all settings for a blog instance. It is built once at
// startup and not modified afterwards.
type Config struct {
	Addr string // listen address (default ":8080")

	SiteName        string // default "Blog"
	SiteURL         string // canonical URL (default "http://localhost:8080")
	SiteDescription string

	DatabaseDriver content.Dialect // sqlite or postgres
	DatabaseURL    string          // SQLite path or Postgres DSN (default "data/blog.db")

	SessionSecret         string        // required
	SessionDuration       time.Duration // total cookie lifetime (default 2m)
	SessionActiveDuration time.Duration // sliding renewal window (default 1m)
	CookieSecure          bool          // set for HTTPS

	Media     media.Config
	StaticDir string // default "public"

	PostCacheTTL       time.Duration // 0 disables caching
	LoginRatePerMinute int           // failed logins allowed per IP per minute (default 10)
}

// Option configures additional App behaviour.
type Option func(*App)

// WithUploader replaces the uploader chosen from Config.Media.
func WithUploader(u media.Uploader) Option {
	return func(a *App) {
		a.Uploader = u
	}
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.SiteName == "" {
		c.SiteName = "Blog"
	}
	if c.SiteURL == "" {
		c.SiteURL = "http://localhost" + c.Addr
	}
	if c.DatabaseDriver == "" {
		c.DatabaseDriver = content.SQLite
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = "data/blog.db"
	}
	if c.SessionDuration == 0 {
		c.SessionDuration = 2 * time.Minute
	}
	if c.SessionActiveDuration == 0 {
		c.SessionActiveDuration = time.Minute
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.LoginRatePerMinute == 0 {
		c.LoginRatePerMinute = 10
	}
}

// Validate reports configuration that would prevent the app from starting.
func (c Config) Validate() error {
	var errs []error
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	if c.SessionDuration <= 0 || c.SessionActiveDuration <= 0 {
		errs = append(errs, errors.New("session durations must be positive"))
	}
	if c.SessionActiveDuration > c.SessionDuration {
		errs = append(errs, errors.New("SESSION_ACTIVE_DURATION must not exceed SESSION_DURATION"))
	}
	if c.PostCacheTTL < 0 {
		errs = append(errs, errors.New("POST_CACHE_TTL must not be negative"))
	}
	if c.LoginRatePerMinute < 0 {
		errs = append(errs, errors.New("LOGIN_RATE_PER_MINUTE must not be negative"))
	}
	return errors.Join(errs...)
}

// LoadConfig reads configuration from the environment and, when path is
// set, from a config file. Environment variables win over the file. Only
// parse errors are reported; App.Initialize runs Validate, so tools that
// just touch the database need no session secret.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("SITE_NAME", "Blog")
	v.SetDefault("SITE_DESCRIPTION", "")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "data/blog.db")
	v.SetDefault("SESSION_DURATION", "2m")
	v.SetDefault("SESSION_ACTIVE_DURATION", "1m")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("STATIC_DIR", "public")
	v.SetDefault("POST_CACHE_TTL", "30s")
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 10)
	v.SetDefault("CLOUDINARY_FOLDER", "blog")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	dialect, err := content.ParseDialect(v.GetString("DATABASE_DRIVER"))
	if err != nil {
		return Config{}, err
	}

	port := strings.TrimPrefix(v.GetString("PORT"), ":")
	cfg := Config{
		Addr:                  ":" + port,
		SiteName:              v.GetString("SITE_NAME"),
		SiteURL:               v.GetString("SITE_URL"),
		SiteDescription:       v.GetString("SITE_DESCRIPTION"),
		DatabaseDriver:        dialect,
		DatabaseURL:           v.GetString("DATABASE_URL"),
		SessionSecret:         v.GetString("SESSION_SECRET"),
		SessionDuration:       v.GetDuration("SESSION_DURATION"),
		SessionActiveDuration: v.GetDuration("SESSION_ACTIVE_DURATION"),
		CookieSecure:          v.GetBool("COOKIE_SECURE"),
		Media: media.Config{
			CloudinaryURL: v.GetString("CLOUDINARY_URL"),
			CloudName:     v.GetString("CLOUDINARY_CLOUD_NAME"),
			APIKey:        v.GetString("CLOUDINARY_API_KEY"),
			APISecret:     v.GetString("CLOUDINARY_API_SECRET"),
			Folder:        v.GetString("CLOUDINARY_FOLDER"),
		},
		StaticDir:          v.GetString("STATIC_DIR"),
		PostCacheTTL:       v.GetDuration("POST_CACHE_TTL"),
		LoginRatePerMinute: v.GetInt("LOGIN_RATE_PER_MINUTE"),
	}
	cfg.setDefaults()
	return cfg, nil
}

// Package blogcms is a server-rendered blog with a small staff area. Visitors
// browse published posts by category; signed-in staff manage posts,
// categories and feature images.
//
// The App wires the content store, the blog and auth services, the media
// uploader, middleware and routes onto an Echo instance.
package blogcms

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eringen/blogcms/auth"
	"github.com/eringen/blogcms/blog"
	"github.com/eringen/blogcms/content"
	"github.com/eringen/blogcms/media"
)

// App is the central application. It wires together the store, services,
// handlers and middleware.
type App struct {
	Config   Config
	Echo     *echo.Echo
	Store    *content.Store
	Blog     *blog.Service
	Auth     *auth.Service
	Uploader media.Uploader

	loginLimiter *LoginLimiter
	registry     *prometheus.Registry
	metrics      *appMetrics
	staticDir    string
	now          func() time.Time
	initialized  bool
}

// New creates an App. Call Initialize or Run before serving requests.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true

	a := &App{
		Config:    cfg,
		Echo:      e,
		staticDir: cfg.StaticDir,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Initialize opens the store, ensures the schema, builds the services and
// mounts middleware and routes. It fails if any of these steps fail.
func (a *App) Initialize(ctx context.Context) error {
	if a.initialized {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return fmt.Errorf("blogcms: %w", err)
	}

	store, err := content.NewStore(ctx, a.Config.DatabaseDriver, a.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("blogcms: init store: %w", err)
	}
	a.Store = store

	a.Blog = blog.NewService(a.Store, a.Config.PostCacheTTL)
	a.Auth = auth.NewService(a.Store)

	if a.Uploader == nil {
		mc := a.Config.Media
		mc.Dir = filepath.Join(a.staticDir, "uploads")
		mc.URLPrefix = "/public/uploads"
		uploader, err := media.New(mc)
		if err != nil {
			return fmt.Errorf("blogcms: init media: %w", err)
		}
		a.Uploader = uploader
	}

	a.loginLimiter = NewLoginLimiter(PerMinute(a.Config.LoginRatePerMinute), a.Config.LoginRatePerMinute)
	a.registry = prometheus.NewRegistry()
	a.metrics = newMetrics(a.registry)

	a.setupMiddleware()
	a.setupRoutes()

	a.initialized = true
	return nil
}

// Run starts the server and shuts it down gracefully when ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.Initialize(ctx); err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("blogcms: shutdown: %w", err)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/site.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.Static("/public", a.staticDir)

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Public routes
	e.GET("/", handleHome)
	e.GET("/about", a.handleAbout)
	e.GET("/login", a.handleLoginPage)
	e.POST("/login", a.handleLogin)
	e.GET("/logout", a.handleLogout)
	e.GET("/register", a.handleRegisterPage)
	e.POST("/register", a.handleRegister)
	e.GET("/blog", a.handleBlog)
	e.GET("/blog/:id", a.handleBlogPost)

	// Staff routes, mounted one by one so unmatched paths still fall through to 404
	e.GET("/categories", a.handleCategories, requireLogin)
	e.GET("/categories/add", a.handleAddCategoryPage, requireLogin)
	e.POST("/categories/add", a.handleAddCategory, requireLogin)
	e.GET("/categories/delete/:id", a.handleDeleteCategory, requireLogin)
	e.GET("/posts", a.handlePosts, requireLogin)
	e.GET("/posts/add", a.handleAddPostPage, requireLogin)
	e.POST("/posts/add", a.handleAddPost, requireLogin)
	e.GET("/posts/delete/:id", a.handleDeletePost, requireLogin)
	e.GET("/post/:value", a.handlePostJSON, requireLogin)
	e.GET("/userHistory", a.handleUserHistory, requireLogin)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

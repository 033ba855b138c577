// Package http serves the dashboard pages, htmx partials and probes.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"welth/internal/cache"
	"welth/internal/dashboard"
	"welth/internal/ledger"
	applog "welth/internal/log"
	"welth/internal/middleware/ratelimit"
	"welth/internal/middleware/security"
	"welth/internal/middleware/trace"
	appweb "welth/web"
)

// Options configures the dashboard server.
type Options struct {
	Addr  string
	Store ledger.Store
	// Ready is probed by /readyz. Nil means always ready.
	Ready  func(ctx context.Context) error
	Logger *applog.Logger

	Location           *time.Location
	CacheTTL           time.Duration
	BackendTimeout     time.Duration
	RateLimitPerMinute int

	// Now is the clock used for current-month derivations. Defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	http.Server
	templates *template.Template
	logger    *applog.Logger
	events    *applog.StructuredLogger

	ledger  *ledger.Cached
	toggler *dashboard.DefaultToggler
	ready   func(ctx context.Context) error

	loc            *time.Location
	now            func() time.Time
	backendTimeout time.Duration

	cacheManager     *cache.Manager
	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	appMetrics *appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}
	if opts.BackendTimeout <= 0 {
		opts.BackendTimeout = 7 * time.Second
	}

	manager := cache.NewManager()
	cached := ledger.NewCached(opts.Store, opts.CacheTTL, manager)
	manager.StartCleanup(10 * time.Minute)

	detector := security.NewDetector()
	mux := http.NewServeMux()

	s := &Server{
		logger:           logger,
		events:           applog.NewStructuredLogger(logger),
		ledger:           cached,
		toggler:          dashboard.NewDefaultToggler(cached),
		ready:            opts.Ready,
		loc:              opts.Location,
		now:              opts.Now,
		backendTimeout:   opts.BackendTimeout,
		cacheManager:     manager,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(logger, detector.ExtractClientIP),
		appMetrics:       newAppMetrics(),
	}

	t, err := parseTemplates()
	if err != nil {
		logger.Error("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.Assets, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(time.Hour)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	limited := s.rateLimiter.Middleware(detector.ExtractClientIP, s.handleRateLimited)

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /ui/accounts", s.handleAccountsPartial)
	mux.HandleFunc("GET /ui/overview", s.handleOverviewPartial)
	mux.Handle("POST /accounts/{id}/default", limited(http.HandlerFunc(s.handleToggleDefault)))
	mux.HandleFunc("GET /account/{id}", s.handleAccountPage)
	mux.HandleFunc("GET /api/overview", s.handleOverviewJSON)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.traceMiddleware.Middleware(headers.Middleware(detector.Middleware(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"expenseClass": func(isExpense bool) string {
			if isExpense {
				return "amount--expense"
			}
			return "amount--income"
		},
	}).ParseFS(appweb.Assets, "templates/*.html")
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	NewHTMXResponse().
		Status(http.StatusTooManyRequests).
		TriggerErrorNotification("Too many requests. Please try again later.").
		Write(w)
}

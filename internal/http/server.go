package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/period"
	"fintrack/internal/report"
	"fintrack/internal/services"
)

// Reports is the read side the handlers need. *services.ReportService
// implements it.
type Reports interface {
	Resolve(p period.Period) period.Window
	Transactions(ctx context.Context, q services.TransactionQuery) ([]core.Transaction, error)
	Balance(ctx context.Context, id string) (services.AssetBalance, error)
	Details(ctx context.Context, id string, p period.Period) (services.AssetDetails, error)
	Spent(ctx context.Context, id string, p period.Period) (services.CategorySpending, error)
	CategoryHistory(ctx context.Context, p period.Period, base string) (report.Series, bool, error)
	AssetHistory(ctx context.Context, p period.Period, base string) (report.Series, bool, error)
}

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	Logger             *log.Logger
	RateLimitPerMinute int
	TrustedProxies     []string
	// Ready reports whether dependencies are reachable; nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	reports  Reports
	ready    func(ctx context.Context) error
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, reports Reports, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 16, // 64KB
		},
		reports:  reports,
		ready:    opts.Ready,
		logger:   logger,
		detector: detector,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		tracer: trace.NewMiddleware(logger, detector.ExtractClientIP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/transactions", s.handleTransactions)
	api.HandleFunc("GET /api/assets/{id}/balance", s.handleBalance)
	api.HandleFunc("GET /api/assets/{id}/details", s.handleDetails)
	api.HandleFunc("GET /api/categories/{id}/spent", s.handleSpent)
	api.HandleFunc("GET /api/history/categories", s.handleCategoryHistory)
	api.HandleFunc("GET /api/history/assets", s.handleAssetHistory)
	api.HandleFunc("GET /api/period", s.handlePeriod)
	api.HandleFunc("GET /api/", handleNotFound)

	// Probes are not rate limited
	limited := s.limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError().Write(w)
	})
	mux.Handle("/api/", limited(api))
	mux.HandleFunc("/", handleNotFound)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Handler = s.tracer.Middleware(
		headers.Middleware(
			detector.Middleware(logger)(mux)))

	return s
}

// Shutdown gracefully shuts down the server and the limiter's cleanup goroutine
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics returns the request counters of the tracing middleware
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	NotFoundError("no such endpoint").Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
			ServiceUnavailableError("not ready").Write(w)
			return
		}
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
}

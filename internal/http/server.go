package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"courierops/internal/cache"
	"courierops/internal/log"
	"courierops/internal/services"
)

// Server wires the parcel and report services behind the JSON API.
type Server struct {
	http.Server
	parcels *services.ParcelService
	reports *services.ReportService
	logger  *log.Logger
	httpLog *log.StructuredLogger

	rateLimiter *rateLimiter
	secMetrics  *securityMetrics

	// Report endpoints are read-heavy and always serve fleet-wide
	// aggregates, so responses are cached as rendered JSON keyed by
	// path and purged wholesale on any write.
	reportCache  *cache.Store[[]byte]
	cacheSweeper *cache.Sweeper

	startedAt    time.Time
	totalParcels int64
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, parcels *services.ParcelService, reports *services.ReportService, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		parcels:      parcels,
		reports:      reports,
		logger:       logger.WithComponent(log.ComponentHTTP),
		httpLog:      log.NewStructuredLogger(logger),
		rateLimiter:  newRateLimiter(),
		secMetrics:   &securityMetrics{},
		reportCache:  cache.New[[]byte](64, 30*time.Second),
		cacheSweeper: cache.NewSweeper(),
		startedAt:    time.Now(),
	}

	s.cacheSweeper.Track(s.reportCache)
	s.cacheSweeper.Run(10 * time.Minute)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/parcels", s.withMiddleware(s.handleListParcels))
	mux.HandleFunc("POST /api/parcels", s.withMiddleware(s.handleCreateParcel))
	mux.HandleFunc("PUT /api/parcels/{id}/assign", s.withMiddleware(s.handleAssignParcel))
	mux.HandleFunc("PUT /api/parcels/{id}/status", s.withMiddleware(s.handleUpdateParcelStatus))
	mux.HandleFunc("GET /api/riders", s.withMiddleware(s.handleListRiders))

	mux.HandleFunc("GET /api/stats", s.withMiddleware(s.cached("stats", s.handleStats)))
	mux.HandleFunc("GET /api/financial-report", s.withMiddleware(s.cached("financial", s.handleFinancialReport)))
	mux.HandleFunc("GET /api/financial-report-daily", s.withMiddleware(s.cached("financial-daily", s.handleFinancialReportDaily)))
	mux.HandleFunc("GET /api/vendor-report", s.withMiddleware(s.cached("vendor", s.handleVendorReport)))
	mux.HandleFunc("GET /api/rider-reports", s.withMiddleware(s.cached("riders", s.handleRiderReports)))
	mux.HandleFunc("GET /api/rider-daily-status/{id}", s.withMiddleware(s.handleRiderDailyStatus))
	mux.HandleFunc("GET /api/rider-daybook/{id}", s.withMiddleware(s.handleRiderDaybook))
	mux.HandleFunc("POST /api/rider-daybook", s.withMiddleware(s.handleCreateDaybookEntry))
	mux.HandleFunc("GET /api/payment-history", s.withMiddleware(s.handlePaymentHistory))
	mux.HandleFunc("POST /api/payments", s.withMiddleware(s.handleCreatePayment))
	mux.HandleFunc("GET /api/vendor-payment-summary", s.withMiddleware(s.cached("ledger", s.handleVendorPaymentSummary)))
	mux.HandleFunc("GET /api/dashboard", s.withMiddleware(s.cached("dashboard", s.handleDashboard)))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheSweeper.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds request tracing, security headers, rate limiting
// and request logging to a handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), log.LoggerContextKey, s.logger.With(log.FieldRequestID, requestID))
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", requestID)

		s.httpLog.LogHTTPStart(ctx, r, clientIP)

		if detectSuspiciousRequest(r, s.secMetrics) {
			s.logger.WarnContext(ctx, "Suspicious request detected",
				log.FieldClientIP, clientIP,
				log.FieldPath, r.URL.Path)
		}

		// Rate limit mutating requests only; report reads are cached
		// and cheap.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, s.secMetrics) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.httpLog.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// cached serves a report handler's JSON from the report cache when
// possible. Handlers wrapped here must be pure GETs.
func (s *Server) cached(key string, build func(ctx context.Context) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if body, found := s.reportCache.Get(key); found {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}

		data, err := build(r.Context())
		if err != nil {
			s.httpLog.LogError(r.Context(), "Report build failed", err,
				log.ComponentReport, log.OpRead, log.LogFields{"report": key})
			respondError(w, http.StatusInternalServerError, "failed to build report")
			return
		}

		body, err := respondJSON(w, http.StatusOK, data)
		if err == nil {
			s.reportCache.Set(key, body)
		}
	}
}

// invalidateReports drops every cached report. Any write can move any
// aggregate, so invalidation is wholesale.
func (s *Server) invalidateReports() {
	s.reportCache.Purge()
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, _ = respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	// A cheap store round-trip proves the backend is reachable.
	if _, err := s.parcels.Riders(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	checks["report_cache"] = map[string]any{
		"entries": s.reportCache.Len(),
		"status":  "ok",
	}
	checks["parcels_created"] = atomic.LoadInt64(&s.totalParcels)
	checks["rate_limit_hits"] = atomic.LoadInt64(&s.secMetrics.rateLimitHits)
	checks["suspicious_requests"] = atomic.LoadInt64(&s.secMetrics.suspiciousRequests)

	_, _ = respondJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

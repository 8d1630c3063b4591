package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"attivita/internal/cache"
	"attivita/internal/core"
	"attivita/internal/log"
	"attivita/internal/repo"
	"attivita/internal/services"
)

// Server hosts the JSON API over the activity engine. Read endpoints cache
// their projections; every write invalidates the snapshot cache.
type Server struct {
	http.Server
	store    repo.Repository
	activity *services.ActivityService
	rollover *services.RolloverProcessor

	rateLimiter *rateLimiter

	// Snapshot cache for ListAll; all projections derive from it.
	snapshotCache *cache.LRUCache[[]core.Activity]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

const snapshotKey = "activities"

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, store repo.Repository, activity *services.ActivityService, rollover *services.RolloverProcessor) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:            store,
		activity:         activity,
		rollover:         rollover,
		rateLimiter:      newRateLimiter(),
		snapshotCache:    cache.NewLRUCache[[]core.Activity](16, 1*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("GET /api/activities", s.withMiddleware(s.handleListActivities))
	mux.HandleFunc("GET /api/chart/weekly", s.withMiddleware(s.handleWeeklyChart))
	mux.HandleFunc("GET /api/categories", s.withMiddleware(s.handleCategories))
	mux.HandleFunc("GET /api/previous-months", s.withMiddleware(s.handlePreviousMonths))

	mux.HandleFunc("POST /api/activities", s.withMiddleware(s.handleCreateActivity))
	mux.HandleFunc("PUT /api/activities/{id}", s.withMiddleware(s.handleUpdateActivity))
	mux.HandleFunc("DELETE /api/activities/{id}", s.withMiddleware(s.handleDeleteActivity))

	return s
}

// startCacheCleanup prunes expired snapshot entries periodically.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.snapshotCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// snapshot returns the activity list, serving from cache between writes.
func (s *Server) snapshot(ctx context.Context) ([]core.Activity, error) {
	if items, found := s.snapshotCache.Get(snapshotKey); found {
		slog.DebugContext(ctx, "Snapshot cache hit", "count", len(items))
		return items, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	items, err := s.store.ListAll(cctx)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	s.snapshotCache.Set(snapshotKey, items)
	return items, nil
}

func (s *Server) invalidateSnapshot() {
	s.snapshotCache.Delete(snapshotKey)
}

// withMiddleware adds security headers, rate limiting for writes, and
// request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, compression,
// CORS, security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/DBS-Coding/Back-End/internal/config"
	"github.com/DBS-Coding/Back-End/internal/domain"
	"github.com/DBS-Coding/Back-End/internal/http/handlers"
	"github.com/DBS-Coding/Back-End/internal/http/middleware"
	"github.com/DBS-Coding/Back-End/internal/repo"
	"github.com/DBS-Coding/Back-End/internal/services"
)

// tagRepoShim adapts the repository free functions to the services.TagRepo
// interface expected by the TagService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type tagRepoShim struct{}

// CreateTag proxies repo.CreateTag.
func (tagRepoShim) CreateTag(ctx context.Context, db *gorm.DB, tagName string, nama *string) (*domain.Tag, error) {
	return repo.CreateTag(ctx, db, tagName, nama)
}

// GetTag proxies repo.GetTag.
func (tagRepoShim) GetTag(ctx context.Context, db *gorm.DB, id uint) (*domain.Tag, error) {
	return repo.GetTag(ctx, db, id)
}

// GetTagByName proxies repo.GetTagByName.
func (tagRepoShim) GetTagByName(ctx context.Context, db *gorm.DB, tagName string) (*domain.Tag, error) {
	return repo.GetTagByName(ctx, db, tagName)
}

// GetTagByNameAndNama proxies repo.GetTagByNameAndNama.
func (tagRepoShim) GetTagByNameAndNama(ctx context.Context, db *gorm.DB, tagName string, nama *string) (*domain.Tag, error) {
	return repo.GetTagByNameAndNama(ctx, db, tagName, nama)
}

// UpdateTag proxies repo.UpdateTag.
func (tagRepoShim) UpdateTag(ctx context.Context, db *gorm.DB, id uint, tagName string, nama *string) error {
	return repo.UpdateTag(ctx, db, id, tagName, nama)
}

// DeleteTag proxies repo.DeleteTag.
func (tagRepoShim) DeleteTag(ctx context.Context, db *gorm.DB, id uint) error {
	return repo.DeleteTag(ctx, db, id)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting,
// compression, CORS and security headers, health endpoints, and then mounts
// the chatbot API.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs with query masking
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression
//  7. Metrics
//  8. Rate limiter (per IP)
//  9. CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging; the bulk-delete secret travels in the path, so
	// only query parameters need masking here.
	r.Use(middleware.Logger(middleware.LogOptions{
		MaskQueryParams: []string{"token", "key"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Compress responses for clients that accept it
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps
		// tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in
		// addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS).
	// NoStore stays off so If-None-Match revalidation on the list endpoint
	// keeps working.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, "Route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Liveness and landing endpoints
	r.GET("/", handlers.Hello)
	r.GET("/health", handlers.Health)

	// Dependency injection: services ← repo/db
	tagSvc := services.NewTagService(db, tagRepoShim{})
	tagSvc.Timeout = cfg.DBTimeout
	querySvc := services.NewQueryService(db)
	querySvc.Timeout = cfg.DBTimeout
	matchSvc := services.NewMatchService(db)
	matchSvc.Timeout = cfg.DBTimeout

	h := handlers.New(tagSvc, querySvc, matchSvc, cfg.AdminKey)

	// Mutating endpoints are guarded when API_TOKEN is configured.
	auth := middleware.RequireBearer(cfg.APIToken)

	chatbot := r.Group("/chatbot")
	{
		// Reads
		chatbot.GET("/tags", h.ListTags)
		chatbot.GET("/tags/:id", h.GetTag)
		// Registered as :id/:nama because Gin rejects a static "nama"
		// segment alongside the ":id" wildcard; the handler only accepts
		// the "nama" literal in the first position.
		chatbot.GET("/tags/:id/:nama", h.SearchByNama)

		// Matching
		chatbot.POST("/process", h.Process)

		// Writes
		chatbot.POST("/tags", auth, h.MergeTag)
		chatbot.POST("/create", auth, h.CreateTag)
		chatbot.PUT("/update/:id", auth, h.UpdateTag)
		chatbot.DELETE("/tags/:id", auth, h.DeleteTag)
		chatbot.DELETE("/all/:key", auth, h.DeleteAll)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the
// cap cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

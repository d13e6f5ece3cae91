package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/quantum-tracker/internal/api/handler"
	"github.com/cuongbtq/quantum-tracker/shared/metrics"
)

// Options configures the middleware chain around the handlers
type Options struct {
	ServiceName    string
	AllowedOrigins []string
	RateLimit      RateLimitOptions
	// Metrics is optional; without it /metrics is not served
	Metrics *metrics.Registry
}

// RateLimitOptions is a per-client budget of Limit requests per Period
type RateLimitOptions struct {
	Enabled       bool
	Limit         int64
	Period        time.Duration
	ExcludedPaths []string
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, opts Options) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware(opts.AllowedOrigins))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.GinMiddleware())
	}
	if opts.RateLimit.Enabled {
		r.Use(RateLimitMiddleware(opts.RateLimit, opts.Metrics))
	}

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": opts.ServiceName,
		})
	})

	healthHandler := handler.NewHealthHandler(deps)
	r.GET("/ready", healthHandler.Ready)

	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	jobHandler := handler.NewJobHandler(deps)
	backendHandler := handler.NewBackendHandler(deps)

	api := r.Group("/api")
	{
		jobs := api.Group("/jobs")
		{
			// GET /api/jobs - Latest normalized jobs
			jobs.GET("", jobHandler.ListJobs)

			// GET /api/jobs/:job_id - One normalized job
			jobs.GET("/:job_id", jobHandler.GetJob)

			// GET /api/jobs/:job_id/history - Recorded status transitions
			jobs.GET("/:job_id/history", jobHandler.GetJobHistory)
		}

		api.GET("/backends", backendHandler.ListBackends)
		api.GET("/summary", jobHandler.Summary)
	}

	return r
}

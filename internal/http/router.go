package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/philoatlas-backend/internal/http/handlers"
	httpMW "github.com/yungbote/philoatlas-backend/internal/http/middleware"
	"github.com/yungbote/philoatlas-backend/internal/observability"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.Metrics
	// ExposeMetrics mounts GET /metrics.
	ExposeMetrics bool
	AuthLimiter   *httpMW.IPRateLimiter

	AuthHandler     *httpH.AuthHandler
	AuthMiddleware  *httpMW.AuthMiddleware
	ContentHandler  *httpH.ContentHandler
	MetadataHandler *httpH.MetadataHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, "/healthcheck", "/metrics"))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.ExposeMetrics && cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	requireAuth := func(c *gin.Context) { c.Next() }
	if cfg.AuthMiddleware != nil {
		requireAuth = cfg.AuthMiddleware.RequireAuth()
	}

	api := r.Group("/api")

	// Auth
	if cfg.AuthHandler != nil {
		auth := api.Group("/auth")
		limited := auth.Group("/", httpMW.RateLimit(cfg.AuthLimiter))
		limited.POST("/login", cfg.AuthHandler.Login)
		limited.POST("/signup", cfg.AuthHandler.Signup)
		auth.GET("/profile", requireAuth, cfg.AuthHandler.Profile)
	}

	// Content: reads are public, writes need a token
	if cfg.ContentHandler != nil {
		content := api.Group("/content")
		content.GET("", cfg.ContentHandler.List)
		content.GET("/:id", cfg.ContentHandler.Get)
		content.GET("/:id/related", cfg.ContentHandler.Related)
		content.POST("", requireAuth, cfg.ContentHandler.Create)
		content.POST("/relationship", requireAuth, cfg.ContentHandler.Link)
		content.PATCH("/:id", requireAuth, cfg.ContentHandler.Update)
		content.DELETE("/:id", requireAuth, cfg.ContentHandler.Delete)
	}

	// Metadata
	if cfg.MetadataHandler != nil {
		metadata := api.Group("/metadata")
		metadata.GET("/types", cfg.MetadataHandler.Types)
		metadata.GET("/keys", cfg.MetadataHandler.Keys)
		metadata.GET("/schema/:type", cfg.MetadataHandler.GetSchema)
		metadata.POST("/validate/:type", cfg.MetadataHandler.Validate)
		metadata.POST("/schema/:type", requireAuth, cfg.MetadataHandler.UpsertSchema)
		metadata.DELETE("/schema/:id", requireAuth, cfg.MetadataHandler.DeleteSchema)
	}

	return r
}

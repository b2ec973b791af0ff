package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/philoatlas-backend/internal/http"
	httpH "github.com/yungbote/philoatlas-backend/internal/http/handlers"
	httpMW "github.com/yungbote/philoatlas-backend/internal/http/middleware"
	"github.com/yungbote/philoatlas-backend/internal/observability"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
)

type Middleware struct {
	Auth        *httpMW.AuthMiddleware
	AuthLimiter *httpMW.IPRateLimiter
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	Content  *httpH.ContentHandler
	Metadata *httpH.MetadataHandler
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services, metrics *observability.Metrics) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:        httpMW.NewAuthMiddleware(log, services.Auth),
		AuthLimiter: httpMW.NewIPRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst, metrics),
	}
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Auth:     httpH.NewAuthHandler(services.Auth),
		Content:  httpH.NewContentHandler(services.Content),
		Metadata: httpH.NewMetadataHandler(services.MetadataSchema),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:             log,
		ServiceName:     serviceName,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		Metrics:         metrics,
		ExposeMetrics:   cfg.MetricsEnabled,
		AuthLimiter:     middleware.AuthLimiter,
		AuthHandler:     handlers.Auth,
		AuthMiddleware:  middleware.Auth,
		ContentHandler:  handlers.Content,
		MetadataHandler: handlers.Metadata,
		HealthHandler:   handlers.Health,
	})
}

package app

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/philoatlas-backend/internal/clients/redis"
	"github.com/yungbote/philoatlas-backend/internal/data/db"
	"github.com/yungbote/philoatlas-backend/internal/observability"
	"github.com/yungbote/philoatlas-backend/internal/platform/envutil"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
	"github.com/yungbote/philoatlas-backend/internal/platform/neo4jdb"
)

const devJWTSecret = "philoatlas-dev-secret"

type Config struct {
	Port    string
	AppEnv  string
	LogMode string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	DB    db.Config
	Redis redis.Config
	Neo4j neo4jdb.Config
	Otel  observability.OtelConfig

	SchemaCacheTTL     time.Duration
	CORSAllowedOrigins []string
	AuthRateLimitRPS   float64
	AuthRateLimitBurst int
	MetricsEnabled     bool
}

func (c Config) IsProduction() bool {
	switch strings.ToLower(c.AppEnv) {
	case "prod", "production":
		return true
	}
	return false
}

// LoadDotEnv loads .env from the working directory when one exists. Real environment variables win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func envLogMode() string {
	return envutil.String("LOG_MODE", "development")
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:    envutil.String("PORT", "8080"),
		AppEnv:  envutil.String("APP_ENV", "development"),
		LogMode: envLogMode(),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", ""),
		AccessTokenTTL: envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour),

		DB: db.Config{
			Driver:     envutil.String("DB_DRIVER", db.DriverPostgres),
			Host:       envutil.String("POSTGRES_HOST", "localhost"),
			Port:       envutil.String("POSTGRES_PORT", "5432"),
			User:       envutil.String("POSTGRES_USER", "postgres"),
			Password:   envutil.String("POSTGRES_PASSWORD", ""),
			Name:       envutil.String("POSTGRES_NAME", "philoatlas"),
			SSLMode:    envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath: envutil.String("SQLITE_PATH", "philoatlas.db"),
		},
		Redis: redis.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
		},
		Neo4j: neo4jdb.Config{
			URI:      envutil.String("NEO4J_URI", ""),
			User:     envutil.String("NEO4J_USER", "neo4j"),
			Password: envutil.String("NEO4J_PASSWORD", ""),
			Database: envutil.String("NEO4J_DATABASE", ""),
			Timeout:  envutil.Seconds("NEO4J_TIMEOUT_SECONDS", 10*time.Second),
		},
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "philoatlas"),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", true),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1),
		},

		SchemaCacheTTL:     envutil.Seconds("SCHEMA_CACHE_TTL", 0),
		CORSAllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),
		AuthRateLimitRPS:   envutil.Float("AUTH_RATE_LIMIT_RPS", 5),
		AuthRateLimitBurst: envutil.Int("AUTH_RATE_LIMIT_BURST", 10),
		MetricsEnabled:     envutil.Bool("METRICS_ENABLED", true),
	}
	cfg.Otel.Environment = cfg.AppEnv
	cfg.Otel.Version = Version

	if cfg.JWTSecretKey == "" {
		if cfg.IsProduction() {
			return Config{}, errors.New("JWT_SECRET_KEY must be set in production")
		}
		log.Warn("JWT_SECRET_KEY not set, using development secret")
		cfg.JWTSecretKey = devJWTSecret
	}
	return cfg, nil
}

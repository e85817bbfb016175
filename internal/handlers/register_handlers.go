package handlers

import (
	"fmt"
	"net/http"

	"github.com/SscSPs/phone_store_caisse/cmd/docs"
	portssvc "github.com/SscSPs/phone_store_caisse/internal/core/ports/services"
	"github.com/SscSPs/phone_store_caisse/internal/middleware"
	"github.com/SscSPs/phone_store_caisse/internal/platform/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes. redisClient may be nil, in which case
// rate limit counters stay in process memory.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	redisClient *redis.Client,
) error {
	registerValidators()

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	loginLimiter, err := middleware.NewLimiter(cfg.LoginRateLimit, "caisse-login", redisClient)
	if err != nil {
		return fmt.Errorf("invalid LOGIN_RATE_LIMIT: %w", err)
	}
	apiLimiter, err := middleware.NewLimiter(cfg.RateLimit, "caisse-api", redisClient)
	if err != nil {
		return fmt.Errorf("invalid RATE_LIMIT: %w", err)
	}

	registerAuthRoutes(r.Group("/api/v1/auth", middleware.RateLimit(loginLimiter)), services.Auth)

	setupAPIV1Routes(r, cfg, services, middleware.RateLimit(apiLimiter))

	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the authenticated /api/v1 group and delegates to entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	limit gin.HandlerFunc,
) {
	v1 := r.Group("/api/v1", limit, middleware.AuthMiddleware(cfg.JWTSecret))

	registerCaisseRoutes(v1, service.Caisse, service.Reporting)
	registerOperationRoutes(v1, service.Operation, service.Caisse, cfg)
	registerUserRoutes(v1, service.Auth)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Disposition", headerTotalCount, headerExportTruncated},
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

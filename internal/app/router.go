package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"warden.dev/warden/internal/api/apispec"
	"warden.dev/warden/internal/api/handlers"
	"warden.dev/warden/internal/api/middleware"
	"warden.dev/warden/internal/config"
	"warden.dev/warden/internal/domain"
	"warden.dev/warden/internal/policy"
)

// defaultAllowedOrigins are the local development frontends.
var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

type routerDeps struct {
	Config  *config.Config
	Server  *handlers.Server
	JWT     middleware.JWTConfig
	Policy  middleware.CapabilityChecker
	Metrics http.Handler
}

func newRouter(deps routerDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.ErrorHandler())
	router.Use(cors.New(buildCORSConfig(deps.Config)))

	server := deps.Server
	auth := middleware.JWTAuth(deps.JWT)

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	pages := router.Group("/auth", auth)
	pages.GET("/", server.ListConfigs)
	pages.GET("/config/new/", server.ChooseProvider)
	pages.GET("/config/new/:kind", server.NewConfig)
	pages.POST("/config/new/:kind", server.NewConfig)
	pages.GET("/config/edit/:id", server.EditConfig)
	pages.POST("/config/edit/:id", server.EditConfig)

	api := router.Group(apispec.BasePath, middleware.MustOpenAPIValidator(apispec.BasePath))
	api.GET("/health/live", server.GetLiveness)
	api.GET("/health/ready", server.GetReadiness)

	authAPI := api.Group("/auth", auth)
	authAPI.GET("/providers",
		middleware.RequireCapability(deps.Policy, policy.Object("*"), domain.CapabilityView),
		server.ListAuthProviders,
	)
	authAPI.GET("/configs", server.ListAuthProviderConfigs)
	authAPI.GET("/configs/:config_id", server.GetAuthProviderConfig)
	authAPI.GET("/configs/:config_id/transactions", server.ListAuthProviderConfigTransactions)

	return router
}

// buildCORSConfig turns the server CORS settings into a cors.Config.
// A "*" origin only takes effect with UnsafeAllowAllOrigins, which also
// disables credentials.
func buildCORSConfig(cfg *config.Config) cors.Config {
	out := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: cfg.Server.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	if cfg.Server.UnsafeAllowAllOrigins {
		out.AllowAllOrigins = true
		out.AllowCredentials = false
		return out
	}

	origins := make([]string, 0, len(cfg.Server.AllowedOrigins))
	for _, origin := range cfg.Server.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" || origin == "*" {
			continue
		}
		origins = append(origins, origin)
	}
	if len(origins) == 0 {
		origins = append(origins, defaultAllowedOrigins...)
	}
	out.AllowOrigins = origins
	return out
}

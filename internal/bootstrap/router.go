package bootstrap

import (
	"database/sql"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/devsim-ops/go-dashboard-backend/internal/api/http"
	"github.com/devsim-ops/go-dashboard-backend/internal/api/http/middleware"
	monitoringhttp "github.com/devsim-ops/go-dashboard-backend/internal/monitoring/http"
	platformhttp "github.com/devsim-ops/go-dashboard-backend/internal/platform/http"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Redis       *redis.Client
	DB          *sql.DB
	Monitoring  *monitoringhttp.Handler
	Platform    *platformhttp.Handler
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-Request-Id")
	r.Use(cors.New(corsCfg))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Redis, dep.DB)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.RequestIDMiddleware())

	dep.Monitoring.Register(api.Group("/monitoring"))
	dep.Platform.Register(api.Group("/platform"))

	return r
}

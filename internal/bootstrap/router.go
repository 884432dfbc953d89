package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	httpapi "github.com/click-call/click-call-backend/internal/api/http"
	"github.com/click-call/click-call-backend/internal/api/http/middleware"
	"github.com/click-call/click-call-backend/internal/auth"
	"github.com/click-call/click-call-backend/internal/callsession"
	sessionhttp "github.com/click-call/click-call-backend/internal/callsession/http"
	projecthttp "github.com/click-call/click-call-backend/internal/projects/http"
	"github.com/click-call/click-call-backend/internal/projects/service"
)

type RouterDeps struct {
	ServiceName   string
	Version       string
	CanonicalHost string
	AllowOrigins  []string

	DB    *pgxpool.Pool
	Redis *redis.Client

	Projects *service.Service
	Sessions *callsession.Manager
	Gate     *auth.Gate
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	if len(dep.AllowOrigins) == 1 && dep.AllowOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = dep.AllowOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))
	r.Use(middleware.RequestIDMiddleware())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	auth.Register(authGroup, dep.Gate)

	admin := api.Group("/admin")
	admin.Use(auth.RequireAdmin(dep.Gate))
	projecthttp.Register(admin, dep.Projects, dep.CanonicalHost)

	public := api.Group("/public")
	public.Use(middleware.RateLimit(rate.Limit(10), 20))
	projecthttp.RegisterPublic(public, dep.Projects, dep.CanonicalHost)
	sessionhttp.Register(public, dep.Projects, dep.Sessions)

	return r
}

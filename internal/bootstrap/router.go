package bootstrap

import (
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	httpapi "github.com/tencoder/tencoder-api/internal/api/http"
	"github.com/tencoder/tencoder-api/internal/api/http/middleware"
	"github.com/tencoder/tencoder-api/internal/auth"
	"github.com/tencoder/tencoder-api/internal/events"
	projecthttp "github.com/tencoder/tencoder-api/internal/projects/http"
	"github.com/tencoder/tencoder-api/internal/projects/repository"
	"github.com/tencoder/tencoder-api/internal/projects/service"
	"github.com/tencoder/tencoder-api/internal/users"
)

type RouterDeps struct {
	Version     string
	Environment string
	StartedAt   time.Time

	DB       *pgxpool.Pool
	Redis    *redis.Client
	Firebase *fbauth.Client

	CORSOrigins []string

	UploadMaxBytes int64
	UploadRate     float64
	UploadBurst    int
}

// BuildRouter wires repositories, services and handlers into a gin
// engine. Everything under /api requires a resolved user.
func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.RequestID())

	corsCfg := cors.DefaultConfig()
	if len(dep.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = dep.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders,
		"Authorization", "X-User-Id", "X-User-Email", "X-User-Name")
	r.Use(cors.New(corsCfg))

	healthHandler := httpapi.NewHealthHandler(dep.Version, dep.Environment, dep.StartedAt, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	userRepo := users.NewRepo(dep.DB)
	projectRepo := repository.NewProjectRepository(dep.DB)
	prdRepo := repository.NewPRDRepository(dep.DB)
	epicRepo := repository.NewEpicRepository(dep.DB)
	signalRepo := repository.NewSignalRepository(dep.DB)
	digestRepo := repository.NewDigestRepository(dep.DB)

	pub := events.NewPublisher(dep.Redis)

	projectSvc := service.NewProjectService(projectRepo, prdRepo, epicRepo, signalRepo, digestRepo, pub)
	prdSvc := service.NewPRDService(projectRepo, prdRepo, pub)

	api := r.Group("/api")
	api.Use(auth.WithUser(userRepo, dep.Firebase, dep.Environment))

	handler := projecthttp.NewHandler(projectSvc, prdSvc, dep.UploadMaxBytes)
	handler.Register(api, middleware.RateLimit(rate.Limit(dep.UploadRate), dep.UploadBurst))

	return r
}

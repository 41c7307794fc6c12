package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type HealthResponse struct {
	OK          bool      `json:"ok"`
	Version     string    `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
	Uptime      float64   `json:"uptime"`
	DB          string    `json:"db,omitempty"`
	Redis       string    `json:"redis,omitempty"`
}

type HealthHandler struct {
	version     string
	environment string
	startedAt   time.Time
	db          *pgxpool.Pool
	redis       *redis.Client
}

func NewHealthHandler(version, environment string, startedAt time.Time, db *pgxpool.Pool, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{
		version:     version,
		environment: environment,
		startedAt:   startedAt,
		db:          db,
		redis:       rdb,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
	defer cancel()

	ok := true

	dbStatus := "disabled"
	if h.db != nil {
		if err := h.db.Ping(pingCtx); err != nil {
			dbStatus = "down"
			ok = false
		} else {
			dbStatus = "up"
		}
	}

	redisStatus := "disabled"
	if h.redis != nil {
		if err := h.redis.Ping(pingCtx).Err(); err != nil {
			redisStatus = "down"
		} else {
			redisStatus = "up"
		}
	}

	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, HealthResponse{
		OK:          ok,
		Version:     h.version,
		Timestamp:   time.Now().UTC(),
		Environment: h.environment,
		Uptime:      time.Since(h.startedAt).Seconds(),
		DB:          dbStatus,
		Redis:       redisStatus,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}

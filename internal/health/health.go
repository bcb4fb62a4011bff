package health

import (
	"context"
	"time"

	"agroshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handlers reports process and dependency health.
type Handlers struct {
	DB      *gorm.DB
	Rdb     *redis.Client
	started time.Time
}

func NewHandlers(db *gorm.DB, rdb *redis.Client) *Handlers {
	return &Handlers{DB: db, Rdb: rdb, started: time.Now()}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// GET /health/json — overall status is "ok" only when every dependency pings.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	ctx := context.Background()
	deps := map[string]dependencyStatus{
		"database": h.pingDB(),
		"redis":    h.pingRedis(ctx),
	}
	status := "ok"
	for _, d := range deps {
		if d.Status != "ok" {
			status = "degraded"
		}
	}
	out := fiber.Map{
		"service":        "agroshare-api",
		"status":         status,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"dependencies":   deps,
	}
	if status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(out)
	}
	return c.JSON(out)
}

// GET /health — bare liveness probe.
func (h *Handlers) Live(c *fiber.Ctx) error {
	return response.Success(c, "OK", fiber.Map{"alive": true}, nil)
}

func (h *Handlers) pingDB() dependencyStatus {
	if h.DB == nil {
		return dependencyStatus{Status: "not_configured"}
	}
	sqlDB, err := h.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		return dependencyStatus{Status: "down", Error: err.Error()}
	}
	return dependencyStatus{Status: "ok"}
}

func (h *Handlers) pingRedis(ctx context.Context) dependencyStatus {
	if h.Rdb == nil {
		return dependencyStatus{Status: "not_configured"}
	}
	if err := h.Rdb.Ping(ctx).Err(); err != nil {
		return dependencyStatus{Status: "down", Error: err.Error()}
	}
	return dependencyStatus{Status: "ok"}
}

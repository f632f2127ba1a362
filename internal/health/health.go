package health

import (
	"context"
	"time"

	"household-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DepStatus reports one dependency's connectivity.
type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

// Result is the /health/json body.
type Result struct {
	Status       string               `json:"status"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

// Handlers pings the relational store and Redis.
type Handlers struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

// JSON GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	result := Collect(c.Context(), h.DB, h.Rdb)
	status := fiber.StatusOK
	if result.Status != "ok" {
		status = fiber.StatusServiceUnavailable
	}
	return response.JSON(c, status, result)
}

// Collect gathers dependency statuses; nil dependencies report disconnected.
func Collect(ctx context.Context, db *gorm.DB, rdb *redis.Client) Result {
	deps := map[string]DepStatus{
		"database": pingDB(db),
		"redis":    pingRedis(ctx, rdb),
	}
	status := "ok"
	for _, d := range deps {
		if d.Status != "connected" {
			status = "issue"
		}
	}
	return Result{Status: status, Dependencies: deps}
}

func pingDB(db *gorm.DB) DepStatus {
	if db == nil {
		return DepStatus{Status: "disconnected"}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return DepStatus{Status: "disconnected"}
	}
	start := time.Now()
	if err := sqlDB.Ping(); err != nil {
		return DepStatus{Status: "disconnected"}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: "connected", PingMs: &ms}
}

func pingRedis(ctx context.Context, rdb *redis.Client) DepStatus {
	if rdb == nil {
		return DepStatus{Status: "disconnected"}
	}
	start := time.Now()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return DepStatus{Status: "disconnected"}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: "connected", PingMs: &ms}
}

package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const readinessTimeout = 3 * time.Second

// Liveness handles GET /health. It never touches a dependency.
func Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

func MongoCheck(client *mongo.Client) Check {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}

func RedisCheck(rdb redis.UniversalClient) Check {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}

// ReadinessHandler handles GET /health/ready by running every check in
// parallel. Any failing check turns the answer into a 503.
type ReadinessHandler struct {
	checks map[string]Check
}

func NewReadinessHandler(checks map[string]Check) *ReadinessHandler {
	return &ReadinessHandler{checks: checks}
}

type checkResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status string                 `json:"status"`
	Checks map[string]checkResult `json:"checks"`
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		res = readinessResponse{Status: "ok", Checks: make(map[string]checkResult, len(h.checks))}
	)
	for name, check := range h.checks {
		name, check := name, check
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := checkResult{Status: "ok"}
			if err := check(ctx); err != nil {
				r = checkResult{Status: "unhealthy", Error: err.Error()}
			}
			mu.Lock()
			res.Checks[name] = r
			if r.Error != "" {
				res.Status = "degraded"
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	code := http.StatusOK
	if res.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, res)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"northwind/internal/db"
	"northwind/internal/repository"
)

// Health reports store reachability for probes. Postgres down means the
// API cannot serve, so 503; the report cache is optional and only
// changes the reported state.
func Health(store *repository.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		overall := "ok"
		postgres := "up"
		if err := store.Ping(c.Request.Context()); err != nil {
			postgres = "down"
			overall = "degraded"
			status = http.StatusServiceUnavailable
		}

		redisState := "disabled"
		if rdb != nil {
			redisState = "up"
			if err := db.PingRedis(c.Request.Context(), rdb); err != nil {
				redisState = "down"
			}
		}

		c.JSON(status, gin.H{
			"status":   overall,
			"postgres": postgres,
			"redis":    redisState,
		})
	}
}

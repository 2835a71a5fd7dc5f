package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health - состояние БД и Redis; 503 только если недоступна БД
func Health(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		body := gin.H{
			"status": "ok",
			"time":   d.now().Format(time.RFC3339),
			"db":     "ok",
			"redis":  "ok",
		}

		if err := d.Store.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["db"] = err.Error()
		}
		if err := d.Redis.Ping(ctx).Err(); err != nil {
			body["redis"] = err.Error()
		}

		c.JSON(status, body)
	}
}

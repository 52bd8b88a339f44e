package handler

import (
	"net/http"

	"virtual-wallet-service/internal/adapter/http/dto"
	"virtual-wallet-service/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// HealthCheck returns a handler that pings every dependency.
// All healthy: 200 {"status":"ok"}; otherwise 503.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unavailable",
					"detail": checker.Name() + " unreachable",
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Root handles GET /, a service identity document.
func Root(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.ServiceInfo{
			Service: serviceName,
			Status:  "running",
			Health:  "/health",
		})
	}
}

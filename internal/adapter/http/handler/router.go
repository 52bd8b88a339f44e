package handler

import (
	"virtual-wallet-service/internal/adapter/http/middleware"
	"virtual-wallet-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ServiceName identifies the service in the root document.
const ServiceName = "virtual-wallet-service"

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	TransactionSvc ports.TransactionService
	ReportingSvc   ports.ReportingService
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	walletHandler := NewWalletHandler(deps.TransactionSvc, deps.ReportingSvc)

	r.GET("/", Root(ServiceName))
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	r.POST("/transact", walletHandler.Transact)
	r.GET("/balance/:user_id", walletHandler.GetBalance)
	r.GET("/transactions/:user_id", walletHandler.GetHistory)

	return r
}

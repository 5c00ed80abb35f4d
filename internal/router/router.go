package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bkcnorm/internal/config"
	"bkcnorm/internal/handler"
	"bkcnorm/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	bookingH *handler.BookingHandler,
	healthH *handler.HealthHandler,
	corsCfg config.CORSConfig,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(corsCfg.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	bookings := v1.Group("/bookings")
	bookings.GET("/columns", bookingH.Columns)
	bookings.POST("/normalize", bookingH.Normalize)
	bookings.POST("/normalize/batch", bookingH.NormalizeBatch)
	bookings.POST("/export", bookingH.Export)

	return r
}

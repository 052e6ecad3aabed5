package http

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go.ngs.io/xch4-api/internal/usecase"
)

// SetupRouter creates and configures the Gin router.
// An empty allowedOrigins allows all origins.
func SetupRouter(gridUC *usecase.GridUseCase, allowedOrigins []string, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.ExposeHeaders = []string{requestIDHeader}
	router.Use(cors.New(corsConfig))

	handler := NewHandler(gridUC)

	v1 := router.Group("/v1")
	v1.GET("/products", handler.GetProducts)
	v1.GET("/grid", handler.GetGrid)
	v1.GET("/timeseries", handler.GetTimeSeries)
	v1.GET("/point", handler.GetPoint)

	router.GET("/health", handler.HealthCheck)

	return router
}

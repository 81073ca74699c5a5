package handler

import (
	"github.com/SergeiKhy/visit-tracker/internal/middleware"
	"github.com/SergeiKhy/visit-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(
	visitService service.VisitService,
	health *HealthHandler,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.Default()

	// URL передаётся как percent-encoded path-параметр; матчим по сырому
	// пути и раскодируем его уже в обработчике
	router.UseRawPath = true
	router.UnescapePathValues = false

	// Middleware для логгирования
	router.Use(func(c *gin.Context) {
		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
		)
		c.Next()
	})

	// CORS для расширения браузера
	router.Use(middleware.CORS())

	// Инициализация обработчика посещений
	visitHandler := NewVisitHandler(visitService, logger)

	api := router.Group("/api")
	{
		api.POST("/visits", visitHandler.CreateVisit)
		api.GET("/visits", visitHandler.GetAllVisits)
		api.GET("/visits/url/:url", visitHandler.GetVisitsByURL)
		api.GET("/visits/url/:url/latest", visitHandler.GetLatestVisit)
	}

	router.GET("/health", health.Check)
	router.GET("/", health.Root)

	return router
}

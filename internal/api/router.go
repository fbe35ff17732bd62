// Package api monta as rotas HTTP do serviço de conversão.
package api

import (
	"txt-converter-service/internal/api/handlers"
	"txt-converter-service/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// NewRouter registra as rotas; com jwtSecret preenchido, /api/v1 exige token Bearer.
func NewRouter(h *handlers.ConverterHandler, jwtSecret string, maxUploadMB int) *gin.Engine {
	router := gin.Default()
	router.MaxMultipartMemory = int64(maxUploadMB) << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "service": "txt-converter-service"})
	})

	apiV1 := router.Group("/api/v1")
	if jwtSecret != "" {
		apiV1.Use(middleware.RequireJWT([]byte(jwtSecret)))
	}
	{
		apiV1.POST("/convert/txt", h.HandleTxtConversion)
		apiV1.POST("/convert/rows", h.HandleRowsConversion)
		apiV1.GET("/conversions", h.HandleRecentConversions)
	}

	return router
}

package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func New(handler *ControlHandler, logger *logrus.Entry) *gin.Engine {
	engine := gin.New()
	engine.Use(requestLogger(logger), gin.Recovery())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	api.GET("/status", handler.GetStatus)
	api.GET("/characteristics/:target", handler.GetCharacteristic)
	api.PUT("/characteristics/:target", handler.PutCharacteristic)
	api.POST("/sensor/press", handler.PressSensor)
	api.POST("/trigger", handler.Trigger)

	return engine
}

func requestLogger(logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Debug("HTTP request")
	}
}

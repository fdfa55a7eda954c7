package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/classifieds-backend/internal/logger"
	"github.com/ignatzorin/classifieds-backend/internal/pkg/apperror"
)

// ErrorHandler отвечает на ошибки, добавленные через c.Error, если хэндлер
// сам ничего не записал. AppError отдаёт свой статус и сообщение, остальные
// ошибки маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		status, message := apperror.Describe(err.Err)

		fields := logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": status,
		}
		if status >= http.StatusInternalServerError {
			logger.Log.WithFields(fields).Error("Request error")
		} else {
			logger.Log.WithFields(fields).Debug("Request error")
		}

		if c.Writer.Written() {
			return
		}
		if apperror.IsUnauthorized(err.Err) {
			SetAuthChallenge(c)
		}
		c.JSON(status, gin.H{"success": false, "error": message})
	}
}

// Recovery перехватывает панику хэндлера и отвечает 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Log.WithFields(logrus.Fields{
			"panic":  recovered,
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("Panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "внутренняя ошибка сервера"})
	})
}

// RequestLogger пишет каждый запрос в структурированный лог.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Log.WithFields(logrus.Fields{
			"status":  c.Writer.Status(),
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"ip":      c.ClientIP(),
			"latency": time.Since(start).String(),
		}).Info("request")
	}
}

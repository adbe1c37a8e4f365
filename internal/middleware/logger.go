package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger logs every request, recovers from panics, and surfaces
// handler errors with their context.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error("panic recovered",
					zap.Any("panic", recovered),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.ByteString("stack", debug.Stack()))

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   gin.H{"code": "INTERNAL_SERVER_ERROR", "message": "Internal server error"},
				})
				return
			}

			fields := []zap.Field{
				zap.Int("status", c.Writer.Status()),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
				zap.Int64("user_id", c.GetInt64("user_id")),
				zap.Duration("latency", time.Since(start)),
			}
			for _, err := range c.Errors {
				fields = append(fields, zap.Error(err))
			}

			switch {
			case c.Writer.Status() >= http.StatusInternalServerError:
				log.Error("request failed", fields...)
			case len(c.Errors) > 0:
				log.Warn("request completed with errors", fields...)
			default:
				log.Info("request", fields...)
			}
		}()

		c.Next()
	}
}

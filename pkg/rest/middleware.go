package rest

import (
	"context"
	"net/http"
	"time"

	"group-mail/pkg/logger"
	"group-mail/pkg/reasoncodes"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Middleware is attached to a route group; "*" means the whole engine.
type Middleware struct {
	Handler gin.HandlerFunc
	Group   string
}

func NewMiddleware(group string, handler gin.HandlerFunc) Middleware {
	return Middleware{
		Group:   group,
		Handler: handler,
	}
}

const RequestIdHeader = "X-Request-Id"

// RequestId tags every request with an id, reusing the caller's header when present.
func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(RequestIdHeader)
		if requestId == "" {
			requestId = uuid.NewString()
		}

		c.Set(string(logger.RequestIdKey), requestId)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.RequestIdKey, requestId))
		c.Writer.Header().Set(RequestIdHeader, requestId)
		c.Next()
	}
}

func RequestLogger(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l.WithContext(c.Request.Context()).Infof(
			"%s %s -> %d (%s)",
			c.Request.Method,
			c.FullPath(),
			c.Writer.Status(),
			time.Since(start),
		)
	}
}

func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if allowedOrigin == "" {
			c.Next()
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// BodyLimit caps request bodies at maxBytes. Declared oversize bodies are
// refused up front; chunked ones fail when the handler reads past the cap.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":       "Request body too large",
				"reason_code": reasoncodes.ErrRequestTooLarge,
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

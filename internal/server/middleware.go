package server

import (
	"log/slog"
	"net/http"
	"time"

	pmodels "PostItBot/pkg/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID = "X-Request-ID"
	// headerPassword carries the shared password without putting it in the URL.
	headerPassword = "X-Notes-Password"
	queryPassword  = "password"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(headerRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// accessLog logs one line per request. Query strings are left out because
// they may contain the password.
func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		slog.Log(c.Request.Context(), level, "HTTP request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
			slog.String("request_id", c.GetString(headerRequestID)),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AddAllowHeaders(headerPassword, headerRequestID)
	cfg.AddExposeHeaders(headerRequestID)
	return cors.New(cfg)
}

// passwordFrom prefers the header over the legacy query parameter.
func passwordFrom(c *gin.Context) string {
	if password := c.GetHeader(headerPassword); password != "" {
		return password
	}
	return c.Query(queryPassword)
}

// requirePassword rejects the request before any store access unless it
// carries the shared password.
func (s *Server) requirePassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.guard.Authorize(passwordFrom(c)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, pmodels.ErrorResponse{Detail: err.Error()})
			return
		}
		c.Next()
	}
}

package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"northwind/internal/auth"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// RequestID tags every request with an id, honoring one supplied by the
// caller, and echoes it in the response headers.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// AccessLog writes one line per response: error for 5xx, warn for 4xx,
// info otherwise.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		evt := log.Info()
		if status >= http.StatusInternalServerError {
			evt = log.Error()
		} else if status >= http.StatusBadRequest {
			evt = log.Warn()
		}
		evt.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("request_id", requestID(c)).
			Msg("response")
	}
}

// Recovery turns a handler panic into a logged plain 500 envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("request_id", requestID(c)).
					Str("path", c.Request.URL.Path).
					Msg("panic_recovered")
				writeError(c, http.StatusInternalServerError, gin.H{
					"message":    "internal server error",
					"statusCode": http.StatusInternalServerError,
				})
			}
		}()
		c.Next()
	}
}

// AuthRequired rejects requests without a valid bearer token. The 401
// body mirrors the error envelope but sits outside the query/store
// taxonomy.
func AuthRequired(v *auth.JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "missing authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(c, "authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := v.ValidateToken(parts[1])
		if err != nil {
			log.Warn().Err(err).Str("request_id", requestID(c)).Msg("jwt_rejected")
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set("claims", claims)
		c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	writeError(c, http.StatusUnauthorized, gin.H{
		"message":    message,
		"statusCode": http.StatusUnauthorized,
	})
}

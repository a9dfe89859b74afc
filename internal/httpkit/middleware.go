package httpkit

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Domenick1991/tourdesk/internal/auth"
	"github.com/Domenick1991/tourdesk/internal/logger"
	"github.com/Domenick1991/tourdesk/internal/metrics"
	"github.com/Domenick1991/tourdesk/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"

	// ContextAdminKey is set on the gin context once Basic auth succeeds.
	ContextAdminKey = "admin"

	msgRateLimited = "Too many requests, please try again later."
	msgBodyTooBig  = "request body too large"
)

// Authenticator checks an Authorization header value.
type Authenticator interface {
	Authenticate(header string) error
}

var _ Authenticator = (*auth.BasicAuthenticator)(nil)

// RequestID propagates X-Request-ID, generating one when absent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID))
		c.Next()
	}
}

// RequestLogger logs HTTP requests with timing.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		requestID, _ := c.Request.Context().Value(logger.RequestIDKey).(string)
		log.HTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start), c.ClientIP(), requestID)
	}
}

// SecurityHeaders adds security headers to responses.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// RateLimit rejects a client IP once the limiter says its window is full.
// A limiter backend error lets the request through and is logged.
func RateLimit(limiter ratelimit.Limiter, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		allowed, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			log.WithContext(c.Request.Context()).Warn().Err(err).Str("ip", ip).Msg("rate limiter unavailable")
			c.Next()
			return
		}
		if !allowed {
			log.RateLimitExceeded(ip, c.Request.URL.Path)
			metrics.RecordRateLimited()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: msgRateLimited})
			return
		}
		c.Next()
	}
}

// BasicAuth guards admin routes. Every failure gets the same 401 body.
func BasicAuth(authenticator Authenticator, realm string, log *logger.Logger) gin.HandlerFunc {
	challenge := `Basic realm="` + realm + `", charset="UTF-8"`
	return func(c *gin.Context) {
		if err := authenticator.Authenticate(c.GetHeader("Authorization")); err != nil {
			reason := err.Error()
			if cause := errors.Unwrap(err); cause != nil {
				reason = cause.Error()
			}
			log.AuthFailed(c.ClientIP(), c.Request.URL.Path, reason)
			metrics.RecordAuthAttempt(false)
			c.Header("WWW-Authenticate", challenge)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: auth.UnauthorizedMessage})
			return
		}
		metrics.RecordAuthAttempt(true)
		c.Set(ContextAdminKey, true)
		c.Next()
	}
}

// BodyLimit caps the request body. Declared oversize bodies are refused up
// front; chunked ones fail when the handler reads past the limit.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: msgBodyTooBig})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// IsBodyTooLarge reports whether err came from a BodyLimit reader.
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID  = "X-Request-ID"
	ctxRequestID     = "request_id"
	maxRequestIDSize = 64
)

// recovery turns panics into the generic 500 response.
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		detail := fmt.Sprint(recovered)
		s.log.Errorw("request panicked",
			"request_id", c.GetString(ctxRequestID),
			"path", c.Request.URL.Path,
			"panic", detail,
		)
		failDetail(c, http.StatusInternalServerError, msgInternal, detail)
	})
}

// requestID echoes a caller-supplied X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" || len(id) > maxRequestIDSize {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}

// bodySizeLimit rejects declared oversize bodies up front and caps the
// reader for bodies that lie about their length.
func (s *Server) bodySizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			s.metrics.ObserveRejection("too_large")
			fail(c, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.cfg.RateLimit.Enabled {
			c.Next()
			return
		}
		if !s.limiter.Allow(c.ClientIP(), time.Now()) {
			s.metrics.ObserveRejection("ratelimit")
			c.Header("Retry-After", "1")
			fail(c, http.StatusTooManyRequests, "Rate limit exceeded.")
			return
		}
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		s.metrics.ObserveRequest(c.FullPath(), c.Request.Method, status, elapsed)
		s.log.Debugw("request",
			"request_id", c.GetString(ctxRequestID),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"client_ip", c.ClientIP(),
			"duration", elapsed,
		)
	}
}

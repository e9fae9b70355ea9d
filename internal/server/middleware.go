package server

import (
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/teamspace/internal/observability/metrics"
)

const contextUserIDKey = "user_id"

func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, err := s.authsvc.Authenticate(c.Request.Context(), sid)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, session.UserID.String())
		c.Next()
	}
}

func (s *Server) userIDFromSession(c *gin.Context) (snowflake.ID, bool) {
	raw := c.GetString(contextUserIDKey)
	if raw == "" {
		return 0, false
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

// MetricsMiddleware records request counters and latency per route template.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.IncHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()))
		m.ObserveHTTPDuration(c.Request.Method, route, time.Since(start))
	}
}

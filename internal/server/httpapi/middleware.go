package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/onomatheater/blog-api/internal/common"
	"github.com/onomatheater/blog-api/internal/server/models"
)

const viewerContextKey = "viewer"

// bearerToken extracts the token from an Authorization: Bearer header.
// Returns "" when the header is absent or not bearer-shaped.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// requireAuth resolves the bearer token to a user and aborts with 401 on
// any failure.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.sessions.ResolveRequired(c.Request.Context(), bearerToken(c))
		if err != nil {
			s.writeError(c, common.ErrUnauthenticated)
			return
		}
		c.Set(viewerContextKey, user)
		c.Next()
	}
}

// optionalAuth resolves the bearer token if one is present; requests
// without a usable token proceed anonymously.
func (s *Server) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := s.sessions.ResolveOptional(c.Request.Context(), bearerToken(c)); user != nil {
			c.Set(viewerContextKey, user)
		}
		c.Next()
	}
}

// viewer returns the resolved user, or nil for anonymous requests.
func viewer(c *gin.Context) *models.User {
	v, ok := c.Get(viewerContextKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// requestLogger logs one line per request with method, path, status and
// duration.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

// recovery converts panics into the generic internal error body without
// leaking internals to the client.
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.logger.Error(c.Request.Context(), "panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			errorResponse{Code: "internal_error", Detail: "internal server error"})
	})
}

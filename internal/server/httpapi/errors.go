package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onomatheater/blog-api/internal/common"
)

// errorResponse is the uniform error body: a machine-readable code plus a
// human-readable detail.
type errorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// writeError maps service errors onto HTTP statuses in one place so the
// handlers never hand-pick status codes.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Code: "validation_error", Detail: err.Error()})
	case errors.Is(err, common.ErrDuplicateIdentity):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Code: "duplicate_identity", Detail: "email or username already registered"})
	case errors.Is(err, common.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Code: "invalid_credentials", Detail: "invalid email or password"})
	case errors.Is(err, common.ErrTokenRevoked):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Code: "token_revoked", Detail: "refresh token has been revoked"})
	case errors.Is(err, common.ErrInvalidToken):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Code: "invalid_token", Detail: "token is invalid or expired"})
	case errors.Is(err, common.ErrUnauthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Code: "unauthenticated", Detail: "authentication required"})
	case errors.Is(err, common.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{Code: "forbidden", Detail: "not allowed to modify this resource"})
	case errors.Is(err, common.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Code: "not_found", Detail: "resource not found"})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Code: "internal_error", Detail: "internal server error"})
	}
}

func badRequest(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Code: "validation_error", Detail: detail})
}

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onomatheater/blog-api/internal/server/models"
)

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (s *Server) listComments(c *gin.Context) {
	postID, ok := idParam(c)
	if !ok {
		return
	}

	query := models.DefaultCommentListQuery()
	skip, limit, sortAsc, ok := parsePagination(c, models.DefaultCommentLimit)
	if !ok {
		return
	}
	query.Skip, query.Limit, query.SortAsc = skip, limit, sortAsc

	items, err := s.comments.ListForPost(c.Request.Context(), viewer(c), postID, query)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) createComment(c *gin.Context) {
	postID, ok := idParam(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "content is required")
		return
	}

	comment, err := s.comments.Create(c.Request.Context(), viewer(c), postID, req.Content)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) getComment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	comment, err := s.comments.Get(c.Request.Context(), viewer(c), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (s *Server) updateComment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "content is required")
		return
	}

	comment, err := s.comments.Update(c.Request.Context(), viewer(c), id, req.Content)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (s *Server) deleteComment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := s.comments.Delete(c.Request.Context(), viewer(c), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

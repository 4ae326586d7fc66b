package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/onomatheater/blog-api/internal/server/models"
)

const maxListLimit = 100

type createPostRequest struct {
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content" binding:"required"`
	IsPublished *bool  `json:"is_published"`
}

// idParam parses the numeric :id path segment.
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// parsePostListQuery reads skip/limit/sort/is_published/q query params,
// falling back to the canonical feed shape.
func parsePostListQuery(c *gin.Context) (models.PostListQuery, bool) {
	query := models.DefaultPostListQuery()

	skip, limit, sortAsc, ok := parsePagination(c, models.DefaultPostLimit)
	if !ok {
		return query, false
	}
	query.Skip, query.Limit, query.SortAsc = skip, limit, sortAsc

	if raw, present := c.GetQuery("is_published"); present {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "is_published must be a boolean")
			return query, false
		}
		query.Published = &published
	}

	query.Search = c.Query("q")
	return query, true
}

func parsePagination(c *gin.Context, defaultLimit int) (skip, limit int, sortAsc, ok bool) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		badRequest(c, "skip must be a non-negative integer")
		return 0, 0, false, false
	}

	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > maxListLimit {
		badRequest(c, "limit must be between 1 and 100")
		return 0, 0, false, false
	}

	switch c.DefaultQuery("sort", "desc") {
	case "desc":
		sortAsc = false
	case "asc":
		sortAsc = true
	default:
		badRequest(c, "sort must be asc or desc")
		return 0, 0, false, false
	}

	return skip, limit, sortAsc, true
}

func (s *Server) listPosts(c *gin.Context) {
	query, ok := parsePostListQuery(c)
	if !ok {
		return
	}

	items, err := s.posts.List(c.Request.Context(), viewer(c), query)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) getPost(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	post, err := s.posts.Get(c.Request.Context(), viewer(c), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title and content are required")
		return
	}

	isPublished := true
	if req.IsPublished != nil {
		isPublished = *req.IsPublished
	}

	post, err := s.posts.Create(c.Request.Context(), viewer(c), req.Title, req.Content, isPublished)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (s *Server) updatePost(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var patch models.PostPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "malformed request body")
		return
	}

	post, err := s.posts.Update(c.Request.Context(), viewer(c), id, patch)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) deletePost(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := s.posts.Delete(c.Request.Context(), viewer(c), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

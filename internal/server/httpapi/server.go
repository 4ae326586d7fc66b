// Package httpapi is the HTTP transport adapter: a gin router over the
// service layer plus the server lifecycle.
package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/onomatheater/blog-api/internal/logging"
	"github.com/onomatheater/blog-api/internal/server/cache"
	"github.com/onomatheater/blog-api/internal/server/models"
)

const shutdownTimeout = 10 * time.Second

// Service contracts consumed by the transport. The services package
// provides the production implementations.
type AuthService interface {
	Register(ctx context.Context, email, username, password string) (*models.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

type SessionResolver interface {
	ResolveRequired(ctx context.Context, token string) (*models.User, error)
	ResolveOptional(ctx context.Context, token string) *models.User
}

type PostService interface {
	List(ctx context.Context, viewer *models.User, query models.PostListQuery) ([]models.PostListItem, error)
	Get(ctx context.Context, viewer *models.User, id int64) (*models.PostWithComments, error)
	Create(ctx context.Context, viewer *models.User, title, content string, isPublished bool) (*models.Post, error)
	Update(ctx context.Context, viewer *models.User, id int64, patch models.PostPatch) (*models.Post, error)
	Delete(ctx context.Context, viewer *models.User, id int64) error
}

type CommentService interface {
	ListForPost(ctx context.Context, viewer *models.User, postID int64, query models.CommentListQuery) ([]models.CommentListItem, error)
	Get(ctx context.Context, viewer *models.User, id int64) (*models.Comment, error)
	Create(ctx context.Context, viewer *models.User, postID int64, content string) (*models.Comment, error)
	Update(ctx context.Context, viewer *models.User, id int64, content string) (*models.Comment, error)
	Delete(ctx context.Context, viewer *models.User, id int64) error
}

// Server owns the gin engine and the underlying http.Server.
type Server struct {
	engine   *gin.Engine
	addr     string
	db       *sql.DB
	cache    *cache.Client
	auth     AuthService
	sessions SessionResolver
	posts    PostService
	comments CommentService
	logger   logging.Logger
}

// NewServer wires the routes and middleware and returns a ready-to-run
// server.
func NewServer(addr string, db *sql.DB, c *cache.Client,
	auth AuthService, sessions SessionResolver,
	posts PostService, comments CommentService,
	logger logging.Logger) *Server {

	s := &Server{
		addr:     addr,
		db:       db,
		cache:    c,
		auth:     auth,
		sessions: sessions,
		posts:    posts,
		comments: comments,
		logger:   logger.With("module", "httpapi"),
	}
	s.engine = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(s.recovery())
	router.Use(s.requestLogger())

	router.GET("/health", s.health)

	api := router.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", s.register)
			authGroup.POST("/login", s.login)
			authGroup.POST("/refresh", s.refresh)
			authGroup.POST("/logout", s.logout)
		}

		api.GET("/users/me", s.requireAuth(), s.me)

		postGroup := api.Group("/posts")
		{
			postGroup.GET("", s.optionalAuth(), s.listPosts)
			postGroup.POST("", s.requireAuth(), s.createPost)
			postGroup.GET("/:id", s.optionalAuth(), s.getPost)
			postGroup.PUT("/:id", s.requireAuth(), s.updatePost)
			postGroup.DELETE("/:id", s.requireAuth(), s.deletePost)
			postGroup.GET("/:id/comments", s.optionalAuth(), s.listComments)
			postGroup.POST("/:id/comments", s.requireAuth(), s.createComment)
		}

		commentGroup := api.Group("/comments")
		{
			commentGroup.GET("/:id", s.optionalAuth(), s.getComment)
			commentGroup.PUT("/:id", s.requireAuth(), s.updateComment)
			commentGroup.DELETE("/:id", s.requireAuth(), s.deleteComment)
		}
	}

	return router
}

// health reports readiness of the database and the cache backend.
func (s *Server) health(c *gin.Context) {
	ctx := c.Request.Context()

	status := http.StatusOK
	dbStatus, cacheStatus := "ok", "ok"

	if err := s.db.PingContext(ctx); err != nil {
		dbStatus = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if err := s.cache.Ping(ctx); err != nil {
		cacheStatus = "unavailable"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"database": dbStatus, "cache": cacheStatus})
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server starting", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

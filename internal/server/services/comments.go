package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/onomatheater/blog-api/internal/common"
	"github.com/onomatheater/blog-api/internal/logging"
	"github.com/onomatheater/blog-api/internal/server/cache"
	"github.com/onomatheater/blog-api/internal/server/models"
	"github.com/onomatheater/blog-api/internal/server/repositories/repomanager"
)

// CommentService implements comment CRUD and the cached per-post comment
// listings.
type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       *cache.Client
	cacheTTL    time.Duration
	logger      logging.Logger
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager, c *cache.Client,
	cacheTTL time.Duration, logger logging.Logger) *CommentService {
	return &CommentService{
		db:          db,
		repomanager: m,
		cache:       c,
		cacheTTL:    cacheTTL,
		logger:      logger.With("module", "comment_service"),
	}
}

// ListForPost returns the comments of a post the viewer can see. The two
// canonical anonymous shapes (default page window, either sort order) are
// served through the cache.
func (s *CommentService) ListForPost(ctx context.Context, viewer *models.User, postID int64, query models.CommentListQuery) ([]models.CommentListItem, error) {
	if _, err := s.visiblePost(ctx, viewer, postID); err != nil {
		return nil, err
	}

	cacheable := viewer == nil && query.IsCanonical()
	key := cache.CommentsKey(postID, query.SortAsc)
	if cacheable {
		if items, ok := cache.GetJSON[[]models.CommentListItem](ctx, s.cache, key); ok {
			return items, nil
		}
	}

	items, err := s.repomanager.Comments(s.db).ListForPost(ctx, postID, query)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}

	if cacheable {
		if err := cache.SetJSON(ctx, s.cache, key, items, s.cacheTTL); err != nil {
			s.logger.Warn(ctx, "comment cache write failed", "post_id", postID, "error", err)
		}
	}

	return items, nil
}

// Get returns a single comment, provided its post is visible to the viewer.
func (s *CommentService) Get(ctx context.Context, viewer *models.User, id int64) (*models.Comment, error) {
	comment, err := s.repomanager.Comments(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.visiblePost(ctx, viewer, comment.PostID); err != nil {
		return nil, err
	}
	return comment, nil
}

// Create adds a comment to a post visible to the viewer and invalidates
// both cached sort orders for that post.
func (s *CommentService) Create(ctx context.Context, viewer *models.User, postID int64, content string) (*models.Comment, error) {
	if viewer == nil {
		return nil, common.ErrUnauthenticated
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content must not be empty", common.ErrValidation)
	}

	if _, err := s.visiblePost(ctx, viewer, postID); err != nil {
		return nil, err
	}

	comment, err := s.repomanager.Comments(s.db).Create(ctx, &models.Comment{
		PostID:  postID,
		UserID:  viewer.ID,
		Content: content,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating comment: %w", err)
	}

	s.invalidatePost(ctx, postID)
	return comment, nil
}

// Update edits a comment the viewer authored.
func (s *CommentService) Update(ctx context.Context, viewer *models.User, id int64, content string) (*models.Comment, error) {
	if viewer == nil {
		return nil, common.ErrUnauthenticated
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content must not be empty", common.ErrValidation)
	}

	comment, err := s.repomanager.Comments(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != viewer.ID {
		return nil, common.ErrForbidden
	}

	comment.Content = content
	updated, err := s.repomanager.Comments(s.db).Update(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("error updating comment: %w", err)
	}

	s.invalidatePost(ctx, comment.PostID)
	return updated, nil
}

// Delete removes a comment the viewer authored.
func (s *CommentService) Delete(ctx context.Context, viewer *models.User, id int64) error {
	if viewer == nil {
		return common.ErrUnauthenticated
	}

	comment, err := s.repomanager.Comments(s.db).GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != viewer.ID {
		return common.ErrForbidden
	}

	if err := s.repomanager.Comments(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting comment: %w", err)
	}

	s.invalidatePost(ctx, comment.PostID)
	return nil
}

// visiblePost loads a post and applies the same visibility rule as the
// post detail view: unpublished posts exist only for their author.
func (s *CommentService) visiblePost(ctx context.Context, viewer *models.User, postID int64) (*models.PostListItem, error) {
	item, err := s.repomanager.Posts(s.db).GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !postVisible(&item.Post, viewer) {
		return nil, common.ErrNotFound
	}
	return item, nil
}

// invalidatePost drops both cached sort orders for a post after commit.
func (s *CommentService) invalidatePost(ctx context.Context, postID int64) {
	ctx = context.WithoutCancel(ctx)
	keys := []string{cache.CommentsKey(postID, false), cache.CommentsKey(postID, true)}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn(ctx, "comment cache invalidation failed", "post_id", postID, "error", err)
	}
}

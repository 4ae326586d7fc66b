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
	"github.com/onomatheater/blog-api/internal/server/repositories/posts"
	"github.com/onomatheater/blog-api/internal/server/repositories/repomanager"
)

const maxPostTitleLength = 200

// PostService implements post CRUD and the cached public feed.
type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       *cache.Client
	cacheTTL    time.Duration
	logger      logging.Logger
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager, c *cache.Client,
	cacheTTL time.Duration, logger logging.Logger) *PostService {
	return &PostService{
		db:          db,
		repomanager: m,
		cache:       c,
		cacheTTL:    cacheTTL,
		logger:      logger.With("module", "post_service"),
	}
}

// List returns posts visible to the viewer under the given query. Only the
// canonical anonymous feed shape is served through the cache; every other
// shape goes straight to storage. Searches shorter than the minimum length
// return an empty result without touching storage.
func (s *PostService) List(ctx context.Context, viewer *models.User, query models.PostListQuery) ([]models.PostListItem, error) {
	search := strings.TrimSpace(query.Search)
	if search != "" && len([]rune(search)) < models.MinSearchLength {
		return []models.PostListItem{}, nil
	}

	cacheable := viewer == nil && query.IsCanonical()
	if cacheable {
		if items, ok := cache.GetJSON[[]models.PostListItem](ctx, s.cache, cache.PostsFeedKey); ok {
			return items, nil
		}
	}

	scope, viewerID := resolvePostScope(viewer, query.Published)
	items, err := s.repomanager.Posts(s.db).List(ctx, posts.ListFilter{
		Skip:     query.Skip,
		Limit:    query.Limit,
		SortAsc:  query.SortAsc,
		Search:   search,
		Scope:    scope,
		ViewerID: viewerID,
	})
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}

	if cacheable {
		if err := cache.SetJSON(ctx, s.cache, cache.PostsFeedKey, items, s.cacheTTL); err != nil {
			s.logger.Warn(ctx, "feed cache write failed", "error", err)
		}
	}

	return items, nil
}

// Get returns a post with its default comment page. Unpublished posts are
// visible to their author only; for everyone else they do not exist.
func (s *PostService) Get(ctx context.Context, viewer *models.User, id int64) (*models.PostWithComments, error) {
	item, err := s.repomanager.Posts(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !postVisible(&item.Post, viewer) {
		return nil, common.ErrNotFound
	}

	comments, err := s.repomanager.Comments(s.db).ListForPost(ctx, id, models.DefaultCommentListQuery())
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}

	return &models.PostWithComments{
		Post:     item.Post,
		Author:   item.Author,
		Comments: comments,
	}, nil
}

// Create stores a new post owned by the viewer and invalidates the feed.
func (s *PostService) Create(ctx context.Context, viewer *models.User, title, content string, isPublished bool) (*models.Post, error) {
	if viewer == nil {
		return nil, common.ErrUnauthenticated
	}
	if err := validatePostFields(title, content); err != nil {
		return nil, err
	}

	post, err := s.repomanager.Posts(s.db).Create(ctx, &models.Post{
		Title:       title,
		Content:     content,
		UserID:      viewer.ID,
		IsPublished: isPublished,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	s.invalidateFeed(ctx)
	return post, nil
}

// Update applies a partial update to a post the viewer owns.
func (s *PostService) Update(ctx context.Context, viewer *models.User, id int64, patch models.PostPatch) (*models.Post, error) {
	if viewer == nil {
		return nil, common.ErrUnauthenticated
	}

	item, err := s.repomanager.Posts(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.UserID != viewer.ID {
		return nil, common.ErrForbidden
	}

	post := item.Post
	if patch.Title != nil {
		post.Title = *patch.Title
	}
	if patch.Content != nil {
		post.Content = *patch.Content
	}
	if patch.IsPublished != nil {
		post.IsPublished = *patch.IsPublished
	}
	if err := validatePostFields(post.Title, post.Content); err != nil {
		return nil, err
	}

	updated, err := s.repomanager.Posts(s.db).Update(ctx, &post)
	if err != nil {
		return nil, fmt.Errorf("error updating post: %w", err)
	}

	s.invalidateFeed(ctx)
	return updated, nil
}

// Delete removes a post the viewer owns along with its comments (cascade).
func (s *PostService) Delete(ctx context.Context, viewer *models.User, id int64) error {
	if viewer == nil {
		return common.ErrUnauthenticated
	}

	item, err := s.repomanager.Posts(s.db).GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item.UserID != viewer.ID {
		return common.ErrForbidden
	}

	if err := s.repomanager.Posts(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}

	s.invalidateFeed(ctx)
	return nil
}

// invalidateFeed point-deletes the canonical feed key after a successful
// commit. The delete uses a context immune to client disconnect; a failed
// delete is logged only, the TTL bounds the resulting staleness.
func (s *PostService) invalidateFeed(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if err := s.cache.Delete(ctx, cache.PostsFeedKey); err != nil {
		s.logger.Warn(ctx, "feed cache invalidation failed", "error", err)
	}
}

// resolvePostScope maps the viewer and the requested publication filter to
// a repository scope. Anonymous callers asking for unpublished posts are
// silently downgraded to the published set.
func resolvePostScope(viewer *models.User, published *bool) (posts.Scope, int64) {
	if viewer == nil {
		return posts.ScopePublished, 0
	}
	switch {
	case published == nil:
		return posts.ScopePublishedOrOwn, viewer.ID
	case *published:
		return posts.ScopePublished, viewer.ID
	default:
		return posts.ScopeOwnUnpublished, viewer.ID
	}
}

func postVisible(post *models.Post, viewer *models.User) bool {
	if post.IsPublished {
		return true
	}
	return viewer != nil && viewer.ID == post.UserID
}

func validatePostFields(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title must not be empty", common.ErrValidation)
	}
	if len([]rune(title)) > maxPostTitleLength {
		return fmt.Errorf("%w: title must be at most %d characters", common.ErrValidation, maxPostTitleLength)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content must not be empty", common.ErrValidation)
	}
	return nil
}

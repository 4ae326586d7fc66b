// Package comments declares the repository contract for post comments.
package comments

import (
	"context"

	"github.com/onomatheater/blog-api/internal/server/models"
)

// Repository defines persistence operations over comments. Single-record
// lookups return common.ErrNotFound when no row matches.
type Repository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	ListForPost(ctx context.Context, postID int64, query models.CommentListQuery) ([]models.CommentListItem, error)
	Update(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	Delete(ctx context.Context, id int64) error
}

// Package posts declares the repository contract for blog posts,
// including visibility-scoped listing.
package posts

import (
	"context"

	"github.com/onomatheater/blog-api/internal/server/models"
)

// Scope restricts which posts a listing may return. The service layer
// resolves the viewer identity and requested publication filter into one
// of these values; repositories only translate them into predicates.
type Scope int

const (
	// ScopePublished returns published posts only.
	ScopePublished Scope = iota
	// ScopePublishedOrOwn returns published posts plus the viewer's own
	// unpublished drafts. Requires ViewerID.
	ScopePublishedOrOwn
	// ScopeOwnUnpublished returns only the viewer's unpublished drafts.
	// Requires ViewerID.
	ScopeOwnUnpublished
)

// ListFilter describes a visibility-resolved listing query.
type ListFilter struct {
	Skip    int
	Limit   int
	SortAsc bool
	Search  string
	Scope   Scope
	// ViewerID identifies the authenticated viewer for scopes that
	// reference ownership. Ignored for ScopePublished.
	ViewerID int64
}

// Repository defines persistence operations over posts. Single-record
// lookups return common.ErrNotFound when no row matches.
type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id int64) (*models.PostListItem, error)
	List(ctx context.Context, filter ListFilter) ([]models.PostListItem, error)
	Update(ctx context.Context, post *models.Post) (*models.Post, error)
	Delete(ctx context.Context, id int64) error
}

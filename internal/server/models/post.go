package models

import "time"

type Post struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	UserID      int64     `json:"user_id"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PostListItem is the typed listing record cached and returned by post
// listings: the post plus its author's username.
type PostListItem struct {
	Post
	Author string `json:"author"`
}

// PostWithComments is the detail view for a single post.
type PostWithComments struct {
	Post
	Author   string            `json:"author"`
	Comments []CommentListItem `json:"comments"`
}

// PostPatch carries a partial update; nil fields are left unchanged.
type PostPatch struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	IsPublished *bool   `json:"is_published"`
}

// PostListQuery describes a listing request after transport-level parsing.
// Sort, pagination and publication filters default to the canonical feed
// shape (skip 0, limit 10, newest first, no filters).
type PostListQuery struct {
	Skip      int
	Limit     int
	SortAsc   bool
	Published *bool
	Search    string
}

const (
	DefaultPostLimit    = 10
	DefaultCommentLimit = 50

	// MinSearchLength guards against full-table substring scans:
	// shorter queries return an empty result set without touching storage.
	MinSearchLength = 3
)

// DefaultPostListQuery returns the canonical feed shape.
func DefaultPostListQuery() PostListQuery {
	return PostListQuery{Skip: 0, Limit: DefaultPostLimit, SortAsc: false}
}

// IsCanonical reports whether the query matches the canonical feed shape,
// the only cacheable one.
func (q PostListQuery) IsCanonical() bool {
	return q.Skip == 0 && q.Limit == DefaultPostLimit && !q.SortAsc &&
		q.Published == nil && q.Search == ""
}

package models

import "time"

type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentListItem is the typed listing record for comments: the comment
// plus its author's username.
type CommentListItem struct {
	Comment
	Author string `json:"author"`
}

// CommentListQuery describes a comment listing request for one post.
type CommentListQuery struct {
	Skip    int
	Limit   int
	SortAsc bool
}

// DefaultCommentListQuery returns the canonical per-post comment shape.
func DefaultCommentListQuery() CommentListQuery {
	return CommentListQuery{Skip: 0, Limit: DefaultCommentLimit, SortAsc: false}
}

// IsCanonical reports whether the query is one of the two cacheable
// per-post shapes (default page window, either sort order).
func (q CommentListQuery) IsCanonical() bool {
	return q.Skip == 0 && q.Limit == DefaultCommentLimit
}

package cache

import "fmt"

// PostsFeedKey is the single canonical cache key for the public post feed
// (default page window, newest first, anonymous visibility). All other
// post-listing shapes are never cached.
const PostsFeedKey = "posts:list:main"

// CommentsKey returns the canonical per-post comment listing key for one
// of the two cacheable sort orders.
func CommentsKey(postID int64, sortAsc bool) string {
	order := "desc"
	if sortAsc {
		order = "asc"
	}
	return fmt.Sprintf("comments:post:%d:%s", postID, order)
}

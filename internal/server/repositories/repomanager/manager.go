package repomanager

import (
	"context"
	"database/sql"

	"github.com/onomatheater/blog-api/internal/dbx"
	"github.com/onomatheater/blog-api/internal/server/repositories/comments"
	"github.com/onomatheater/blog-api/internal/server/repositories/posts"
	"github.com/onomatheater/blog-api/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
	Comments(db dbx.DBTX) comments.Repository
}

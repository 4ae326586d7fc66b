package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/onomatheater/blog-api/internal/common"
	"github.com/onomatheater/blog-api/internal/dbx"
	"github.com/onomatheater/blog-api/internal/logging"
	"github.com/onomatheater/blog-api/internal/server/auth"
	"github.com/onomatheater/blog-api/internal/server/cache"
	"github.com/onomatheater/blog-api/internal/server/models"
	commentsrepo "github.com/onomatheater/blog-api/internal/server/repositories/comments"
	postsrepo "github.com/onomatheater/blog-api/internal/server/repositories/posts"
	"github.com/onomatheater/blog-api/internal/server/repositories/repomanager"
	usersrepo "github.com/onomatheater/blog-api/internal/server/repositories/users"
	"github.com/onomatheater/blog-api/internal/server/tokenstore"
)

// --- shared helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testCodec(t *testing.T) *auth.Codec {
	t.Helper()
	codec, err := auth.NewCodec("test-secret", "HS256", time.Hour, 2*time.Hour)
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	return codec
}

// testRedis starts a miniredis instance and returns a client bound to it.
func testRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func testStore(t *testing.T) (*miniredis.Miniredis, tokenstore.Store) {
	t.Helper()
	mr, rdb := testRedis(t)
	return mr, tokenstore.NewRedisStore(rdb, 2*time.Hour)
}

func testCache(t *testing.T) (*miniredis.Miniredis, *cache.Client) {
	t.Helper()
	mr, rdb := testRedis(t)
	return mr, cache.New(rdb, testLogger())
}

// --- in-memory fakes ---

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	byEmail map[string]*models.User
	byID    map[int64]*models.User

	created []*models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, u)
	if f.createOut != nil {
		return f.createOut, nil
	}
	u.ID = int64(len(f.created))
	u.CreatedAt = time.Now()
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, common.ErrNotFound
}

type fakePostsRepo struct {
	byID map[int64]*models.PostListItem

	listOut    []models.PostListItem
	listErr    error
	lastFilter *postsrepo.ListFilter
	listCalls  int

	createErr error
	updateErr error
	deleteErr error
}

func (f *fakePostsRepo) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	p.ID = 1
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	return p, nil
}

func (f *fakePostsRepo) GetByID(ctx context.Context, id int64) (*models.PostListItem, error) {
	if item, ok := f.byID[id]; ok {
		return item, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakePostsRepo) List(ctx context.Context, filter postsrepo.ListFilter) ([]models.PostListItem, error) {
	f.listCalls++
	f.lastFilter = &filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.listOut == nil {
		return []models.PostListItem{}, nil
	}
	return f.listOut, nil
}

func (f *fakePostsRepo) Update(ctx context.Context, p *models.Post) (*models.Post, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	p.UpdatedAt = time.Now()
	return p, nil
}

func (f *fakePostsRepo) Delete(ctx context.Context, id int64) error {
	return f.deleteErr
}

type fakeCommentsRepo struct {
	byID map[int64]*models.Comment

	listOut []models.CommentListItem
	listErr error

	createErr error
	updateErr error
	deleteErr error
}

func (f *fakeCommentsRepo) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	c.ID = 1
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	return c, nil
}

func (f *fakeCommentsRepo) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	if c, ok := f.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeCommentsRepo) ListForPost(ctx context.Context, postID int64, q models.CommentListQuery) ([]models.CommentListItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.listOut == nil {
		return []models.CommentListItem{}, nil
	}
	return f.listOut, nil
}

func (f *fakeCommentsRepo) Update(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	c.UpdatedAt = time.Now()
	return c, nil
}

func (f *fakeCommentsRepo) Delete(ctx context.Context, id int64) error {
	return f.deleteErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	p *fakePostsRepo
	c *fakeCommentsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) Posts(db dbx.DBTX) postsrepo.Repository      { return m.p }
func (m *fakeRepoManager) Comments(db dbx.DBTX) commentsrepo.Repository {
	return m.c
}

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)

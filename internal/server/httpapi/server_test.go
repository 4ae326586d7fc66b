package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onomatheater/blog-api/internal/common"
	"github.com/onomatheater/blog-api/internal/logging"
	"github.com/onomatheater/blog-api/internal/server/cache"
	"github.com/onomatheater/blog-api/internal/server/models"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// --- fake services ---

type fakeAuth struct {
	pair *models.TokenPair
	err  error
}

func (f *fakeAuth) Register(ctx context.Context, email, username, password string) (*models.TokenPair, error) {
	return f.pair, f.err
}
func (f *fakeAuth) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	return f.pair, f.err
}
func (f *fakeAuth) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	return f.pair, f.err
}
func (f *fakeAuth) Logout(ctx context.Context, refreshToken string) error {
	return f.err
}

type fakeSessions struct {
	user *models.User
}

func (f *fakeSessions) ResolveRequired(ctx context.Context, token string) (*models.User, error) {
	if token == "" || f.user == nil {
		return nil, common.ErrUnauthenticated
	}
	return f.user, nil
}

func (f *fakeSessions) ResolveOptional(ctx context.Context, token string) *models.User {
	if token == "" {
		return nil
	}
	return f.user
}

type fakePosts struct {
	items []models.PostListItem
	post  *models.Post
	full  *models.PostWithComments
	err   error

	lastQuery  *models.PostListQuery
	lastViewer *models.User
}

func (f *fakePosts) List(ctx context.Context, viewer *models.User, query models.PostListQuery) ([]models.PostListItem, error) {
	f.lastQuery = &query
	f.lastViewer = viewer
	if f.err != nil {
		return nil, f.err
	}
	if f.items == nil {
		return []models.PostListItem{}, nil
	}
	return f.items, nil
}
func (f *fakePosts) Get(ctx context.Context, viewer *models.User, id int64) (*models.PostWithComments, error) {
	return f.full, f.err
}
func (f *fakePosts) Create(ctx context.Context, viewer *models.User, title, content string, isPublished bool) (*models.Post, error) {
	f.lastViewer = viewer
	return f.post, f.err
}
func (f *fakePosts) Update(ctx context.Context, viewer *models.User, id int64, patch models.PostPatch) (*models.Post, error) {
	return f.post, f.err
}
func (f *fakePosts) Delete(ctx context.Context, viewer *models.User, id int64) error {
	return f.err
}

type fakeComments struct {
	items   []models.CommentListItem
	comment *models.Comment
	err     error
}

func (f *fakeComments) ListForPost(ctx context.Context, viewer *models.User, postID int64, query models.CommentListQuery) ([]models.CommentListItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.items == nil {
		return []models.CommentListItem{}, nil
	}
	return f.items, nil
}
func (f *fakeComments) Get(ctx context.Context, viewer *models.User, id int64) (*models.Comment, error) {
	return f.comment, f.err
}
func (f *fakeComments) Create(ctx context.Context, viewer *models.User, postID int64, content string) (*models.Comment, error) {
	return f.comment, f.err
}
func (f *fakeComments) Update(ctx context.Context, viewer *models.User, id int64, content string) (*models.Comment, error) {
	return f.comment, f.err
}
func (f *fakeComments) Delete(ctx context.Context, viewer *models.User, id int64) error {
	return f.err
}

// --- harness ---

type harness struct {
	srv      *Server
	auth     *fakeAuth
	sessions *fakeSessions
	posts    *fakePosts
	comments *fakeComments
	mock     sqlmock.Sqlmock
	redis    *miniredis.Miniredis
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	h := &harness{
		auth:     &fakeAuth{},
		sessions: &fakeSessions{},
		posts:    &fakePosts{},
		comments: &fakeComments{},
		mock:     mock,
		redis:    mr,
	}
	h.srv = NewServer(":0", db, cache.New(rdb, logger),
		h.auth, h.sessions, h.posts, h.comments, logger)
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// --- auth routes ---

func TestRegisterRoute(t *testing.T) {
	h := newHarness(t)
	h.auth.pair = &models.TokenPair{AccessToken: "a", RefreshToken: "r", TokenType: "bearer"}

	rec := h.do(t, http.MethodPost, "/api/v1/auth/register",
		gin.H{"email": "a@b.example", "username": "alice", "password": "password1"}, "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	var pair models.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	assert.Equal(t, "a", pair.AccessToken)
}

func TestRegisterRouteMissingFields(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/api/v1/auth/register", gin.H{"email": "a@b.example"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decodeError(t, rec).Code)
}

func TestRegisterRouteDuplicate(t *testing.T) {
	h := newHarness(t)
	h.auth.err = common.ErrDuplicateIdentity

	rec := h.do(t, http.MethodPost, "/api/v1/auth/register",
		gin.H{"email": "a@b.example", "username": "alice", "password": "password1"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "duplicate_identity", decodeError(t, rec).Code)
}

func TestLoginRouteInvalidCredentials(t *testing.T) {
	h := newHarness(t)
	h.auth.err = common.ErrInvalidCredentials

	rec := h.do(t, http.MethodPost, "/api/v1/auth/login",
		gin.H{"email": "a@b.example", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", decodeError(t, rec).Code)
}

func TestRefreshRouteRevoked(t *testing.T) {
	h := newHarness(t)
	h.auth.err = common.ErrTokenRevoked

	rec := h.do(t, http.MethodPost, "/api/v1/auth/refresh",
		gin.H{"refresh_token": "tok"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token_revoked", decodeError(t, rec).Code)
}

func TestLogoutRoute(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/api/v1/auth/logout", gin.H{"refresh_token": "tok"}, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMeRoute(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/v1/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	h.sessions.user = &models.User{ID: 7, Email: "a@b.example", Username: "alice", PasswordHash: "secret"}
	rec = h.do(t, http.MethodGet, "/api/v1/users/me", nil, "tok")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")
	assert.NotContains(t, rec.Body.String(), "secret")
}

// --- post routes ---

func TestListPostsRoute(t *testing.T) {
	h := newHarness(t)
	h.posts.items = []models.PostListItem{
		{Post: models.Post{ID: 1, Title: "hello"}, Author: "alice"},
	}

	rec := h.do(t, http.MethodGet, "/api/v1/posts", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello")

	require.NotNil(t, h.posts.lastQuery)
	assert.True(t, h.posts.lastQuery.IsCanonical())
	assert.Nil(t, h.posts.lastViewer)
}

func TestListPostsRouteParams(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/v1/posts?skip=5&limit=20&sort=asc&is_published=false&q=golang", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	q := h.posts.lastQuery
	require.NotNil(t, q)
	assert.Equal(t, 5, q.Skip)
	assert.Equal(t, 20, q.Limit)
	assert.True(t, q.SortAsc)
	require.NotNil(t, q.Published)
	assert.False(t, *q.Published)
	assert.Equal(t, "golang", q.Search)
}

func TestListPostsRouteBadParams(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{
		"/api/v1/posts?skip=-1",
		"/api/v1/posts?limit=0",
		"/api/v1/posts?limit=500",
		"/api/v1/posts?sort=sideways",
		"/api/v1/posts?is_published=maybe",
	} {
		rec := h.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestCreatePostRoute(t *testing.T) {
	h := newHarness(t)
	h.sessions.user = &models.User{ID: 7}
	h.posts.post = &models.Post{ID: 1, Title: "t", Content: "c", UserID: 7, IsPublished: true}

	rec := h.do(t, http.MethodPost, "/api/v1/posts", gin.H{"title": "t", "content": "c"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/posts", gin.H{"title": "t", "content": "c"}, "tok")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(7), h.posts.lastViewer.ID)
}

func TestGetPostRouteNotFound(t *testing.T) {
	h := newHarness(t)
	h.posts.err = common.ErrNotFound

	rec := h.do(t, http.MethodGet, "/api/v1/posts/42", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)
}

func TestUpdatePostRouteForbidden(t *testing.T) {
	h := newHarness(t)
	h.sessions.user = &models.User{ID: 8}
	h.posts.err = common.ErrForbidden

	rec := h.do(t, http.MethodPut, "/api/v1/posts/42", gin.H{"title": "x"}, "tok")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decodeError(t, rec).Code)
}

func TestDeletePostRoute(t *testing.T) {
	h := newHarness(t)
	h.sessions.user = &models.User{ID: 7}

	rec := h.do(t, http.MethodDelete, "/api/v1/posts/42", nil, "tok")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/v1/posts/abc", nil, "tok")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- comment routes ---

func TestCommentRoutes(t *testing.T) {
	h := newHarness(t)
	h.sessions.user = &models.User{ID: 2}
	h.comments.comment = &models.Comment{ID: 31, PostID: 4, UserID: 2, Content: "hi"}
	h.comments.items = []models.CommentListItem{
		{Comment: models.Comment{ID: 31, PostID: 4, UserID: 2, Content: "hi"}, Author: "bob"},
	}

	rec := h.do(t, http.MethodGet, "/api/v1/posts/4/comments", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bob")

	rec = h.do(t, http.MethodPost, "/api/v1/posts/4/comments", gin.H{"content": "hi"}, "tok")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/posts/4/comments", gin.H{"content": "hi"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/v1/comments/31", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPut, "/api/v1/comments/31", gin.H{"content": "edited"}, "tok")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/v1/comments/31", nil, "tok")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

// --- health ---

func TestHealthRoute(t *testing.T) {
	h := newHarness(t)
	h.mock.ExpectPing()

	rec := h.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)
	assert.Contains(t, rec.Body.String(), `"cache":"ok"`)
}

func TestHealthRouteCacheDown(t *testing.T) {
	h := newHarness(t)
	h.mock.ExpectPing()
	h.redis.Close()

	rec := h.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cache":"unavailable"`)
}

// --- error mapping ---

func TestInternalErrorMapping(t *testing.T) {
	h := newHarness(t)
	h.posts.err = sql.ErrConnDone

	rec := h.do(t, http.MethodGet, "/api/v1/posts", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "internal_error", body.Code)
	assert.NotContains(t, body.Detail, "sql")
}

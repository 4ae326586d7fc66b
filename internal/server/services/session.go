package services

import (
	"context"
	"database/sql"

	"github.com/onomatheater/blog-api/internal/common"
	"github.com/onomatheater/blog-api/internal/server/auth"
	"github.com/onomatheater/blog-api/internal/server/models"
	"github.com/onomatheater/blog-api/internal/server/repositories/repomanager"
)

// SessionResolver turns a bearer access token into the user it belongs to.
type SessionResolver struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
}

func NewSessionResolver(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec) *SessionResolver {
	return &SessionResolver{db: db, repomanager: m, codec: codec}
}

// ResolveRequired resolves an access token to its user. Every failure mode
// (bad signature, wrong token type, unknown user) collapses into
// ErrUnauthenticated so the transport returns one uniform 401.
func (s *SessionResolver) ResolveRequired(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return nil, common.ErrUnauthenticated
	}
	if claims.TokenType != auth.TokenTypeAccess {
		return nil, common.ErrUnauthenticated
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, common.ErrUnauthenticated
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, common.ErrUnauthenticated
	}

	return user, nil
}

// ResolveOptional resolves a token if one was presented; an empty or
// unresolvable token yields an anonymous viewer rather than an error.
func (s *SessionResolver) ResolveOptional(ctx context.Context, token string) *models.User {
	if token == "" {
		return nil
	}
	user, err := s.ResolveRequired(ctx, token)
	if err != nil {
		return nil
	}
	return user
}

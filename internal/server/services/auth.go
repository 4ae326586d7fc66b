// Package services contains the server-side business logic: account
// lifecycle and token issuance, session resolution, and the post and
// comment operations with their listing cache.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"

	"github.com/onomatheater/blog-api/internal/common"
	"github.com/onomatheater/blog-api/internal/dbx"
	"github.com/onomatheater/blog-api/internal/logging"
	"github.com/onomatheater/blog-api/internal/server/auth"
	"github.com/onomatheater/blog-api/internal/server/models"
	"github.com/onomatheater/blog-api/internal/server/repositories/repomanager"
	"github.com/onomatheater/blog-api/internal/server/tokenstore"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
)

// AuthService handles registration, login, and the refresh-token lifecycle.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
	tokens      tokenstore.Store
	logger      logging.Logger
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec,
	tokens tokenstore.Store, logger logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		codec:       codec,
		tokens:      tokens,
		logger:      logger.With("module", "auth_service"),
	}
}

// Register creates a user and returns a freshly minted token pair. The user
// insert, the token mint, and the refresh-jti registration run inside one
// transaction so a failed registration leaves no orphan account behind.
// Email and username collisions both surface as ErrDuplicateIdentity.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*models.TokenPair, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	var pair *models.TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		user, err := repo.Create(ctx, &models.User{
			Email:        email,
			Username:     username,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}

		pair, err = s.mintPair(ctx, user.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateIdentity) {
			return nil, common.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("error registering user: %w", err)
	}

	return pair, nil
}

// Login verifies credentials and mints a new token pair. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	pair, err := s.mintPair(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("error minting tokens: %w", err)
	}
	return pair, nil
}

// Refresh validates a refresh token and mints a new access token. The
// refresh token itself is echoed back unchanged; its jti stays registered
// until logout or expiry. A token that verifies cryptographically but whose
// jti is gone from the registry is revoked, not invalid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	if claims.TokenType != auth.TokenTypeRefresh || claims.ID == "" {
		return nil, common.ErrInvalidToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	active, err := s.tokens.IsActive(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("error checking refresh token: %w", err)
	}
	if !active {
		return nil, common.ErrTokenRevoked
	}

	if _, err := s.repomanager.Users(s.db).GetByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	access, err := s.codec.IssueAccess(userID)
	if err != nil {
		return nil, fmt.Errorf("error issuing access token: %w", err)
	}

	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    models.TokenTypeBearer,
	}, nil
}

// Logout revokes the refresh token's jti. Revoking an already-revoked or
// expired registration succeeds; only a token that does not verify at all
// is rejected.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return common.ErrInvalidToken
	}
	if claims.TokenType != auth.TokenTypeRefresh || claims.ID == "" {
		return common.ErrInvalidToken
	}

	if err := s.tokens.Revoke(ctx, claims.ID); err != nil {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	return nil
}

// mintPair issues an access/refresh pair and registers the refresh jti.
// A registry write failure fails the mint; inside Register's transaction
// that rolls the user insert back.
func (s *AuthService) mintPair(ctx context.Context, userID int64) (*models.TokenPair, error) {
	access, err := s.codec.IssueAccess(userID)
	if err != nil {
		return nil, fmt.Errorf("error issuing access token: %w", err)
	}

	refresh, jti, err := s.codec.IssueRefresh(userID)
	if err != nil {
		return nil, fmt.Errorf("error issuing refresh token: %w", err)
	}

	if err := s.tokens.Store(ctx, jti, userID); err != nil {
		return nil, fmt.Errorf("error registering refresh token: %w", err)
	}

	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    models.TokenTypeBearer,
	}, nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email address", common.ErrValidation)
	}
	return nil
}

func validateUsername(username string) error {
	if n := len([]rune(username)); n < minUsernameLength || n > maxUsernameLength {
		return fmt.Errorf("%w: username must be between %d and %d characters",
			common.ErrValidation, minUsernameLength, maxUsernameLength)
	}
	return nil
}

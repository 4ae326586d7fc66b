package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/onomatheater/blog-api/internal/common"
)

// Token type tags embedded in every claim set. The refresh endpoint must
// never accept an access token and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the signed claim set carried by both token kinds. Subject holds
// the user id, ID holds the refresh jti (empty for access tokens).
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

// UserID returns the numeric subject of the claims.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, common.ErrInvalidToken
	}
	return id, nil
}

// Codec signs and verifies access/refresh token pairs with a shared HMAC
// secret. Both validity windows come from configuration; the refresh window
// is the same value the token store uses for its TTL.
type Codec struct {
	secret          []byte
	method          jwt.SigningMethod
	accessValidity  time.Duration
	refreshValidity time.Duration
}

// NewCodec constructs a Codec for the configured HMAC algorithm
// (HS256/HS384/HS512).
func NewCodec(secret string, algorithm string, accessValidity, refreshValidity time.Duration) (*Codec, error) {
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm: %s", algorithm)
	}
	return &Codec{
		secret:          []byte(secret),
		method:          method,
		accessValidity:  accessValidity,
		refreshValidity: refreshValidity,
	}, nil
}

// IssueAccess mints a stateless access token for the user.
func (c *Codec) IssueAccess(userID int64) (string, error) {
	return c.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(c.accessValidity)),
		},
		TokenType: TokenTypeAccess,
	})
}

// IssueRefresh mints a refresh token with a fresh random jti and returns
// both. The jti must be registered in the token store to become usable.
func (c *Codec) IssueRefresh(userID int64) (token string, jti string, err error) {
	jti = uuid.NewString()

	token, err = c.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(c.refreshValidity)),
			ID:        jti,
		},
		TokenType: TokenTypeRefresh,
	})
	if err != nil {
		return "", "", err
	}

	return token, jti, nil
}

// Decode verifies signature and expiry and returns the claims. Signature
// mismatch, structural corruption, and expiry all collapse into
// common.ErrInvalidToken so callers cannot probe which check failed.
// Claims are never returned partially.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

func (c *Codec) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(c.method, claims)

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}

	return tokenString, nil
}

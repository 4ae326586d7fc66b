// Package users declares the repository contract for user identity records.
package users

import (
	"context"

	"github.com/onomatheater/blog-api/internal/server/models"
)

// Repository defines persistence operations over user records. Lookups
// return common.ErrNotFound when no row matches.
type Repository interface {
	// Create inserts a new user and fills in its generated id and creation
	// timestamp. A unique-constraint collision on email or username yields
	// common.ErrDuplicateIdentity.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

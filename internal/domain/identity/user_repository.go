package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository stores operator accounts. Usernames are unique; lookups
// by username are exact.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

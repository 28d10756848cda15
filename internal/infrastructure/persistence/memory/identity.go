package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/identity"
	"github.com/saleledger/backend/internal/domain/shared"
)

// UserRepository implements identity.UserRepository in memory
type UserRepository struct {
	store *Store
}

func cloneUser(u identity.User) *identity.User {
	u.BaseAggregateRoot = detach(u.BaseAggregateRoot)
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		u.LastLoginAt = &t
	}
	return &u
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	var out *identity.User
	err := r.store.view(false, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return shared.ErrNotFound
		}
		out = cloneUser(u)
		return nil
	})
	return out, err
}

// FindByUsername finds a user by username, case-insensitively
func (r *UserRepository) FindByUsername(_ context.Context, username string) (*identity.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var out *identity.User
	err := r.store.view(false, func(st *state) error {
		for _, u := range st.users {
			if u.Username == username {
				out = cloneUser(u)
				return nil
			}
		}
		return shared.ErrNotFound
	})
	return out, err
}

// ExistsByUsername checks if a username is taken
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	if err == shared.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

// Create inserts a new user
func (r *UserRepository) Create(_ context.Context, user *identity.User) error {
	return r.store.view(false, func(st *state) error {
		for _, u := range st.users {
			if u.ID == user.ID || u.Username == user.Username {
				return shared.ErrAlreadyExists
			}
		}
		st.users[user.ID] = *cloneUser(*user)
		return nil
	})
}

// Update writes the user if its version is unchanged and advances the version
func (r *UserRepository) Update(_ context.Context, user *identity.User) error {
	return r.store.view(false, func(st *state) error {
		current, ok := st.users[user.ID]
		if !ok || current.Version != user.Version {
			return shared.ErrConcurrencyConflict
		}
		next := cloneUser(*user)
		next.Version++
		st.users[user.ID] = *next
		user.Version++
		return nil
	})
}

var _ identity.UserRepository = (*UserRepository)(nil)

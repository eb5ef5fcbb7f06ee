package repository

import (
	"context"
	"sync"

	"github.com/noah-isme/mindsetu-api/internal/models"
	"github.com/noah-isme/mindsetu-api/pkg/kvstore"
)

// KeyUsers is the logical key holding the whole user collection.
const KeyUsers = "users"

// UserRepository stores users as a single JSON collection in the key-value
// store. Every mutation runs as a serialized read-modify-write under the
// repository mutex so uniqueness invariants hold under concurrent callers.
type UserRepository struct {
	store kvstore.Store
	mu    sync.RWMutex
}

// NewUserRepository constructs a user repository.
func NewUserRepository(store kvstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

// List returns a snapshot of all known users.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var users []models.User
	if _, err := kvstore.GetJSON(ctx, r.store, KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Update applies mutate to the full user collection atomically. The callback
// returns the replacement collection, or nil to abort without writing.
// Business-rule errors from the callback propagate unchanged.
func (r *UserRepository) Update(ctx context.Context, mutate func(users []models.User) ([]models.User, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var users []models.User
	if _, err := kvstore.GetJSON(ctx, r.store, KeyUsers, &users); err != nil {
		return err
	}

	updated, err := mutate(users)
	if err != nil {
		return err
	}
	if updated == nil {
		return nil
	}
	return kvstore.SetJSON(ctx, r.store, KeyUsers, updated)
}

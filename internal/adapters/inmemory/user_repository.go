package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/goncalofm90/foodi3/internal/core/domain"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

// FindByID returns nil, nil for unknown users.
func (r *UserRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepository) CreateIfMissing(ctx context.Context, user domain.User) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return false, nil
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[user.ID] = user
	return true, nil
}

// Package session keeps one favourites synchronizer per signed-in user.
package session

import (
	"fmt"
	"sync"

	"github.com/goncalofm90/foodi3/internal/core/synchronizer"

	lru "github.com/hashicorp/golang-lru"
)

const DefaultSize = 1024

// Factory builds an empty synchronizer for a user that has no session yet.
type Factory func() *synchronizer.Synchronizer

// Registry maps user ids to their synchronizer. The least recently used
// session is forgotten once the registry is full. An evicted synchronizer is
// left intact for requests still holding it; the next request for that user
// gets a new one that loads again.
type Registry struct {
	mu      sync.Mutex
	cache   *lru.Cache
	factory Factory
}

func NewRegistry(size int, factory Factory) (*Registry, error) {
	if size <= 0 {
		size = DefaultSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &Registry{cache: cache, factory: factory}, nil
}

// For returns the user's synchronizer, creating one when absent. fresh is true
// when the synchronizer was just created. Callers must still go through
// EnsureLoaded: a synchronizer that is not fresh may not have finished its
// first load.
func (r *Registry) For(userID string) (s *synchronizer.Synchronizer, fresh bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.cache.Get(userID); ok {
		return v.(*synchronizer.Synchronizer), false
	}
	s = r.factory()
	r.cache.Add(userID, s)
	return s, true
}

// Drop ends the user's session and clears its index. It reports whether a
// session existed.
func (r *Registry) Drop(userID string) bool {
	r.mu.Lock()
	v, ok := r.cache.Peek(userID)
	if ok {
		r.cache.Remove(userID)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	v.(*synchronizer.Synchronizer).Reset()
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Len()
}

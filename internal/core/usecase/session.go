package usecase

import (
	"context"
	"fmt"

	"github.com/goncalofm90/foodi3/internal/core/port"
	"github.com/goncalofm90/foodi3/internal/core/session"
	"github.com/goncalofm90/foodi3/internal/core/synchronizer"
)

// loadedSession returns the user's synchronizer once its index holds a
// completed load. Requests that arrive while the first load is running wait
// for it. After a failed load the session stays unloaded and the next request
// loads again.
func loadedSession(ctx context.Context, sessions *session.Registry, userID string, logger port.LoggerPort) (*synchronizer.Synchronizer, error) {
	s, fresh := sessions.For(userID)
	if fresh {
		logger.Debug("New session, loading favourites index", nil)
	}
	if _, err := s.EnsureLoaded(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to open favourites session: %w", err)
	}
	return s, nil
}

package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/port"
)

const (
	SnapshotEventName = "favourites"

	clientBuffer = 16
	queueBuffer  = 100
)

// ClientChannel receives ready-to-write SSE frames for one open view.
type ClientChannel chan []byte

type snapshotWithContext struct {
	ctx      context.Context
	snapshot domain.FavouritesSnapshot
}

// snapshotDTO is the payload every open view of the user receives.
type snapshotDTO struct {
	UserID           string            `json:"user_id"`
	FavouriteItemIDs []string          `json:"favourite_item_ids"`
	RecordIDs        map[string]string `json:"record_ids"`
	Version          uint64            `json:"version"`
}

// SSENotifier implements SnapshotNotifierPort. A user may have several
// views open; each gets its own channel.
type SSENotifier struct {
	clients map[string][]ClientChannel
	mu      sync.RWMutex

	queue chan snapshotWithContext
	done  chan struct{}
	once  sync.Once

	logger port.LoggerPort
}

func NewSSENotifier(baseLogger port.LoggerPort) *SSENotifier {
	n := &SSENotifier{
		clients: make(map[string][]ClientChannel),
		queue:   make(chan snapshotWithContext, queueBuffer),
		done:    make(chan struct{}),
		logger:  baseLogger.WithFields(port.Fields{"component": "SSENotifier"}),
	}
	go n.dispatcher()
	return n
}

func (n *SSENotifier) dispatcher() {
	n.logger.Debug("Notifier dispatcher started.", nil)
	for {
		select {
		case <-n.done:
			n.logger.Debug("Notifier dispatcher stopped.", nil)
			return
		case pkg := <-n.queue:
			n.dispatch(pkg.ctx, pkg.snapshot)
		}
	}
}

func (n *SSENotifier) dispatch(ctx context.Context, snapshot domain.FavouritesSnapshot) {
	eventLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "SSENotifier.dispatcher",
		"user_id":   snapshot.UserID,
		"version":   snapshot.Version,
	})

	frame, err := EncodeSnapshot(snapshot)
	if err != nil {
		eventLogger.Error("Failed to marshal snapshot", err, nil)
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	channels, found := n.clients[snapshot.UserID]
	if !found {
		eventLogger.Debug("No active clients for user, snapshot dropped.", nil)
		return
	}
	for _, ch := range channels {
		select {
		case ch <- frame:
		default:
			eventLogger.Warn("Client channel is full, skipping.", nil)
		}
	}
}

// EncodeSnapshot renders a snapshot as one SSE frame.
func EncodeSnapshot(snapshot domain.FavouritesSnapshot) ([]byte, error) {
	recordIDs := snapshot.RecordIDs
	if recordIDs == nil {
		recordIDs = map[string]string{}
	}
	data, err := json.Marshal(snapshotDTO{
		UserID:           snapshot.UserID,
		FavouriteItemIDs: snapshot.SortedItemIDs(),
		RecordIDs:        recordIDs,
		Version:          snapshot.Version,
	})
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", SnapshotEventName, data)), nil
}

// NotifySnapshot queues the snapshot for delivery. It never blocks the
// caller; a full queue drops the snapshot since the next one supersedes it.
func (n *SSENotifier) NotifySnapshot(ctx context.Context, snapshot domain.FavouritesSnapshot) {
	if snapshot.UserID == "" {
		return
	}
	select {
	case n.queue <- snapshotWithContext{ctx: ctx, snapshot: snapshot}:
	default:
		contextkeys.LoggerFromContext(ctx).Warn("Notifier queue is full, snapshot dropped.", port.Fields{
			"component": "SSENotifier",
			"user_id":   snapshot.UserID,
		})
	}
}

func (n *SSENotifier) AddClient(userID string) ClientChannel {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(ClientChannel, clientBuffer)
	n.clients[userID] = append(n.clients[userID], ch)

	n.logger.Info("Client connected for user", port.Fields{
		"user_id":                    userID,
		"total_connections_for_user": len(n.clients[userID]),
	})
	return ch
}

func (n *SSENotifier) RemoveClient(userID string, ch ClientChannel) {
	n.mu.Lock()
	defer n.mu.Unlock()

	channels, found := n.clients[userID]
	if !found {
		return
	}
	remaining := make([]ClientChannel, 0, len(channels))
	for _, c := range channels {
		if c != ch {
			remaining = append(remaining, c)
		}
	}

	if len(remaining) == 0 {
		delete(n.clients, userID)
		n.logger.Debug("Last client disconnected for user. User removed.", port.Fields{"user_id": userID})
		return
	}
	n.clients[userID] = remaining
	n.logger.Info("Client disconnected for user.", port.Fields{
		"user_id":               userID,
		"remaining_connections": len(remaining),
	})
}

// ClientCount returns the number of open views of userID.
func (n *SSENotifier) ClientCount(userID string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.clients[userID])
}

// Close stops the dispatcher. Queued snapshots are discarded.
func (n *SSENotifier) Close() {
	n.once.Do(func() { close(n.done) })
}

package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/goncalofm90/foodi3/internal/adapters/notifier"
	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/port"
)

const keepAliveInterval = 15 * time.Second

// SnapshotSubscriber is satisfied by *notifier.SSENotifier.
type SnapshotSubscriber interface {
	AddClient(userID string) notifier.ClientChannel
	RemoveClient(userID string, ch notifier.ClientChannel)
}

// Subscribe handles GET /api/v1/favourites/subscribe. The current snapshot is
// sent first, then one frame per confirmed change.
func (h *FavouritesHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler": "Subscribe",
		"user_id": userID,
	})

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteJSONError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	snapshot, err := h.snapshotUC.Execute(r.Context(), userID)
	if err != nil {
		writeUseCaseError(w, handlerLogger, err)
		return
	}
	initial, err := notifier.EncodeSnapshot(snapshot)
	if err != nil {
		handlerLogger.Error("Failed to encode snapshot", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	handlerLogger.Info("New client subscribing to favourites", nil)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	clientChan := h.subscriber.AddClient(userID)
	defer h.subscriber.RemoveClient(userID, clientChan)

	if _, err := w.Write(initial); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case frame := <-clientChan:
			if _, err := w.Write(frame); err != nil {
				handlerLogger.Error("Error writing to client, closing stream", err, nil)
				return
			}
			flusher.Flush()
		case <-ticker.C:
			// Comment lines keep proxies from closing an idle stream.
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			handlerLogger.Info("Favourites stream closed by client.", nil)
			return
		}
	}
}

// Package synchronizer keeps the local favourites index of one signed-in user
// consistent with the remote favourites store.
//
// Writes are confirm-then-update: the remote create or delete happens first and
// the local index changes only after the store confirms it. A failed write
// leaves the index exactly as it was.
package synchronizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/port"

	"github.com/google/uuid"
)

const DefaultWriteTimeout = 10 * time.Second

// Metric outcome labels.
const (
	OutcomeOK                = "ok"
	OutcomeFailed            = "failed"
	OutcomeStale             = "stale"
	OutcomeDuplicate         = "duplicate"
	OutcomeAlreadyFavourited = "already_favourited"
	OutcomeInProgress        = "in_progress"
	OutcomeInconsistent      = "inconsistent"
)

type Config struct {
	// WriteTimeout bounds a single remote create/delete. Zero means DefaultWriteTimeout.
	WriteTimeout time.Duration
	// NewRecordID generates ids for new records. Defaults to uuid.NewString.
	NewRecordID func() string
}

type intent int

const (
	intentToggle intent = iota
	intentAdd
	intentRemove
)

// Synchronizer owns the LocalFavouritesIndex. All mutation goes through
// Load, Toggle, Add, Remove and Reset; readers get copies via Snapshot.
type Synchronizer struct {
	store    port.FavouritesStorePort
	events   port.FavouriteEventsPort
	notifier port.SnapshotNotifierPort
	metrics  port.SyncMetricsPort

	writeTimeout time.Duration
	newRecordID  func() string

	// mu guards everything below and is never held across a remote call.
	mu         sync.Mutex
	userID     string
	favourited map[string]struct{}
	recordIDs  map[string]string
	pending    map[string]struct{}
	// version changes on every local mutation; loads that started on an
	// older version are discarded.
	version uint64
	// epoch changes when the index is rebuilt for another user.
	epoch uint64
	// loaded is set once a load for userID has been applied.
	loaded bool

	// loadSem lets one EnsureLoaded caller load at a time; the rest wait.
	loadSem chan struct{}
}

// NewSynchronizer builds a synchronizer with an empty index. events, notifier
// and metrics may be nil.
func NewSynchronizer(
	store port.FavouritesStorePort,
	events port.FavouriteEventsPort,
	notifier port.SnapshotNotifierPort,
	metrics port.SyncMetricsPort,
	cfg Config,
) *Synchronizer {
	if events == nil {
		events = noopEvents{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.NewRecordID == nil {
		cfg.NewRecordID = uuid.NewString
	}

	return &Synchronizer{
		store:        store,
		events:       events,
		notifier:     notifier,
		metrics:      metrics,
		writeTimeout: cfg.WriteTimeout,
		newRecordID:  cfg.NewRecordID,
		favourited:   make(map[string]struct{}),
		recordIDs:    make(map[string]string),
		pending:      make(map[string]struct{}),
		loadSem:      make(chan struct{}, 1),
	}
}

// EnsureLoaded loads the index for userID unless it already holds a completed
// load for that user. Callers that arrive while a load is running wait for it
// and then see its result. A failed or discarded load leaves the index
// unloaded, so the next caller retries.
func (s *Synchronizer) EnsureLoaded(ctx context.Context, userID string) (domain.FavouritesSnapshot, error) {
	select {
	case s.loadSem <- struct{}{}:
	case <-ctx.Done():
		return s.Snapshot(), fmt.Errorf("%w: %w", domain.ErrRemoteReadFailed, ctx.Err())
	}
	defer func() { <-s.loadSem }()

	if userID != "" && s.loadedFor(userID) {
		return s.Snapshot(), nil
	}

	snapshot, err := s.Load(ctx, userID)
	if err != nil {
		return snapshot, err
	}
	if userID != "" && !s.loadedFor(userID) {
		return snapshot, fmt.Errorf("%w: favourites changed while loading, retry", domain.ErrRemoteReadFailed)
	}
	return snapshot, nil
}

func (s *Synchronizer) loadedFor(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded && s.userID == userID
}

// Load rebuilds the index from the remote store for userID. An empty userID
// clears the index and succeeds without touching the store.
func (s *Synchronizer) Load(ctx context.Context, userID string) (domain.FavouritesSnapshot, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "FavouritesSynchronizer",
		"method":    "Load",
		"user_id":   userID,
	})

	s.mu.Lock()
	if userID == "" {
		s.resetLocked("")
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		logger.Debug("No signed-in user, favourites index cleared.", nil)
		return snapshot, nil
	}
	if s.userID != userID {
		s.resetLocked(userID)
	}
	startVersion := s.version
	s.mu.Unlock()

	logger.Debug("Listing favourites from remote store.", port.Fields{"start_version": startVersion})
	records, err := s.store.ListByOwner(ctx, userID)
	if err != nil {
		logger.Error("Failed to list favourites", err, nil)
		s.metrics.ObserveLoad(OutcomeFailed)
		return s.Snapshot(), fmt.Errorf("%w: %w", domain.ErrRemoteReadFailed, err)
	}

	favourited, recordIDs := buildIndex(logger, userID, records)

	s.mu.Lock()
	if s.userID != userID || s.version != startVersion {
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		logger.Info("Discarding stale load result.", port.Fields{
			"start_version":   startVersion,
			"current_version": snapshot.Version,
		})
		s.metrics.ObserveLoad(OutcomeStale)
		return snapshot, nil
	}
	s.favourited = favourited
	s.recordIDs = recordIDs
	s.loaded = true
	s.version++
	snapshot := s.snapshotLocked()
	// Notified under mu so snapshots are queued in version order.
	s.notifier.NotifySnapshot(ctx, snapshot)
	s.mu.Unlock()

	logger.Info("Favourites index rebuilt.", port.Fields{
		"favourites_count": len(snapshot.ItemIDs),
		"version":          snapshot.Version,
	})
	s.metrics.ObserveLoad(OutcomeOK)
	return snapshot, nil
}

// buildIndex decodes the listed records into the two index structures.
// Records that fail validation or belong to someone else are skipped.
func buildIndex(logger port.LoggerPort, userID string, records []domain.FavouriteRecord) (map[string]struct{}, map[string]string) {
	favourited := make(map[string]struct{}, len(records))
	recordIDs := make(map[string]string, len(records))

	for _, record := range records {
		if err := record.Validate(); err != nil {
			logger.Warn("Skipping malformed favourite record.", port.Fields{"record_id": record.RecordID, "error": err.Error()})
			continue
		}
		if record.OwnerID != userID {
			logger.Warn("Skipping favourite record of another owner.", port.Fields{"record_id": record.RecordID})
			continue
		}
		if existing, ok := recordIDs[record.ItemID]; ok {
			logger.Warn("Duplicate favourite records for item, keeping the first.", port.Fields{
				"item_id":        record.ItemID,
				"kept_record":    existing,
				"skipped_record": record.RecordID,
			})
			continue
		}
		favourited[record.ItemID] = struct{}{}
		recordIDs[record.ItemID] = record.RecordID
	}
	return favourited, recordIDs
}

// Toggle adds the item when it is not favourited and removes it otherwise.
func (s *Synchronizer) Toggle(ctx context.Context, item domain.DisplayItem, userID string) (*domain.ToggleResult, error) {
	return s.write(ctx, item, userID, intentToggle)
}

// Add favourites the item. It fails with ErrAlreadyFavourited when the index
// already holds it.
func (s *Synchronizer) Add(ctx context.Context, item domain.DisplayItem, userID string) (*domain.ToggleResult, error) {
	return s.write(ctx, item, userID, intentAdd)
}

// Remove un-favourites the item. It fails with ErrInconsistentState when the
// index holds no backing record id for it.
func (s *Synchronizer) Remove(ctx context.Context, item domain.DisplayItem, userID string) (*domain.ToggleResult, error) {
	return s.write(ctx, item, userID, intentRemove)
}

type writeOutcome struct {
	created *domain.FavouriteRecord
	err     error
}

func (s *Synchronizer) write(ctx context.Context, item domain.DisplayItem, userID string, in intent) (*domain.ToggleResult, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "FavouritesSynchronizer",
		"method":    "write",
		"user_id":   userID,
		"item_id":   item.ID,
		"item_kind": item.Kind,
	})

	if userID == "" {
		logger.Warn("Favourite intent without a signed-in user.", nil)
		return nil, domain.ErrNotAuthenticated
	}
	if item.ID == "" {
		return nil, fmt.Errorf("%w: empty item id", domain.ErrInvalidItem)
	}

	s.mu.Lock()
	if s.userID != userID {
		// The active user changed without a Load; start from an empty index.
		s.resetLocked(userID)
	}
	if _, busy := s.pending[item.ID]; busy {
		s.mu.Unlock()
		logger.Warn("Rejecting intent, a write for this item is still pending.", nil)
		s.metrics.ObserveWrite("toggle", item.Kind, OutcomeInProgress)
		return nil, fmt.Errorf("%w: %s", domain.ErrToggleInProgress, item.ID)
	}

	_, isFavourite := s.favourited[item.ID]
	var adding bool
	switch in {
	case intentAdd:
		if isFavourite {
			s.mu.Unlock()
			logger.Info("Item already favourited.", nil)
			s.metrics.ObserveWrite("add", item.Kind, OutcomeAlreadyFavourited)
			return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyFavourited, item.ID)
		}
		adding = true
	case intentRemove:
		adding = false
	default:
		adding = !isFavourite
	}

	action := "remove"
	if adding {
		action = "add"
	}

	var recordID string
	if adding {
		if item.Name == "" || !item.Kind.Valid() {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: name and kind are required to favourite %s", domain.ErrInvalidItem, item.ID)
		}
		recordID = s.newRecordID()
	} else {
		rid, ok := s.recordIDs[item.ID]
		if !ok || rid == "" {
			s.mu.Unlock()
			logger.Error("Favourites index holds no record id for item", domain.ErrInconsistentState, port.Fields{
				"claims_favourited": isFavourite,
			})
			s.metrics.ObserveWrite(action, item.Kind, OutcomeInconsistent)
			return nil, fmt.Errorf("%w: no record id for item %s", domain.ErrInconsistentState, item.ID)
		}
		recordID = rid
	}

	s.pending[item.ID] = struct{}{}
	epoch := s.epoch
	s.mu.Unlock()

	record := domain.FavouriteRecord{
		RecordID:     recordID,
		OwnerID:      userID,
		ItemID:       item.ID,
		ItemKind:     item.Kind,
		ItemName:     item.Name,
		ThumbnailURL: item.Thumbnail,
	}

	logger.Debug("Sending remote write.", port.Fields{"action": action, "record_id": recordID})
	outcome := s.remoteWrite(ctx, adding, record)

	if !adding && errors.Is(outcome.err, domain.ErrRecordNotFound) {
		logger.Warn("Record was already gone from the remote store, treating removal as confirmed.", port.Fields{"record_id": recordID})
		outcome.err = nil
	}

	s.mu.Lock()
	if s.epoch != epoch {
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		logger.Warn("Index was rebuilt while the write was in flight, result not applied.", nil)
		if outcome.err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrRemoteWriteFailed, outcome.err)
		}
		return &domain.ToggleResult{ItemID: item.ID, Favourited: adding, Snapshot: snapshot}, nil
	}
	delete(s.pending, item.ID)

	if outcome.err != nil {
		s.mu.Unlock()
		if errors.Is(outcome.err, domain.ErrDuplicateRecord) {
			logger.Info("Remote store already holds a favourite for this item.", nil)
			s.metrics.ObserveWrite(action, item.Kind, OutcomeDuplicate)
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateRecord, item.ID)
		}
		logger.Error("Remote write failed, index left unchanged", outcome.err, port.Fields{"action": action})
		s.metrics.ObserveWrite(action, item.Kind, OutcomeFailed)
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteWriteFailed, outcome.err)
	}

	if adding {
		if outcome.created != nil && outcome.created.RecordID != "" {
			record = *outcome.created
		}
		s.favourited[item.ID] = struct{}{}
		s.recordIDs[item.ID] = record.RecordID
	} else {
		delete(s.favourited, item.ID)
		delete(s.recordIDs, item.ID)
	}
	s.version++
	snapshot := s.snapshotLocked()
	s.notifier.NotifySnapshot(ctx, snapshot)
	s.mu.Unlock()

	logger.Info("Favourite write confirmed.", port.Fields{
		"action":    action,
		"record_id": record.RecordID,
		"version":   snapshot.Version,
	})
	s.metrics.ObserveWrite(action, item.Kind, OutcomeOK)

	eventType := domain.FavouriteRemoved
	if adding {
		eventType = domain.FavouriteAdded
	}
	if err := s.events.PublishFavouriteEvent(ctx, domain.FavouriteEvent{Type: eventType, Record: record, Snapshot: snapshot}); err != nil {
		logger.Error("Failed to publish favourite event", err, port.Fields{"event_type": eventType})
	}

	result := &domain.ToggleResult{
		ItemID:     item.ID,
		Favourited: adding,
		Snapshot:   snapshot,
	}
	if adding {
		result.RecordID = record.RecordID
	}
	return result, nil
}

// remoteWrite performs exactly one create or delete, bounded by writeTimeout
// even when the store ignores context cancellation.
func (s *Synchronizer) remoteWrite(ctx context.Context, adding bool, record domain.FavouriteRecord) writeOutcome {
	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	done := make(chan writeOutcome, 1)
	go func() {
		if adding {
			created, err := s.store.Create(writeCtx, record)
			done <- writeOutcome{created: created, err: err}
			return
		}
		done <- writeOutcome{err: s.store.Delete(writeCtx, record.OwnerID, record.RecordID)}
	}()

	select {
	case outcome := <-done:
		return outcome
	case <-writeCtx.Done():
		return writeOutcome{err: fmt.Errorf("remote write abandoned: %w", writeCtx.Err())}
	}
}

// Reset clears the index, e.g. on sign-out.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked("")
}

func (s *Synchronizer) resetLocked(userID string) {
	s.userID = userID
	s.favourited = make(map[string]struct{})
	s.recordIDs = make(map[string]string)
	s.pending = make(map[string]struct{})
	s.version++
	s.epoch++
	s.loaded = false
}

// Snapshot returns a copy of the index.
func (s *Synchronizer) Snapshot() domain.FavouritesSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Synchronizer) snapshotLocked() domain.FavouritesSnapshot {
	itemIDs := make(map[string]struct{}, len(s.favourited))
	for id := range s.favourited {
		itemIDs[id] = struct{}{}
	}
	recordIDs := make(map[string]string, len(s.recordIDs))
	for id, rid := range s.recordIDs {
		recordIDs[id] = rid
	}
	return domain.FavouritesSnapshot{
		UserID:    s.userID,
		ItemIDs:   itemIDs,
		RecordIDs: recordIDs,
		Version:   s.version,
	}
}

func (s *Synchronizer) IsFavourite(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.favourited[itemID]
	return ok
}

// State reports the per-item state machine position.
func (s *Synchronizer) State(itemID string) domain.ItemState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[itemID]; ok {
		return domain.Pending
	}
	if _, ok := s.favourited[itemID]; ok {
		return domain.Favourited
	}
	return domain.NotFavourited
}

type noopEvents struct{}

func (noopEvents) PublishFavouriteEvent(context.Context, domain.FavouriteEvent) error { return nil }

type noopNotifier struct{}

func (noopNotifier) NotifySnapshot(context.Context, domain.FavouritesSnapshot) {}

type noopMetrics struct{}

func (noopMetrics) ObserveLoad(string)                          {}
func (noopMetrics) ObserveWrite(string, domain.ItemKind, string) {}

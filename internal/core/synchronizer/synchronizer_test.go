package synchronizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goncalofm90/foodi3/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var teriyaki = domain.DisplayItem{
	ID:        "52772",
	Name:      "Teriyaki Chicken Casserole",
	Kind:      domain.ItemKindDish,
	Thumbnail: "https://www.themealdb.com/images/media/meals/wvpsxx1468256321.jpg",
}

var margarita = domain.DisplayItem{
	ID:   "11007",
	Name: "Margarita",
	Kind: domain.ItemKindCocktail,
}

// fakeStore is an owner-scoped store whose calls can be held open.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]domain.FavouriteRecord

	listErr   error
	createErr error
	deleteErr error
	// extra is appended to every list result as-is.
	extra []domain.FavouriteRecord

	// When set, the call signals *Entered and then blocks until *Gate is closed.
	listGate      chan struct{}
	listEntered   chan struct{}
	createGate    chan struct{}
	createEntered chan struct{}
	// ignoreCtx makes a gated create wait for the gate only.
	ignoreCtx bool

	listCalls   int
	createCalls int
	deleteCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]domain.FavouriteRecord)}
}

func (f *fakeStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.FavouriteRecord, error) {
	f.mu.Lock()
	f.listCalls++
	var out []domain.FavouriteRecord
	for _, r := range f.records {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	out = append(out, f.extra...)
	listErr, gate, entered := f.listErr, f.listGate, f.listEntered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if listErr != nil {
		return nil, listErr
	}
	return out, nil
}

func (f *fakeStore) Create(ctx context.Context, record domain.FavouriteRecord) (*domain.FavouriteRecord, error) {
	f.mu.Lock()
	f.createCalls++
	gate, entered, ignoreCtx := f.createGate, f.createEntered, f.ignoreCtx
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		if ignoreCtx {
			<-gate
		} else {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, r := range f.records {
		if r.OwnerID == record.OwnerID && r.ItemID == record.ItemID {
			return nil, domain.ErrDuplicateRecord
		}
	}
	record.CreatedAt = time.Now().UTC()
	f.records[record.RecordID] = record
	return &record, nil
}

func (f *fakeStore) Delete(ctx context.Context, ownerID, recordID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	r, ok := f.records[recordID]
	if !ok {
		return domain.ErrRecordNotFound
	}
	if r.OwnerID != ownerID {
		return domain.ErrPermissionDenied
	}
	delete(f.records, recordID)
	return nil
}

func (f *fakeStore) calls() (list, create, del int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.createCalls, f.deleteCalls
}

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishFavouriteEvent(ctx context.Context, event domain.FavouriteEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type recordingNotifier struct {
	mu        sync.Mutex
	snapshots []domain.FavouritesSnapshot
}

func (n *recordingNotifier) NotifySnapshot(_ context.Context, snapshot domain.FavouritesSnapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.snapshots = append(n.snapshots, snapshot)
}

func newTestSynchronizer(store *fakeStore) *Synchronizer {
	return NewSynchronizer(store, nil, nil, nil, Config{WriteTimeout: time.Second})
}

func requireConsistent(t *testing.T, s *Synchronizer) {
	t.Helper()
	snap := s.Snapshot()
	require.Len(t, snap.RecordIDs, len(snap.ItemIDs))
	for id := range snap.ItemIDs {
		rid, ok := snap.RecordIDs[id]
		require.True(t, ok, "item %s has no record id", id)
		require.NotEmpty(t, rid)
	}
}

func TestLoad_EmptyStore(t *testing.T) {
	s := newTestSynchronizer(newFakeStore())

	snap, err := s.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, snap.ItemIDs)
	assert.Empty(t, snap.RecordIDs)
	assert.Equal(t, "u1", snap.UserID)
	requireConsistent(t, s)
}

func TestLoad_EmptyUserClearsIndex(t *testing.T) {
	store := newFakeStore()
	s := newTestSynchronizer(store)
	_, err := s.Toggle(context.Background(), teriyaki, "u1")
	require.NoError(t, err)

	snap, err := s.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, snap.ItemIDs)
	assert.Equal(t, "", snap.UserID)

	list, _, _ := store.calls()
	assert.Zero(t, list, "clearing must not query the store")
}

func TestToggle_AddOnEmptyIndex(t *testing.T) {
	store := newFakeStore()
	s := newTestSynchronizer(store)
	_, err := s.Load(context.Background(), "u1")
	require.NoError(t, err)

	res, err := s.Toggle(context.Background(), teriyaki, "u1")
	require.NoError(t, err)
	assert.True(t, res.Favourited)
	assert.NotEmpty(t, res.RecordID)

	snap := s.Snapshot()
	assert.Equal(t, []string{"52772"}, snap.SortedItemIDs())
	assert.Equal(t, res.RecordID, snap.RecordIDs["52772"])
	assert.Equal(t, domain.Favourited, s.State("52772"))
	requireConsistent(t, s)

	_, creates, _ := store.calls()
	assert.Equal(t, 1, creates)
	stored := store.records[res.RecordID]
	assert.Equal(t, "u1", stored.OwnerID)
	assert.Equal(t, domain.ItemKindDish, stored.ItemKind)
	assert.Equal(t, teriyaki.Name, stored.ItemName)
	assert.Equal(t, teriyaki.Thumbnail, stored.ThumbnailURL)
}

func TestToggle_RejectsSecondToggleWhilePending(t *testing.T) {
	store := newFakeStore()
	store.createGate = make(chan struct{})
	store.createEntered = make(chan struct{}, 1)
	s := newTestSynchronizer(store)

	type result struct {
		res *domain.ToggleResult
		err error
	}
	first := make(chan result, 1)
	go func() {
		res, err := s.Toggle(context.Background(), teriyaki, "u1")
		first <- result{res, err}
	}()
	<-store.createEntered
	assert.Equal(t, domain.Pending, s.State("52772"))

	_, err := s.Toggle(context.Background(), teriyaki, "u1")
	require.ErrorIs(t, err, domain.ErrToggleInProgress)
	_, creates, _ := store.calls()
	assert.Equal(t, 1, creates, "a pending item must not get a second remote write")

	close(store.createGate)
	got := <-first
	require.NoError(t, got.err)

	snap := s.Snapshot()
	assert.Len(t, snap.ItemIDs, 1)
	assert.Equal(t, got.res.RecordID, snap.RecordIDs["52772"])
	assert.Len(t, store.records, 1)
	requireConsistent(t, s)
}

func TestToggle_DistinctItemsProceedConcurrently(t *testing.T) {
	store := newFakeStore()
	store.createGate = make(chan struct{})
	store.createEntered = make(chan struct{}, 2)
	s := newTestSynchronizer(store)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, item := range []domain.DisplayItem{teriyaki, margarita} {
		wg.Add(1)
		go func(item domain.DisplayItem) {
			defer wg.Done()
			_, err := s.Toggle(context.Background(), item, "u1")
			errs <- err
		}(item)
	}
	<-store.createEntered
	<-store.createEntered
	assert.Equal(t, domain.Pending, s.State(teriyaki.ID))
	assert.Equal(t, domain.Pending, s.State(margarita.ID))

	close(store.createGate)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Len(t, s.Snapshot().ItemIDs, 2)
	requireConsistent(t, s)
}

func TestToggle_RemoveWithoutRecordIDIsInconsistent(t *testing.T) {
	store := newFakeStore()
	s := newTestSynchronizer(store)
	_, err := s.Load(context.Background(), "u1")
	require.NoError(t, err)

	// Break the invariant on purpose: favourited without a backing record.
	s.mu.Lock()
	s.favourited["52772"] = struct{}{}
	s.mu.Unlock()
	before := s.Snapshot()

	_, err = s.Toggle(context.Background(), teriyaki, "u1")
	require.ErrorIs(t, err, domain.ErrInconsistentState)
	assert.Equal(t, before, s.Snapshot())

	_, _, deletes := store.calls()
	assert.Zero(t, deletes)
}

func TestRemove_UnknownItemIsInconsistent(t *testing.T) {
	s := newTestSynchronizer(newFakeStore())

	_, err := s.Remove(context.Background(), teriyaki, "u1")
	require.ErrorIs(t, err, domain.ErrInconsistentState)
	assert.Empty(t, s.Snapshot().ItemIDs)
}

func TestToggle_RemoteCreateFailureLeavesIndexUntouched(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("connection reset by peer")
	s := newTestSynchronizer(store)
	_, err := s.Load(context.Background(), "u1")
	require.NoError(t, err)
	before := s.Snapshot()

	_, err = s.Toggle(context.Background(), teriyaki, "u1")
	require.ErrorIs(t, err, domain.ErrRemoteWriteFailed)
	assert.True(t, domain.IsRetryable(err))

	after := s.Snapshot()
	assert.Empty(t, after.ItemIDs)
	assert.Equal(t, before, after)
	assert.Equal(t, domain.NotFavourited, s.State("52772"))
}

func TestToggle_RemoteDeleteFailureLeavesIndexUntouched(t *testing.T) {
	store := newFakeStore()
	s := newTestSynchronizer(store)
	_, err := s.Toggle(context.Background(), teriyaki, "u1")
	require.NoError(t, err)
	before := s.Snapshot()

	store.deleteErr = errors.New("service unavailable")
	_, err = s.Toggle(context.Background(), teriyaki, "u1")
	require.ErrorIs(t, err, domain.ErrRemoteWriteFailed)
	assert.Equal(t, before, s.Snapshot())
	requireConsistent(t, s)
}

func TestToggle_RoundTripThroughLoad(t *testing.T) {
	store := newFakeStore()
	s := newTestSynchronizer(store)
	ctx := context.Background()

	added, err := s.Toggle(ctx, teriyaki, "u1")
	require.NoError(t, err)

	fresh := newTestSynchronizer(store)
	snap, err := fresh.Load(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, snap.Has("52772"))
	assert.Equal(t, added.RecordID, snap.RecordIDs["52772"])

	removed, err := s.Toggle(ctx, teriyaki, "u1")
	require.NoError(t, err)
	assert.False(t, removed.Favourited)
	assert.Empty(t, removed.RecordID)

	snap, err = fresh.Load(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, snap.Has("52772"))
	requireConsistent(t, fresh)
}

func TestToggle_DuplicateRecordIsBenign(t *testing.T) {
	store := newFakeStore()
	store.records["existing"] = domain.FavouriteRecord{
		RecordID: "existing", OwnerID: "u1", ItemID: "52772", ItemKind: domain.ItemKindDish, ItemName: "Teriyaki",
	}
	// Index never loaded, so it does not know about the existing record.
	s := newTestSynchronizer(store)

	_, err := s.Toggle(context.Background(), teriyaki, "u1")
	require.ErrorIs(t, err, domain.ErrDuplicateRecord)
	assert.True(t, domain.IsBenign(err))
	assert.Empty(t, s.Snapshot().ItemIDs)
	assert.Equal(t, domain.NotFavourited, s.State("52772"))
}

func TestAdd_AlreadyFavourited(t *testing.T) {
	store := newFakeStore()
	s := newTestSynchronizer(store)
	_, err := s.Add(context.Background(), teriyaki, "u1")
	require.NoError(t, err)

	_, err = s.Add(context.Background(), teriyaki, "u1")
	require.ErrorIs(t, err, domain.ErrAlreadyFavourited)
	assert.True(t, domain.IsBenign(err))

	_, creates, _ := store.calls()
	assert.Equal(t, 1, creates)
}

func TestToggle_RequiresUser(t *testing.T) {
	store := newFakeStore()
	s := newTestSynchronizer(store)

	_, err := s.Toggle(context.Background(), teriyaki, "")
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, creates, _ := store.calls()
	assert.Zero(t, creates)
}

func TestToggle_RejectsIncompleteItem(t *testing.T) {
	s := newTestSynchronizer(newFakeStore())

	_, err := s.Toggle(context.Background(), domain.DisplayItem{ID: "52772"}, "u1")
	require.ErrorIs(t, err, domain.ErrInvalidItem)
	assert.Equal(t, domain.NotFavourited, s.State("52772"))
}

func TestToggle_TimeoutRevertsPendingItem(t *testing.T) {
	store := newFakeStore()
	store.createGate = make(chan struct{})
	store.ignoreCtx = true
	defer close(store.createGate)
	s := NewSynchronizer(store, nil, nil, nil, Config{WriteTimeout: 20 * time.Millisecond})

	_, err := s.Toggle(context.Background(), teriyaki, "u1")
	require.ErrorIs(t, err, domain.ErrRemoteWriteFailed)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.NotFavourited, s.State("52772"))
	assert.Empty(t, s.Snapshot().ItemIDs)
}

func TestRemove_NotFoundRemotelyCountsAsConfirmed(t *testing.T) {
	store := newFakeStore()
	s := newTestSynchronizer(store)
	res, err := s.Toggle(context.Background(), teriyaki, "u1")
	require.NoError(t, err)

	// Someone else already deleted the row.
	store.mu.Lock()
	delete(store.records, res.RecordID)
	store.mu.Unlock()

	removed, err := s.Remove(context.Background(), teriyaki, "u1")
	require.NoError(t, err)
	assert.False(t, removed.Favourited)
	assert.False(t, s.IsFavourite("52772"))
	requireConsistent(t, s)
}

func TestLoad_FailureKeepsPreviousIndex(t *testing.T) {
	store := newFakeStore()
	s := newTestSynchronizer(store)
	_, err := s.Toggle(context.Background(), teriyaki, "u1")
	require.NoError(t, err)
	before := s.Snapshot()

	store.listErr = errors.New("timeout")
	snap, err := s.Load(context.Background(), "u1")
	require.ErrorIs(t, err, domain.ErrRemoteReadFailed)
	assert.Equal(t, before, snap)
	assert.Equal(t, before, s.Snapshot())
}

func TestLoad_FailureOnFirstLoadLeavesEmptyIndex(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("timeout")
	s := newTestSynchronizer(store)

	snap, err := s.Load(context.Background(), "u1")
	require.ErrorIs(t, err, domain.ErrRemoteReadFailed)
	assert.Empty(t, snap.ItemIDs)
}

func TestLoad_DiscardsResultOlderThanConfirmedWrite(t *testing.T) {
	store := newFakeStore()
	s := newTestSynchronizer(store)
	_, err := s.Load(context.Background(), "u1")
	require.NoError(t, err)

	store.mu.Lock()
	store.listGate = make(chan struct{})
	store.listEntered = make(chan struct{}, 1)
	store.mu.Unlock()

	loaded := make(chan domain.FavouritesSnapshot, 1)
	go func() {
		snap, err := s.Load(context.Background(), "u1")
		assert.NoError(t, err)
		loaded <- snap
	}()
	// The slow load has already read the (empty) remote state.
	<-store.listEntered

	res, err := s.Toggle(context.Background(), teriyaki, "u1")
	require.NoError(t, err)

	close(store.listGate)
	snap := <-loaded
	assert.True(t, snap.Has("52772"), "stale load must not clobber the confirmed add")
	assert.Equal(t, res.RecordID, s.Snapshot().RecordIDs["52772"])
	requireConsistent(t, s)
}

func TestLoad_SkipsMalformedForeignAndDuplicateRecords(t *testing.T) {
	store := newFakeStore()
	store.extra = []domain.FavouriteRecord{
		{RecordID: "r1", OwnerID: "u1", ItemID: "52772", ItemKind: domain.ItemKindDish, ItemName: "Teriyaki"},
		{RecordID: "r2", OwnerID: "u1", ItemID: "52772", ItemKind: domain.ItemKindDish, ItemName: "Teriyaki"},
		{RecordID: "r3", OwnerID: "u2", ItemID: "11007", ItemKind: domain.ItemKindCocktail, ItemName: "Margarita"},
		{RecordID: "r4", OwnerID: "u1", ItemID: "", ItemKind: domain.ItemKindDish},
		{RecordID: "r5", OwnerID: "u1", ItemID: "999", ItemKind: "dessert"},
	}
	s := newTestSynchronizer(store)

	snap, err := s.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"52772"}, snap.SortedItemIDs())
	assert.Equal(t, "r1", snap.RecordIDs["52772"])
	requireConsistent(t, s)
}

func TestToggle_OtherUserStartsFromEmptyIndex(t *testing.T) {
	store := newFakeStore()
	s := newTestSynchronizer(store)
	_, err := s.Toggle(context.Background(), teriyaki, "u1")
	require.NoError(t, err)

	res, err := s.Toggle(context.Background(), margarita, "u2")
	require.NoError(t, err)
	assert.Equal(t, "u2", res.Snapshot.UserID)
	assert.Equal(t, []string{"11007"}, res.Snapshot.SortedItemIDs())
	assert.False(t, s.IsFavourite("52772"))
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := newTestSynchronizer(newFakeStore())
	_, err := s.Toggle(context.Background(), teriyaki, "u1")
	require.NoError(t, err)

	snap := s.Snapshot()
	delete(snap.ItemIDs, "52772")
	snap.RecordIDs["bogus"] = "x"

	assert.True(t, s.IsFavourite("52772"))
	requireConsistent(t, s)
}

func TestToggle_PublishesEventAndSnapshotOnlyAfterConfirmation(t *testing.T) {
	store := newFakeStore()
	events := &mockEvents{}
	notifier := &recordingNotifier{}
	s := NewSynchronizer(store, events, notifier, nil, Config{})

	events.On("PublishFavouriteEvent", mock.Anything, mock.MatchedBy(func(e domain.FavouriteEvent) bool {
		return e.Type == domain.FavouriteAdded && e.Record.ItemID == "52772" && e.Record.OwnerID == "u1"
	})).Return(nil).Once()

	_, err := s.Toggle(context.Background(), teriyaki, "u1")
	require.NoError(t, err)

	store.createErr = errors.New("boom")
	_, err = s.Toggle(context.Background(), margarita, "u1")
	require.Error(t, err)

	events.AssertExpectations(t)
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.snapshots, 1)
	assert.True(t, notifier.snapshots[0].Has("52772"))
}

func TestToggle_EventFailureDoesNotFailWrite(t *testing.T) {
	events := &mockEvents{}
	events.On("PublishFavouriteEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	s := NewSynchronizer(newFakeStore(), events, nil, nil, Config{})

	res, err := s.Toggle(context.Background(), teriyaki, "u1")
	require.NoError(t, err)
	assert.True(t, res.Favourited)
}

func TestReset_ClearsIndex(t *testing.T) {
	s := newTestSynchronizer(newFakeStore())
	_, err := s.Toggle(context.Background(), teriyaki, "u1")
	require.NoError(t, err)

	s.Reset()
	assert.Empty(t, s.Snapshot().ItemIDs)
	assert.Equal(t, "", s.Snapshot().UserID)
}

func TestEnsureLoaded_LaterCallersWaitForFirstLoad(t *testing.T) {
	store := newFakeStore()
	store.records["r1"] = domain.FavouriteRecord{RecordID: "r1", OwnerID: "u1", ItemID: "52772", ItemKind: domain.ItemKindDish, ItemName: "Teriyaki"}
	store.listGate = make(chan struct{})
	store.listEntered = make(chan struct{}, 1)
	s := newTestSynchronizer(store)

	first := make(chan error, 1)
	go func() {
		_, err := s.EnsureLoaded(context.Background(), "u1")
		first <- err
	}()
	<-store.listEntered

	second := make(chan domain.FavouritesSnapshot, 1)
	go func() {
		snap, err := s.EnsureLoaded(context.Background(), "u1")
		assert.NoError(t, err)
		second <- snap
	}()

	select {
	case <-second:
		t.Fatal("second caller returned before the first load finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(store.listGate)
	require.NoError(t, <-first)
	snap := <-second
	assert.True(t, snap.Has("52772"))
	assert.Equal(t, "r1", snap.RecordIDs["52772"])

	list, _, _ := store.calls()
	assert.Equal(t, 1, list, "waiting caller must reuse the first load")

	res, err := s.Remove(context.Background(), teriyaki, "u1")
	require.NoError(t, err)
	assert.False(t, res.Favourited)
}

func TestEnsureLoaded_RetriesAfterFailedLoad(t *testing.T) {
	store := newFakeStore()
	store.records["r1"] = domain.FavouriteRecord{RecordID: "r1", OwnerID: "u1", ItemID: "52772", ItemKind: domain.ItemKindDish, ItemName: "Teriyaki"}
	store.listErr = errors.New("timeout")
	s := newTestSynchronizer(store)

	_, err := s.EnsureLoaded(context.Background(), "u1")
	require.ErrorIs(t, err, domain.ErrRemoteReadFailed)

	store.mu.Lock()
	store.listErr = nil
	store.mu.Unlock()

	snap, err := s.EnsureLoaded(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, snap.Has("52772"))

	_, err = s.EnsureLoaded(context.Background(), "u1")
	require.NoError(t, err)
	list, _, _ := store.calls()
	assert.Equal(t, 2, list)
}

func TestEnsureLoaded_ReloadsAfterReset(t *testing.T) {
	store := newFakeStore()
	s := newTestSynchronizer(store)
	_, err := s.EnsureLoaded(context.Background(), "u1")
	require.NoError(t, err)

	s.Reset()
	_, err = s.EnsureLoaded(context.Background(), "u1")
	require.NoError(t, err)

	list, _, _ := store.calls()
	assert.Equal(t, 2, list)
}

func TestEnsureLoaded_HonoursCancelledContextWhileWaiting(t *testing.T) {
	store := newFakeStore()
	store.listGate = make(chan struct{})
	store.listEntered = make(chan struct{}, 1)
	s := newTestSynchronizer(store)

	go func() { _, _ = s.EnsureLoaded(context.Background(), "u1") }()
	<-store.listEntered
	defer close(store.listGate)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.EnsureLoaded(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrRemoteReadFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNotifySnapshot_VersionsArriveInOrder(t *testing.T) {
	notifier := &recordingNotifier{}
	s := NewSynchronizer(newFakeStore(), nil, notifier, nil, Config{WriteTimeout: time.Second})
	_, err := s.Load(context.Background(), "u1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			item := domain.DisplayItem{ID: fmt.Sprintf("%d", 52700+i), Name: "Dish", Kind: domain.ItemKindDish}
			_, err := s.Toggle(context.Background(), item, "u1")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.snapshots, 21)
	for i := 1; i < len(notifier.snapshots); i++ {
		assert.Greater(t, notifier.snapshots[i].Version, notifier.snapshots[i-1].Version)
	}
}

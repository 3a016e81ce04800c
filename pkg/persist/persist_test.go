package persist

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/dashgrid/pkg/dashboard"
	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/store"
)

// countingStore records saves on top of an in-memory store.
type countingStore struct {
	*store.KVStore
	saves atomic.Int32
	fail  atomic.Int32 // number of upcoming saves to fail
	mu    sync.Mutex
	last  dashboard.Snapshot
}

func newCountingStore() *countingStore {
	return &countingStore{KVStore: store.NewKVStore(store.NewMemoryBackend(), nil)}
}

func (c *countingStore) Save(ctx context.Context, name string, s dashboard.Snapshot) error {
	if c.fail.Load() > 0 {
		c.fail.Add(-1)
		return store.Retryable(stderrors.New("connection reset"))
	}
	c.saves.Add(1)
	c.mu.Lock()
	c.last = s.Clone()
	c.mu.Unlock()
	return c.KVStore.Save(ctx, name, s)
}

func snapshotWith(x int) dashboard.Snapshot {
	return dashboard.Snapshot{
		Layout:     grid.Layout{{ID: "a", X: x, Y: 0, W: 2, H: 2}},
		Components: map[string]dashboard.Component{"a": {Type: dashboard.TypeText}},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDebouncerRunsLatestOnly(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var got atomic.Int32
	for i := 1; i <= 5; i++ {
		d.Trigger(func() { got.Store(int32(i)) })
	}
	if !d.Pending() {
		t.Fatal("expected a pending call")
	}
	waitFor(t, func() bool { return got.Load() != 0 })
	time.Sleep(40 * time.Millisecond)
	if got.Load() != 5 {
		t.Errorf("ran trigger %d, want 5", got.Load())
	}
	if d.Pending() {
		t.Error("still pending after firing")
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var ran atomic.Bool
	d.Trigger(func() { ran.Store(true) })
	d.Cancel()
	time.Sleep(40 * time.Millisecond)
	if ran.Load() {
		t.Error("cancelled call ran")
	}
}

func TestSaverCoalescesBurst(t *testing.T) {
	st := newCountingStore()
	s := New(st, "sales", WithDelay(20*time.Millisecond))

	for x := 0; x < 5; x++ {
		s.Schedule(snapshotWith(x))
	}
	waitFor(t, func() bool { return st.saves.Load() == 1 })
	time.Sleep(40 * time.Millisecond)
	if n := st.saves.Load(); n != 1 {
		t.Fatalf("saves = %d, want 1", n)
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.last.Layout[0].X != 4 {
		t.Errorf("saved x = %d, want latest (4)", st.last.Layout[0].X)
	}
}

func TestSaverSkipsUnchanged(t *testing.T) {
	st := newCountingStore()
	s := New(st, "sales", WithDelay(time.Hour))

	s.Schedule(snapshotWith(1))
	if err := s.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	s.Schedule(snapshotWith(1))
	if err := s.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := st.saves.Load(); n != 1 {
		t.Errorf("saves = %d, want 1", n)
	}

	s.MarkSaved(snapshotWith(2))
	s.Schedule(snapshotWith(2))
	_ = s.Flush(context.Background())
	if n := st.saves.Load(); n != 1 {
		t.Errorf("save after MarkSaved: saves = %d, want 1", n)
	}
}

func TestSaverSuppression(t *testing.T) {
	st := newCountingStore()
	s := New(st, "sales", WithDelay(10*time.Millisecond))

	s.Schedule(snapshotWith(1))
	s.Suppress()
	if s.Pending() {
		t.Error("Suppress left a pending save")
	}
	s.Schedule(snapshotWith(2))
	time.Sleep(40 * time.Millisecond)
	if n := st.saves.Load(); n != 0 {
		t.Fatalf("saved %d times while suppressed", n)
	}

	s.Resume()
	if s.Suppressed() {
		t.Fatal("still suppressed after Resume")
	}
	s.Schedule(snapshotWith(3))
	waitFor(t, func() bool { return st.saves.Load() == 1 })
}

func TestSaverRetriesRetryableErrors(t *testing.T) {
	old := store.RetryDelay
	store.RetryDelay = time.Millisecond
	defer func() { store.RetryDelay = old }()

	st := newCountingStore()
	st.fail.Store(2)
	s := New(st, "sales", WithDelay(time.Hour))
	s.Schedule(snapshotWith(1))
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush = %v", err)
	}
	if st.saves.Load() != 1 || s.Err() != nil {
		t.Errorf("saves = %d, err = %v", st.saves.Load(), s.Err())
	}
}

func TestSaverReportsFailure(t *testing.T) {
	st := newCountingStore()
	st.fail.Store(1)
	s := New(st, "sales", WithDelay(time.Hour), WithRetry(false))
	s.Schedule(snapshotWith(1))
	if err := s.Flush(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if s.Err() == nil {
		t.Error("Err() = nil after failure")
	}

	// The failed snapshot is not considered saved.
	s.Schedule(snapshotWith(1))
	if err := s.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if st.saves.Load() != 1 {
		t.Errorf("saves = %d, want 1", st.saves.Load())
	}
}

func TestFlushWithoutPending(t *testing.T) {
	s := New(newCountingStore(), "sales")
	if err := s.Close(context.Background()); err != nil {
		t.Errorf("Close = %v", err)
	}
	if s.Delay() != DefaultDelay {
		t.Errorf("Delay = %v", s.Delay())
	}
}

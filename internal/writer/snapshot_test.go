package writer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rickgao/mock-auction/internal/model"
	"github.com/rickgao/mock-auction/internal/store"
)

type fakeSaver struct {
	mu       sync.Mutex
	saved    []model.Snapshot
	failures int

	entered chan struct{}
	gate    chan struct{}
}

func (f *fakeSaver) Save(ctx context.Context, snap model.Snapshot) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("disk full")
	}
	f.saved = append(f.saved, snap)
	return nil
}

func (f *fakeSaver) versions() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint64, len(f.saved))
	for i, s := range f.saved {
		out[i] = s.Version
	}
	return out
}

type countingObserver struct {
	mu     sync.Mutex
	ok     int
	failed int
}

func (o *countingObserver) ObserveFlush(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.failed++
	} else {
		o.ok++
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func snapshotV(v uint64) model.Snapshot {
	return model.Snapshot{
		Version: v,
		Teams:   []model.Team{{Name: "CSK", Budget: 9000 - int(v), InitialBudget: 9000}},
	}
}

func TestSnapshotWriter_SavesPersisted(t *testing.T) {
	s := store.NewMemoryStore()
	obs := &countingObserver{}
	w := NewSnapshotWriter(DefaultWriterConfig(), s, obs, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	w.Persist(snapshotV(1))
	waitFor(t, "first save", func() bool { return w.Stats().Flushes == 1 })

	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	got, _ := s.Load(context.Background())
	if got.Version != 1 || got.Teams[0].Budget != 8999 {
		t.Errorf("stored snapshot = %+v", got)
	}
	if obs.ok != 1 || obs.failed != 0 {
		t.Errorf("observer ok/failed = %d/%d, want 1/0", obs.ok, obs.failed)
	}
}

func TestSnapshotWriter_CoalescesWhileSaving(t *testing.T) {
	f := &fakeSaver{
		entered: make(chan struct{}, 10),
		gate:    make(chan struct{}),
	}
	w := NewSnapshotWriter(DefaultWriterConfig(), f, nil, nil)
	w.Start(context.Background())

	w.Persist(snapshotV(1))
	<-f.entered // v1 save in progress

	w.Persist(snapshotV(2))
	w.Persist(snapshotV(3))
	close(f.gate)

	waitFor(t, "v3 saved", func() bool { return w.Stats().LastVersion == 3 })
	w.Stop(context.Background())

	got := f.versions()
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("saved versions = %v, want [1 3]", got)
	}
	if c := w.Stats().Coalesced; c != 1 {
		t.Errorf("Coalesced = %d, want 1", c)
	}
}

func TestSnapshotWriter_DropsOlderVersions(t *testing.T) {
	f := &fakeSaver{}
	w := NewSnapshotWriter(DefaultWriterConfig(), f, nil, nil)

	// Not started: snapshots stay pending until Stop.
	w.Persist(snapshotV(5))
	w.Persist(snapshotV(4))

	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if got := f.versions(); len(got) != 1 || got[0] != 5 {
		t.Errorf("saved versions = %v, want [5]", got)
	}

	w.Persist(snapshotV(5))
	if w.Pending() {
		t.Error("already-saved version queued again")
	}
	if c := w.Stats().Coalesced; c != 2 {
		t.Errorf("Coalesced = %d, want 2", c)
	}
}

func TestSnapshotWriter_RetriesFailedSave(t *testing.T) {
	f := &fakeSaver{failures: 2}
	obs := &countingObserver{}
	cfg := WriterConfig{RetryInterval: 10 * time.Millisecond}
	w := NewSnapshotWriter(cfg, f, obs, nil)
	w.Start(context.Background())
	defer w.Stop(context.Background())

	w.Persist(snapshotV(1))
	waitFor(t, "save after retries", func() bool { return w.Stats().Flushes == 1 })

	stats := w.Stats()
	if stats.Errors != 2 {
		t.Errorf("Errors = %d, want 2", stats.Errors)
	}
	obs.mu.Lock()
	defer obs.mu.Unlock()
	if obs.failed != 2 || obs.ok != 1 {
		t.Errorf("observer ok/failed = %d/%d, want 1/2", obs.ok, obs.failed)
	}
}

func TestSnapshotWriter_StopReportsFinalFailure(t *testing.T) {
	f := &fakeSaver{failures: 1}
	w := NewSnapshotWriter(DefaultWriterConfig(), f, nil, nil)

	w.Persist(snapshotV(1))
	if err := w.Stop(context.Background()); err == nil {
		t.Error("Stop() expected error from failed final flush")
	}
	if !w.Pending() {
		t.Error("failed snapshot not kept pending")
	}
}

func TestSnapshotWriter_PersistNeverBlocks(t *testing.T) {
	f := &fakeSaver{
		entered: make(chan struct{}, 1000),
		gate:    make(chan struct{}),
	}
	w := NewSnapshotWriter(DefaultWriterConfig(), f, nil, nil)
	w.Start(context.Background())

	done := make(chan struct{})
	go func() {
		for v := uint64(1); v <= 500; v++ {
			w.Persist(snapshotV(v))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Persist blocked while a save was stuck")
	}

	close(f.gate)
	waitFor(t, "v500 saved", func() bool { return w.Stats().LastVersion == 500 })
	w.Stop(context.Background())
}

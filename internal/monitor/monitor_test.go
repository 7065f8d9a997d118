package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/emiliopalmerini/factoryvision/internal/domain"
)

type mockSource struct {
	FetchFunc func(ctx context.Context) (*domain.Snapshot, error)
	calls     atomic.Int32
}

func (m *mockSource) Fetch(ctx context.Context) (*domain.Snapshot, error) {
	m.calls.Add(1)
	return m.FetchFunc(ctx)
}

type fakeTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time)}
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { f.stopped.Store(true) }

type mockStore struct {
	mu       sync.Mutex
	records  []domain.SnapshotRecord
	failures int
}

func (m *mockStore) Record(_ context.Context, r domain.SnapshotRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errors.New("disk full")
	}
	m.records = append(m.records, r)
	return nil
}

func (m *mockStore) Latest(context.Context) (*domain.SnapshotRecord, error) { return nil, nil }

func (m *mockStore) ListRecent(context.Context, int) ([]domain.SnapshotRecord, error) {
	return nil, nil
}

func (m *mockStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type mockExporter struct {
	mu       sync.Mutex
	outcomes []string
	observed int
}

func (m *mockExporter) RecordRefresh(_ context.Context, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *mockExporter) ObserveSnapshot(*domain.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observed++
}

func (m *mockExporter) Close(context.Context) error { return nil }

func sampleSnapshot(total int64) *domain.Snapshot {
	return &domain.Snapshot{
		Factory: domain.FactoryStats{TotalProduction: total, AvgUtilization: 72, ActiveWorkers: 3},
		Workers: []domain.Worker{
			{ID: "W1", Name: "Ada", Utilization: 85, Units: 40, UPH: 5},
		},
		Stations: []domain.Station{
			{StationID: "S1", Name: "Press", Status: domain.StatusWorking, Units: 40},
		},
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

func TestNew_StartsLoading(t *testing.T) {
	m := New(&mockSource{})
	st := m.State()

	if !st.Loading {
		t.Error("expected Loading=true before first fetch")
	}
	if st.Snapshot != nil {
		t.Error("expected no snapshot")
	}
	if st.Phase() != PhaseLoading {
		t.Errorf("Phase() = %v, want loading", st.Phase())
	}
}

func TestRefresh_Success(t *testing.T) {
	src := &mockSource{FetchFunc: func(context.Context) (*domain.Snapshot, error) {
		return sampleSnapshot(160), nil
	}}
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m := New(src, WithClock(func() time.Time { return fixed }), WithSettleDelay(time.Hour))
	defer m.Stop()

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	st := m.State()
	if st.Loading {
		t.Error("Loading should be false after a fetch")
	}
	if !st.Refreshing {
		t.Error("Refreshing should stay true until the settle delay elapses")
	}
	if st.Snapshot == nil || st.Snapshot.Factory.TotalProduction != 160 {
		t.Fatalf("Snapshot = %+v", st.Snapshot)
	}
	if st.Err != "" {
		t.Errorf("Err = %q, want empty", st.Err)
	}
	if !st.UpdatedAt.Equal(fixed) {
		t.Errorf("UpdatedAt = %v, want %v", st.UpdatedAt, fixed)
	}
	if st.Phase() != PhaseLive {
		t.Errorf("Phase() = %v, want live", st.Phase())
	}
}

func TestRefresh_FailureBeforeFirstSnapshot(t *testing.T) {
	src := &mockSource{FetchFunc: func(context.Context) (*domain.Snapshot, error) {
		return nil, &domain.StatusError{Code: 503}
	}}
	exp := &mockExporter{}
	m := New(src, WithExporter(exp), WithSettleDelay(0))
	defer m.Stop()

	err := m.Refresh(context.Background())
	var statusErr *domain.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Refresh() error = %v, want StatusError", err)
	}

	st := m.State()
	if st.Err != domain.OfflineMessage {
		t.Errorf("Err = %q, want %q", st.Err, domain.OfflineMessage)
	}
	if st.LastError == "" {
		t.Error("LastError should carry the cause")
	}
	if st.Phase() != PhaseOffline {
		t.Errorf("Phase() = %v, want offline", st.Phase())
	}
	if st.Stale() {
		t.Error("nothing to be stale without a snapshot")
	}
	if len(exp.outcomes) != 1 || exp.outcomes[0] != "status_error" {
		t.Errorf("outcomes = %v", exp.outcomes)
	}
	if exp.observed != 0 {
		t.Error("failed fetch must not be observed")
	}
}

func TestRefresh_FailureKeepsPreviousSnapshot(t *testing.T) {
	fail := atomic.Bool{}
	src := &mockSource{FetchFunc: func(context.Context) (*domain.Snapshot, error) {
		if fail.Load() {
			return nil, domain.ErrUnreachable
		}
		return sampleSnapshot(100), nil
	}}
	m := New(src, WithSettleDelay(0))
	defer m.Stop()

	_ = m.Refresh(context.Background())
	fail.Store(true)
	_ = m.Refresh(context.Background())

	st := m.State()
	if st.Snapshot == nil || st.Snapshot.Factory.TotalProduction != 100 {
		t.Fatal("previous snapshot should be retained after a failure")
	}
	if st.Phase() != PhaseLive {
		t.Errorf("Phase() = %v, want live", st.Phase())
	}
	if !st.Stale() {
		t.Error("expected stale indicator after failure with a snapshot")
	}
	if st.Err != domain.OfflineMessage {
		t.Errorf("Err = %q", st.Err)
	}

	fail.Store(false)
	_ = m.Refresh(context.Background())
	st = m.State()
	if st.Err != "" || st.Stale() {
		t.Error("success should clear the error and the stale indicator")
	}
	if st.Attempts != 3 || st.Failures != 1 {
		t.Errorf("Attempts=%d Failures=%d, want 3 and 1", st.Attempts, st.Failures)
	}
}

func TestRefresh_ConcurrentCallsJoinInFlightFetch(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	src := &mockSource{FetchFunc: func(context.Context) (*domain.Snapshot, error) {
		entered <- struct{}{}
		<-release
		return sampleSnapshot(1), nil
	}}
	m := New(src, WithSettleDelay(0))
	defer m.Stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = m.Refresh(context.Background())
	}()
	<-entered

	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Refresh(context.Background())
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := src.calls.Load(); got != 1 {
		t.Errorf("Fetch called %d times, want 1", got)
	}
}

func TestRefresh_SettleDelayClearsRefreshing(t *testing.T) {
	src := &mockSource{FetchFunc: func(context.Context) (*domain.Snapshot, error) {
		return sampleSnapshot(1), nil
	}}
	m := New(src, WithSettleDelay(10*time.Millisecond))
	defer m.Stop()

	_ = m.Refresh(context.Background())
	if !m.State().Refreshing {
		t.Fatal("Refreshing should be true right after the fetch")
	}
	waitFor(t, func() bool { return !m.State().Refreshing })
}

func TestStart_RefreshesImmediatelyAndOnTicks(t *testing.T) {
	src := &mockSource{FetchFunc: func(context.Context) (*domain.Snapshot, error) {
		return sampleSnapshot(8), nil
	}}
	ticker := newFakeTicker()
	m := New(src,
		WithSettleDelay(0),
		WithTicker(func(time.Duration) Ticker { return ticker }),
	)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFor(t, func() bool { return src.calls.Load() == 1 })

	ticker.ch <- time.Now()
	waitFor(t, func() bool { return src.calls.Load() == 2 })
	ticker.ch <- time.Now()
	waitFor(t, func() bool { return src.calls.Load() == 3 })

	m.Stop()
	if !ticker.stopped.Load() {
		t.Error("ticker should be stopped with the monitor")
	}
	if err := m.Start(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("Start() after Stop error = %v, want ErrStopped", err)
	}
}

func TestStart_Twice(t *testing.T) {
	src := &mockSource{FetchFunc: func(context.Context) (*domain.Snapshot, error) {
		return sampleSnapshot(1), nil
	}}
	m := New(src, WithTicker(func(time.Duration) Ticker { return newFakeTicker() }))
	defer m.Stop()

	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := m.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
}

func TestStop_DiscardsLateResult(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	src := &mockSource{FetchFunc: func(ctx context.Context) (*domain.Snapshot, error) {
		close(entered)
		<-release
		return sampleSnapshot(999), nil
	}}
	m := New(src, WithSettleDelay(0))

	errCh := make(chan error, 1)
	go func() { errCh <- m.Refresh(context.Background()) }()
	<-entered

	m.Stop()
	close(release)

	if err := <-errCh; !errors.Is(err, ErrStopped) {
		t.Errorf("Refresh() error = %v, want ErrStopped", err)
	}
	if m.State().Snapshot != nil {
		t.Error("result arriving after Stop must not be applied")
	}
}

func TestStop_CancelsInFlightFetch(t *testing.T) {
	src := &mockSource{FetchFunc: func(ctx context.Context) (*domain.Snapshot, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	m := New(src, WithTicker(func(time.Duration) Ticker { return newFakeTicker() }))
	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return src.calls.Load() == 1 })

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while a fetch was in flight")
	}
	m.Stop()
}

func TestRefresh_RecordsOnlyChangedSnapshots(t *testing.T) {
	total := atomic.Int64{}
	total.Store(10)
	src := &mockSource{FetchFunc: func(context.Context) (*domain.Snapshot, error) {
		return sampleSnapshot(total.Load()), nil
	}}
	store := &mockStore{}
	exp := &mockExporter{}
	m := New(src, WithStore(store), WithExporter(exp), WithSettleDelay(0))
	defer m.Stop()

	_ = m.Refresh(context.Background())
	_ = m.Refresh(context.Background())
	total.Store(20)
	_ = m.Refresh(context.Background())

	if got := store.count(); got != 2 {
		t.Errorf("recorded %d snapshots, want 2", got)
	}
	if exp.observed != 3 {
		t.Errorf("observed %d snapshots, want 3", exp.observed)
	}
	if store.records[0].ID == store.records[1].ID {
		t.Error("record ids should be unique")
	}
}

func TestRefresh_RetriesRecordAfterStoreFailure(t *testing.T) {
	src := &mockSource{FetchFunc: func(context.Context) (*domain.Snapshot, error) {
		return sampleSnapshot(10), nil
	}}
	store := &mockStore{failures: 1}
	m := New(src, WithStore(store), WithSettleDelay(0))
	defer m.Stop()

	for range 3 {
		if err := m.Refresh(context.Background()); err != nil {
			t.Fatalf("refresh %d: %v", i, err)
		}
	}

	if got := store.count(); got != 1 {
		t.Errorf("recorded %d snapshots, want 1", got)
	}
}

func TestSubscribe_NotifiesAndClosesOnStop(t *testing.T) {
	src := &mockSource{FetchFunc: func(context.Context) (*domain.Snapshot, error) {
		return sampleSnapshot(1), nil
	}}
	m := New(src, WithSettleDelay(0))

	ch, cancel := m.Subscribe()
	defer cancel()

	_ = m.Refresh(context.Background())
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a notification after refresh")
	}

	m.Stop()
	waitFor(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	})
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseLoading, "loading"},
		{PhaseOffline, "offline"},
		{PhaseLive, "live"},
		{Phase(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

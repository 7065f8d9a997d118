// Package monitor keeps the factory snapshot fresh.
//
// A Monitor refreshes once on Start and then on every interval tick until
// Stop. Refreshes are single-flight: a tick or a manual retry that arrives
// while a fetch is outstanding joins that fetch instead of issuing a new
// request, so results are applied in request order.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/emiliopalmerini/factoryvision/internal/domain"
	"github.com/emiliopalmerini/factoryvision/internal/ports"
)

const (
	DefaultInterval    = 10 * time.Second
	DefaultSettleDelay = time.Second
)

var (
	ErrStopped        = errors.New("monitor stopped")
	ErrAlreadyStarted = errors.New("monitor already started")
)

// Monitor owns the refresh loop and the State it produces.
type Monitor struct {
	source   ports.MetricsSource
	store    ports.SnapshotStore
	exporter ports.MetricsExporter
	logger   zerolog.Logger

	interval  time.Duration
	settle    time.Duration
	now       func() time.Time
	newTicker func(time.Duration) Ticker

	group singleflight.Group

	// life bounds every fetch; cancelled by Stop.
	life   context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu              sync.Mutex
	state           State
	started         bool
	closed          bool
	gen             uint64
	settleTimer     *time.Timer
	lastFingerprint uint64
	subs            map[int]chan struct{}
	nextSub         int
}

type Option func(*Monitor)

func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithSettleDelay sets how long Refreshing stays true after a fetch completes.
func WithSettleDelay(d time.Duration) Option {
	return func(m *Monitor) {
		if d >= 0 {
			m.settle = d
		}
	}
}

func WithStore(s ports.SnapshotStore) Option {
	return func(m *Monitor) { m.store = s }
}

func WithExporter(e ports.MetricsExporter) Option {
	return func(m *Monitor) { m.exporter = e }
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(m *Monitor) { m.newTicker = newTicker }
}

// New creates a Monitor in the loading state. Nothing is fetched until
// Start or Refresh is called.
func New(source ports.MetricsSource, opts ...Option) *Monitor {
	m := &Monitor{
		source:    source,
		logger:    zerolog.Nop(),
		interval:  DefaultInterval,
		settle:    DefaultSettleDelay,
		now:       time.Now,
		newTicker: newTimeTicker,
		state:     State{Loading: true},
		subs:      make(map[int]chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.life, m.cancel = context.WithCancel(context.Background())
	return m
}

// Interval returns the refresh period.
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// Start refreshes immediately and then on every tick until ctx is done or
// Stop is called.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrStopped
	}
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	m.logger.Info().Dur("interval", m.interval).Msg("refresh loop started")
	go m.run(ctx)
	return nil
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	ticker := m.newTicker(m.interval)
	defer ticker.Stop()

	_ = m.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.life.Done():
			return
		case <-ticker.C():
			_ = m.Refresh(ctx)
		}
	}
}

// Stop cancels the loop and any in-flight fetch, disposes the settle timer
// and waits for the loop to exit. Fetch results that arrive afterwards are
// discarded. Stop is idempotent.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	started := m.started
	if m.settleTimer != nil {
		m.settleTimer.Stop()
	}
	for id, ch := range m.subs {
		close(ch)
		delete(m.subs, id)
	}
	m.mu.Unlock()

	m.cancel()
	if started {
		<-m.done
	}
	m.logger.Info().Msg("refresh loop stopped")
}

// State returns a copy of the current state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe returns a channel that receives a value after every state
// change. Notifications coalesce; readers should call State. The channel is
// closed by cancel or Stop.
func (m *Monitor) Subscribe() (<-chan struct{}, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan struct{}, 1)
	if m.closed {
		close(ch)
		return ch, func() {}
	}
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[id]; ok {
			close(c)
			delete(m.subs, id)
		}
	}
}

// notify must be called with m.mu held.
func (m *Monitor) notify() {
	for _, ch := range m.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Refresh fetches a new snapshot, joining a fetch already in flight. It
// returns the fetch error; the state is updated either way.
func (m *Monitor) Refresh(ctx context.Context) error {
	ch := m.group.DoChan("refresh", func() (any, error) {
		return nil, m.refresh()
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Monitor) refresh() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrStopped
	}
	m.gen++
	if m.settleTimer != nil {
		m.settleTimer.Stop()
	}
	m.state.Refreshing = true
	m.state.Attempts++
	m.notify()
	m.mu.Unlock()

	start := m.now()
	snap, err := m.source.Fetch(m.life)
	elapsed := m.now().Sub(start)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrStopped
	}
	now := m.now()
	m.state.Loading = false
	if err != nil {
		m.state.Err = domain.OfflineMessage
		m.state.LastError = err.Error()
		m.state.Failures++
		if m.state.Snapshot != nil && m.state.StaleSince.IsZero() {
			m.state.StaleSince = now
		}
	} else {
		m.state.Snapshot = snap
		m.state.Err = ""
		m.state.LastError = ""
		m.state.UpdatedAt = now
		m.state.StaleSince = time.Time{}
	}
	m.scheduleSettle(m.gen)
	record := err == nil && m.store != nil && snap.Fingerprint() != m.lastFingerprint
	m.notify()
	m.mu.Unlock()

	m.report(snap, err, elapsed, now, record)
	return err
}

// scheduleSettle clears Refreshing after the settle delay unless a newer
// refresh has started. Must be called with m.mu held.
func (m *Monitor) scheduleSettle(gen uint64) {
	m.settleTimer = time.AfterFunc(m.settle, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed || m.gen != gen {
			return
		}
		m.state.Refreshing = false
		m.notify()
	})
}

func (m *Monitor) report(snap *domain.Snapshot, err error, elapsed time.Duration, at time.Time, record bool) {
	outcome := domain.Outcome(err)
	if m.exporter != nil {
		m.exporter.RecordRefresh(m.life, outcome, elapsed)
	}

	if err != nil {
		m.logger.Error().Err(err).Str("outcome", outcome).Dur("elapsed", elapsed).Msg("data fetch failed")
		return
	}

	m.logger.Debug().
		Int64("total_production", snap.Factory.TotalProduction).
		Int("workers", len(snap.Workers)).
		Int("stations", len(snap.Stations)).
		Dur("elapsed", elapsed).
		Msg("snapshot refreshed")

	if m.exporter != nil {
		m.exporter.ObserveSnapshot(snap)
	}
	if record {
		rec := domain.NewSnapshotRecord(uuid.NewString(), at, snap)
		if err := m.store.Record(m.life, rec); err != nil {
			m.logger.Error().Err(err).Msg("record snapshot")
			return
		}
		// Committed only after a successful write so a failed one is retried.
		m.mu.Lock()
		m.lastFingerprint = rec.Fingerprint
		m.mu.Unlock()
	}
}

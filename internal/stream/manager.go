package stream

import (
	"context"
	"sync"
	"time"

	"workorder_dashboard/internal/logger"
	"workorder_dashboard/internal/models"
)

// Reconnect backoff tuning. Consecutive transient failures wait
// 1s, 2s, 4s, ... capped at 30s; a successful open resets the sequence.
const (
	DefaultBackoffBase = 1 * time.Second
	DefaultBackoffMax  = 30 * time.Second

	snapshotTimeout = 3 * time.Second
)

// SnapshotStore persists buffered logs and progress across restarts.
// The manager saves on last unsubscribe, seeds on first subscribe, and
// deletes on clear or permanent transport failure.
type SnapshotStore interface {
	Save(ctx context.Context, workOrderID string, logs []models.LogEvent, progress models.LiveProgress) error
	Load(ctx context.Context, workOrderID string) ([]models.LogEvent, models.LiveProgress, bool, error)
	Delete(ctx context.Context, workOrderID string) error
}

// Options tunes the manager. Zero values fall back to the defaults above.
type Options struct {
	BufferSize  int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// Manager owns one logical push-stream connection per work-order id:
// lifecycle, reconnect with backoff, permanent-failure teardown, and the
// per-id log buffer and live progress fed from inbound events.
//
// It is constructed once at startup and passed by reference; all shared
// state lives behind its mutex and is mutated only through its methods.
// Each tracked id has a single run-loop goroutine draining the transport,
// so events for one work order apply strictly in arrival order.
type Manager struct {
	dialer Dialer
	store  SnapshotStore // optional
	log    *logger.Logger
	opts   Options

	mu      sync.Mutex
	entries map[string]*orderStream
}

// orderStream is the per-work-order registry entry.
type orderStream struct {
	id          string
	subscribers int
	state       models.ConnectionState
	buffer      *logBuffer
	progress    models.LiveProgress
	attempt     int

	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	retryNow chan struct{} // manual retry, bypasses the pending backoff wait
}

func NewManager(dialer Dialer, store SnapshotStore, log *logger.Logger, opts Options) *Manager {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = DefaultBackoffBase
	}
	if opts.BackoffMax <= 0 {
		opts.BackoffMax = DefaultBackoffMax
	}
	return &Manager{
		dialer:  dialer,
		store:   store,
		log:     log,
		opts:    opts,
		entries: make(map[string]*orderStream),
	}
}

// Connect registers a subscriber for the work order and ensures exactly one
// transport connection exists for it. Calling it again while the stream is
// connecting or connected only bumps the subscriber count.
func (m *Manager) Connect(workOrderID string) {
	m.mu.Lock()
	st, ok := m.entries[workOrderID]
	if !ok {
		// First sight of this id. The snapshot load can block for up to
		// snapshotTimeout, so it runs without the lock; the result is only
		// installed if no concurrent Connect created the entry meanwhile.
		m.mu.Unlock()
		logs, progress, seeded := m.loadSnapshot(workOrderID)
		m.mu.Lock()
		st, ok = m.entries[workOrderID]
		if !ok {
			st = &orderStream{
				id:       workOrderID,
				state:    models.StateDisconnected,
				buffer:   newLogBuffer(m.opts.BufferSize),
				retryNow: make(chan struct{}, 1),
			}
			if seeded {
				for _, ev := range logs {
					st.buffer.Append(ev)
				}
				st.progress = progress
			}
			m.entries[workOrderID] = st
		}
	}
	st.subscribers++

	if st.running {
		m.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	st.running = true
	st.cancel = cancel
	st.done = make(chan struct{})
	st.attempt = 0
	st.state = models.StateConnecting
	m.mu.Unlock()

	go m.run(ctx, st)
}

// Disconnect drops one subscriber. The transport is torn down only when the
// last subscriber leaves; buffered logs and progress stay available for
// history display (and are snapshotted for the next start). Unknown ids are
// a no-op.
func (m *Manager) Disconnect(workOrderID string) {
	m.mu.Lock()
	st, ok := m.entries[workOrderID]
	if !ok {
		m.mu.Unlock()
		return
	}
	if st.subscribers > 0 {
		st.subscribers--
	}
	if st.subscribers > 0 {
		m.mu.Unlock()
		return
	}
	cancel, done, running := st.cancel, st.done, st.running
	st.running = false
	st.cancel = nil
	m.mu.Unlock()

	if running {
		cancel()
		<-done
	}

	m.mu.Lock()
	st.state = models.StateDisconnected
	logs := st.buffer.Snapshot()
	progress := st.progress
	m.mu.Unlock()

	m.saveSnapshot(workOrderID, logs, progress)
}

// DisconnectAll tears down every tracked connection and clears all per-id
// state. In-memory data is snapshotted first so a restart can pick it up.
func (m *Manager) DisconnectAll() {
	m.mu.Lock()
	entries := make([]*orderStream, 0, len(m.entries))
	for _, st := range m.entries {
		entries = append(entries, st)
	}
	m.entries = make(map[string]*orderStream)
	m.mu.Unlock()

	for _, st := range entries {
		m.mu.Lock()
		cancel, done, running := st.cancel, st.done, st.running
		st.running = false
		st.subscribers = 0
		m.mu.Unlock()

		if running {
			cancel()
			<-done
		}

		m.mu.Lock()
		st.state = models.StateDisconnected
		logs := st.buffer.Snapshot()
		progress := st.progress
		m.mu.Unlock()

		m.saveSnapshot(st.id, logs, progress)
	}
}

// Reconnect cancels a pending backoff wait, resets the attempt counter and
// forces an immediate dial. It is the manual retry action behind the
// dashboard's "retry now" button; ids without subscribers are a no-op.
func (m *Manager) Reconnect(workOrderID string) {
	m.mu.Lock()
	st, ok := m.entries[workOrderID]
	if !ok || st.subscribers == 0 {
		m.mu.Unlock()
		return
	}
	st.attempt = 0
	if st.running {
		// Only a stream waiting out a backoff has a retry to skip. A healthy
		// or mid-dial stream must not bank the request: a token consumed on
		// some later failure would cut that failure's first delay short.
		pending := st.state == models.StateError
		m.mu.Unlock()
		if pending {
			select {
			case st.retryNow <- struct{}{}:
			default:
			}
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	st.running = true
	st.cancel = cancel
	st.done = make(chan struct{})
	st.state = models.StateConnecting
	m.mu.Unlock()

	go m.run(ctx, st)
}

// Clear empties the buffer and resets progress for the id without touching
// the connection. The persisted snapshot is dropped as well.
func (m *Manager) Clear(workOrderID string) {
	m.mu.Lock()
	if st, ok := m.entries[workOrderID]; ok {
		st.buffer.Clear()
		st.progress = models.LiveProgress{}
	}
	m.mu.Unlock()

	m.deleteSnapshot(workOrderID)
}

// State returns the connection state for the id; unknown ids read as
// disconnected.
func (m *Manager) State(workOrderID string) models.ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.entries[workOrderID]; ok {
		return st.state
	}
	return models.StateDisconnected
}

// Logs returns the buffered events for the id in chronological order.
func (m *Manager) Logs(workOrderID string) []models.LogEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.entries[workOrderID]; ok {
		return st.buffer.Snapshot()
	}
	return nil
}

// Progress returns the live progress for the id and whether the id is
// tracked at all.
func (m *Manager) Progress(workOrderID string) (models.LiveProgress, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.entries[workOrderID]; ok {
		return st.progress, true
	}
	return models.LiveProgress{}, false
}

// run is the single consumer loop for one work order: dial, drain, classify
// failures, back off, repeat. It exits on context cancellation or permanent
// transport failure.
func (m *Manager) run(ctx context.Context, st *orderStream) {
	defer close(st.done)

	for {
		conn, err := m.dialer.Dial(ctx, st.id)
		if ctx.Err() != nil {
			if conn != nil {
				_ = conn.Close()
			}
			return
		}
		if err != nil {
			if IsPermanent(err) {
				m.teardownPermanent(st, err)
				return
			}
			if !m.waitRetry(ctx, st, err) {
				return
			}
			m.setState(st, models.StateConnecting)
			continue
		}

		m.onOpen(st)
		err = m.consume(ctx, st, conn)
		_ = conn.Close()

		if ctx.Err() != nil {
			return
		}
		if IsPermanent(err) {
			m.teardownPermanent(st, err)
			return
		}
		if !m.waitRetry(ctx, st, err) {
			return
		}
		m.setState(st, models.StateConnecting)
	}
}

// consume drains pushed messages until the transport fails. A payload that
// fails to parse is logged and dropped; the connection stays up.
func (m *Manager) consume(ctx context.Context, st *orderStream, conn Conn) error {
	// Unblock the pending read when the stream is being torn down.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		ev, err := ParseLogEvent(payload)
		if err != nil {
			if m.log != nil {
				m.log.Warnw("stream_payload_dropped", "work_order_id", st.id, "err", err)
			}
			continue
		}
		m.apply(st, ev)
	}
}

// apply appends the event and folds it into the live progress. Both
// mutations happen under the lock, so readers never observe one without
// the other.
func (m *Manager) apply(st *orderStream, ev models.LogEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev.WorkOrderID == "" {
		ev.WorkOrderID = st.id
	}
	st.buffer.Append(ev)
	st.progress = Reduce(st.progress, ev)
}

func (m *Manager) onOpen(st *orderStream) {
	m.mu.Lock()
	st.state = models.StateConnected
	st.attempt = 0
	m.mu.Unlock()

	// A retry requested during the dial is satisfied by the open itself;
	// drop the token so it cannot shorten a later backoff wait.
	select {
	case <-st.retryNow:
	default:
	}

	if m.log != nil {
		m.log.Infow("stream_connected", "work_order_id", st.id)
	}
}

func (m *Manager) setState(st *orderStream, s models.ConnectionState) {
	m.mu.Lock()
	st.state = s
	m.mu.Unlock()
}

// waitRetry marks the stream errored and sleeps out the backoff delay.
// Returns false when the wait was cancelled, true when a reconnect should
// be attempted (either the timer fired or a manual retry skipped it).
func (m *Manager) waitRetry(ctx context.Context, st *orderStream, cause error) bool {
	m.mu.Lock()
	st.state = models.StateError
	delay := backoffDelay(m.opts.BackoffBase, m.opts.BackoffMax, st.attempt)
	st.attempt++
	m.mu.Unlock()

	if m.log != nil {
		m.log.Infow("stream_retry_scheduled", "work_order_id", st.id, "delay", delay, "err", cause)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-st.retryNow:
		m.mu.Lock()
		st.attempt = 0
		m.mu.Unlock()
		return true
	case <-timer.C:
		return true
	}
}

// teardownPermanent removes every trace of the id: connection entry, buffer,
// progress and snapshot. No reconnect is scheduled.
func (m *Manager) teardownPermanent(st *orderStream, cause error) {
	m.mu.Lock()
	st.running = false
	st.state = models.StateDisconnected
	delete(m.entries, st.id)
	m.mu.Unlock()

	if m.log != nil {
		m.log.Errorw("stream_gone", "work_order_id", st.id, "err", cause)
	}
	m.deleteSnapshot(st.id)
}

// backoffDelay computes min(base << attempt, max).
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 31 {
		return max
	}
	d := base << uint(attempt)
	if d <= 0 || d > max {
		return max
	}
	return d
}

// loadSnapshot fetches the persisted snapshot for the id. Callers must not
// hold the manager lock; Load may take up to snapshotTimeout.
func (m *Manager) loadSnapshot(workOrderID string) ([]models.LogEvent, models.LiveProgress, bool) {
	if m.store == nil {
		return nil, models.LiveProgress{}, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	logs, progress, ok, err := m.store.Load(ctx, workOrderID)
	if err != nil {
		if m.log != nil {
			m.log.Warnw("snapshot_load_failed", "work_order_id", workOrderID, "err", err)
		}
		return nil, models.LiveProgress{}, false
	}
	return logs, progress, ok
}

func (m *Manager) saveSnapshot(workOrderID string, logs []models.LogEvent, progress models.LiveProgress) {
	if m.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	if err := m.store.Save(ctx, workOrderID, logs, progress); err != nil && m.log != nil {
		m.log.Warnw("snapshot_save_failed", "work_order_id", workOrderID, "err", err)
	}
}

func (m *Manager) deleteSnapshot(workOrderID string) {
	if m.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	if err := m.store.Delete(ctx, workOrderID); err != nil && m.log != nil {
		m.log.Warnw("snapshot_delete_failed", "work_order_id", workOrderID, "err", err)
	}
}

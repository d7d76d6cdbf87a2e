// api/client/session.go
package client

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"oamour/api/metrics"
	"oamour/api/models"
)

// SessionKey is where the session id is persisted in the SessionStore.
const SessionKey = "oa_session_id"

// FlushInterval is the default periodic flush cadence.
const FlushInterval = 4000 * time.Millisecond

// SessionStore persists the session id for the lifetime of one embedding
// scope, the way a browser tab keeps it in sessionStorage.
type SessionStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// MemoryStore is the default SessionStore: ids live as long as the process.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Options configure a Session. Zero values get sensible defaults; Endpoint
// is required unless a Transport is supplied directly.
type Options struct {
	Endpoint      string
	Transport     Transport
	Env           Environment
	Store         SessionStore
	Clock         func() time.Time
	FlushInterval time.Duration
	VisitorName   string
	DisableBeacon bool
}

// Session owns the analytics lifetime of one embedding: session identity,
// the open-page timer, the pending-event queue and the flush loop. All
// methods are safe for concurrent use.
type Session struct {
	mu          sync.Mutex
	id          string
	visitorName string
	page        pageState
	ending      bool
	ended       bool
	queue       eventQueue

	transport Transport
	env       Environment
	clock     func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// pageState is the "current page" timer. A zero openedAt means the page is
// closed; the key is kept so re-announcing it re-opens cleanly.
type pageState struct {
	key      string
	openedAt time.Time
}

// NewSession recovers or generates the session id, emits session_start and
// starts the periodic flush loop.
func NewSession(opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Env == nil {
		opts.Env = &StaticEnvironment{}
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = FlushInterval
	}
	if opts.Transport == nil {
		opts.Transport = NewTransport(opts.Endpoint, nil, opts.DisableBeacon)
	}

	s := &Session{
		id:          recoverSessionID(opts.Store),
		visitorName: opts.VisitorName,
		transport:   opts.Transport,
		env:         opts.Env,
		clock:       opts.Clock,
		done:        make(chan struct{}),
	}

	s.mu.Lock()
	s.push(Event{Type: models.EventSessionStart})
	s.mu.Unlock()
	s.flushAsync()

	go s.flushLoop(opts.FlushInterval)
	return s
}

// recoverSessionID reuses a stored id when present so the session survives
// tracker re-creation within the same storage scope.
func recoverSessionID(store SessionStore) string {
	if existing, ok := store.Get(SessionKey); ok && existing != "" {
		return existing
	}
	id, err := uuid.NewRandom()
	fresh := id.String()
	if err != nil {
		fresh = fmt.Sprintf("%d-%x", time.Now().UnixMilli(), rand.Int63())
	}
	store.Set(SessionKey, fresh)
	return fresh
}

// ID returns the session identifier; it never changes after generation.
func (s *Session) ID() string {
	return s.id
}

// SetVisitorName updates the name attached to subsequent events.
func (s *Session) SetVisitorName(name string) {
	s.mu.Lock()
	s.visitorName = name
	s.mu.Unlock()
}

// TrackScreenChange announces the logical screen now showing. Announcing a
// different screen closes the previous one with a page_leave first;
// re-announcing the open screen is a no-op. An empty visitorName leaves the
// current name unchanged.
func (s *Session) TrackScreenChange(pageKey, visitorName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}
	if visitorName != "" {
		s.visitorName = visitorName
	}
	if pageKey == "" {
		return
	}

	events, next := pageTransition(s.page, pageKey, s.clock())
	s.page = next
	for _, ev := range events {
		s.push(ev)
	}
}

// pageTransition computes the events emitted when newKey is announced while
// cur is open. Pure so page timing can be tested without real timers.
func pageTransition(cur pageState, newKey string, now time.Time) ([]Event, pageState) {
	var events []Event

	if cur.key != "" && cur.key != newKey && !cur.openedAt.IsZero() {
		events = append(events, pageLeaveEvent(cur, "screen_change", now))
		cur.openedAt = time.Time{}
	}

	if cur.key == newKey && !cur.openedAt.IsZero() {
		return events, cur
	}

	next := pageState{key: newKey, openedAt: now}
	events = append(events, Event{Type: models.EventPageView, PageKey: newKey})
	return events, next
}

func pageLeaveEvent(page pageState, reason string, now time.Time) Event {
	duration := now.Sub(page.openedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}
	ev := Event{Type: models.EventPageLeave, PageKey: page.key, DurationMs: &duration}
	if reason != "" {
		ev.Meta = map[string]any{"reason": reason}
	}
	return ev
}

// TrackInteraction records a user interaction with a free-form metadata
// bag. It does not touch page timing.
func (s *Session) TrackInteraction(pageKey string, meta map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.push(Event{Type: models.EventInteraction, PageKey: pageKey, Meta: meta})
}

// EndCurrentPage closes the open page timer, if any, with a page_leave
// tagged by reason. The page key is kept so the same screen can re-open.
func (s *Session) EndCurrentPage(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endCurrentPageLocked(reason)
}

func (s *Session) endCurrentPageLocked(reason string) {
	if s.page.key == "" || s.page.openedAt.IsZero() {
		return
	}
	s.push(pageLeaveEvent(s.page, reason, s.clock()))
	s.page.openedAt = time.Time{}
}

// ResetFlowPage closes the current page as a deliberate flow restart and
// clears the current-page pointer without ending the session.
func (s *Session) ResetFlowPage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endCurrentPageLocked("flow_reset")
	s.page.key = ""
}

// End finishes the session: closes any open page, emits session_end with
// the triggering reason and attempts a final flush. Only the first call
// has effect; overlapping teardown signals (hidden + pagehide) collapse to
// one session_end. The session counts as ended even if the flush fails.
func (s *Session) End(reason string) {
	s.mu.Lock()
	if s.ended || s.ending {
		s.mu.Unlock()
		return
	}
	s.ending = true
	s.endCurrentPageLocked(reason)
	s.push(Event{Type: models.EventSessionEnd, Meta: map[string]any{"reason": reason}})
	s.ended = true
	s.mu.Unlock()

	s.flushNow()

	s.mu.Lock()
	s.ending = false
	s.mu.Unlock()
}

// Ended reports whether the session has emitted session_end.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// QueueLen reports how many events are waiting to be flushed.
func (s *Session) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Close stops the flush loop and waits for any in-flight beacon sends. It
// does not emit session_end; call End first when tearing down.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	if beacon, ok := s.transport.(*BeaconTransport); ok {
		beacon.Wait()
	}
}

// push appends to the bounded queue. Callers hold s.mu.
func (s *Session) push(ev Event) {
	s.queue.Push(ev)
	metrics.ClientQueueDepth.Set(float64(s.queue.Len()))
}

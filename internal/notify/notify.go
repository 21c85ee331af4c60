// Package notify queues toast notifications per UI session.
//
// Pages push a notification when an operation finishes and drain the queue
// when they render. A notification is shown once. Sessions that stop making
// requests expire after a TTL and their pending notifications are dropped.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/InventoryUI/internal/metrics"
)

// Kind is the visual style of a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// Notification is one toast.
type Notification struct {
	ID        string
	Kind      Kind
	Title     string
	Body      string
	CreatedAt time.Time
}

// Success builds a success toast.
func Success(title, body string) Notification {
	return Notification{Kind: KindSuccess, Title: title, Body: body}
}

// Error builds an error toast.
func Error(title, body string) Notification {
	return Notification{Kind: KindError, Title: title, Body: body}
}

// Info builds an informational toast.
func Info(title, body string) Notification {
	return Notification{Kind: KindInfo, Title: title, Body: body}
}

const (
	DefaultTTL           = 30 * time.Minute
	DefaultMaxPerSession = 20
)

type session struct {
	pending  []Notification
	lastSeen time.Time
}

// Queue holds pending notifications for every open session. It is safe for
// concurrent use.
type Queue struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	max      int
	now      func() time.Time
}

// NewQueue creates a queue. Non-positive values select the defaults.
func NewQueue(ttl time.Duration, maxPerSession int) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxPerSession <= 0 {
		maxPerSession = DefaultMaxPerSession
	}
	return &Queue{
		sessions: make(map[string]*session),
		ttl:      ttl,
		max:      maxPerSession,
		now:      time.Now,
	}
}

// Open registers a session, or refreshes its expiry if already open.
func (q *Queue) Open(id string) {
	if id == "" {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.touch(id)
}

// Close forgets a session and anything still pending for it.
func (q *Queue) Close(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.sessions, id)
	q.updateGauge()
}

// Push queues n for session id, opening the session if needed. When the
// session is full the oldest notification is dropped.
func (q *Queue) Push(id string, n Notification) Notification {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Kind == "" {
		n.Kind = KindInfo
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = q.now()
	}
	if id == "" {
		return n
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	s := q.touch(id)
	s.pending = append(s.pending, n)
	if over := len(s.pending) - q.max; over > 0 {
		s.pending = append([]Notification(nil), s.pending[over:]...)
	}
	q.updateGauge()
	return n
}

// Drain returns and clears the pending notifications of a session, oldest
// first.
func (q *Queue) Drain(id string) []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	s, ok := q.sessions[id]
	if !ok {
		return nil
	}
	s.lastSeen = q.now()
	out := s.pending
	s.pending = nil
	q.updateGauge()
	return out
}

// Dismiss removes one pending notification. It reports whether it was found.
func (q *Queue) Dismiss(id, notificationID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	s, ok := q.sessions[id]
	if !ok {
		return false
	}
	for i, n := range s.pending {
		if n.ID == notificationID {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			q.updateGauge()
			return true
		}
	}
	return false
}

// Pending counts the notifications waiting for a session.
func (q *Queue) Pending(id string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if s, ok := q.sessions[id]; ok {
		return len(s.pending)
	}
	return 0
}

// Sessions counts open sessions.
func (q *Queue) Sessions() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.sessions)
}

// Sweep closes sessions idle since before now-TTL and returns how many it
// removed.
func (q *Queue) Sweep(now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	cutoff := now.Add(-q.ttl)
	removed := 0
	for id, s := range q.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(q.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		q.updateGauge()
	}
	return removed
}

func (q *Queue) touch(id string) *session {
	s, ok := q.sessions[id]
	if !ok {
		s = &session{}
		q.sessions[id] = s
	}
	s.lastSeen = q.now()
	return s
}

// updateGauge must be called with mu held.
func (q *Queue) updateGauge() {
	total := 0
	for _, s := range q.sessions {
		total += len(s.pending)
	}
	metrics.Notifications.Set(float64(total))
}

package presence

import (
	"sync"
	"time"

	"live-service/internal/models"
)

// MaxBatchSize caps bulk presence queries to bound fan-out cost.
const MaxBatchSize = 80

// Listener receives presence transitions. Listeners are invoked while the
// tracker lock is held so transitions for a user are strictly ordered;
// they must be fast and must not call back into the tracker.
type Listener func(models.PresenceStatus)

// Tracker reference-counts connections per user id and derives
// online/offline state. Online means at least one active connection.
type Tracker struct {
	mu       sync.Mutex
	conns    map[string]map[string]struct{}
	lastSeen map[string]time.Time
	updated  map[string]time.Time

	listeners map[int]Listener
	nextID    int

	now func() time.Time
}

// NewTracker constructs an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		conns:     make(map[string]map[string]struct{}),
		lastSeen:  make(map[string]time.Time),
		updated:   make(map[string]time.Time),
		listeners: make(map[int]Listener),
		now:       time.Now,
	}
}

// Subscribe registers a transition listener and returns its unsubscribe
// function.
func (t *Tracker) Subscribe(fn Listener) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.listeners, id)
	}
}

// Connect records a connection for the user. A transition event is emitted
// only when the connection count goes from zero to one.
func (t *Tracker) Connect(userID, connID string) models.PresenceStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.conns[userID]
	if !ok {
		set = make(map[string]struct{})
		t.conns[userID] = set
	}
	wasOffline := len(set) == 0
	set[connID] = struct{}{}
	t.updated[userID] = t.now()

	status := t.statusLocked(userID)
	if wasOffline {
		t.emitLocked(status)
	}
	return status
}

// Disconnect removes a connection for the user. LastSeenAt is recorded and
// a transition emitted only when the last connection goes away.
func (t *Tracker) Disconnect(userID, connID string) models.PresenceStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if set, ok := t.conns[userID]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(t.conns, userID)
			t.lastSeen[userID] = now
			t.updated[userID] = now
			status := t.statusLocked(userID)
			t.emitLocked(status)
			return status
		}
	}
	t.updated[userID] = now
	return t.statusLocked(userID)
}

// StatusOf reports the derived status of one user. Users never seen are
// offline with a null LastSeenAt.
func (t *Tracker) StatusOf(userID string) models.PresenceStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked(userID)
}

// StatusesOf reports statuses for a deduplicated, size-capped id batch.
func (t *Tracker) StatusesOf(userIDs []string) []models.PresenceStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[string]struct{}, len(userIDs))
	statuses := make([]models.PresenceStatus, 0, len(userIDs))
	for _, id := range userIDs {
		if len(statuses) >= MaxBatchSize {
			break
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		statuses = append(statuses, t.statusLocked(id))
	}
	return statuses
}

func (t *Tracker) statusLocked(userID string) models.PresenceStatus {
	online := len(t.conns[userID]) > 0
	status := models.PresenceStatus{
		UserID:    userID,
		Online:    online,
		UpdatedAt: t.updated[userID],
	}
	if !online {
		if seen, ok := t.lastSeen[userID]; ok {
			at := seen
			status.LastSeenAt = &at
		}
	}
	return status
}

func (t *Tracker) emitLocked(status models.PresenceStatus) {
	for _, fn := range t.listeners {
		fn(status)
	}
}

package ws

import (
	"context"
	"log"
	"sync"

	"live-service/internal/models"
)

// RoomActor is the stateful per-room fan-out strategy: a single goroutine
// owns the canonical connection list for one named room, so everyone in
// the room is co-located and no bridge is needed. All operations run on
// the actor goroutine; callers block until their command is applied, which
// keeps detach synchronous with respect to subsequent broadcasts.
type RoomActor struct {
	room    string
	mailbox chan func()

	// Owned by the actor goroutine; reached from outside only through
	// the mailbox.
	conns map[string]*Conn

	stopOnce sync.Once
	done     chan struct{}
}

// NewRoomActor starts an empty actor for the room.
func NewRoomActor(room string) *RoomActor {
	a := &RoomActor{
		room:    room,
		mailbox: make(chan func(), 64),
		conns:   make(map[string]*Conn),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// AttachedSocket is a still-open socket plus the attachment serialized
// onto it at attach time.
type AttachedSocket struct {
	Attachment []byte
	Socket     Socket
}

// RehydrateRoomActor reconstructs an actor purely by enumerating live
// connections and deserializing their attachments, without external
// storage. The registry is rebuilt before the mailbox starts serving new
// traffic.
func RehydrateRoomActor(room string, sockets []AttachedSocket) (*RoomActor, error) {
	a := &RoomActor{
		room:    room,
		mailbox: make(chan func(), 64),
		conns:   make(map[string]*Conn),
		done:    make(chan struct{}),
	}
	for _, s := range sockets {
		c, err := RestoreConn(s.Attachment, s.Socket)
		if err != nil {
			return nil, err
		}
		a.conns[c.ID] = c
	}
	go a.run()
	return a, nil
}

func (a *RoomActor) run() {
	for {
		select {
		case fn := <-a.mailbox:
			fn()
		case <-a.done:
			return
		}
	}
}

// do runs fn on the actor goroutine and waits for it to finish. After the
// actor stops, commands are dropped.
func (a *RoomActor) do(fn func()) {
	applied := make(chan struct{})
	select {
	case a.mailbox <- func() {
		fn()
		close(applied)
	}:
	case <-a.done:
		return
	}
	select {
	case <-applied:
	case <-a.done:
	}
}

func (a *RoomActor) Attach(c *Conn) {
	a.do(func() { a.conns[c.ID] = c })
}

func (a *RoomActor) Detach(connID string) *Conn {
	var removed *Conn
	a.do(func() {
		removed = a.conns[connID]
		delete(a.conns, connID)
	})
	return removed
}

func (a *RoomActor) Broadcast(_ context.Context, event models.ChatEvent) {
	a.BroadcastLocal(event)
}

// BroadcastLocal writes to every connection in the room. Everything is
// local in actor mode.
func (a *RoomActor) BroadcastLocal(event models.ChatEvent) {
	a.do(func() {
		for _, c := range a.conns {
			a.send(c, event)
		}
	})
}

func (a *RoomActor) SendToUsers(_ context.Context, userIDs []string, event models.ChatEvent) {
	targets := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if id != "" {
			targets[id] = struct{}{}
		}
	}
	a.do(func() {
		for _, c := range a.conns {
			if c.Participant.Guest {
				continue
			}
			if _, ok := targets[c.Participant.ID]; ok {
				a.send(c, event)
			}
		}
	})
}

// OnlineCount reports distinct participants in the room. Serves the
// read-only presence query without opening a socket.
func (a *RoomActor) OnlineCount() int {
	var count int
	a.do(func() {
		ids := make(map[string]struct{}, len(a.conns))
		for _, c := range a.conns {
			ids[c.Participant.ID] = struct{}{}
		}
		count = len(ids)
	})
	return count
}

// Stop ends the actor goroutine. Open connections are left to their own
// read loops.
func (a *RoomActor) Stop() {
	a.stopOnce.Do(func() { close(a.done) })
}

// Snapshot serializes every live connection's attachment, pairing it with
// the open socket, so a replacement actor can be rehydrated.
func (a *RoomActor) Snapshot() []AttachedSocket {
	var out []AttachedSocket
	a.do(func() {
		for _, c := range a.conns {
			att, err := c.MarshalAttachment()
			if err != nil {
				continue
			}
			out = append(out, AttachedSocket{Attachment: att, Socket: c.sock})
		}
	})
	return out
}

func (a *RoomActor) send(c *Conn, event models.ChatEvent) {
	if err := c.Send(event); err != nil {
		log.Printf("room %s: websocket write error: %v", a.room, err)
		_ = c.Close()
		delete(a.conns, c.ID)
	}
}

// RoomManager creates and looks up room actors by name.
type RoomManager struct {
	mu    sync.Mutex
	rooms map[string]*RoomActor
}

// NewRoomManager constructs an empty manager.
func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[string]*RoomActor)}
}

// Get returns the room's actor, starting one on first use.
func (m *RoomManager) Get(room string) *RoomActor {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rooms[room]
	if !ok {
		a = NewRoomActor(room)
		m.rooms[room] = a
	}
	return a
}

// OnlineCount reports the room's distinct-participant count; zero for a
// room that has never been activated.
func (m *RoomManager) OnlineCount(room string) int {
	m.mu.Lock()
	a, ok := m.rooms[room]
	m.mu.Unlock()
	if !ok {
		return 0
	}
	return a.OnlineCount()
}

// Restart replaces a room's actor with one rehydrated from the live
// connections of the old actor.
func (m *RoomManager) Restart(room string) error {
	m.mu.Lock()
	old, ok := m.rooms[room]
	m.mu.Unlock()
	if !ok {
		return nil
	}

	snapshot := old.Snapshot()
	old.Stop()

	fresh, err := RehydrateRoomActor(room, snapshot)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.rooms[room] = fresh
	m.mu.Unlock()
	return nil
}

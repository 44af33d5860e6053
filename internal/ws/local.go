package ws

import (
	"context"
	"log"

	"live-service/internal/models"
	"live-service/internal/observability"
)

// LocalTransport fans out over the process-local registry. Correct on its
// own only for a single running process; the bridged transport builds on
// it for fleets.
type LocalTransport struct {
	reg *Registry
}

// NewLocalTransport wraps a registry.
func NewLocalTransport(reg *Registry) *LocalTransport {
	return &LocalTransport{reg: reg}
}

func (t *LocalTransport) Attach(c *Conn) {
	t.reg.Add(c)
}

func (t *LocalTransport) Detach(connID string) *Conn {
	return t.reg.Remove(connID)
}

// Broadcast writes the event to every registered socket. A failed write
// closes and removes that connection; its read loop finishes the cleanup.
func (t *LocalTransport) Broadcast(_ context.Context, event models.ChatEvent) {
	t.BroadcastLocal(event)
}

func (t *LocalTransport) BroadcastLocal(event models.ChatEvent) {
	for _, c := range t.reg.All() {
		t.send(c, event)
	}
}

// SendToUsers writes the event only to sockets owned by the target ids.
func (t *LocalTransport) SendToUsers(_ context.Context, userIDs []string, event models.ChatEvent) {
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		for _, c := range t.reg.ForUser(id) {
			t.send(c, event)
		}
	}
}

func (t *LocalTransport) OnlineCount() int {
	return t.reg.OnlineCount()
}

func (t *LocalTransport) send(c *Conn, event models.ChatEvent) {
	if err := c.Send(event); err != nil {
		log.Printf("websocket write error: %v", err)
		_ = c.Close()
		t.reg.Remove(c.ID)
		observability.IncWSEvent("write_error")
	}
}

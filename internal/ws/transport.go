package ws

import (
	"context"

	"live-service/internal/models"
)

// Transport is the fan-out strategy behind the chat protocol. All three
// implementations (local, bridged, room actor) speak the same event
// contract; only delivery differs.
type Transport interface {
	// Attach registers a connection.
	Attach(c *Conn)
	// Detach removes a connection synchronously; by the time it returns
	// the connection no longer counts toward any broadcast.
	Detach(connID string) *Conn
	// Broadcast delivers an event to every interested connection,
	// cluster-wide where the strategy spans processes.
	Broadcast(ctx context.Context, event models.ChatEvent)
	// BroadcastLocal delivers an event to this process's connections
	// only, regardless of strategy. Used for the online count, which is
	// always a local quantity.
	BroadcastLocal(event models.ChatEvent)
	// SendToUsers delivers an event only to connections owned by the
	// given non-guest user ids.
	SendToUsers(ctx context.Context, userIDs []string, event models.ChatEvent)
	// OnlineCount reports distinct connected participants on this
	// process (or room, in actor mode).
	OnlineCount() int
}

package ws

import (
	"context"
	"encoding/json"
	"log"

	"live-service/internal/bridge"
	"live-service/internal/models"
	"live-service/internal/observability"
)

// Envelope scopes for bridged delivery.
const (
	scopeBroadcast = "broadcast"
	scopeDirect    = "direct"
)

// bridgeEnvelope is the wire form of a chat event crossing the bridge.
type bridgeEnvelope struct {
	Scope     string           `json:"scope"`
	TargetIDs []string         `json:"target_ids,omitempty"`
	Event     models.ChatEvent `json:"event"`
}

// BridgedTransport spans a horizontally scaled fleet through a fanout
// bridge. Every process re-broadcasts envelopes it receives from the
// bridge to its local registry, including its own published ones; local
// fallback happens only when the bridge path is unavailable, so each
// process delivers an event locally exactly once regardless of path.
type BridgedTransport struct {
	local *LocalTransport
	pub   bridge.Publisher
}

// NewBridgedTransport builds the transport. The publisher is attached
// separately because the bridge's consumer needs Receive as its handler.
func NewBridgedTransport(reg *Registry) *BridgedTransport {
	return &BridgedTransport{local: NewLocalTransport(reg)}
}

// SetPublisher wires the bridge once its consumer handler is registered.
func (t *BridgedTransport) SetPublisher(pub bridge.Publisher) {
	t.pub = pub
}

func (t *BridgedTransport) Attach(c *Conn) {
	t.local.Attach(c)
}

func (t *BridgedTransport) Detach(connID string) *Conn {
	return t.local.Detach(connID)
}

// Broadcast publishes the event to the fleet. If the publish fails, or the
// local subscription has not yet been established, it falls back to local
// delivery; otherwise this process's own connections would never see the
// event it just produced.
func (t *BridgedTransport) Broadcast(ctx context.Context, event models.ChatEvent) {
	if !t.publish(ctx, bridgeEnvelope{Scope: scopeBroadcast, Event: event}) {
		t.local.BroadcastLocal(event)
	}
}

func (t *BridgedTransport) BroadcastLocal(event models.ChatEvent) {
	t.local.BroadcastLocal(event)
}

// SendToUsers publishes a direct envelope so any process holding a target
// user's connections delivers it; falls back to local-only delivery when
// the bridge path is unavailable.
func (t *BridgedTransport) SendToUsers(ctx context.Context, userIDs []string, event models.ChatEvent) {
	if !t.publish(ctx, bridgeEnvelope{Scope: scopeDirect, TargetIDs: userIDs, Event: event}) {
		t.local.SendToUsers(ctx, userIDs, event)
	}
}

func (t *BridgedTransport) OnlineCount() int {
	return t.local.OnlineCount()
}

// Receive handles an envelope delivered by the bridge and re-broadcasts it
// to local connections. Registered as the bridge consumer handler.
func (t *BridgedTransport) Receive(body []byte) {
	var env bridgeEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		log.Printf("bridge: dropping malformed envelope: %v", err)
		return
	}
	switch env.Scope {
	case scopeDirect:
		t.local.SendToUsers(context.Background(), env.TargetIDs, env.Event)
	default:
		t.local.BroadcastLocal(env.Event)
	}
}

func (t *BridgedTransport) publish(ctx context.Context, env bridgeEnvelope) bool {
	if t.pub == nil || !t.pub.Ready() {
		return false
	}
	body, err := json.Marshal(env)
	if err != nil {
		return false
	}
	if err := t.pub.Publish(ctx, body); err != nil {
		observability.IncBridgePublishError()
		return false
	}
	return true
}

package livebus

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"live-service/internal/models"
)

// Listener receives content events. Listeners on the emitting process are
// always invoked synchronously, regardless of channel availability.
type Listener func(models.LiveContentEvent)

// envelope is the wire form on the distributed channel. Origin is a
// per-process id used purely for self-echo suppression; it never reaches
// subscribers.
type envelope struct {
	Origin string                  `json:"origin"`
	Event  models.LiveContentEvent `json:"event"`
}

// PublishFunc pushes a serialized envelope onto the distributed channel.
type PublishFunc func(ctx context.Context, body []byte) error

// Bus fans content mutation events out to local listeners and, when a
// distributed channel is attached, to every other process.
type Bus struct {
	origin string

	mu        sync.Mutex
	listeners map[int]Listener
	nextID    int
	publish   PublishFunc

	publishDown bool
}

// New constructs a Bus with the given process-unique origin id.
func New(origin string) *Bus {
	return &Bus{
		origin:    origin,
		listeners: make(map[int]Listener),
	}
}

// AttachChannel wires the distributed publish path. Receiving is wired
// separately (the relay calls Receive for inbound envelopes).
func (b *Bus) AttachChannel(publish PublishFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.publish = publish
}

// Subscribe registers a listener and returns its unsubscribe function.
func (b *Bus) Subscribe(fn Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// Emit dispatches the event to local listeners synchronously, then
// publishes it to the distributed channel when one is attached. Channel
// failures degrade to local-only delivery and are logged on state change,
// not per event.
func (b *Bus) Emit(ctx context.Context, event models.LiveContentEvent) {
	b.dispatch(event)

	b.mu.Lock()
	publish := b.publish
	b.mu.Unlock()
	if publish == nil {
		return
	}

	body, err := json.Marshal(envelope{Origin: b.origin, Event: event})
	if err != nil {
		return
	}
	if err := publish(ctx, body); err != nil {
		b.setPublishDown(true, err)
		return
	}
	b.setPublishDown(false, nil)
}

// Receive handles an envelope delivered by the distributed channel.
// Envelopes tagged with this process's own origin are dropped; local
// listeners already saw them via the synchronous path.
func (b *Bus) Receive(body []byte) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		log.Printf("live bus: dropping malformed envelope: %v", err)
		return
	}
	if env.Origin == b.origin {
		return
	}
	b.dispatch(env.Event)
}

func (b *Bus) dispatch(event models.LiveContentEvent) {
	b.mu.Lock()
	listeners := make([]Listener, 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
}

func (b *Bus) setPublishDown(down bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if down && !b.publishDown {
		log.Printf("live bus: channel publish failing, continuing local-only: %v", err)
	}
	if !down && b.publishDown {
		log.Printf("live bus: channel publish recovered")
	}
	b.publishDown = down
}

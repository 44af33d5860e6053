package ws

import (
	"encoding/json"
	"sync"
	"time"

	"live-service/internal/models"
)

// Socket is the transport handle behind a connection. *websocket.Conn
// satisfies it; tests substitute an in-memory sink.
type Socket interface {
	WriteJSON(v any) error
	Close() error
}

// Conn is one open real-time connection. The participant is immutable for
// the connection's lifetime.
type Conn struct {
	ID          string
	Participant models.Participant
	ConnectedAt time.Time

	mu   sync.Mutex
	sock Socket
}

// NewConn wraps a socket with its resolved participant.
func NewConn(id string, participant models.Participant, sock Socket) *Conn {
	return &Conn{ID: id, Participant: participant, ConnectedAt: time.Now(), sock: sock}
}

// Send writes one event frame. Writes are serialized per connection.
func (c *Conn) Send(event models.ChatEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock.WriteJSON(event)
}

// Close closes the underlying socket.
func (c *Conn) Close() error {
	return c.sock.Close()
}

// Attachment is the serialized {connectionId, participant} pair carried on
// each connection so a room actor can rebuild its registry after a restart
// purely from live connections.
type Attachment struct {
	ConnID      string             `json:"conn_id"`
	Participant models.Participant `json:"participant"`
}

// MarshalAttachment serializes the connection's attachment.
func (c *Conn) MarshalAttachment() ([]byte, error) {
	return json.Marshal(Attachment{ConnID: c.ID, Participant: c.Participant})
}

// RestoreConn rebuilds a connection from a serialized attachment and its
// still-open socket.
func RestoreConn(attachment []byte, sock Socket) (*Conn, error) {
	var att Attachment
	if err := json.Unmarshal(attachment, &att); err != nil {
		return nil, err
	}
	return NewConn(att.ConnID, att.Participant, sock), nil
}

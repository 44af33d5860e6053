package ws

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"live-service/internal/auth"
	"live-service/internal/identity"
	"live-service/internal/models"
	"live-service/internal/observability"
	"live-service/internal/presence"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SessionHandler owns the upgrade endpoint: it resolves the caller,
// attaches the connection to a transport, and drives the read loop.
type SessionHandler struct {
	transport   Transport
	rooms       *RoomManager
	protocol    *Protocol
	presence    *presence.Tracker
	auth        *auth.Resolver
	allowGuests bool
}

// NewSessionHandler builds the handler for the local and bridged modes,
// where a single process-wide transport serves every connection.
func NewSessionHandler(transport Transport, protocol *Protocol, tracker *presence.Tracker, resolver *auth.Resolver, allowGuests bool) *SessionHandler {
	return &SessionHandler{
		transport:   transport,
		protocol:    protocol,
		presence:    tracker,
		auth:        resolver,
		allowGuests: allowGuests,
	}
}

// NewRoomSessionHandler builds the handler for actor mode, where each
// named room resolves to its own coordinator.
func NewRoomSessionHandler(rooms *RoomManager, protocol *Protocol, tracker *presence.Tracker, resolver *auth.Resolver, allowGuests bool) *SessionHandler {
	return &SessionHandler{
		rooms:       rooms,
		protocol:    protocol,
		presence:    tracker,
		auth:        resolver,
		allowGuests: allowGuests,
	}
}

// Handle upgrades a connection onto the process-wide transport.
func (h *SessionHandler) Handle(c *gin.Context) {
	h.serve(c, h.transport)
}

// HandleRoom upgrades a connection onto its room's coordinator actor.
func (h *SessionHandler) HandleRoom(c *gin.Context) {
	room := c.Param("room")
	if room == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing room"})
		return
	}
	h.serve(c, h.rooms.Get(room))
}

func (h *SessionHandler) serve(c *gin.Context, t Transport) {
	ctx, span := otel.Tracer("live-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	caller, err := h.auth.ResolveCaller(ctx, c.Request)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve session"})
		return
	}
	if caller != nil && caller.Banned {
		c.JSON(http.StatusForbidden, gin.H{"error": "account banned"})
		return
	}
	if caller == nil && !h.allowGuests {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
		return
	}
	if !websocket.IsWebSocketUpgrade(c.Request) {
		c.JSON(http.StatusUpgradeRequired, gin.H{"error": "websocket upgrade required"})
		return
	}

	sock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrader has already written its response.
		return
	}

	participant := identity.Resolve(caller, c.Query("name"))
	conn := NewConn(uuid.NewString(), participant, sock)

	t.Attach(conn)
	if !participant.Guest {
		h.presence.Connect(participant.ID, conn.ID)
	}
	observability.IncWSActive()
	observability.IncWSEvent("connect")
	log.Printf("ws connect conn=%s user=%s guest=%v ip=%s", conn.ID, participant.ID, participant.Guest, observability.IPFromRequest(c.Request))

	if err := conn.Send(h.protocol.Welcome(ctx, participant)); err != nil {
		log.Printf("chat: welcome write failed: %v", err)
	}
	t.BroadcastLocal(models.OnlineEvent(t.OnlineCount()))

	// net/http cancels the request context as soon as the handler returns,
	// hijacked or not. The read loop outlives the handler, so persistence
	// and bridge publishes must not inherit that cancellation.
	connCtx := context.WithoutCancel(ctx)

	go func() {
		defer func() {
			// Registry and presence are updated before the count is
			// recomputed, so the online event always reflects the
			// post-removal state.
			t.Detach(conn.ID)
			if !participant.Guest {
				h.presence.Disconnect(participant.ID, conn.ID)
			}
			observability.DecWSActive()
			observability.IncWSEvent("disconnect")
			t.BroadcastLocal(models.OnlineEvent(t.OnlineCount()))
			_ = sock.Close()
		}()
		for {
			_, raw, err := sock.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("read_error")
				}
				return
			}
			h.protocol.HandleInbound(connCtx, t, conn, raw)
		}
	}()
}

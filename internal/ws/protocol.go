package ws

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"live-service/internal/models"
	"live-service/internal/observability"
	"live-service/internal/repositories"
)

// Limits applied to inbound traffic.
const (
	MaxMessageLength = 2000
	welcomeHistory   = 50
)

// Inbound event types.
const (
	inboundMessage = "chat:message"
	inboundDM      = "chat:dm"
)

// inboundEvent is the decoded client frame.
type inboundEvent struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	ToUserID string `json:"to_user_id"`
}

// Protocol is the validation and persistence logic shared by every
// transport strategy. Only the fan-out primitive differs per strategy.
type Protocol struct {
	messages repositories.MessageRepository
	dms      repositories.DirectMessageRepository
	users    repositories.UserRepository
}

// NewProtocol wires the storage collaborators.
func NewProtocol(messages repositories.MessageRepository, dms repositories.DirectMessageRepository, users repositories.UserRepository) *Protocol {
	return &Protocol{messages: messages, dms: dms, users: users}
}

// SanitizeText trims and caps message text. Idempotent: sanitizing
// already-sanitized text is a no-op.
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) > MaxMessageLength {
		text = strings.TrimRight(string(runes[:MaxMessageLength]), " \t\n\r")
	}
	return text
}

// HandleInbound processes one client frame. Protocol errors go back to the
// originating connection only; the connection always stays open.
func (p *Protocol) HandleInbound(ctx context.Context, t Transport, conn *Conn, raw []byte) {
	var ev inboundEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		p.sendError(conn, "Invalid chat event payload")
		return
	}

	switch ev.Type {
	case inboundMessage:
		p.handleMessage(ctx, t, conn, ev)
	case inboundDM:
		p.handleDirect(ctx, t, conn, ev)
	default:
		p.sendError(conn, "Unsupported chat event type")
	}
}

// Welcome builds the greeting payload for a fresh connection.
func (p *Protocol) Welcome(ctx context.Context, participant models.Participant) models.ChatEvent {
	recent, err := p.messages.ListRecent(ctx, welcomeHistory)
	if err != nil {
		log.Printf("chat: could not load recent messages: %v", err)
		recent = []models.ChatMessage{}
	}
	return models.ChatEvent{
		Type:    models.EventWelcome,
		Payload: models.WelcomePayload{Participant: participant, Recent: recent},
	}
}

func (p *Protocol) handleMessage(ctx context.Context, t Transport, conn *Conn, ev inboundEvent) {
	text := SanitizeText(ev.Text)
	if text == "" {
		p.sendError(conn, "Message cannot be empty")
		return
	}

	msg, err := p.messages.Create(ctx, conn.Participant, text)
	if err != nil {
		log.Printf("chat: persist message failed: %v", err)
		p.sendError(conn, "Could not save message")
		return
	}

	observability.IncWSEvent("message")
	t.Broadcast(ctx, models.ChatEvent{Type: models.EventMessage, Payload: msg})
}

func (p *Protocol) handleDirect(ctx context.Context, t Transport, conn *Conn, ev inboundEvent) {
	if conn.Participant.Guest {
		p.sendError(conn, "Sign in to send direct messages")
		return
	}

	target := strings.TrimSpace(ev.ToUserID)
	if target == "" {
		p.sendError(conn, "Direct message requires a target user")
		return
	}
	if target == conn.Participant.ID {
		p.sendError(conn, "Cannot send a direct message to yourself")
		return
	}

	text := SanitizeText(ev.Text)
	if text == "" {
		p.sendError(conn, "Message cannot be empty")
		return
	}

	recipient, err := p.users.FindByID(ctx, target)
	if err != nil {
		log.Printf("chat: user lookup failed: %v", err)
		p.sendError(conn, "Could not look up user")
		return
	}
	if recipient == nil {
		p.sendError(conn, "User not found")
		return
	}

	dm, err := p.dms.Create(ctx, conn.Participant.Identity(), *recipient, text)
	if err != nil {
		log.Printf("chat: persist direct message failed: %v", err)
		p.sendError(conn, "Could not save message")
		return
	}

	observability.IncWSEvent("dm")
	// Never broadcast: only the sender's and recipient's connections.
	t.SendToUsers(ctx, []string{dm.Sender.ID, dm.Recipient.ID}, models.ChatEvent{Type: models.EventDM, Payload: dm})
}

func (p *Protocol) sendError(conn *Conn, message string) {
	observability.IncWSEvent("protocol_error")
	if err := conn.Send(models.ErrorEvent(message)); err != nil {
		log.Printf("chat: could not deliver error event: %v", err)
	}
}

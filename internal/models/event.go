package models

// Outbound chat event types. Every websocket frame written to a client is a
// ChatEvent with one of these types.
const (
	EventWelcome = "chat:welcome"
	EventOnline  = "chat:online"
	EventMessage = "chat:message"
	EventDM      = "chat:dm"
	EventError   = "chat:error"
)

// ChatEvent is the envelope broadcast through websockets.
type ChatEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// WelcomePayload greets a freshly attached connection.
type WelcomePayload struct {
	Participant Participant   `json:"participant"`
	Recent      []ChatMessage `json:"recent"`
}

// OnlinePayload carries the distinct-user online count.
type OnlinePayload struct {
	Count int `json:"count"`
}

// ErrorPayload reports a protocol error to the originating connection.
type ErrorPayload struct {
	Message string `json:"message"`
}

func OnlineEvent(count int) ChatEvent {
	return ChatEvent{Type: EventOnline, Payload: OnlinePayload{Count: count}}
}

func ErrorEvent(message string) ChatEvent {
	return ChatEvent{Type: EventError, Payload: ErrorPayload{Message: message}}
}

package models

import "time"

// ChatMessage is a public chat message. Immutable once created; the sender
// is stored as a snapshot so guest authors remain renderable after the
// ephemeral id is gone.
type ChatMessage struct {
	ID        string      `json:"id"`
	Text      string      `json:"text"`
	CreatedAt time.Time   `json:"created_at"`
	User      Participant `json:"user"`
}

// DirectMessage is a private message between two known accounts.
type DirectMessage struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Sender    Identity  `json:"sender"`
	Recipient Identity  `json:"recipient"`
}

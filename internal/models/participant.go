package models

// Participant is the live, connection-scoped identity used for real-time
// delivery. Guests carry a freshly generated ephemeral id that is never
// persisted and never reused across connections.
type Participant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	Username string `json:"username,omitempty"`
	Guest    bool   `json:"guest"`
}

// Identity is the durable, persisted-safe projection of a user stored
// alongside direct messages.
type Identity struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Avatar   string `db:"avatar" json:"avatar,omitempty"`
	Username string `db:"username" json:"username,omitempty"`
}

// Identity reduces a participant to its persisted-safe projection.
func (p Participant) Identity() Identity {
	return Identity{ID: p.ID, Name: p.Name, Avatar: p.Avatar, Username: p.Username}
}

// Account is a full user row, including fields that must never leave the
// auth path.
type Account struct {
	Identity
	Email  string `db:"email" json:"-"`
	Banned bool   `db:"banned" json:"-"`
}

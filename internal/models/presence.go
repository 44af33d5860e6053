package models

import "time"

// PresenceStatus is derived state, recomputed from active-connection
// reference counts. LastSeenAt is null while the user is online.
type PresenceStatus struct {
	UserID     string     `json:"user_id"`
	Online     bool       `json:"online"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

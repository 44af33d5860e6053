package models

import "time"

// ContentKind identifies a content collection.
type ContentKind string

const (
	KindStory  ContentKind = "story"
	KindPoem   ContentKind = "poem"
	KindSeries ContentKind = "series"
)

// Valid reports whether the kind is one of the known collections.
func (k ContentKind) Valid() bool {
	switch k {
	case KindStory, KindPoem, KindSeries:
		return true
	}
	return false
}

// ContentAction is a mutation applied to a content item.
type ContentAction string

const (
	ActionCreated  ContentAction = "created"
	ActionUpdated  ContentAction = "updated"
	ActionDeleted  ContentAction = "deleted"
	ActionBanned   ContentAction = "banned"
	ActionUnbanned ContentAction = "unbanned"
)

// LiveContentEvent notifies subscribers that a content item changed.
// It carries identifiers only; consumers re-fetch from storage.
type LiveContentEvent struct {
	Kind   ContentKind   `json:"kind"`
	Action ContentAction `json:"action"`
	ID     string        `json:"id"`
	At     time.Time     `json:"at"`
}

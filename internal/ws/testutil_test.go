package ws

import (
	"sync"

	"live-service/internal/models"
)

// fakeSocket records every event written to it.
type fakeSocket struct {
	mu     sync.Mutex
	events []models.ChatEvent
	closed bool
	failed bool
}

func (s *fakeSocket) WriteJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed {
		return errWriteFailed
	}
	s.events = append(s.events, v.(models.ChatEvent))
	return nil
}

func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSocket) Events() []models.ChatEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *fakeSocket) EventsOfType(eventType string) []models.ChatEvent {
	var out []models.ChatEvent
	for _, ev := range s.Events() {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

type writeError string

func (e writeError) Error() string { return string(e) }

const errWriteFailed = writeError("write failed")

func participant(id, name string) models.Participant {
	return models.Participant{ID: id, Name: name}
}

func guest(name string) models.Participant {
	return models.Participant{ID: "guest-" + name, Name: name, Guest: true}
}

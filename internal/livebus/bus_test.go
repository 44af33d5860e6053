package livebus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"live-service/internal/models"
)

func contentEvent(id string) models.LiveContentEvent {
	return models.LiveContentEvent{
		Kind:   models.KindStory,
		Action: models.ActionCreated,
		ID:     id,
		At:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEmitDispatchesSynchronously(t *testing.T) {
	bus := New("origin-a")

	var got []models.LiveContentEvent
	bus.Subscribe(func(ev models.LiveContentEvent) { got = append(got, ev) })

	bus.Emit(context.Background(), contentEvent("s1"))

	// No channel attached; local listeners still see the event, in line.
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ID)
}

func TestEmitPublishesTaggedEnvelope(t *testing.T) {
	bus := New("origin-a")

	var published []byte
	bus.AttachChannel(func(_ context.Context, body []byte) error {
		published = body
		return nil
	})

	bus.Emit(context.Background(), contentEvent("s1"))
	require.NotNil(t, published)

	var env envelope
	require.NoError(t, json.Unmarshal(published, &env))
	assert.Equal(t, "origin-a", env.Origin)
	assert.Equal(t, "s1", env.Event.ID)
}

func TestReceiveDropsOwnOrigin(t *testing.T) {
	bus := New("origin-a")

	var got int
	bus.Subscribe(func(models.LiveContentEvent) { got++ })

	own, err := json.Marshal(envelope{Origin: "origin-a", Event: contentEvent("s1")})
	require.NoError(t, err)
	bus.Receive(own)
	assert.Zero(t, got)

	remote, err := json.Marshal(envelope{Origin: "origin-b", Event: contentEvent("s2")})
	require.NoError(t, err)
	bus.Receive(remote)
	assert.Equal(t, 1, got)
}

func TestReceiveDropsMalformedEnvelope(t *testing.T) {
	bus := New("origin-a")

	var got int
	bus.Subscribe(func(models.LiveContentEvent) { got++ })

	bus.Receive([]byte(`{broken`))
	assert.Zero(t, got)
}

func TestEmitSurvivesChannelFailure(t *testing.T) {
	bus := New("origin-a")
	bus.AttachChannel(func(context.Context, []byte) error {
		return errors.New("channel down")
	})

	var got int
	bus.Subscribe(func(models.LiveContentEvent) { got++ })

	bus.Emit(context.Background(), contentEvent("s1"))
	bus.Emit(context.Background(), contentEvent("s2"))
	assert.Equal(t, 2, got)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := New("origin-a")

	var got int
	unsubscribe := bus.Subscribe(func(models.LiveContentEvent) { got++ })

	bus.Emit(context.Background(), contentEvent("s1"))
	unsubscribe()
	bus.Emit(context.Background(), contentEvent("s2"))
	assert.Equal(t, 1, got)
}

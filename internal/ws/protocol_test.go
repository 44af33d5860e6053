package ws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"live-service/internal/mocks"
	"live-service/internal/models"
)

func newTestProtocol() (*Protocol, *mocks.MessageRepositoryMock, *mocks.DirectMessageRepositoryMock, *mocks.UserRepositoryMock) {
	messages := new(mocks.MessageRepositoryMock)
	dms := new(mocks.DirectMessageRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	return NewProtocol(messages, dms, users), messages, dms, users
}

func TestSanitizeTextTrims(t *testing.T) {
	assert.Equal(t, "hi", SanitizeText("  hi  "))
	assert.Equal(t, "", SanitizeText("   \n\t "))
}

func TestSanitizeTextIsIdempotent(t *testing.T) {
	inputs := []string{"  hi  ", "already clean", string(make([]rune, 0)), "x"}
	for _, in := range inputs {
		once := SanitizeText(in)
		assert.Equal(t, once, SanitizeText(once))
	}

	long := make([]rune, MaxMessageLength+100)
	for i := range long {
		long[i] = 'a'
	}
	capped := SanitizeText(string(long))
	assert.Len(t, []rune(capped), MaxMessageLength)
	assert.Equal(t, capped, SanitizeText(capped))
}

func TestHandleInboundMessageSanitizesPersistsAndBroadcasts(t *testing.T) {
	protocol, messages, _, _ := newTestProtocol()
	reg := NewRegistry()
	transport := NewLocalTransport(reg)

	alice := &fakeSocket{}
	carol := &fakeSocket{}
	connA := NewConn("c1", participant("u1", "alice"), alice)
	reg.Add(connA)
	reg.Add(NewConn("c2", participant("u3", "carol"), carol))

	stored := models.ChatMessage{ID: "m1", Text: "hi", User: participant("u1", "alice")}
	messages.On("Create", mock.Anything, participant("u1", "alice"), "hi").Return(stored, nil).Once()

	protocol.HandleInbound(context.Background(), transport, connA, []byte(`{"type":"chat:message","text":"  hi  "}`))

	messages.AssertExpectations(t)
	require.Len(t, alice.EventsOfType(models.EventMessage), 1)
	require.Len(t, carol.EventsOfType(models.EventMessage), 1)
	got := carol.EventsOfType(models.EventMessage)[0].Payload.(models.ChatMessage)
	assert.Equal(t, "hi", got.Text)
}

func TestHandleInboundEmptyMessageProducesNoEvent(t *testing.T) {
	protocol, messages, _, _ := newTestProtocol()
	reg := NewRegistry()
	transport := NewLocalTransport(reg)

	sock := &fakeSocket{}
	conn := NewConn("c1", participant("u1", "alice"), sock)
	reg.Add(conn)

	protocol.HandleInbound(context.Background(), transport, conn, []byte(`{"type":"chat:message","text":"   "}`))

	messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	errs := sock.EventsOfType(models.EventError)
	require.Len(t, errs, 1)
	assert.Equal(t, "Message cannot be empty", errs[0].Payload.(models.ErrorPayload).Message)
	assert.Empty(t, sock.EventsOfType(models.EventMessage))
}

func TestHandleInboundMalformedPayload(t *testing.T) {
	protocol, _, _, _ := newTestProtocol()
	reg := NewRegistry()
	transport := NewLocalTransport(reg)

	sock := &fakeSocket{}
	conn := NewConn("c1", participant("u1", "alice"), sock)
	reg.Add(conn)

	protocol.HandleInbound(context.Background(), transport, conn, []byte(`{not json`))

	require.Len(t, sock.EventsOfType(models.EventError), 1)
}

func TestHandleInboundUnsupportedType(t *testing.T) {
	protocol, _, _, _ := newTestProtocol()
	reg := NewRegistry()
	transport := NewLocalTransport(reg)

	sock := &fakeSocket{}
	conn := NewConn("c1", participant("u1", "alice"), sock)
	reg.Add(conn)

	protocol.HandleInbound(context.Background(), transport, conn, []byte(`{"type":"chat:typing"}`))

	errs := sock.EventsOfType(models.EventError)
	require.Len(t, errs, 1)
	assert.Equal(t, "Unsupported chat event type", errs[0].Payload.(models.ErrorPayload).Message)
}

func TestHandleInboundDMFromGuestRejected(t *testing.T) {
	protocol, _, dms, _ := newTestProtocol()
	reg := NewRegistry()
	transport := NewLocalTransport(reg)

	sock := &fakeSocket{}
	conn := NewConn("c1", guest("anon"), sock)
	reg.Add(conn)

	protocol.HandleInbound(context.Background(), transport, conn, []byte(`{"type":"chat:dm","text":"psst","to_user_id":"u2"}`))

	dms.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	errs := sock.EventsOfType(models.EventError)
	require.Len(t, errs, 1)
	assert.Equal(t, "Sign in to send direct messages", errs[0].Payload.(models.ErrorPayload).Message)
}

func TestHandleInboundDMToSelfRejected(t *testing.T) {
	protocol, _, _, _ := newTestProtocol()
	reg := NewRegistry()
	transport := NewLocalTransport(reg)

	sock := &fakeSocket{}
	conn := NewConn("c1", participant("u1", "alice"), sock)
	reg.Add(conn)

	protocol.HandleInbound(context.Background(), transport, conn, []byte(`{"type":"chat:dm","text":"hi","to_user_id":"u1"}`))

	errs := sock.EventsOfType(models.EventError)
	require.Len(t, errs, 1)
	assert.Equal(t, "Cannot send a direct message to yourself", errs[0].Payload.(models.ErrorPayload).Message)
}

func TestHandleInboundDMToUnknownUserRejected(t *testing.T) {
	protocol, _, _, users := newTestProtocol()
	reg := NewRegistry()
	transport := NewLocalTransport(reg)

	sock := &fakeSocket{}
	conn := NewConn("c1", participant("u1", "alice"), sock)
	reg.Add(conn)

	users.On("FindByID", mock.Anything, "u9").Return(nil, nil).Once()

	protocol.HandleInbound(context.Background(), transport, conn, []byte(`{"type":"chat:dm","text":"hi","to_user_id":"u9"}`))

	users.AssertExpectations(t)
	errs := sock.EventsOfType(models.EventError)
	require.Len(t, errs, 1)
	assert.Equal(t, "User not found", errs[0].Payload.(models.ErrorPayload).Message)
}

func TestHandleInboundDMDeliveredOnlyToSenderAndRecipient(t *testing.T) {
	protocol, _, dms, users := newTestProtocol()
	reg := NewRegistry()
	transport := NewLocalTransport(reg)

	alice := &fakeSocket{}
	bob := &fakeSocket{}
	carol := &fakeSocket{}
	connA := NewConn("c1", participant("u1", "alice"), alice)
	reg.Add(connA)
	reg.Add(NewConn("c2", participant("u2", "bob"), bob))
	reg.Add(NewConn("c3", participant("u3", "carol"), carol))

	bobIdent := models.Identity{ID: "u2", Name: "bob"}
	users.On("FindByID", mock.Anything, "u2").Return(&bobIdent, nil).Once()
	dm := models.DirectMessage{ID: "d1", Text: "psst", Sender: models.Identity{ID: "u1", Name: "alice"}, Recipient: bobIdent}
	dms.On("Create", mock.Anything, models.Identity{ID: "u1", Name: "alice"}, bobIdent, "psst").Return(dm, nil).Once()

	protocol.HandleInbound(context.Background(), transport, connA, []byte(`{"type":"chat:dm","text":"psst","to_user_id":"u2"}`))

	users.AssertExpectations(t)
	dms.AssertExpectations(t)
	assert.Len(t, alice.EventsOfType(models.EventDM), 1)
	assert.Len(t, bob.EventsOfType(models.EventDM), 1)
	assert.Empty(t, carol.EventsOfType(models.EventDM))
}

func TestHandleInboundStorageErrorKeepsConnectionOpen(t *testing.T) {
	protocol, messages, _, _ := newTestProtocol()
	reg := NewRegistry()
	transport := NewLocalTransport(reg)

	sock := &fakeSocket{}
	conn := NewConn("c1", participant("u1", "alice"), sock)
	reg.Add(conn)

	messages.On("Create", mock.Anything, mock.Anything, "hi").Return(models.ChatMessage{}, assert.AnError).Once()

	protocol.HandleInbound(context.Background(), transport, conn, []byte(`{"type":"chat:message","text":"hi"}`))

	require.Len(t, sock.EventsOfType(models.EventError), 1)
	assert.False(t, sock.closed)
	assert.Equal(t, 1, reg.Len())
}

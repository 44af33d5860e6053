package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"live-service/internal/auth"
	"live-service/internal/mocks"
	"live-service/internal/models"
	"live-service/internal/presence"
)

func newSessionServer(t *testing.T, messages *mocks.MessageRepositoryMock) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := new(mocks.UserRepositoryMock)
	protocol := NewProtocol(messages, new(mocks.DirectMessageRepositoryMock), users)
	transport := NewLocalTransport(NewRegistry())
	handler := NewSessionHandler(transport, protocol, presence.NewTracker(), auth.NewResolver("secret", users), true)

	router := gin.New()
	router.GET("/ws/chat", handler.Handle)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func dialChat(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestMessagePersistedOnLiveContextAfterHandlerReturns(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	messages.On("ListRecent", mock.Anything, welcomeHistory).Return([]models.ChatMessage{}, nil)

	ctxErr := make(chan error, 1)
	messages.On("Create", mock.Anything, mock.Anything, "hi").
		Run(func(args mock.Arguments) {
			ctxErr <- args.Get(0).(context.Context).Err()
		}).
		Return(models.ChatMessage{ID: "m1", Text: "hi"}, nil)

	srv := newSessionServer(t, messages)
	conn := dialChat(t, srv)

	// Welcome and online frames confirm the upgrade handler has run; by the
	// time they arrive the HTTP handler has returned and its request
	// context is canceled.
	var welcome models.ChatEvent
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, models.EventWelcome, welcome.Type)
	var online models.ChatEvent
	require.NoError(t, conn.ReadJSON(&online))
	assert.Equal(t, models.EventOnline, online.Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "chat:message", "text": "hi"}))

	select {
	case err := <-ctxErr:
		assert.NoError(t, err, "persistence must run on a context that outlives the upgrade handler")
	case <-time.After(2 * time.Second):
		t.Fatal("message was never persisted")
	}

	// The stored message still fans out to the sender's own connection.
	var echoed models.ChatEvent
	require.NoError(t, conn.ReadJSON(&echoed))
	assert.Equal(t, models.EventMessage, echoed.Type)
}

func TestUpgradeRequiredWithoutWebsocketHeaders(t *testing.T) {
	srv := newSessionServer(t, new(mocks.MessageRepositoryMock))

	resp, err := srv.Client().Get(srv.URL + "/ws/chat")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 426, resp.StatusCode)
}

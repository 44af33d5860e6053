package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"live-service/internal/auth"
	"live-service/internal/mocks"
	"live-service/internal/presence"
)

func newPresenceRouter(tracker *presence.Tracker, resolver *auth.Resolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPresenceHandler(tracker, resolver, time.Minute)
	router := gin.New()
	router.GET("/presence/:user_id", h.GetStatus)
	router.POST("/presence/query", h.QueryStatuses)
	router.GET("/events/presence", h.Stream)
	return router
}

func TestGetStatusOnlineUser(t *testing.T) {
	tracker := presence.NewTracker()
	tracker.Connect("u1", "c1")
	router := newPresenceRouter(tracker, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/presence/u1", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"online":true`)
	assert.Contains(t, rec.Body.String(), `"user_id":"u1"`)
}

func TestGetStatusUnknownUserIsOffline(t *testing.T) {
	router := newPresenceRouter(presence.NewTracker(), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/presence/ghost", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"online":false`)
}

func TestQueryStatusesDeduplicatesBatch(t *testing.T) {
	tracker := presence.NewTracker()
	tracker.Connect("u1", "c1")
	router := newPresenceRouter(tracker, nil)

	body := strings.NewReader(`{"user_ids":["u1","u1","u2"]}`)
	req := httptest.NewRequest("POST", "/presence/query", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, 2, strings.Count(rec.Body.String(), `"user_id"`))
}

func TestQueryStatusesRejectsMissingBody(t *testing.T) {
	router := newPresenceRouter(presence.NewTracker(), nil)

	req := httptest.NewRequest("POST", "/presence/query", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, 400, rec.Code)
}

func TestPresenceStreamRequiresAuth(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := newPresenceRouter(presence.NewTracker(), auth.NewResolver("secret", users))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/events/presence", nil))
	assert.Equal(t, 401, rec.Code)
}

func TestPresenceStreamReplaysOwnStatus(t *testing.T) {
	tracker := presence.NewTracker()
	tracker.Connect("u1", "c1")

	users := new(mocks.UserRepositoryMock)
	users.On("FindAccount", anyCtx, "u1").Return(accountFixture("u1"), nil)
	router := newPresenceRouter(tracker, auth.NewResolver(testSigningSecret, users))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest("GET", "/events/presence?token="+signedToken(t, "u1"), nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "event: ready")
	assert.Contains(t, rec.Body.String(), `"online":true`)
}

package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"live-service/internal/models"
	"live-service/internal/ws"
)

type recorderSocket struct{}

func (recorderSocket) WriteJSON(any) error { return nil }
func (recorderSocket) Close() error        { return nil }

func TestRoomOnlineCount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rooms := ws.NewRoomManager()
	rooms.Get("lobby").Attach(ws.NewConn("c1", models.Participant{ID: "u1", Name: "Alice"}, recorderSocket{}))

	router := gin.New()
	router.GET("/rooms/:room/online", NewRoomHandler(rooms).OnlineCount)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/rooms/lobby/online", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"online_count":1`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/rooms/empty/online", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"online_count":0`)
}

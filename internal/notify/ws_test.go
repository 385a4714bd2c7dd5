package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Title string `json:"title"`
}

func TestServeWS_StreamsPublishedValues(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.ServeWS(w, r, "sid")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.Eventually(t, func() bool { return h.Subscribers("sid") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.Publish("sid", payload{Title: "Invoice available"}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got payload
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "Invoice available", got.Title)

	h.Close()
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestServeWS_ClosedHubRefuses(t *testing.T) {
	h := NewHub()
	h.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notifications/ws", nil)
	err := h.ServeWS(rec, req, "sid")
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

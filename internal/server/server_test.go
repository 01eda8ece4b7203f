package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tlau/rpsduel/internal/arena"
	"github.com/tlau/rpsduel/internal/config"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	timings := arena.Timings{
		MoveTimeout:      500 * time.Millisecond,
		LivecheckTimeout: 500 * time.Millisecond,
		EndTurnPause:     time.Millisecond,
		EndGamePause:     time.Millisecond,
		RetentionGrace:   time.Millisecond,
	}

	a := arena.New(testLogger(), quartz.NewReal(), timings)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = a.Run(ctx) }()

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.ini"))
	require.NoError(t, err)

	ts := httptest.NewServer(New(cfg, a, testLogger()).Handler(ctx))
	t.Cleanup(ts.Close)
	return ts
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

// dialClient connects and walks the client into the lobby.
func dialClient(t *testing.T, ts *httptest.Server, name string) *wsClient {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	c := &wsClient{t: t, conn: conn}
	c.send(map[string]any{"action": "logon", "name": name})
	c.send(map[string]any{"action": "standby"})
	return c
}

func (c *wsClient) send(v any) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(v))
}

func (c *wsClient) recv() map[string]any {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(testWait)))
	var frame map[string]any
	require.NoError(c.t, c.conn.ReadJSON(&frame))
	return frame
}

func (c *wsClient) move(turn, move int) {
	c.send(map[string]any{"action": "move", "turn": turn, "move": move})
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))
}

func TestFullGameOverWebsocket(t *testing.T) {
	ts := startTestServer(t)

	alice := dialClient(t, ts, "Alice")
	bob := dialClient(t, ts, "Bob")

	m1 := alice.recv()
	assert.Equal(t, "match", m1["action"])
	assert.Equal(t, "Bob", m1["opponent"])

	m2 := bob.recv()
	assert.Equal(t, "match", m2["action"])
	assert.Equal(t, "Alice", m2["opponent"])

	// Alice sweeps with rock against scissors.
	for turn := 0; turn < 10; turn++ {
		alice.move(turn, 0)
		bob.move(turn, 2)

		e1 := alice.recv()
		assert.Equal(t, "endturn", e1["action"])
		assert.Equal(t, "me", e1["winner"])
		assert.Equal(t, float64(2), e1["opponent_move"])

		e2 := bob.recv()
		assert.Equal(t, "endturn", e2["action"])
		assert.Equal(t, "them", e2["winner"])
		assert.Equal(t, float64(0), e2["opponent_move"])
	}

	g1 := alice.recv()
	assert.Equal(t, "endgame", g1["action"])
	assert.Equal(t, "me", g1["winner"])
	assert.Nil(t, g1["reason"])

	g2 := bob.recv()
	assert.Equal(t, "endgame", g2["action"])
	assert.Equal(t, "them", g2["winner"])
	assert.Nil(t, g2["reason"])
}

func TestSurrenderOverWebsocket(t *testing.T) {
	ts := startTestServer(t)

	alice := dialClient(t, ts, "Alice")
	bob := dialClient(t, ts, "Bob")
	alice.recv()
	bob.recv()

	bob.move(0, 1)
	alice.send(map[string]any{"action": "surrender"})

	g2 := bob.recv()
	assert.Equal(t, "endgame", g2["action"])
	assert.Equal(t, "me", g2["winner"])
	assert.Equal(t, "surrender", g2["reason"])
}

func TestBotRequestOverWebsocket(t *testing.T) {
	ts := startTestServer(t)

	alice := dialClient(t, ts, "Alice")
	alice.send(map[string]any{"action": "bot_request"})

	m := alice.recv()
	assert.Equal(t, "match", m["action"])
	assert.NotEmpty(t, m["opponent"])
}

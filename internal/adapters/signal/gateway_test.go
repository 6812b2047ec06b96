package signal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Meet/internal/adapters/store/memstore"
	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type harness struct {
	srv   *httptest.Server
	relay *app.Relay
	dir   *app.Directory
	auth  *app.AuthService
}

func newHarness(t *testing.T, limiter *JoinLimiter) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memstore.New()
	dir := app.NewDirectory(store, bcrypt.MinCost)
	relay := app.NewRelay(app.NewRegistry(), dir, app.SimplePolicy{})
	auth, err := app.NewAuthService(store, "gateway-secret", time.Hour, bcrypt.MinCost)
	require.NoError(t, err)

	ctl := NewSignalWSController(relay, auth, limiter, Config{PongWait: 5 * time.Second})
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ctl.HandleSignal(context.Background(), c) })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &harness{srv: srv, relay: relay, dir: dir, auth: auth}
}

func (h *harness) token(t *testing.T, user string) string {
	t.Helper()
	tok, err := h.auth.Issue(domain.Identity{UserID: domain.UserID(user), DisplayName: user})
	require.NoError(t, err)
	return tok
}

func (h *harness) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

type event struct {
	Type         string              `json:"type"`
	Kind         string              `json:"kind"`
	ConnectionID domain.ConnectionID `json:"connectionId"`
	UserID       domain.UserID       `json:"userId"`
	From         domain.ConnectionID `json:"from"`
	Payload      json.RawMessage     `json:"payload"`
	Peers        []core.Peer         `json:"peers"`
	Self         domain.ConnectionID `json:"selfConnectionId"`
	RoomID       domain.RoomID       `json:"roomId"`
	Participants []domain.UserID     `json:"participants"`
}

func read(t *testing.T, ws *websocket.Conn) event {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev event
	require.NoError(t, ws.ReadJSON(&ev))
	return ev
}

func send(t *testing.T, ws *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(v))
}

func TestGatewayRejectsRoomEventsBeforeAuth(t *testing.T) {
	h := newHarness(t, nil)
	ws := h.dial(t, "")

	send(t, ws, map[string]string{"type": "join", "roomId": "whatever"})
	ev := read(t, ws)
	assert.Equal(t, core.EventError, ev.Type)
	assert.Equal(t, core.KindUnauthorized, ev.Kind)

	send(t, ws, map[string]string{"type": "ping"})
	assert.Equal(t, core.EventPong, read(t, ws).Type)
}

func TestGatewayAuthEventThenJoin(t *testing.T) {
	h := newHarness(t, nil)
	room, err := h.dir.Create(context.Background(), "owner", "")
	require.NoError(t, err)

	ws := h.dial(t, "")
	send(t, ws, map[string]string{"type": "auth", "token": "garbage"})
	ev := read(t, ws)
	assert.Equal(t, core.KindUnauthorized, ev.Kind)

	send(t, ws, map[string]string{"type": "auth", "token": h.token(t, "alice")})
	ev = read(t, ws)
	assert.Equal(t, core.EventAuthenticated, ev.Type)
	assert.Equal(t, domain.UserID("alice"), ev.UserID)

	send(t, ws, map[string]string{"type": "join", "roomId": string(room.ID)})
	ev = read(t, ws)
	assert.Equal(t, core.EventJoined, ev.Type)
	assert.Empty(t, ev.Peers)
}

func TestGatewayJoinSignalAndDisconnect(t *testing.T) {
	h := newHarness(t, nil)
	room, err := h.dir.Create(context.Background(), "owner", "pw")
	require.NoError(t, err)

	a := h.dial(t, h.token(t, "alice"))
	require.Equal(t, core.EventAuthenticated, read(t, a).Type)
	send(t, a, map[string]string{"type": "join", "roomId": string(room.ID), "password": "pw"})
	joinedA := read(t, a)
	require.Equal(t, core.EventJoined, joinedA.Type)

	b := h.dial(t, h.token(t, "bob"))
	require.Equal(t, core.EventAuthenticated, read(t, b).Type)
	send(t, b, map[string]string{"type": "join", "roomId": string(room.ID), "password": "wrong"})
	assert.Equal(t, core.KindUnauthorized, read(t, b).Kind)

	send(t, b, map[string]string{"type": "join", "roomId": string(room.ID), "password": "pw"})
	joinedB := read(t, b)
	require.Equal(t, core.EventJoined, joinedB.Type)
	require.Len(t, joinedB.Peers, 1)
	assert.Equal(t, joinedA.Self, joinedB.Peers[0].ConnectionID)

	ev := read(t, a)
	require.Equal(t, core.EventPeerJoined, ev.Type)
	assert.Equal(t, joinedB.Self, ev.ConnectionID)

	send(t, b, map[string]any{"type": "signal", "target": joinedA.Self, "payload": map[string]string{"sdp": "offer"}})
	ev = read(t, a)
	require.Equal(t, core.EventSignal, ev.Type)
	assert.Equal(t, joinedB.Self, ev.From)
	assert.JSONEq(t, `{"sdp":"offer"}`, string(ev.Payload))

	send(t, b, map[string]any{"type": "signal", "target": "nobody", "payload": map[string]string{}})
	ev = read(t, b)
	assert.Equal(t, core.EventPeerUnreachable, ev.Type)

	require.NoError(t, b.Close())
	ev = read(t, a)
	require.Equal(t, core.EventPeerLeft, ev.Type)
	assert.Equal(t, joinedB.Self, ev.ConnectionID)

	require.Eventually(t, func() bool { return len(h.relay.Registry.List(room.ID)) == 1 }, time.Second, 10*time.Millisecond)
	rec, err := h.dir.Get(context.Background(), room.ID)
	require.NoError(t, err)
	assert.NotContains(t, rec.Participants, domain.UserID("bob"))
}

func TestGatewayExplicitLeaveKeepsConnection(t *testing.T) {
	h := newHarness(t, nil)
	room, err := h.dir.Create(context.Background(), "owner", "")
	require.NoError(t, err)

	a := h.dial(t, h.token(t, "alice"))
	read(t, a)
	send(t, a, map[string]string{"type": "join", "roomId": string(room.ID)})
	require.Equal(t, core.EventJoined, read(t, a).Type)

	send(t, a, map[string]string{"type": "leave"})
	assert.Equal(t, core.EventLeft, read(t, a).Type)
	send(t, a, map[string]string{"type": "whoami"})
	ev := read(t, a)
	assert.Equal(t, core.EventWhoAmI, ev.Type)
	assert.Equal(t, domain.UserID("alice"), ev.UserID)
}

func TestGatewayOwnerEndsRoom(t *testing.T) {
	h := newHarness(t, nil)
	room, err := h.dir.Create(context.Background(), "owner", "")
	require.NoError(t, err)

	o := h.dial(t, h.token(t, "owner"))
	read(t, o)
	a := h.dial(t, h.token(t, "alice"))
	read(t, a)

	send(t, o, map[string]string{"type": "join", "roomId": string(room.ID)})
	require.Equal(t, core.EventJoined, read(t, o).Type)
	send(t, a, map[string]string{"type": "join", "roomId": string(room.ID)})
	require.Equal(t, core.EventJoined, read(t, a).Type)
	require.Equal(t, core.EventPeerJoined, read(t, o).Type)

	send(t, a, map[string]string{"type": "endRoom"})
	assert.Equal(t, core.KindForbidden, read(t, a).Kind)

	send(t, o, map[string]string{"type": "endRoom"})
	assert.Equal(t, core.EventRoomEnded, read(t, o).Type)
	assert.Equal(t, core.EventRoomEnded, read(t, a).Type)

	send(t, a, map[string]string{"type": "join", "roomId": string(room.ID)})
	assert.Equal(t, core.KindRoomNotFound, read(t, a).Kind)
}

func TestGatewayJoinRateLimit(t *testing.T) {
	h := newHarness(t, NewJoinLimiter(1, time.Minute))
	ws := h.dial(t, h.token(t, "alice"))
	read(t, ws)

	send(t, ws, map[string]string{"type": "join", "roomId": "missing"})
	assert.Equal(t, core.KindRoomNotFound, read(t, ws).Kind)
	send(t, ws, map[string]string{"type": "join", "roomId": "missing"})
	assert.Equal(t, core.KindRateLimited, read(t, ws).Kind)
}

func TestGatewayOwnerKicksParticipant(t *testing.T) {
	h := newHarness(t, nil)
	room, err := h.dir.Create(context.Background(), "owner", "")
	require.NoError(t, err)

	o := h.dial(t, h.token(t, "owner"))
	read(t, o)
	a := h.dial(t, h.token(t, "alice"))
	read(t, a)
	b := h.dial(t, h.token(t, "bob"))
	read(t, b)

	send(t, o, map[string]string{"type": "join", "roomId": string(room.ID)})
	require.Equal(t, core.EventJoined, read(t, o).Type)
	send(t, a, map[string]string{"type": "join", "roomId": string(room.ID)})
	require.Equal(t, core.EventJoined, read(t, a).Type)
	require.Equal(t, core.EventPeerJoined, read(t, o).Type)
	send(t, b, map[string]string{"type": "join", "roomId": string(room.ID)})
	joinedB := read(t, b)
	require.Equal(t, core.EventJoined, joinedB.Type)
	require.Equal(t, core.EventPeerJoined, read(t, o).Type)
	require.Equal(t, core.EventPeerJoined, read(t, a).Type)

	send(t, a, map[string]string{"type": "kick", "userId": "bob"})
	assert.Equal(t, core.KindForbidden, read(t, a).Kind)

	send(t, o, map[string]string{"type": "kick", "userId": "bob"})
	ev := read(t, b)
	assert.Equal(t, core.EventYouWereKicked, ev.Type)
	assert.Equal(t, room.ID, ev.RoomID)
	for _, ws := range []*websocket.Conn{a, o} {
		ev = read(t, ws)
		require.Equal(t, core.EventPeerLeft, ev.Type)
		assert.Equal(t, joinedB.Self, ev.ConnectionID)
		assert.Equal(t, domain.UserID("bob"), ev.UserID)
	}

	// the kicked connection stays open and out of the room
	send(t, b, map[string]string{"type": "whoami"})
	ev = read(t, b)
	assert.Equal(t, core.EventWhoAmI, ev.Type)
	assert.Empty(t, ev.RoomID)

	send(t, a, map[string]string{"type": "roomUsers"})
	ev = read(t, a)
	require.Equal(t, core.EventRoomUsers, ev.Type)
	assert.Len(t, ev.Peers, 2)
	assert.ElementsMatch(t, []domain.UserID{"owner", "alice"}, ev.Participants)
}

func TestGatewayRoomUsersUnknownRoom(t *testing.T) {
	h := newHarness(t, nil)
	ws := h.dial(t, h.token(t, "alice"))
	read(t, ws)

	send(t, ws, map[string]string{"type": "roomUsers"})
	assert.Equal(t, core.KindRoomNotFound, read(t, ws).Kind)
	send(t, ws, map[string]string{"type": "roomUsers", "roomId": "missing"})
	assert.Equal(t, core.KindRoomNotFound, read(t, ws).Kind)
}

package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Piyash1/AstroChat-Mobile/module/chat/model"
	usermodel "github.com/Piyash1/AstroChat-Mobile/module/user/model"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsHarness struct {
	t     *testing.T
	ts    *httptest.Server
	store *fakeStore
	srv   *Server
}

func newWSHarness(t *testing.T, users []*usermodel.User, chats map[string]*model.Chat) *wsHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier := &fakeVerifier{subjects: map[string]string{}}
	directory := &fakeDirectory{bySubject: map[string]*usermodel.User{}}
	store := &fakeStore{chats: chats, users: map[string]*usermodel.User{}}
	for _, u := range users {
		verifier.subjects["token-"+u.Name] = u.SubjectID
		directory.bySubject[u.SubjectID] = u
		store.users[u.UserID()] = u
	}

	srv := NewServer(ServerConf{GatewayID: "gw-test"}, verifier, directory, store, nil, nil)

	r := gin.New()
	r.GET("/ws", srv.HandleWS)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return &wsHarness{t: t, ts: ts, store: store, srv: srv}
}

func (h *wsHarness) wsURL(token string) string {
	return "ws" + strings.TrimPrefix(h.ts.URL, "http") + "/ws?token=" + token
}

func (h *wsHarness) dial(u *usermodel.User) *websocket.Conn {
	h.t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(h.wsURL("token-"+u.Name), nil)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) capturedFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var f capturedFrame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func expectNoFrame(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "expected silence, got a frame")
}

func writeFrame(t *testing.T, conn *websocket.Conn, event string, data map[string]any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"event": event, "data": data}))
}

func userIDs(data map[string]any) []string {
	raw := data["userIds"].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, v.(string))
	}
	return out
}

func TestHandshakeRejectsMissingToken(t *testing.T) {
	h := newWSHarness(t, nil, nil)

	url := "ws" + strings.TrimPrefix(h.ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, h.srv.Presence().Len(), "no session created")
}

func TestHandshakeRejectsBadToken(t *testing.T) {
	h := newWSHarness(t, nil, nil)

	_, resp, err := websocket.DefaultDialer.Dial(h.wsURL("nope"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandshakeRejectsUnknownSubject(t *testing.T) {
	h := newWSHarness(t, nil, nil)
	// token verifies but directory has no record: identical failure mode
	h.srv.verifier.(*fakeVerifier).subjects["token-stranger"] = "sub-stranger"

	_, resp, err := websocket.DefaultDialer.Dial(h.wsURL("token-stranger"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandshakeAcceptsBearerHeader(t *testing.T) {
	alice := newTestUser("alice")
	h := newWSHarness(t, []*usermodel.User{alice}, nil)

	url := "ws" + strings.TrimPrefix(h.ts.URL, "http") + "/ws"
	hdr := http.Header{"Authorization": []string{"Bearer token-alice"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, hdr)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	f := readFrame(t, conn)
	assert.Equal(t, EventOnlineUsers, f.Event)
}

func TestConnectDeliversSnapshotAndAnnounces(t *testing.T) {
	alice := newTestUser("alice")
	bob := newTestUser("bob")
	h := newWSHarness(t, []*usermodel.User{alice, bob}, nil)

	aliceConn := h.dial(alice)
	f := readFrame(t, aliceConn)
	require.Equal(t, EventOnlineUsers, f.Event)
	assert.Empty(t, userIDs(f.Data), "first connection sees an empty snapshot")

	bobConn := h.dial(bob)
	f = readFrame(t, bobConn)
	require.Equal(t, EventOnlineUsers, f.Event)
	assert.ElementsMatch(t, []string{alice.UserID()}, userIDs(f.Data),
		"snapshot excludes the connecting user")

	f = readFrame(t, aliceConn)
	require.Equal(t, EventUserConnected, f.Event)
	assert.Equal(t, bob.UserID(), f.Data["userId"])

	expectNoFrame(t, bobConn)
}

func TestSendMessageEndToEnd(t *testing.T) {
	alice := newTestUser("alice")
	bob := newTestUser("bob")
	chatRec := newTestChat(alice, bob)
	h := newWSHarness(t, []*usermodel.User{alice, bob},
		map[string]*model.Chat{chatRec.ChatID(): chatRec})

	aliceConn := h.dial(alice)
	readFrame(t, aliceConn) // online-users
	bobConn := h.dial(bob)
	readFrame(t, bobConn)   // online-users
	readFrame(t, aliceConn) // user-connected bob

	writeFrame(t, aliceConn, EventSendMessage, map[string]any{
		"chatId": chatRec.ChatID(), "text": "  hi  ",
	})

	f := readFrame(t, bobConn)
	require.Equal(t, EventNewMessage, f.Event)
	assert.Equal(t, "hi", f.Data["text"])
	sender := f.Data["sender"].(map[string]any)
	assert.Equal(t, alice.UserID(), sender["id"])

	// the sender's own registered connection is a participant route too
	f = readFrame(t, aliceConn)
	require.Equal(t, EventNewMessage, f.Event)
	assert.Equal(t, "hi", f.Data["text"])

	require.Len(t, h.store.persisted(), 1)
}

func TestSendMessageValidationErrorGoesToSenderOnly(t *testing.T) {
	alice := newTestUser("alice")
	bob := newTestUser("bob")
	chatRec := newTestChat(alice, bob)
	h := newWSHarness(t, []*usermodel.User{alice, bob},
		map[string]*model.Chat{chatRec.ChatID(): chatRec})

	aliceConn := h.dial(alice)
	readFrame(t, aliceConn)
	bobConn := h.dial(bob)
	readFrame(t, bobConn)
	readFrame(t, aliceConn)

	writeFrame(t, aliceConn, EventSendMessage, map[string]any{
		"chatId": chatRec.ChatID(), "text": "",
	})

	f := readFrame(t, aliceConn)
	require.Equal(t, EventError, f.Event)
	assert.Equal(t, "Message text cannot be empty", f.Data["message"])
	assert.Empty(t, h.store.persisted())
	expectNoFrame(t, bobConn)
}

func TestDisconnectAnnouncesDeparture(t *testing.T) {
	alice := newTestUser("alice")
	bob := newTestUser("bob")
	h := newWSHarness(t, []*usermodel.User{alice, bob}, nil)

	aliceConn := h.dial(alice)
	readFrame(t, aliceConn)
	bobConn := h.dial(bob)
	readFrame(t, bobConn)
	readFrame(t, aliceConn) // user-connected bob

	require.NoError(t, bobConn.Close())

	f := readFrame(t, aliceConn)
	require.Equal(t, EventUserDisconnected, f.Event)
	assert.Equal(t, bob.UserID(), f.Data["userId"])
}

func TestReconnectReplacesPresenceAndStaleCloseIsSilent(t *testing.T) {
	alice := newTestUser("alice")
	bob := newTestUser("bob")
	chatRec := newTestChat(alice, bob)
	h := newWSHarness(t, []*usermodel.User{alice, bob},
		map[string]*model.Chat{chatRec.ChatID(): chatRec})

	aliceOld := h.dial(alice)
	readFrame(t, aliceOld)
	bobConn := h.dial(bob)
	readFrame(t, bobConn)
	readFrame(t, aliceOld) // user-connected bob

	aliceNew := h.dial(alice)
	readFrame(t, aliceNew)  // online-users
	readFrame(t, bobConn)   // user-connected alice (again)
	require.Equal(t, 2, h.srv.Presence().Len())

	// stale connection goes away: the newer registration must survive and
	// nobody hears a departure
	require.NoError(t, aliceOld.Close())
	expectNoFrame(t, bobConn)
	assert.Equal(t, 2, h.srv.Presence().Len())

	// messages for alice route to the new connection
	writeFrame(t, bobConn, EventSendMessage, map[string]any{
		"chatId": chatRec.ChatID(), "text": "still there?",
	})
	f := readFrame(t, aliceNew)
	require.Equal(t, EventNewMessage, f.Event)
	assert.Equal(t, "still there?", f.Data["text"])
}

func TestMalformedFrameIsIgnored(t *testing.T) {
	alice := newTestUser("alice")
	h := newWSHarness(t, []*usermodel.User{alice}, nil)

	conn := h.dial(alice)
	readFrame(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	expectNoFrame(t, conn)
	assert.Equal(t, 1, h.srv.Presence().Len(), "connection stays up")
}

package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fmd/internal/services"
	"fmd/internal/store"
	"fmd/internal/testutil"
)

type streamFixture struct {
	server  *httptest.Server
	store   store.RealtimeStore
	metrics *testutil.MockMetrics
	token   string
}

func newStreamFixture(t *testing.T) *streamFixture {
	t.Helper()
	conf := controllerConfig()
	st := store.NewMemoryStore(&testutil.MockLogger{})
	auth := services.NewAuthService(conf, st)
	metrics := testutil.NewMockMetrics()

	_, err := auth.Register(services.RegisterInput{Username: "tester", Email: "t@example.com", Password: "Str0ng!pass"})
	require.NoError(t, err)
	token, _, err := auth.Login("t@example.com", "Str0ng!pass")
	require.NoError(t, err)

	sc := NewStreamController(&testutil.MockLogger{}, auth, st, metrics)
	server := httptest.NewServer(http.HandlerFunc(sc.Watch))
	t.Cleanup(server.Close)

	return &streamFixture{server: server, store: st, metrics: metrics, token: token}
}

func (f *streamFixture) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) streamEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var event streamEvent
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestWatch_RejectsBadToken(t *testing.T) {
	f := newStreamFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/?path=devices&token=bogus"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWatch_RequiresPath(t *testing.T) {
	f := newStreamFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/?token=" + f.token
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWatch_SendsSnapshotThenUpdates(t *testing.T) {
	f := newStreamFixture(t)
	require.NoError(t, f.store.Write("devices/esp-1/name", "Kitchen"))

	conn := f.dial(t, "path=devices/esp-1&token="+f.token)

	first := readEvent(t, conn)
	assert.Equal(t, "devices/esp-1", first.Path)
	require.IsType(t, map[string]any{}, first.Value)
	assert.Equal(t, "Kitchen", first.Value.(map[string]any)["name"])

	require.NoError(t, f.store.Write("devices/esp-1/name", "Garden"))

	second := readEvent(t, conn)
	assert.Equal(t, "Garden", second.Value.(map[string]any)["name"])
}

func TestWatch_MissingPathSnapshotIsNull(t *testing.T) {
	f := newStreamFixture(t)

	conn := f.dial(t, "path=devices/ghost&token="+f.token)

	first := readEvent(t, conn)
	assert.Nil(t, first.Value)
}

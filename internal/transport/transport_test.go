// SPDX-License-Identifier: MIT
package transport

import (
	"bytes"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"dspview/internal/graph"
	applog "dspview/internal/log"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(t *testing.T) graph.Frame {
	t.Helper()
	g, err := graph.NewRealGraph("input", []float64{0, 1, 0, -1}, 2)
	require.NoError(t, err)
	return graph.Frame{Seq: 3, Timestamp: 99, Graphs: []graph.Graph{g}}
}

func TestWebSocketBroadcast(t *testing.T) {
	wst := NewWebSocketTransport("")
	defer wst.Close()

	srv := httptest.NewServer(wst.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + WebSocketPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return wst.Clients() == 1 }, time.Second, time.Millisecond)

	want := testFrame(t)
	require.NoError(t, wst.Send(want))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got graph.Frame
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, want, got)
}

func TestWebSocketClientDisconnect(t *testing.T) {
	wst := NewWebSocketTransport("")
	defer wst.Close()

	srv := httptest.NewServer(wst.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + WebSocketPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return wst.Clients() == 1 }, time.Second, time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return wst.Clients() == 0 }, time.Second, time.Millisecond)
}

func TestWebSocketSendAfterClose(t *testing.T) {
	wst := NewWebSocketTransport("")
	require.NoError(t, wst.Close())
	require.NoError(t, wst.Close())
	assert.ErrorIs(t, wst.Send(testFrame(t)), ErrClosed)
}

func TestWebSocketStart(t *testing.T) {
	wst := NewWebSocketTransport("127.0.0.1:0")
	require.NoError(t, wst.Start())
	require.NoError(t, wst.Close())

	bad := NewWebSocketTransport("256.0.0.1:bad")
	defer bad.Close()
	assert.Error(t, bad.Start())
}

func TestLoggingTransport(t *testing.T) {
	var buf bytes.Buffer
	applog.SetOutput(&buf)
	defer applog.SetOutput(os.Stderr)

	lt := NewLoggingTransport()
	require.NoError(t, lt.Send(testFrame(t)))
	require.NoError(t, lt.Send(42))
	require.NoError(t, lt.Close())

	out := buf.String()
	assert.Contains(t, out, "frame 3 input")
	assert.Contains(t, out, "2 columns")
	assert.Contains(t, out, "Received int")
}

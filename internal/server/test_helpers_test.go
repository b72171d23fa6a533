package server

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func dialWS(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, fields map[string]any) {
	t.Helper()
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn, timeout time.Duration) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read websocket message: %v", err)
	}
	return decodeFrame(t, payload)
}

func decodeFrame(t *testing.T, payload []byte) map[string]any {
	t.Helper()
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode frame %s: %v", payload, err)
	}
	return decoded
}

func frameKind(frame map[string]any) string {
	if kind, ok := frame["message_type"].(string); ok {
		return kind
	}
	if kind, ok := frame["type"].(string); ok {
		return kind
	}
	return "unknown"
}

// readFrames collects the next count frames keyed by kind. The relative
// order of a broadcast and the unicast reply to the same request is not
// guaranteed, so scenario tests match on kinds, not positions.
func readFrames(t *testing.T, conn *websocket.Conn, timeout time.Duration, count int) map[string]map[string]any {
	t.Helper()
	frames := make(map[string]map[string]any, count)
	deadline := time.Now().Add(timeout)
	for len(frames) < count {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			t.Fatalf("timed out collecting frames; got kinds %v", frameKinds(frames))
		}
		frame := readFrame(t, conn, remaining)
		frames[frameKind(frame)] = frame
	}
	return frames
}

func frameKinds(frames map[string]map[string]any) []string {
	kinds := make([]string, 0, len(frames))
	for kind := range frames {
		kinds = append(kinds, kind)
	}
	return kinds
}

func expectNoFrame(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	if _, payload, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected no websocket message within %s, got %s", timeout, payload)
	} else {
		netErr, ok := err.(net.Error)
		if !ok || !netErr.Timeout() {
			t.Fatalf("expected websocket timeout, got %v", err)
		}
	}
}

// drainQueued reads frames already sitting on a client's send queue.
// Used by hub and notifier tests that never attach a real connection.
func drainQueued(t *testing.T, c *client) []map[string]any {
	t.Helper()
	var frames []map[string]any
	for {
		select {
		case data := <-c.send:
			frames = append(frames, decodeFrame(t, data))
		default:
			return frames
		}
	}
}

package gateway

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialTestSocket(t *testing.T) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up := websocket.Upgrader{}
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		time.Sleep(100 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + server.URL[4:]
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func newTestConn(t *testing.T, addr string) *Conn {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewConn(dialTestSocket(t), addr, logger)
}

func TestNewConn(t *testing.T) {
	conn := newTestConn(t, "10.0.0.9")

	if conn.ID() == "" {
		t.Error("connection id should not be empty")
	}
	if conn.RemoteAddr() != "10.0.0.9" {
		t.Errorf("expected 10.0.0.9, got %s", conn.RemoteAddr())
	}
}

func TestNewConn_UniqueIDs(t *testing.T) {
	a := newTestConn(t, "10.0.0.1")
	b := newTestConn(t, "10.0.0.1")

	if a.ID() == b.ID() {
		t.Error("connections must get distinct ids")
	}
}

func TestConn_StripsMappedIPv6Prefix(t *testing.T) {
	conn := newTestConn(t, "::ffff:192.168.1.20")

	if conn.RemoteAddr() != "192.168.1.20" {
		t.Errorf("expected mapped prefix stripped, got %s", conn.RemoteAddr())
	}
}

func TestConn_SendDoesNotBlockWhenFull(t *testing.T) {
	conn := newTestConn(t, "10.0.0.1")

	// No write pump running; overfill the buffer.
	msg := &Message{Event: EventStateUpdate}
	done := make(chan struct{})
	go func() {
		for i := 0; i < 256; i++ {
			_ = conn.Send(msg)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a full buffer")
	}
}

func TestConn_CloseFlushesPendingMessages(t *testing.T) {
	received := make(chan string, 8)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up := websocket.Upgrader{}
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			var msg Message
			if err := ws.ReadJSON(&msg); err != nil {
				return
			}
			received <- msg.Event
		}
	}))
	t.Cleanup(server.Close)

	ws, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[4:], nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	conn := NewConn(ws, "10.0.0.1", logger)

	// No write pump running; the message sits in the queue until Close.
	if err := conn.Send(&Message{Event: EventForceDisconnect}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	select {
	case event := <-received:
		if event != EventForceDisconnect {
			t.Errorf("expected queued notice delivered, got %s", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("queued message was lost on close")
	}
}

func TestConn_SendAfterClose(t *testing.T) {
	conn := newTestConn(t, "10.0.0.1")

	if err := conn.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := conn.Send(&Message{Event: EventStateUpdate}); err != nil {
		t.Errorf("send after close should be a no-op, got %v", err)
	}
}

func TestConn_CloseIdempotent(t *testing.T) {
	conn := newTestConn(t, "10.0.0.1")

	if err := conn.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
}

func TestClientAddr(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"::ffff:10.1.2.3", "10.1.2.3"},
		{"10.1.2.3", "10.1.2.3"},
		{"2001:db8::1", "2001:db8::1"},
	}

	for _, tt := range tests {
		if got := clientAddr(tt.in); got != tt.expected {
			t.Errorf("clientAddr(%q): expected %q, got %q", tt.in, tt.expected, got)
		}
	}
}

package daemon

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thenoetrevino/tasknote/internal/events"
)

// Test helpers to avoid import cycle with testutil

func getTestSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test-tasknote.sock")
}

func setupTestDaemon(t *testing.T) (*Server, string) {
	t.Helper()
	socketPath := getTestSocketPath(t)

	server, err := NewServer(socketPath)
	if err != nil {
		t.Fatalf("Failed to create test daemon: %v", err)
	}

	t.Cleanup(func() {
		_ = server.Shutdown()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() { _ = server.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(socketPath); err == nil {
			time.Sleep(10 * time.Millisecond)
			return server, socketPath
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("Timeout waiting for daemon socket")
	return nil, ""
}

func connectRawClient(t *testing.T, socketPath string) (net.Conn, *json.Encoder, *json.Decoder) {
	t.Helper()

	conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn, json.NewEncoder(conn), json.NewDecoder(conn)
}

func sendSubscribeMessage(t *testing.T, encoder *json.Encoder, taskID string) {
	t.Helper()
	msg := events.Message{
		Version:   events.ProtocolVersion,
		Type:      "subscribe",
		Subscribe: &events.SubscribeMessage{TaskID: taskID},
	}
	if err := encoder.Encode(msg); err != nil {
		t.Fatalf("Failed to send subscribe: %v", err)
	}
}

func waitForEvent(t *testing.T, ch <-chan events.Event, timeout time.Duration) events.Event {
	t.Helper()
	select {
	case event, ok := <-ch:
		if !ok {
			t.Fatal("Channel closed")
		}
		return event
	case <-time.After(timeout):
		t.Fatalf("Timeout waiting for event")
		return events.Event{}
	}
}

func waitForNoEvent(t *testing.T, ch <-chan events.Event, timeout time.Duration) {
	t.Helper()
	select {
	case event := <-ch:
		t.Fatalf("Unexpected event: %+v", event)
	case <-time.After(timeout):
	}
}

func setupTestClient(t *testing.T, socketPath string) *events.Client {
	t.Helper()
	client, err := events.NewClient(socketPath)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}

	return client
}

func subscribedListener(t *testing.T, socketPath, taskID string) <-chan events.Event {
	t.Helper()
	client := setupTestClient(t, socketPath)
	if err := client.Subscribe(taskID); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ch, err := client.Listen(ctx)
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	return ch
}

func waitForClients(t *testing.T, server *Server, n int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if server.Metrics().GetConnectedClients() == n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d connected clients, have %d", n, server.Metrics().GetConnectedClients())
}

// ============================================================================
// Server Initialization Tests
// ============================================================================

func TestNewServer_Success(t *testing.T) {
	socketPath := getTestSocketPath(t)

	server, err := NewServer(socketPath)
	if err != nil {
		t.Fatalf("Expected NewServer to succeed, got error: %v", err)
	}
	defer func() { _ = server.Shutdown() }()

	if _, err := os.Stat(socketPath); os.IsNotExist(err) {
		t.Error("Expected socket file to be created")
	}
}

func TestNewServer_DirectoryCreation(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "subdirs", "tasknote.sock")

	server, err := NewServer(nestedPath)
	if err != nil {
		t.Fatalf("Expected NewServer to create nested directories, got error: %v", err)
	}
	defer func() { _ = server.Shutdown() }()

	if _, err := os.Stat(nestedPath); os.IsNotExist(err) {
		t.Error("Expected socket file to be created in nested directory")
	}
}

func TestNewServer_StaleSocketCleanup(t *testing.T) {
	socketPath := getTestSocketPath(t)

	f, err := os.Create(socketPath)
	if err != nil {
		t.Fatalf("Failed to create stale socket file: %v", err)
	}
	_ = f.Close()

	server, err := NewServer(socketPath)
	if err != nil {
		t.Fatalf("Expected NewServer to succeed after removing stale socket, got error: %v", err)
	}
	defer func() { _ = server.Shutdown() }()

	info, err := os.Stat(socketPath)
	if err != nil {
		t.Fatalf("Expected new socket file: %v", err)
	}
	if info.Mode()&os.ModeSocket == 0 {
		t.Error("Expected socket file to be replaced by a real socket")
	}
}

func TestNewServer_EnvVarConfiguration(t *testing.T) {
	t.Setenv("TASKNOTE_DAEMON_BROADCAST_BUFFER", "200")
	t.Setenv("TASKNOTE_DAEMON_CLIENT_BUFFER", "20")

	server, err := NewServer(getTestSocketPath(t))
	if err != nil {
		t.Fatalf("Expected NewServer to succeed, got error: %v", err)
	}
	defer func() { _ = server.Shutdown() }()

	if cap(server.broadcast) != 200 {
		t.Errorf("broadcast buffer = %d, want 200", cap(server.broadcast))
	}
	if server.clientBufferSize != 20 {
		t.Errorf("client buffer = %d, want 20", server.clientBufferSize)
	}
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("TASKNOTE_TEST_INT", "nope")
	if got := getEnvInt("TASKNOTE_TEST_INT", 7); got != 7 {
		t.Errorf("getEnvInt = %d, want 7", got)
	}
	t.Setenv("TASKNOTE_TEST_INT", "-3")
	if got := getEnvInt("TASKNOTE_TEST_INT", 7); got != 7 {
		t.Errorf("getEnvInt = %d, want 7 for negative value", got)
	}
}

// ============================================================================
// Client Connection Tests
// ============================================================================

func TestClientConnection_CountTracked(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	conns := make([]net.Conn, 0, 3)
	for i := 0; i < 3; i++ {
		conn, encoder, _ := connectRawClient(t, socketPath)
		sendSubscribeMessage(t, encoder, "")
		conns = append(conns, conn)
	}
	waitForClients(t, server, 3)

	_ = conns[0].Close()
	waitForClients(t, server, 2)
}

func TestClientConnection_RelaysPublishedEvents(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	listener := subscribedListener(t, socketPath, "")
	_, publisher, _ := connectRawClient(t, socketPath)
	waitForClients(t, server, 2)
	time.Sleep(50 * time.Millisecond)

	msg := events.Message{
		Version: events.ProtocolVersion,
		Type:    "event",
		Event:   &events.Event{Type: events.EventTasksChanged, TaskID: "t-1", Timestamp: time.Now()},
	}
	if err := publisher.Encode(msg); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	got := waitForEvent(t, listener, 2*time.Second)
	if got.Type != events.EventTasksChanged || got.TaskID != "t-1" {
		t.Errorf("unexpected event: %+v", got)
	}
	if server.Metrics().GetEventsReceived() != 1 {
		t.Errorf("EventsReceived = %d, want 1", server.Metrics().GetEventsReceived())
	}
}

// ============================================================================
// Event Broadcasting Tests
// ============================================================================

func TestBroadcast_SingleClient(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	eventChan := subscribedListener(t, socketPath, "t-1")
	time.Sleep(100 * time.Millisecond)

	if err := server.Broadcast(events.Event{Type: events.EventTasksChanged, TaskID: "t-1", Timestamp: time.Now()}); err != nil {
		t.Fatalf("Failed to broadcast: %v", err)
	}

	received := waitForEvent(t, eventChan, 2*time.Second)
	if received.TaskID != "t-1" {
		t.Errorf("Expected event for t-1, got %q", received.TaskID)
	}
	if received.SequenceID == 0 {
		t.Error("Expected sequence ID to be set")
	}
}

func TestBroadcast_SubscriptionFiltering(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	eventChanA := subscribedListener(t, socketPath, "t-1")
	eventChanB := subscribedListener(t, socketPath, "t-2")
	time.Sleep(100 * time.Millisecond)

	if err := server.Broadcast(events.Event{Type: events.EventTasksChanged, TaskID: "t-1"}); err != nil {
		t.Fatalf("Failed to broadcast: %v", err)
	}

	received := waitForEvent(t, eventChanA, 2*time.Second)
	if received.TaskID != "t-1" {
		t.Errorf("ClientA: Expected event for t-1, got %q", received.TaskID)
	}

	waitForNoEvent(t, eventChanB, 300*time.Millisecond)
}

func TestBroadcast_UnscopedReachesEveryone(t *testing.T) {
	tests := []struct {
		name  string
		event events.Event
	}{
		{"all tasks changed", events.Event{Type: events.EventTasksChanged}},
		{"schema changed", events.Event{Type: events.EventSchemaChanged, TaskID: "t-9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, socketPath := setupTestDaemon(t)

			eventChanA := subscribedListener(t, socketPath, "t-1")
			eventChanB := subscribedListener(t, socketPath, "t-2")
			time.Sleep(100 * time.Millisecond)

			if err := server.Broadcast(tt.event); err != nil {
				t.Fatalf("Failed to broadcast: %v", err)
			}

			if got := waitForEvent(t, eventChanA, 2*time.Second); got.Type != tt.event.Type {
				t.Errorf("ClientA got %s, want %s", got.Type, tt.event.Type)
			}
			if got := waitForEvent(t, eventChanB, 2*time.Second); got.Type != tt.event.Type {
				t.Errorf("ClientB got %s, want %s", got.Type, tt.event.Type)
			}
		})
	}
}

func TestBroadcast_SequenceNumbers(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	eventChan := subscribedListener(t, socketPath, "")
	time.Sleep(50 * time.Millisecond)

	numEvents := 10
	for i := 0; i < numEvents; i++ {
		if err := server.Broadcast(events.Event{Type: events.EventTasksChanged}); err != nil {
			t.Fatalf("Failed to broadcast event %d: %v", i, err)
		}
	}

	var previous int64
	for i := 0; i < numEvents; i++ {
		event := waitForEvent(t, eventChan, 2*time.Second)
		if event.SequenceID <= previous {
			t.Errorf("Sequence numbers not monotonic: %d followed by %d", previous, event.SequenceID)
		}
		previous = event.SequenceID
	}
}

// ============================================================================
// Shutdown Tests
// ============================================================================

func TestShutdown_GracefulClose(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	_ = setupTestClient(t, socketPath)
	_ = setupTestClient(t, socketPath)
	waitForClients(t, server, 2)

	if err := server.Shutdown(); err != nil {
		t.Errorf("Expected Shutdown to succeed, got error: %v", err)
	}

	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Error("Expected socket file to be removed after shutdown")
	}
	if server.Metrics().GetConnectedClients() != 0 {
		t.Errorf("expected no clients after shutdown, have %d", server.Metrics().GetConnectedClients())
	}
	if err := server.Broadcast(events.Event{Type: events.EventTasksChanged}); err == nil {
		t.Error("Broadcast after shutdown should fail")
	}
}

func TestShutdown_Idempotent(t *testing.T) {
	server, err := NewServer(getTestSocketPath(t))
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	if err := server.Shutdown(); err != nil {
		t.Errorf("First shutdown failed: %v", err)
	}
	if err := server.Shutdown(); err != nil {
		t.Errorf("Second shutdown should be idempotent, got error: %v", err)
	}
}

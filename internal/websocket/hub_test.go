package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mhiraki/comi-go/internal/models"
)

func recvMessage(t *testing.T, client *Client) ([]byte, bool) {
	t.Helper()
	select {
	case msg, ok := <-client.send:
		return msg, ok
	case <-time.After(1 * time.Second):
		t.Fatal("Client did not receive a message in time")
		return nil, false
	}
}

func TestHubBroadcastJSON(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.register <- client

	update := models.ProgressUpdate{
		JobID:    "downloader",
		ItemID:   7,
		Message:  "Downloaded page 2 of 3",
		Progress: 66,
		Status:   "in_progress",
	}
	hub.BroadcastJSON(update)

	// Receiving the broadcast proves registration completed.
	msg, ok := recvMessage(t, client)
	if !ok {
		t.Fatal("send channel closed before the broadcast arrived")
	}
	var got models.ProgressUpdate
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("Broadcast payload is not valid JSON: %v", err)
	}
	if got != update {
		t.Errorf("Client received %+v, want %+v", got, update)
	}

	// Unregistering closes the send channel once the hub has processed it.
	hub.unregister <- client
	if _, ok := recvMessage(t, client); ok {
		t.Error("send channel still open after unregistration")
	}
}

func TestHubDropsStalledClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	stalled := &Client{hub: hub, send: make(chan []byte)}
	live := &Client{hub: hub, send: make(chan []byte, 2)}
	hub.register <- stalled
	hub.register <- live

	// The stalled client never drains its channel, so the first broadcast
	// drops it. The live client must keep receiving.
	hub.Broadcast([]byte("first"))
	hub.Broadcast([]byte("second"))

	for _, want := range []string{"first", "second"} {
		msg, ok := recvMessage(t, live)
		if !ok {
			t.Fatal("live client's send channel was closed")
		}
		if string(msg) != want {
			t.Errorf("live client received %q, want %q", msg, want)
		}
	}

	if _, ok := recvMessage(t, stalled); ok {
		t.Error("stalled client's send channel still open after broadcast")
	}
}

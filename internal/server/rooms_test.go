package server

import (
	"fmt"
	"testing"
)

func TestBroadcastEmptyRoomIsNoop(t *testing.T) {
	hub := newRoomHub()
	hub.Broadcast(lobbyRoom, []byte(`{"message_type":"game_info"}`))
	hub.Broadcast(gameRoom(42), []byte(`{"message_type":"point_update"}`))
}

func TestJoinLeaveMembership(t *testing.T) {
	hub := newRoomHub()
	first := newClient(nil, 4)
	second := newClient(nil, 4)

	hub.Join(lobbyRoom, first)
	hub.Join(lobbyRoom, second)
	if count := hub.memberCount(lobbyRoom); count != 2 {
		t.Fatalf("expected 2 members, got %d", count)
	}

	hub.Broadcast(lobbyRoom, []byte(`{"message_type":"game_info"}`))
	for _, c := range []*client{first, second} {
		frames := drainQueued(t, c)
		if len(frames) != 1 || frames[0]["message_type"] != "game_info" {
			t.Fatalf("expected one game_info frame, got %v", frames)
		}
	}

	hub.Leave(lobbyRoom, first)
	hub.Broadcast(lobbyRoom, []byte(`{"message_type":"game_info"}`))
	if frames := drainQueued(t, first); len(frames) != 0 {
		t.Fatalf("expected no frames after leave, got %v", frames)
	}
	if frames := drainQueued(t, second); len(frames) != 1 {
		t.Fatalf("expected one frame for remaining member, got %v", frames)
	}

	hub.Leave(lobbyRoom, second)
	if count := hub.memberCount(lobbyRoom); count != 0 {
		t.Fatalf("expected empty room to be dropped, got %d members", count)
	}
}

func TestRoomsAreIsolated(t *testing.T) {
	hub := newRoomHub()
	lobby := newClient(nil, 4)
	game := newClient(nil, 4)
	hub.Join(lobbyRoom, lobby)
	hub.Join(gameRoom(7), game)

	hub.Broadcast(gameRoom(7), []byte(`{"message_type":"point_update"}`))
	if frames := drainQueued(t, lobby); len(frames) != 0 {
		t.Fatalf("lobby member received game room frame: %v", frames)
	}
	if frames := drainQueued(t, game); len(frames) != 1 {
		t.Fatalf("expected game room member to receive frame, got %v", frames)
	}
}

func TestBroadcastPreservesSubmissionOrder(t *testing.T) {
	hub := newRoomHub()
	c := newClient(nil, 16)
	hub.Join(gameRoom(1), c)

	for i := 0; i < 10; i++ {
		hub.Broadcast(gameRoom(1), []byte(fmt.Sprintf(`{"message_type":"point_update","value":%d}`, i)))
	}
	frames := drainQueued(t, c)
	if len(frames) != 10 {
		t.Fatalf("expected 10 frames, got %d", len(frames))
	}
	for i, frame := range frames {
		if frame["value"] != float64(i) {
			t.Fatalf("frame %d out of order: %v", i, frame)
		}
	}
}

func TestSlowConsumerIsDropped(t *testing.T) {
	hub := newRoomHub()
	slow := newClient(nil, 1)
	healthy := newClient(nil, 4)
	hub.Join(lobbyRoom, slow)
	hub.Join(lobbyRoom, healthy)

	hub.Broadcast(lobbyRoom, []byte(`{"message_type":"game_info"}`))
	hub.Broadcast(lobbyRoom, []byte(`{"message_type":"game_info"}`))

	select {
	case <-slow.closed:
	default:
		t.Fatal("expected slow consumer to be closed")
	}
	if frames := drainQueued(t, healthy); len(frames) != 2 {
		t.Fatalf("expected healthy consumer to receive both frames, got %d", len(frames))
	}
}

func TestEnqueueAfterCloseIsNoop(t *testing.T) {
	c := newClient(nil, 4)
	c.close()
	c.enqueue([]byte(`{}`))
	if frames := drainQueued(t, c); len(frames) != 0 {
		t.Fatalf("expected no frames on closed client, got %v", frames)
	}
}

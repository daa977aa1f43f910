package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func drain(t *testing.T, c *Client) []Event {
	t.Helper()
	var events []Event
	for {
		select {
		case payload := <-c.send:
			var event Event
			require.NoError(t, json.Unmarshal(payload, &event))
			events = append(events, event)
		default:
			return events
		}
	}
}

func TestJoinAndRoomMembers(t *testing.T) {
	hub := NewHub()
	room := primitive.NewObjectID()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	hub.Join(NewClient(nil, alice, room))
	hub.Join(NewClient(nil, bob, room))

	members := hub.RoomMembers(room)
	assert.ElementsMatch(t, []primitive.ObjectID{alice, bob}, members)
	assert.True(t, hub.IsConnected(room, alice))
	assert.False(t, hub.IsConnected(room, primitive.NewObjectID()))
}

func TestBroadcastExcludesSender(t *testing.T) {
	hub := NewHub()
	room := primitive.NewObjectID()
	sender := NewClient(nil, primitive.NewObjectID(), room)
	receiver := NewClient(nil, primitive.NewObjectID(), room)
	hub.Join(sender)
	hub.Join(receiver)

	hub.Broadcast(room, NewEvent(EventNewMessage, map[string]string{"content": "hi"}), sender.UserID())

	assert.Empty(t, drain(t, sender))
	events := drain(t, receiver)
	require.Len(t, events, 1)
	assert.Equal(t, EventNewMessage, events[0].Type)
}

func TestBroadcastScopedToRoom(t *testing.T) {
	hub := NewHub()
	roomA := primitive.NewObjectID()
	roomB := primitive.NewObjectID()
	inA := NewClient(nil, primitive.NewObjectID(), roomA)
	inB := NewClient(nil, primitive.NewObjectID(), roomB)
	hub.Join(inA)
	hub.Join(inB)

	hub.Broadcast(roomA, Event{Type: EventUserTyping})

	assert.Len(t, drain(t, inA), 1)
	assert.Empty(t, drain(t, inB))
}

func TestReconnectReplacesPreviousChannel(t *testing.T) {
	hub := NewHub()
	room := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	first := NewClient(nil, userID, room)
	hub.Join(first)
	second := NewClient(nil, userID, room)
	hub.Join(second)

	// The stale channel is closed so its write pump exits.
	_, open := <-first.send
	assert.False(t, open)

	// Delivery goes to the replacement only.
	hub.SendTo(room, userID, Event{Type: EventPong})
	assert.Len(t, drain(t, second), 1)

	// Leaving with the stale client does not evict the replacement.
	hub.Leave(first)
	assert.True(t, hub.IsConnected(room, userID))

	hub.Leave(second)
	assert.False(t, hub.IsConnected(room, userID))
	assert.Empty(t, hub.RoomMembers(room))
}

func TestSlowClientDoesNotBlockBroadcast(t *testing.T) {
	hub := NewHub()
	room := primitive.NewObjectID()
	slow := NewClient(nil, primitive.NewObjectID(), room)
	hub.Join(slow)

	// Fill the buffer past capacity; extra frames drop instead of
	// blocking the broadcaster.
	for i := 0; i < sendBuffer+10; i++ {
		hub.Broadcast(room, Event{Type: EventUserTyping})
	}
	assert.Len(t, drain(t, slow), sendBuffer)
}

func TestSendToMissingUserIsNoop(t *testing.T) {
	hub := NewHub()
	hub.SendTo(primitive.NewObjectID(), primitive.NewObjectID(), Event{Type: EventPong})
}

package sse

import (
	"testing"

	"github.com/google/uuid"
)

func TestPublishDeliversOnlyToAddressedUser(t *testing.T) {
	svc := New(nil)
	u1, u2 := uuid.New(), uuid.New()
	c1 := &client{userID: u1, events: make(chan Event, 1)}
	c2 := &client{userID: u2, events: make(chan Event, 1)}
	svc.addClient(c1)
	svc.addClient(c2)

	svc.Publish(u1, Event{Type: EventLeadNotificationCreated})

	if len(c1.events) != 1 {
		t.Fatal("expected addressed user to receive the event")
	}
	if len(c2.events) != 0 {
		t.Fatal("expected other user to receive nothing")
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	svc := New(nil)
	userID := uuid.New()
	c := &client{userID: userID, events: make(chan Event, 1)}
	svc.addClient(c)

	svc.Publish(userID, Event{Type: EventLeadNotificationCreated})
	svc.Publish(userID, Event{Type: EventLeadNotificationCreated})

	if len(c.events) != 1 {
		t.Fatalf("expected one buffered event, got %d", len(c.events))
	}
}

func TestRemoveAfterCloseDoesNotPanic(t *testing.T) {
	svc := New(nil)
	c := &client{userID: uuid.New(), events: make(chan Event, 1)}
	svc.addClient(c)

	svc.Close()
	svc.removeClient(c)

	if svc.addClient(&client{userID: uuid.New(), events: make(chan Event, 1)}) {
		t.Fatal("expected closed service to reject new clients")
	}
}

func TestSubscribeAndUnsubscribeTrackConnections(t *testing.T) {
	svc := New(nil)
	userID := uuid.New()

	_, unsubscribe, ok := svc.Subscribe(userID)
	if !ok {
		t.Fatal("expected subscribe to succeed")
	}
	if svc.Connected(userID) != 1 {
		t.Fatalf("expected one connection, got %d", svc.Connected(userID))
	}

	unsubscribe()
	if svc.Connected(userID) != 0 {
		t.Fatalf("expected no connections, got %d", svc.Connected(userID))
	}
}

package services

import "testing"

func recvNow(t *testing.T, s *Session) (Notification, bool) {
	t.Helper()
	select {
	case n, ok := <-s.C:
		return n, ok
	default:
		return nil, false
	}
}

func TestHubFanOutToAllSessions(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe("user-1")
	b := hub.Subscribe("user-1")
	other := hub.Subscribe("user-2")

	hub.Notify("user-1", MissionCompletedNotice{Title: "Quick", XP: 10})

	for _, s := range []*Session{a, b} {
		n, ok := recvNow(t, s)
		if !ok {
			t.Fatal("session missed the notification")
		}
		if got := n.(MissionCompletedNotice); got.Title != "Quick" {
			t.Fatalf("payload = %+v", got)
		}
		if _, ok := recvNow(t, s); ok {
			t.Fatal("session received a duplicate")
		}
	}
	if _, ok := recvNow(t, other); ok {
		t.Fatal("notification leaked to another user")
	}
}

func TestHubNotifyWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	// offline user: dropped, not an error
	hub.Notify("nobody", BadgeUnlockedNotice{Title: "Veteran"})
	if hub.SessionCount("nobody") != 0 {
		t.Fatal("phantom session registered")
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	s := hub.Subscribe("user-1")

	// Nothing drains the channel; sends past the buffer must not block.
	for i := 0; i < sessionBuffer+5; i++ {
		hub.Notify("user-1", MissionCompletedNotice{Title: "Spam", XP: int64(i)})
	}
	if len(s.C) != sessionBuffer {
		t.Fatalf("buffered = %d, want %d", len(s.C), sessionBuffer)
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	s := hub.Subscribe("user-1")
	if hub.SessionCount("user-1") != 1 {
		t.Fatalf("sessions = %d", hub.SessionCount("user-1"))
	}

	hub.Unsubscribe(s)
	if hub.SessionCount("user-1") != 0 {
		t.Fatalf("sessions after unsubscribe = %d", hub.SessionCount("user-1"))
	}
	if _, ok := <-s.C; ok {
		t.Fatal("channel not closed on unsubscribe")
	}

	hub.Unsubscribe(s) // second call is a no-op
	hub.Notify("user-1", MissionCompletedNotice{Title: "Late"})
}

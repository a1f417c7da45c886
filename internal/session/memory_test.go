package session

import (
	"context"
	"testing"
)

func TestGetOrCreate(t *testing.T) {
	store := NewMemoryStore()

	sess, created := store.GetOrCreate("")
	if !created {
		t.Fatal("first contact should create a session")
	}
	if sess.ID == "" {
		t.Fatal("session ID should be generated")
	}

	again, created := store.GetOrCreate(sess.ID)
	if created {
		t.Error("known identifier should not create a new session")
	}
	if again != sess {
		t.Error("same identifier should return the same session")
	}

	// 未知の識別子は新規扱い（識別子は再利用しない）
	other, created := store.GetOrCreate("unknown-id")
	if !created {
		t.Error("unknown identifier should create a new session")
	}
	if other.ID == "unknown-id" {
		t.Error("a client-supplied identifier must never be adopted")
	}
}

func TestEvict(t *testing.T) {
	store := NewMemoryStore()
	sess, _ := store.GetOrCreate("")

	store.Evict(sess.ID)
	if _, ok := store.Get(sess.ID); ok {
		t.Error("evicted session should not be found")
	}
}

func TestForEach(t *testing.T) {
	store := NewMemoryStore()
	store.GetOrCreate("")
	store.GetOrCreate("")

	count := 0
	store.ForEach(func(s *Session) { count++ })
	if count != 2 {
		t.Errorf("ForEach visited %d sessions, want 2", count)
	}
}

func TestNewSessionID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewSessionID()
		if len(id) != 64 {
			t.Fatalf("len(id) = %d, want 64 hex chars", len(id))
		}
		if seen[id] {
			t.Fatal("session ID collision")
		}
		seen[id] = true
	}
}

func TestPollLifecycle(t *testing.T) {
	sess := &Session{ID: "s1"}

	if sess.CancelPoll() {
		t.Error("CancelPoll without a poll should return false")
	}

	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	if !sess.BeginPoll(cancel) {
		t.Fatal("BeginPoll should succeed when idle")
	}
	if sess.BeginPoll(cancel) {
		t.Error("second BeginPoll should be rejected while polling")
	}
	if !sess.CancelPoll() {
		t.Error("CancelPoll should succeed while polling")
	}

	sess.EndPoll()
	if sess.Polling() {
		t.Error("Polling should be false after EndPoll")
	}
}

package agent

import (
	"testing"
	"time"
)

func Test_Session_Transitions(t *testing.T) {
	s := NewSession("s1")
	if s.State() != StateNoPending {
		t.Fatalf("initial state = %s", s.State())
	}

	s.RequestDeletion("/tmp/a")
	if path, ok := s.Pending(); !ok || path != "/tmp/a" {
		t.Errorf("pending = %q, %v", path, ok)
	}

	s.ConfirmDeletion()
	if s.State() != StateNoPending {
		t.Errorf("after confirm state = %s", s.State())
	}
	if _, ok := s.Pending(); ok {
		t.Error("nothing should be pending after confirm")
	}

	s.RequestDeletion("/tmp/b")
	s.CancelDeletion()
	if _, ok := s.Pending(); ok {
		t.Error("nothing should be pending after cancel")
	}
}

func Test_Sessions_GetCreatesOnce(t *testing.T) {
	sessions := NewSessions()
	a := sessions.Get("a")
	if sessions.Get("a") != a {
		t.Error("Get should return the same session for the same id")
	}
	if sessions.Get("b") == a {
		t.Error("different ids must get different sessions")
	}
	if sessions.Len() != 2 {
		t.Errorf("Len = %d, want 2", sessions.Len())
	}
}

func Test_Sessions_EvictsLeastRecentlyUsedAtCapacity(t *testing.T) {
	sessions := NewSessionsWithLimits(2, time.Hour)
	a := sessions.Get("a")
	sessions.Get("b")
	sessions.Get("a")
	sessions.Get("c")

	if sessions.Len() != 2 {
		t.Errorf("Len = %d, want 2", sessions.Len())
	}
	if sessions.Get("a") != a {
		t.Error("recently used session should survive eviction")
	}
}

func Test_Sessions_ExpireWhenIdle(t *testing.T) {
	sessions := NewSessionsWithLimits(10, 50*time.Millisecond)
	a := sessions.Get("a")
	a.RequestDeletion("/tmp/a")

	time.Sleep(200 * time.Millisecond)

	if sessions.Len() != 0 {
		t.Errorf("Len = %d, want 0 after ttl", sessions.Len())
	}
	fresh := sessions.Get("a")
	if fresh == a {
		t.Fatal("expired session was handed out again")
	}
	if _, ok := fresh.Pending(); ok {
		t.Error("new session must not inherit a pending deletion")
	}
}

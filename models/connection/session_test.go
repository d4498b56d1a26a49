package connection

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestWriteToClosedSession(t *testing.T) {
	s := NewSession("s1", "p1", nil)
	s.closed = true

	err := s.writeJSON(NewMessage[NoPayload](CodeMatchState))
	var connErr ConnErr
	if !errors.As(err, &connErr) {
		t.Fatalf("expected a ConnErr\t got: %v", err)
	}
	if connErr.Code() != ConnSessionClosed {
		t.Fatalf("expected code: %d\t got: %d", ConnSessionClosed, connErr.Code())
	}
	if !IsSessionClosed(err) {
		t.Fatalf("expected write error to report a closed session")
	}
}

func TestIsSessionClosed(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"closed", NewConnErr(ConnSessionClosed).AddDesc("gone"), true},
		{"wrapped closed", fmt.Errorf("write: %w", NewConnErr(ConnSessionClosed)), true},
		{"broken loop", NewConnErr(ConnLoopBreak).AddDesc("reading failed"), false},
		{"other", errors.New("boom"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsSessionClosed(tc.err); got != tc.expected {
				t.Fatalf("expected: %v\t got: %v", tc.expected, got)
			}
		})
	}
}

func TestSessionConnectedFor(t *testing.T) {
	s := NewSession("s1", "p1", nil)
	later := s.createdAt.Add(90 * time.Second)

	if got := s.ConnectedFor(later); got != 90*time.Second {
		t.Fatalf("expected: %v\t got: %v", 90*time.Second, got)
	}
}

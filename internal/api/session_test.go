package api

import (
	"testing"

	"github.com/google/uuid"
)

func TestSessionStore(t *testing.T) {
	s := newSessionStore()
	a, err := s.create("admin")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.create("admin")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("tokens repeat: %q", a)
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("token %q is not a uuid: %v", a, err)
	}
	if user, ok := s.lookup(a); !ok || user != "admin" {
		t.Errorf("lookup = %q, %v", user, ok)
	}
	s.remove(a)
	if _, ok := s.lookup(a); ok {
		t.Error("removed token still resolves")
	}
	if _, ok := s.lookup(b); !ok {
		t.Error("other token should survive")
	}
}

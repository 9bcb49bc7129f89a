package store

import (
	"testing"
)

func TestGuestCartIDIsStable(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	first, err := s.GuestCartID()
	if err != nil {
		t.Fatalf("guest cart id: %v", err)
	}
	if first == "" {
		t.Fatal("expected a generated guest cart id")
	}

	second, err := s.GuestCartID()
	if err != nil {
		t.Fatalf("guest cart id: %v", err)
	}
	if second != first {
		t.Fatalf("guest cart id changed within a session: %q != %q", second, first)
	}
}

func TestGuestCartIDSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	first, err := s.GuestCartID()
	if err != nil {
		t.Fatalf("guest cart id: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	second, err := reopened.GuestCartID()
	if err != nil {
		t.Fatalf("guest cart id after reopen: %v", err)
	}
	if second != first {
		t.Fatalf("guest cart id not durable: %q != %q", second, first)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	if _, ok := s.Token(); ok {
		t.Fatal("expected no token in a fresh store")
	}

	if err := s.SaveToken("tok-abc"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	token, ok := s.Token()
	if !ok || token != "tok-abc" {
		t.Fatalf("expected stored token, got %q (ok=%v)", token, ok)
	}

	if err := s.ClearToken(); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	if _, ok := s.Token(); ok {
		t.Fatal("expected token cleared")
	}
}

func TestLanguageRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	if _, ok := s.Language(); ok {
		t.Fatal("expected no language in a fresh store")
	}
	if err := s.SaveLanguage("de"); err != nil {
		t.Fatalf("save language: %v", err)
	}
	lang, ok := s.Language()
	if !ok || lang != "de" {
		t.Fatalf("expected stored language de, got %q (ok=%v)", lang, ok)
	}
}

func TestMemoryOnlyMode(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatalf("open memory-only store: %v", err)
	}
	defer s.Close()

	id, err := s.GuestCartID()
	if err != nil {
		t.Fatalf("guest cart id: %v", err)
	}
	again, err := s.GuestCartID()
	if err != nil {
		t.Fatalf("guest cart id: %v", err)
	}
	if id != again {
		t.Fatalf("memory-only guest id not stable: %q != %q", id, again)
	}
}

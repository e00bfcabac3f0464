package token

import (
	"testing"
	"time"
)

func TestIssueAndDecodeRoundTrip(t *testing.T) {
	m := NewManager("test-secret", 15*time.Minute, 24*time.Hour)

	access, err := m.IssueAccess("a@x.com")
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}
	refresh, err := m.IssueRefresh("a@x.com")
	if err != nil {
		t.Fatalf("IssueRefresh failed: %v", err)
	}
	if access == refresh {
		t.Fatal("access and refresh tokens should differ")
	}

	for _, tok := range []string{access, refresh} {
		sub, err := m.Decode(tok)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if sub != "a@x.com" {
			t.Errorf("subject = %q, want a@x.com", sub)
		}
	}
}

func TestDecodeExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, -time.Minute)

	tok, err := m.IssueAccess("a@x.com")
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}
	if _, err := m.Decode(tok); err != ErrInvalid {
		t.Errorf("Decode of expired token: err = %v, want ErrInvalid", err)
	}
}

func TestDecodeTampered(t *testing.T) {
	m := NewManager("test-secret", 15*time.Minute, 24*time.Hour)

	tok, err := m.IssueAccess("a@x.com")
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}

	tampered := tok[:len(tok)-2] + "xx"
	if _, err := m.Decode(tampered); err != ErrInvalid {
		t.Errorf("Decode of tampered token: err = %v, want ErrInvalid", err)
	}
}

func TestDecodeWrongSecret(t *testing.T) {
	issuer := NewManager("secret-one", 15*time.Minute, 24*time.Hour)
	verifier := NewManager("secret-two", 15*time.Minute, 24*time.Hour)

	tok, err := issuer.IssueAccess("a@x.com")
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}
	if _, err := verifier.Decode(tok); err != ErrInvalid {
		t.Errorf("Decode with wrong secret: err = %v, want ErrInvalid", err)
	}
}

func TestDecodeGarbage(t *testing.T) {
	m := NewManager("test-secret", 15*time.Minute, 24*time.Hour)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.Decode(tok); err != ErrInvalid {
			t.Errorf("Decode(%q): err = %v, want ErrInvalid", tok, err)
		}
	}
}

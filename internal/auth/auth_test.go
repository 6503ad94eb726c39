package auth

import (
	"testing"
	"time"
)

func TestSessionsRoundTrip(t *testing.T) {
	s := NewSessions("test-secret", time.Hour)

	tok, err := s.Issue(Identity{UserID: 7, Email: "a@b.c", Username: "alice"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	id, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.UserID != 7 || id.Email != "a@b.c" || id.Username != "alice" {
		t.Errorf("identity = %+v", id)
	}
}

func TestSessionsRejectsBadToken(t *testing.T) {
	s := NewSessions("test-secret", time.Hour)
	if _, err := s.Verify("not.a.token"); err == nil {
		t.Fatal("expected error for malformed token")
	}

	other := NewSessions("other-secret", time.Hour)
	tok, err := other.Issue(Identity{UserID: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Verify(tok); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
}

func TestSessionsRejectsExpired(t *testing.T) {
	s := NewSessions("test-secret", -time.Minute)
	tok, err := s.Issue(Identity{UserID: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Verify(tok); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword("hunter2", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("hunter3", hash) {
		t.Error("wrong password accepted")
	}
}

func TestKeeperRoundTrip(t *testing.T) {
	k, err := NewKeeper("passphrase of any length")
	if err != nil {
		t.Fatalf("NewKeeper: %v", err)
	}

	sealed, err := k.Encrypt("partner-password")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if sealed == "partner-password" {
		t.Fatal("ciphertext equals plaintext")
	}

	plain, err := k.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if plain != "partner-password" {
		t.Errorf("Decrypt = %q", plain)
	}

	other, _ := NewKeeper("different key")
	if _, err := other.Decrypt(sealed); err == nil {
		t.Error("expected decrypt failure with the wrong key")
	}
	if _, err := k.Decrypt("%%%not-base64"); err == nil {
		t.Error("expected decrypt failure for garbage input")
	}
}

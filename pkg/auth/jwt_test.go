package auth

import (
	"context"
	"testing"
	"time"
)

func TestSignVerifyRoundtrip(t *testing.T) {
	j := New("test-secret")
	tok, err := j.Sign("user-1", time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	uid, err := j.Verify(tok)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if uid != "user-1" {
		t.Errorf("uid = %q, want user-1", uid)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, _ := New("secret-a").Sign("user-1", time.Hour)
	if _, err := New("secret-b").Verify(tok); err == nil {
		t.Error("token signed with another secret verified")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	j := New("test-secret")
	tok, _ := j.Sign("user-1", -time.Minute)
	if _, err := j.Verify(tok); err == nil {
		t.Error("expired token verified")
	}
}

func TestSignRejectsEmptyUID(t *testing.T) {
	if _, err := New("test-secret").Sign("", time.Hour); err == nil {
		t.Error("empty uid signed")
	}
}

func TestUserIDContext(t *testing.T) {
	ctx := context.Background()
	if got := UserID(ctx); got != "anon" {
		t.Errorf("UserID on empty ctx = %q, want anon", got)
	}
	ctx = WithUser(ctx, "user-7")
	if got := UserID(ctx); got != "user-7" {
		t.Errorf("UserID = %q, want user-7", got)
	}
}

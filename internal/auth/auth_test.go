package auth_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"classconnect/internal/auth"
	"classconnect/internal/model"
)

const secret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	tok, err := auth.MakeToken("uid-1", model.RoleTeacher, secret)
	if err != nil {
		t.Fatalf("make token: %v", err)
	}

	claims, err := auth.ParseToken(tok, secret)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != "uid-1" {
		t.Errorf("uid mismatch: %s", claims.UserID)
	}
	if claims.Role != model.RoleTeacher {
		t.Errorf("role mismatch: %s", claims.Role)
	}

	// verify expiry is ~15 min from now
	diff := time.Until(claims.ExpiresAt.Time)
	if diff < 14*time.Minute || diff > 16*time.Minute {
		t.Errorf("expected ~15min expiry, got %v", diff)
	}
}

func TestParseTokenRejects(t *testing.T) {
	tok, _ := auth.MakeToken("uid", model.RoleStudent, secret)

	if _, err := auth.ParseToken(tok, "wrong-secret"); err == nil {
		t.Fatal("expected error for wrong secret")
	}
	if _, err := auth.ParseToken("not.a.token", secret); err == nil {
		t.Fatal("expected error for garbage token")
	}
	if _, err := auth.ParseToken("", secret); err == nil {
		t.Fatal("expected error for empty token")
	}
}

// a token signed with alg "none" must never validate, whatever its claims say
func TestUnsignedTokenRejected(t *testing.T) {
	seg := func(v any) string {
		b, _ := json.Marshal(v)
		return base64.RawURLEncoding.EncodeToString(b)
	}
	forged := seg(map[string]string{"alg": "none", "typ": "JWT"}) + "." +
		seg(map[string]any{"uid": "uid-1", "role": "admin"}) + "."

	if _, err := auth.ParseToken(forged, secret); err == nil {
		t.Fatal("unsigned token accepted")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("testpass123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !auth.CheckPassword(hash, "testpass123") {
		t.Error("correct password rejected")
	}
	if auth.CheckPassword(hash, "wrongpass") {
		t.Error("wrong password accepted")
	}
}

func TestRefreshTokenGeneration(t *testing.T) {
	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(raw) != 64 { // 32 bytes hex = 64 chars
		t.Errorf("expected 64 char raw token, got %d", len(raw))
	}
	if len(hash) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(hash))
	}
	if auth.HashRefreshToken(raw) != hash {
		t.Error("hash mismatch")
	}
}

package token

import (
	"testing"
	"time"
)

func TestGenerateParseRoundTrip(t *testing.T) {
	tokenString, err := Generate("sess-123", "alice", "secret", time.Hour)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := Parse(tokenString, "secret")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if claims.Id != "sess-123" {
		t.Fatalf("jti = %q, want sess-123", claims.Id)
	}
	if claims.Subject != "alice" || claims.DisplayName != "alice" {
		t.Fatalf("subject = %q, display_name = %q, want both alice", claims.Subject, claims.DisplayName)
	}
	if claims.Issuer != Issuer {
		t.Fatalf("issuer = %q, want %q", claims.Issuer, Issuer)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tokenString, err := Generate("sess-123", "alice", "secret", time.Hour)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := Parse(tokenString, "other-secret"); err == nil {
		t.Fatal("token parsed under the wrong secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tokenString, err := Generate("sess-123", "alice", "secret", -time.Hour)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := Parse(tokenString, "secret"); err == nil {
		t.Fatal("expired token parsed")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "abc", "a.b.c"} {
		if _, err := Parse(bad, "secret"); err == nil {
			t.Fatalf("Parse(%q) succeeded", bad)
		}
	}
}

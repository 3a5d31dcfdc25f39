package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewAccessToken(t *testing.T) {
	tok, err := NewAccessToken("s3cret", "dev", RoleAdmin, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if d := time.Until(tok.Exp); d < 59*time.Minute || d > time.Hour {
		t.Errorf("expiry %s out of range", d)
	}

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte("s3cret"), nil })
	if err != nil || !parsed.Valid {
		t.Fatalf("parse: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if sub, _ := claims.GetSubject(); sub != "dev" {
		t.Errorf("sub = %q", sub)
	}
	if claims["role"] != RoleAdmin {
		t.Errorf("role = %v", claims["role"])
	}
}

func TestNewAccessTokenRejectsBadInput(t *testing.T) {
	if _, err := NewAccessToken("", "dev", RoleAdmin, time.Hour); err == nil {
		t.Error("empty secret accepted")
	}
	if _, err := NewAccessToken("s", "dev", RoleAdmin, 0); err == nil {
		t.Error("zero ttl accepted")
	}
}

package utils

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("s3cret")
	token, err := CreateToken(secret, "acct-1", time.Minute)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Subject != "acct-1" {
		t.Errorf("expected subject acct-1, got %s", claims.Subject)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	secret := []byte("s3cret")

	expired, _ := CreateToken(secret, "acct-1", -time.Minute)
	if _, err := ValidateToken(secret, expired); err == nil {
		t.Error("expected expired token to be rejected")
	}

	other, _ := CreateToken([]byte("other"), "acct-1", time.Minute)
	if _, err := ValidateToken(secret, other); err == nil {
		t.Error("expected token signed with another key to be rejected")
	}

	noSubject, _ := CreateToken(secret, "", time.Minute)
	if _, err := ValidateToken(secret, noSubject); err == nil {
		t.Error("expected token without subject to be rejected")
	}
}

func TestFormatRFC3339KST(t *testing.T) {
	if got := FormatRFC3339KST(0); got != "" {
		t.Errorf("expected empty string for zero time, got %q", got)
	}
	if got := FormatRFC3339KST(1700000000); got != "2023-11-15T07:13:20+09:00" {
		t.Errorf("unexpected KST rendering %q", got)
	}
}

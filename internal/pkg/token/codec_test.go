package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec("secret", "HS256")
	if err != nil {
		t.Fatalf("NewCodec returned error: %v", err)
	}
	return c
}

func TestCodec_RoundTrip(t *testing.T) {
	c := newTestCodec(t)

	signed, err := c.Issue(jwt.MapClaims{"email": "a@x.com", "otp": 123456}, time.Hour)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := c.Decode(signed)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if claims["email"] != "a@x.com" {
		t.Fatalf("email claim lost: %v", claims["email"])
	}
	// JSON numbers decode as float64.
	if otp, _ := claims["otp"].(float64); int(otp) != 123456 {
		t.Fatalf("otp claim lost: %v", claims["otp"])
	}

	exp, ok := ExpiresAt(claims)
	if !ok {
		t.Fatalf("expected exp claim to be injected")
	}
	if d := time.Until(exp); d < 55*time.Minute || d > time.Hour {
		t.Fatalf("unexpected expiry distance: %v", d)
	}
}

func TestCodec_IssueLeavesInputUntouched(t *testing.T) {
	c := newTestCodec(t)

	claims := jwt.MapClaims{"sub": "a@x.com"}
	if _, err := c.Issue(claims, time.Hour); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, ok := claims["exp"]; ok {
		t.Fatalf("Issue wrote exp into the caller's map")
	}
	if len(claims) != 1 || claims["sub"] != "a@x.com" {
		t.Fatalf("caller's claims changed: %v", claims)
	}
}

func TestCodec_DecodeDoesNotRejectExpired(t *testing.T) {
	c := newTestCodec(t)

	signed, err := c.Issue(jwt.MapClaims{"sub": "a@x.com"}, -time.Minute)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := c.Decode(signed)
	if err != nil {
		t.Fatalf("expected expired token to still decode, got %v", err)
	}

	exp, ok := ExpiresAt(claims)
	if !ok {
		t.Fatalf("expected exp claim")
	}
	if exp.After(time.Now()) {
		t.Fatalf("expected expiry in the past, got %v", exp)
	}
}

func TestCodec_DecodeRejectsBadSignature(t *testing.T) {
	c := newTestCodec(t)
	other, err := NewCodec("other-secret", "HS256")
	if err != nil {
		t.Fatalf("NewCodec returned error: %v", err)
	}

	signed, err := other.Issue(jwt.MapClaims{"sub": "a@x.com"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := c.Decode(signed); err == nil {
		t.Fatalf("expected decode to fail on foreign signature")
	}
	if _, err := c.Decode("not-a-token"); err == nil {
		t.Fatalf("expected decode to fail on malformed input")
	}
}

func TestNewCodec_RejectsNonHMAC(t *testing.T) {
	if _, err := NewCodec("secret", "RS256"); err == nil {
		t.Fatalf("expected error for non-HMAC algorithm")
	}
	if _, err := NewCodec("secret", "nope"); err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}
}

func TestSubject(t *testing.T) {
	if _, ok := Subject(jwt.MapClaims{}); ok {
		t.Fatalf("expected missing sub to report false")
	}
	if _, ok := Subject(jwt.MapClaims{"sub": ""}); ok {
		t.Fatalf("expected empty sub to report false")
	}
	sub, ok := Subject(jwt.MapClaims{"sub": "a@x.com"})
	if !ok || sub != "a@x.com" {
		t.Fatalf("unexpected subject: %q %v", sub, ok)
	}
}

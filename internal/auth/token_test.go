package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenIssueVerify(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Issue("alessandro")
	if err != nil {
		t.Fatal(err)
	}
	sub, err := svc.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	if sub != "alessandro" {
		t.Fatalf("expected subject alessandro, got %q", sub)
	}
}

func TestTokenFailuresCollapse(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	expired := NewTokenService("test-secret", -time.Hour)
	expiredToken, err := expired.Issue("alessandro")
	if err != nil {
		t.Fatal(err)
	}

	otherKey := NewTokenService("other-secret", time.Hour)
	forged, err := otherKey.Issue("alessandro")
	if err != nil {
		t.Fatal(err)
	}

	// Wrong algorithm family: RS256 header with no valid signature.
	noneAlg := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "alessandro",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	unsigned, err := noneAlg.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	// Valid signature but no subject claim.
	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	noSubToken, err := noSub.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	// Valid signature but no expiry claim.
	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alessandro",
	})
	noExpToken, err := noExp.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]string{
		"expired":      expiredToken,
		"forged":       forged,
		"unsigned":     unsigned,
		"missing sub":  noSubToken,
		"missing exp":  noExpToken,
		"malformed":    "not.a.token",
		"empty string": "",
	}
	for name, token := range cases {
		if _, err := svc.Verify(token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
}

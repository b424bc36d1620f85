package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quizhub-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Hour)
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	token, expires, err := issuer.Issue(domain.User{ID: "u1", Username: "alice"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expires.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", expires)
	}

	id, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.UserID != "u1" || id.Username != "alice" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestTokenRejected(t *testing.T) {
	issuer, _ := NewTokenIssuer("secret", time.Hour)
	other, _ := NewTokenIssuer("other", time.Hour)
	token, _, _ := other.Issue(domain.User{ID: "u1"})

	if _, err := issuer.Verify(token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated for foreign signature, got %v", err)
	}
	if _, err := issuer.Verify("garbage"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated for garbage, got %v", err)
	}

	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, _ := issuer.Issue(domain.User{ID: "u1"})
	issuer.now = time.Now
	if _, err := issuer.Verify(expired); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated for expired token, got %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := issuer.Verify(unsigned); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated for unsigned token, got %v", err)
	}
}

func TestNewTokenIssuerNeedsSecret(t *testing.T) {
	if _, err := NewTokenIssuer("", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: 4}
	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse" {
		t.Fatalf("hash must differ from password")
	}
	if err := h.Compare(hash, "correct horse"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := h.Compare(hash, "wrong"); err == nil {
		t.Fatalf("expected mismatch")
	}
}

func TestIdentityContext(t *testing.T) {
	if _, ok := CurrentIdentity(context.Background()); ok {
		t.Fatalf("expected no identity")
	}
	ctx := ContextWithIdentity(context.Background(), Identity{UserID: "u1"})
	id, ok := CurrentIdentity(ctx)
	if !ok || id.UserID != "u1" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

package service

import (
	"errors"
	"strings"
	"testing"
)

func TestCorrelationTokenRoundTrip(t *testing.T) {
	signer := NewCorrelationSigner("correlation-test-secret", 72)

	token, err := signer.Sign("ck_abc123", 7, 3, 42)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	claims, err := signer.Parse(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.ClickID != "ck_abc123" || claims.TaskID != 7 || claims.LockerID != 3 || claims.PublisherID != 42 {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestCorrelationTokenTamperRejected(t *testing.T) {
	signer := NewCorrelationSigner("correlation-test-secret", 72)

	token, err := signer.Sign("ck_abc123", 7, 3, 42)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %s", token)
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	if _, err := signer.Parse(tampered); !errors.Is(err, ErrInvalidCorrelation) {
		t.Fatalf("expected invalid correlation for tampered token, got %v", err)
	}
}

func TestCorrelationTokenWrongSecretRejected(t *testing.T) {
	signer := NewCorrelationSigner("correlation-test-secret", 72)
	other := NewCorrelationSigner("another-secret", 72)

	token, err := signer.Sign("ck_abc123", 7, 3, 42)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := other.Parse(token); !errors.Is(err, ErrInvalidCorrelation) {
		t.Fatalf("expected invalid correlation for wrong secret, got %v", err)
	}
}

func TestCorrelationTokenEmptyRejected(t *testing.T) {
	signer := NewCorrelationSigner("correlation-test-secret", 72)

	if _, err := signer.Parse(""); !errors.Is(err, ErrInvalidCorrelation) {
		t.Fatalf("expected invalid correlation for empty token, got %v", err)
	}
	if _, err := signer.Parse("   "); !errors.Is(err, ErrInvalidCorrelation) {
		t.Fatalf("expected invalid correlation for blank token, got %v", err)
	}
}

func TestCorrelationTokenMissingClaimsRejected(t *testing.T) {
	signer := NewCorrelationSigner("correlation-test-secret", 72)

	token, err := signer.Sign("", 7, 3, 42)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := signer.Parse(token); !errors.Is(err, ErrInvalidCorrelation) {
		t.Fatalf("expected invalid correlation for empty click_id claim, got %v", err)
	}

	token, err = signer.Sign("ck_abc123", 0, 3, 42)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := signer.Parse(token); !errors.Is(err, ErrInvalidCorrelation) {
		t.Fatalf("expected invalid correlation for missing task claim, got %v", err)
	}
}

package service

import (
	"testing"

	"github.com/orderflow-next/internal/config"
	"github.com/orderflow-next/internal/constants"
)

func newTestTokenService() *ActorTokenService {
	return NewActorTokenService(config.JWTConfig{SecretKey: "test-secret", ExpireHours: 1, Issuer: "orderflow-test"})
}

func TestActorTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService()
	token, expiresAt, err := svc.Issue(constants.ActorRoleStaff, 42, 3)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if expiresAt.IsZero() {
		t.Fatalf("expected expiry")
	}
	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.Role != constants.ActorRoleStaff || claims.ActorID != 42 || claims.StoreID != 3 {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestActorTokenRejectsStaffWithoutStore(t *testing.T) {
	svc := newTestTokenService()
	if _, _, err := svc.Issue(constants.ActorRoleStaff, 42, 0); err == nil {
		t.Fatalf("staff token without store should fail")
	}
	if _, _, err := svc.Issue(constants.ActorRoleCustomer, 7, 0); err != nil {
		t.Fatalf("customer token without store should succeed: %v", err)
	}
	if _, _, err := svc.Issue(constants.ActorRoleSystem, 1, 0); err == nil {
		t.Fatalf("system role cannot be issued")
	}
}

func TestActorTokenRejectsForeignSignature(t *testing.T) {
	other := NewActorTokenService(config.JWTConfig{SecretKey: "other-secret", Issuer: "orderflow-test"})
	token, _, err := other.Issue(constants.ActorRoleCustomer, 7, 0)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := newTestTokenService().Parse(token); err != ErrActorTokenInvalid {
		t.Fatalf("expected ErrActorTokenInvalid, got %v", err)
	}
	if _, err := newTestTokenService().Parse("not-a-token"); err != ErrActorTokenInvalid {
		t.Fatalf("expected ErrActorTokenInvalid for garbage, got %v", err)
	}
}

package auth_test

import (
	"errors"
	"testing"

	"github.com/quizgrid/backend/internal/auth"
	"github.com/quizgrid/backend/internal/models"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := auth.NewJWTService("test-secret", 1)

	token, err := svc.Generate("alice", models.RoleTeacher, 42)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.Username != "alice" {
		t.Fatalf("expected username alice, got %q", claims.Username)
	}
	if !claims.Role.Equals(models.RoleTeacher) {
		t.Fatalf("expected role TEACHER, got %q", claims.Role)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Subject != "alice" {
		t.Fatalf("expected subject alice, got %q", claims.Subject)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := auth.NewJWTService("test-secret", -1)

	token, err := svc.Generate("alice", models.RoleStudent, 1)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := svc.Validate(token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewJWTService("secret-a", 1)
	verifier := auth.NewJWTService("secret-b", 1)

	token, err := issuer.Generate("alice", models.RoleStudent, 1)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := verifier.Validate(token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := auth.NewJWTService("test-secret", 1)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Validate(token); !errors.Is(err, auth.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskboard/internal/repository"
	"taskboard/internal/storetest"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func newAuth(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(storetest.NewMemory().Users(), NewTokenIssuer("test-secret", time.Hour), bcrypt.MinCost)
}

func TestRegisterLoginResolve(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()

	u, token, err := svc.Register(ctx, RegisterInput{Email: " Ana@Example.com ", Name: "Ana", Password: "correct horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "ana@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.PasswordHash == "correct horse" {
		t.Fatalf("password must be hashed")
	}

	resolved, err := svc.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ID != u.ID {
		t.Fatalf("resolved user %d; want %d", resolved.ID, u.ID)
	}

	_, token2, err := svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token2 == "" {
		t.Fatalf("expected token")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()
	in := RegisterInput{Email: "dup@example.com", Password: "password1"}

	if _, _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, _, err := svc.Register(ctx, in)
	if !errors.Is(err, repository.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
	if Classify(err) != KindConflict {
		t.Fatalf("expected conflict, got %s", Classify(err))
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuth(t)
	cases := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"bad email", RegisterInput{Email: "nope", Password: "password1"}, "email"},
		{"short password", RegisterInput{Email: "a@example.com", Password: "short"}, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tc.in)
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tc.field {
				t.Fatalf("expected %s validation error, got %v", tc.field, err)
			}
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()
	if _, _, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "password1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(ctx, LoginInput{Email: "a@example.com", Password: "password2"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, LoginInput{Email: "b@example.com", Password: "password1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email should look like a wrong password, got %v", err)
	}
}

func TestResolveUnknownUser(t *testing.T) {
	svc := newAuth(t)
	token, err := svc.Tokens().Generate(999)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Generate(7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	id, err := issuer.Parse(token)
	if err != nil || id != 7 {
		t.Fatalf("parse: id=%d err=%v", id, err)
	}

	if _, err := NewTokenIssuer("other", time.Hour).Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for wrong secret, got %v", err)
	}
	if _, err := issuer.Parse("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestTokenIssuerRejectsExpired(t *testing.T) {
	claims := jwt.MapClaims{
		"user_id": 7,
		"exp":     time.Now().Add(-time.Minute).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokenIssuer("secret", time.Hour).Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestTokenIssuerRejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.MapClaims{
		"user_id": 7,
		"exp":     time.Now().Add(time.Minute).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokenIssuer("secret", time.Hour).Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected HS512 token to be rejected, got %v", err)
	}
}

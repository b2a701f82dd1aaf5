package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tutorpaes/tutor-backend/internal/config"
	"github.com/tutorpaes/tutor-backend/internal/model"
	"github.com/tutorpaes/tutor-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) (*AuthService, *repository.MemoryStore) {
	t.Helper()
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour, BcryptCost: bcrypt.MinCost}
	store := repository.NewMemoryStore()
	auth := NewAuthService(cfg, nil, store)

	for _, u := range []struct {
		email  string
		active bool
		admin  bool
	}{
		{"ana@example.com", true, false},
		{"profe@example.com", true, true},
		{"baja@example.com", false, false},
	} {
		hash, err := auth.HashPassword("secreto123")
		if err != nil {
			t.Fatal(err)
		}
		if err := store.Create(context.Background(), &model.User{
			Email: u.email, Name: u.email, PasswordHash: hash, IsActive: u.active, IsAdmin: u.admin,
		}); err != nil {
			t.Fatal(err)
		}
	}
	return auth, store
}

func TestLogin(t *testing.T) {
	auth, _ := newAuthFixture(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		email     string
		password  string
		wantErr   error
		wantAdmin bool
	}{
		{"learner", "ana@example.com", "secreto123", nil, false},
		{"admin", "profe@example.com", "secreto123", nil, true},
		{"wrong password", "ana@example.com", "otra-clave", ErrInvalidCredentials, false},
		{"unknown email", "nadie@example.com", "secreto123", ErrInvalidCredentials, false},
		{"inactive user", "baja@example.com", "secreto123", ErrInvalidCredentials, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := auth.Login(ctx, &model.LoginRequest{Email: tt.email, Password: tt.password})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if resp.TokenType != "bearer" || resp.User.Email != tt.email {
				t.Errorf("resp = %+v", resp)
			}

			claims, err := auth.ValidateToken(resp.AccessToken)
			if err != nil {
				t.Fatalf("ValidateToken: %v", err)
			}
			if claims.UserID != resp.User.ID || claims.IsAdmin != tt.wantAdmin || claims.ID == "" {
				t.Errorf("claims = %+v", claims)
			}
			if err := auth.ValidateSession(ctx, claims.UserID, claims.ID); err != nil {
				t.Errorf("ValidateSession without redis: %v", err)
			}
		})
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	auth, _ := newAuthFixture(t)
	resp, err := auth.Login(context.Background(), &model.LoginRequest{Email: "ana@example.com", Password: "secreto123"})
	if err != nil {
		t.Fatal(err)
	}

	other := NewAuthService(&config.Config{JWTSecret: "another-secret", JWTExpiry: time.Hour}, nil, nil)
	if _, err := other.ValidateToken(resp.AccessToken); err == nil {
		t.Error("token signed with a different secret was accepted")
	}

	parts := strings.Split(resp.AccessToken, ".")
	parts[2] = strings.Repeat("A", len(parts[2]))
	if _, err := auth.ValidateToken(strings.Join(parts, ".")); err == nil {
		t.Error("token with forged signature was accepted")
	}

	expired := NewAuthService(&config.Config{JWTSecret: "test-secret", JWTExpiry: -time.Minute}, nil, nil)
	token, err := expired.GenerateToken(context.Background(), &model.User{ID: 7})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.ValidateToken(token); err == nil {
		t.Error("expired token was accepted")
	}
}

func TestMe(t *testing.T) {
	auth, store := newAuthFixture(t)
	ctx := context.Background()

	u, _ := store.GetByEmail(ctx, "ana@example.com")
	got, err := auth.Me(ctx, u.ID)
	if err != nil || got.Email != u.Email {
		t.Fatalf("Me = %+v, %v", got, err)
	}
	if _, err := auth.Me(ctx, 9999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

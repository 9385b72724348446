package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arnavshah/meeting-rotation-api/pkg/config"
	"github.com/arnavshah/meeting-rotation-api/pkg/database"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func testManager() *Manager {
	return NewManager(config.AuthConfig{
		JWTSecret:     "jwt-secret-for-tests",
		MasterSecret:  "master-secret-for-tests",
		AdminUsername: "root",
		AdminPassword: "hunter22",
		TokenTTL:      time.Hour,
		BcryptCost:    bcrypt.MinCost,
	})
}

func TestToken_RoundTrip(t *testing.T) {
	m := testManager()
	token, err := m.CreateToken("root")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	claims, err := m.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.Username != "root" {
		t.Errorf("Expected username root, got %s", claims.Username)
	}

	other := NewManager(config.AuthConfig{JWTSecret: "a-different-secret!"})
	if _, err := other.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for a foreign secret, got %v", err)
	}
}

func TestToken_Expired(t *testing.T) {
	m := testManager()
	m.cfg.TokenTTL = -time.Minute
	token, err := m.CreateToken("root")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	if _, err := m.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected expired token to fail, got %v", err)
	}
}

func TestKey_RoundTrip(t *testing.T) {
	m := testManager()
	key, err := m.GenerateKey("north-hall")
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	ws, err := m.VerifyKey(key)
	if err != nil || ws != "north-hall" {
		t.Errorf("Expected north-hall, got %q %v", ws, err)
	}

	for _, bad := range []string{"", "north-hall", "north-hall.deadbeef", "other." + key[len("north-hall."):], "a.b.c"} {
		if _, err := m.VerifyKey(bad); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Expected ErrInvalidKey for %q, got %v", bad, err)
		}
	}

	if _, err := m.GenerateKey("with.dot"); err == nil {
		t.Error("Expected error for workspace containing a dot")
	}
}

func TestEnsureAdmin(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{Path: ":memory:"}, zap.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	store := database.NewStore(db)
	m := testManager()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := m.EnsureAdmin(ctx, store, zap.NewNop()); err != nil {
			t.Fatalf("EnsureAdmin: %v", err)
		}
	}
	if n, _ := store.CountUsers(ctx); n != 1 {
		t.Errorf("Expected exactly one admin, got %d", n)
	}
	user, err := store.FindUser(ctx, "root")
	if err != nil {
		t.Fatalf("FindUser: %v", err)
	}
	if !CheckPasswordHash("hunter22", user.PasswordHash) {
		t.Error("Expected stored hash to match configured password")
	}
}

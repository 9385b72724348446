// Package auth issues admin tokens and workspace API keys.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/arnavshah/meeting-rotation-api/pkg/config"
	"github.com/arnavshah/meeting-rotation-api/pkg/database"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidKey   = errors.New("invalid api key")
)

var jwtAlgorithm = jwt.SigningMethodHS256

// Claims represents the JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager signs and verifies credentials with the configured secrets
type Manager struct {
	cfg config.AuthConfig
}

// NewManager returns a Manager for cfg
func NewManager(cfg config.AuthConfig) *Manager {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 14
	}
	return &Manager{cfg: cfg}
}

// HashPassword hashes a password using bcrypt
func (m *Manager) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), m.cfg.BcryptCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a new JWT token for a user
func (m *Manager) CreateToken(username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString([]byte(m.cfg.JWTSecret))
}

// VerifyToken verifies a JWT token
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, ErrInvalidToken
		}
		return []byte(m.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *Manager) sign(workspace string) string {
	h := hmac.New(sha256.New, []byte(m.cfg.MasterSecret))
	h.Write([]byte(workspace))
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateKey creates a signed API key "<workspace>.<hex hmac>"
func (m *Manager) GenerateKey(workspace string) (string, error) {
	if workspace == "" || strings.Contains(workspace, ".") {
		return "", errors.New("workspace must be non-empty and contain no dots")
	}
	return workspace + "." + m.sign(workspace), nil
}

// VerifyKey validates an HMAC-signed API key and returns its workspace
func (m *Manager) VerifyKey(key string) (string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 || parts[0] == "" {
		return "", ErrInvalidKey
	}

	workspace, provided := parts[0], parts[1]

	// constant-time comparison
	if !hmac.Equal([]byte(provided), []byte(m.sign(workspace))) {
		return "", ErrInvalidKey
	}
	return workspace, nil
}

// EnsureAdmin creates the configured admin when no admin exists yet
func (m *Manager) EnsureAdmin(ctx context.Context, store *database.Store, logger *zap.Logger) error {
	count, err := store.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username := m.cfg.AdminUsername
	if username == "" {
		username = "admin"
	}
	hash, err := m.HashPassword(m.cfg.AdminPassword)
	if err != nil {
		return err
	}

	if err := store.CreateUser(ctx, &database.MasterUser{Username: username, PasswordHash: hash}); err != nil {
		return err
	}
	logger.Info("default admin user created", zap.String("username", username))
	return nil
}

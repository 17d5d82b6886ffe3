// Package jwt issues and verifies the HS256 tokens used by the API.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"coachdesk/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the token subject. Exactly one of AdminID and StudentID is set,
// matching Role.
type Claims struct {
	AdminID   uint        `json:"admin_id,omitempty"`
	StudentID uint        `json:"student_id,omitempty"`
	Role      models.Role `json:"role"`
	jwt.RegisteredClaims
}

// SubjectID returns the id of the admin or student the token was issued to.
func (c *Claims) SubjectID() uint {
	if c.Role == models.RoleAdmin {
		return c.AdminID
	}
	return c.StudentID
}

// Manager creates and checks tokens.
type Manager struct {
	secretKey     []byte
	tokenLifetime time.Duration
	now           func() time.Time
}

// NewManager creates a token manager. lifetime is usually 24h.
func NewManager(secretKey string, lifetime time.Duration) *Manager {
	return &Manager{
		secretKey:     []byte(secretKey),
		tokenLifetime: lifetime,
		now:           time.Now,
	}
}

// GenerateToken signs a token for the given role and subject id.
func (m *Manager) GenerateToken(role models.Role, subjectID uint) (string, error) {
	now := m.now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	switch role {
	case models.RoleAdmin:
		claims.AdminID = subjectID
	case models.RoleStudent:
		claims.StudentID = subjectID
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry and returns the claims.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	if claims.Role != models.RoleAdmin && claims.Role != models.RoleStudent {
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}
	if claims.SubjectID() == 0 {
		return nil, errors.New("token has no subject")
	}

	return claims, nil
}

package jwt

import (
	"testing"
	"time"

	"coachdesk/internal/models"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("secret", 24*time.Hour)

	token, err := m.GenerateToken(models.RoleStudent, 42)
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, uint(42), claims.StudentID)
	assert.Zero(t, claims.AdminID)
	assert.Equal(t, uint(42), claims.SubjectID())
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestAdminClaims(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, err := m.GenerateToken(models.RoleAdmin, 1)
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.AdminID)
	assert.Equal(t, uint(1), claims.SubjectID())
}

func TestParseRejects(t *testing.T) {
	m := NewManager("secret", time.Hour)
	valid, err := m.GenerateToken(models.RoleAdmin, 1)
	require.NoError(t, err)

	expiredManager := NewManager("secret", time.Hour)
	expiredManager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredManager.GenerateToken(models.RoleAdmin, 1)
	require.NoError(t, err)

	otherKey, err := NewManager("other", time.Hour).GenerateToken(models.RoleAdmin, 1)
	require.NoError(t, err)

	none, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, &Claims{Role: models.RoleAdmin, AdminID: 1}).
		SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &Claims{Role: models.RoleAdmin}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"tampered", valid + "x"},
		{"expired", expired},
		{"wrong key", otherKey},
		{"alg none", none},
		{"no subject", noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.ParseToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestGenerateRejectsUnknownRole(t *testing.T) {
	_, err := NewManager("secret", time.Hour).GenerateToken(models.Role("guest"), 1)
	assert.Error(t, err)
}

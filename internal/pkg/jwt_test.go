package pkg

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-for-testing-only"

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)

	token, err := m.GenerateAccessToken(42, "teacher")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "teacher", claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "akademi", claims.Issuer)
}

func TestParseAccessToken_Errors(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	valid, err := m.GenerateAccessToken(1, "student")
	require.NoError(t, err)

	expired := NewTokenManager(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.GenerateAccessToken(1, "student")
	require.NoError(t, err)

	otherSecret, err := NewTokenManager("another-secret-key-for-tests", time.Hour).GenerateAccessToken(1, "student")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1, Role: "superadmin"})
	noneToken, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"空令牌", "", ErrInvalidToken},
		{"格式错误", "not.a.jwt", ErrInvalidToken},
		{"篡改令牌", valid + "x", ErrInvalidToken},
		{"过期令牌", expiredToken, ErrExpiredToken},
		{"错误密钥", otherSecret, ErrInvalidToken},
		{"none 算法", noneToken, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := m.ParseAccessToken(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", hash)
	assert.True(t, CheckPassword(hash, "Secret123"))
	assert.False(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword("not-a-hash", "Secret123"))
}

func TestGenerateRandomToken(t *testing.T) {
	a, err := GenerateRandomToken()
	require.NoError(t, err)
	b, err := GenerateRandomToken()
	require.NoError(t, err)

	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm 翻译后的错误", gorm.ErrDuplicatedKey, true},
		{"包装后的 gorm 错误", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"postgres 23505", &pgconn.PgError{Code: "23505"}, true},
		{"postgres 其他错误", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite 原始错误", errors.New("UNIQUE constraint failed: enrollments.student_id, enrollments.course_id"), true},
		{"其他错误", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

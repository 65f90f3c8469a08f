package service

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todolite/todolite/internal/apperr"
	"github.com/todolite/todolite/internal/config"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestJWTService(t *testing.T, expiry time.Duration) *JWTService {
	t.Helper()
	svc, err := NewJWTService(&config.JWTConfig{
		SecretKey:    strings.Repeat("s", 32),
		AccessExpiry: expiry,
	}, testLogger())
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	_, err := NewJWTService(&config.JWTConfig{
		SecretKey:    "too-short",
		AccessExpiry: time.Hour,
	}, testLogger())
	assert.Error(t, err)
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestJWTService(t, time.Hour)

	token, err := svc.CreateToken("test")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	username, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "test", username)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := newTestJWTService(t, -time.Minute)

	token, err := svc.CreateToken("test")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
}

func TestJWTService_MalformedToken(t *testing.T) {
	svc := newTestJWTService(t, time.Hour)

	_, err := svc.VerifyToken("not.a.jwt")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
}

func TestJWTService_WrongSecret(t *testing.T) {
	svc := newTestJWTService(t, time.Hour)

	other, err := NewJWTService(&config.JWTConfig{
		SecretKey:    strings.Repeat("o", 32),
		AccessExpiry: time.Hour,
	}, testLogger())
	require.NoError(t, err)

	token, err := other.CreateToken("test")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
}

func TestJWTService_TamperedToken(t *testing.T) {
	svc := newTestJWTService(t, time.Hour)

	token, err := svc.CreateToken("test")
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "aaaa"
	_, err = svc.VerifyToken(tampered)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
}

package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/todolite/todolite/internal/apperr"
	"github.com/todolite/todolite/internal/config"
)

// OTPCache is the slice of the redis client the OTP store needs. The store
// relies entirely on the cache's key expiry: an expired code is
// indistinguishable from one that was never issued.
type OTPCache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

type OTPService struct {
	cache  OTPCache
	cfg    *config.OTPConfig
	logger *logrus.Logger
}

func NewOTPService(cache OTPCache, cfg *config.OTPConfig, logger *logrus.Logger) *OTPService {
	return &OTPService{
		cache:  cache,
		cfg:    cfg,
		logger: logger,
	}
}

// Issue generates a fresh numeric code and stores it keyed by email with the
// configured TTL. A code already on record for that email is overwritten and
// its TTL reset.
func (s *OTPService) Issue(ctx context.Context, email string) (string, error) {
	otp, err := generateRandomOTP(s.cfg.Length)
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	key := otpKey(email)
	if err := s.cache.Set(ctx, key, otp, s.cfg.Expiry).Err(); err != nil {
		s.logger.WithError(err).Error("Failed to store OTP in Redis")
		return "", fmt.Errorf("failed to store OTP: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"email": email,
		"otp":   otp,
	}).Info("OTP generated (logged for development)")

	return otp, nil
}

// Get returns the live code for the email, or apperr.ErrValidation when no
// code is on record or its TTL elapsed.
func (s *OTPService) Get(ctx context.Context, email string) (string, error) {
	otp, err := s.cache.Get(ctx, otpKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: OTP not found or expired", apperr.ErrValidation)
	}
	if err != nil {
		s.logger.WithError(err).Error("Failed to get OTP from Redis")
		return "", fmt.Errorf("failed to get OTP: %w", err)
	}

	return otp, nil
}

// Verify compares the candidate against the stored code numerically. The
// code stays on record after a successful verification until its TTL
// elapses; it is only ever consumed by expiry.
func (s *OTPService) Verify(ctx context.Context, email string, candidate int64) error {
	otp, err := s.Get(ctx, email)
	if err != nil {
		return err
	}

	stored, err := strconv.ParseInt(otp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed OTP on record", apperr.ErrValidation)
	}

	if stored != candidate {
		return fmt.Errorf("%w: OTP mismatch", apperr.ErrValidation)
	}

	return nil
}

// TTL reports how long an issued code stays live.
func (s *OTPService) TTL() time.Duration {
	return s.cfg.Expiry
}

func otpKey(email string) string {
	return fmt.Sprintf("otp:%s", email)
}

// generateRandomOTP draws a code in [10^(length-1), 10^length) so the digit
// count is fixed and numeric comparison never sees leading zeros.
func generateRandomOTP(length int) (string, error) {
	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length-1)), nil)
	span := new(big.Int).Mul(low, big.NewInt(9))

	num, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}

	return num.Add(num, low).String(), nil
}

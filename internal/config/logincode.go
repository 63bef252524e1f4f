package config

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// LoginCodeLength is the number of digits in a one-time login code.
const LoginCodeLength = 6

// LoginCodeConfig holds configuration for issuing and checking one-time login codes.
type LoginCodeConfig struct {
	BcryptCost  int
	TTL         time.Duration
	MaxAttempts int
}

// NewLoginCodeConfig creates a login code configuration from environment variables.
// It reads LOGIN_CODE_BCRYPT_COST (default: 10), LOGIN_CODE_TTL_MINUTES (default: 10)
// and LOGIN_CODE_MAX_ATTEMPTS (default: 5).
func NewLoginCodeConfig() (*LoginCodeConfig, error) {
	cost, err := envInt("LOGIN_CODE_BCRYPT_COST", 10)
	if err != nil {
		return nil, err
	}
	ttl, err := envInt("LOGIN_CODE_TTL_MINUTES", 10)
	if err != nil {
		return nil, err
	}
	attempts, err := envInt("LOGIN_CODE_MAX_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}

	config := &LoginCodeConfig{
		BcryptCost:  cost,
		TTL:         time.Duration(ttl) * time.Minute,
		MaxAttempts: attempts,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

func envInt(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return v, nil
}

// normalize validates the configuration.
func (c *LoginCodeConfig) normalize() error {
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be %d-14)", c.BcryptCost, bcrypt.MinCost)
	}
	if c.TTL < time.Minute || c.TTL > time.Hour {
		return fmt.Errorf("login code TTL out of range: %s (must be 1m-1h)", c.TTL)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("login code max attempts must be at least 1, got: %d", c.MaxAttempts)
	}
	return nil
}

// GenerateCode returns a random numeric code of LoginCodeLength digits.
func (c *LoginCodeConfig) GenerateCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < LoginCodeLength; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate login code: %w", err)
	}
	return fmt.Sprintf("%0*d", LoginCodeLength, n.Int64()), nil
}

// HashCode hashes a login code using bcrypt.
func (c *LoginCodeConfig) HashCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash login code: %w", err)
	}
	return string(hash), nil
}

// VerifyCode reports whether code matches a stored hash.
func (c *LoginCodeConfig) VerifyCode(code, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(code)) == nil
}

// ExpiresAt returns the expiry time of a code issued at now.
func (c *LoginCodeConfig) ExpiresAt(now time.Time) time.Time {
	return now.Add(c.TTL)
}

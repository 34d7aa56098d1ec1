package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	secretKey []byte
	tokenTTL  = 7 * 24 * time.Hour
	issuer    = "go2motion"
)

// ErrInvalidToken covers malformed, expired and wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the payload of an access token.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Configure sets the signing key and lifetime. An empty secret makes the process
// generate a random one, which invalidates tokens on every restart.
func Configure(secret string, ttl time.Duration, iss string) (generated bool, err error) {
	if ttl > 0 {
		tokenTTL = ttl
	}
	if iss != "" {
		issuer = iss
	}
	if secret != "" {
		secretKey = []byte(secret)
		return false, nil
	}
	return true, GenerateSecretKey()
}

// GenerateSecretKey installs a random 32-byte signing key.
func GenerateSecretKey() error {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("cannot generate signing key: %w", err)
	}
	secretKey = key
	return nil
}

// Issue signs an access token for the given identity.
func Issue(userID, email, role string) (string, error) {
	if len(secretKey) == 0 {
		return "", errors.New("token signing key not configured")
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
}

// Parse validates the signature, algorithm and expiry of raw.
func Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

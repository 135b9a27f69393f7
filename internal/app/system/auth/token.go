package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultExpiry matches the lifetime clients were built against.
const DefaultExpiry = 360000 * time.Second

// MinSecretLength is the shortest signing secret accepted outside dev.
const MinSecretLength = 32

// ErrInvalidToken is returned by Parse for any token that fails verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the JWT claims issued at register/login. Subject holds the user
// id as hex.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	expiry time.Duration
	log    *zap.Logger
	now    func() time.Time
}

// NewTokenManager validates the secret and builds a manager. A zero expiry
// falls back to DefaultExpiry.
func NewTokenManager(secret string, expiry time.Duration, logger *zap.Logger) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty; provide ≥%d random chars", MinSecretLength)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(secret) < MinSecretLength {
		logger.Warn("jwt secret is short; 32+ chars recommended", zap.Int("length", len(secret)))
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
		log:    logger,
		now:    time.Now,
	}, nil
}

// Expiry returns the configured token lifetime.
func (m *TokenManager) Expiry() time.Duration { return m.expiry }

// Issue signs a token bound to userID.
func (m *TokenManager) Issue(userID primitive.ObjectID, email string) (string, error) {
	now := m.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies the signature, algorithm and expiry of raw.
func (m *TokenManager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

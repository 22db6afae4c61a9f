package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config holds access-token settings.
type Config struct {
	SigningKey string        `env:"JWT_SIGNING_KEY,required"` // SigningKey is the HMAC secret used to sign access tokens.
	Issuer     string        `env:"JWT_ISSUER" envDefault:"blogkit"`
	TTL        time.Duration `env:"JWT_TTL" envDefault:"24h"`
}

// Service generates and validates access tokens using HMAC-SHA256.
// The signing key is kept in memory only and is read-only after construction.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

// New creates an access-token service. The key should be at least 32 bytes
// for adequate security with HMAC-SHA256.
func New(cfg Config) (*Service, error) {
	if cfg.SigningKey == "" {
		return nil, ErrMissingSigningKey
	}

	return &Service{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		ttl:        cfg.TTL,
	}, nil
}

// Generate creates a signed access token for the given user id.
func (s *Service) Generate(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// Parse validates a token string and returns the embedded user id.
// Signature, algorithm, issuer, and expiry are all checked; failures map to
// package sentinels so callers can distinguish "expired" from "forged".
func (s *Service) Parse(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnexpectedSigningMethod
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, errors.Join(ErrExpiredToken, err)
		}
		return uuid.Nil, errors.Join(ErrInvalidToken, err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return uuid.Nil, ErrInvalidSubject
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalidSubject, err)
	}

	return userID, nil
}

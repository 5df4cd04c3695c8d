package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/identitykit/account-service/internal/core/domain/verification"
	"github.com/identitykit/account-service/internal/core/ports"
)

// tokenClaims is the wire shape of a verification token's payload.
type tokenClaims struct {
	Email string `json:"email"`
	Type  string `json:"type"`
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// TokenService mints and validates HS256-signed verification tokens. Token
// contents are not confidential, only tamper-evident and expiry-enforced.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	random io.Reader
}

// NewTokenService creates a token service. random is the entropy source for
// nonces; pass nil for crypto/rand.
func NewTokenService(secret string, ttl time.Duration, random io.Reader) ports.TokenService {
	if random == nil {
		random = rand.Reader
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		random: random,
	}
}

// Generate mints a signed token for email+type. The nonce makes two tokens
// issued for the same email, type and expiry window distinct.
func (s *TokenService) Generate(email string, typ verification.Type) (string, error) {
	nonce := make([]byte, 8)
	if _, err := io.ReadFull(s.random, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := time.Now()
	claims := &tokenClaims{
		Email: email,
		Type:  typ.String(),
		Nonce: hex.EncodeToString(nonce),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign verification token: %w", err)
	}

	return signed, nil
}

// Validate checks signature and expiry and returns the parsed claims.
// Signature and structural failures map to ErrTokenInvalid, expiry to
// ErrTokenExpired; the facade merges both before they reach a caller.
func (s *TokenService) Validate(tokenString string) (*verification.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC (prevent alg confusion)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, verification.ErrTokenExpired
		}
		return nil, verification.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, verification.ErrTokenInvalid
	}

	typ := verification.Type(claims.Type)
	if claims.Email == "" || claims.Type == "" || !typ.IsValid() {
		return nil, verification.ErrTokenInvalid
	}

	parsed := &verification.Claims{
		Email: claims.Email,
		Type:  typ,
		Nonce: claims.Nonce,
	}
	if claims.ExpiresAt != nil {
		parsed.ExpiresAt = claims.ExpiresAt.Time
	}

	return parsed, nil
}

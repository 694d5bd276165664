// Package auth issues and validates the access and refresh JWTs handed out
// after a successful phone verification.
//
// Each token kind has its own HMAC secret and lifetime. Tokens also carry an
// explicit "typ" claim, so a refresh token can never pass as an access token
// even when both secrets happen to be configured equal.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/healthtracker/internal/server/config"
	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes access tokens from refresh tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenKind        = errors.New("unexpected token kind")
	ErrTokenExpired     = errors.New("token expired")
	ErrMalformedToken   = errors.New("malformed token")
	ErrUnknownKind      = errors.New("unknown token kind")
)

// Claims is the signed payload: {sub, exp, typ}.
type Claims struct {
	jwt.RegisteredClaims
	Kind Kind `json:"typ"`
}

type keyset struct {
	secret []byte
	ttl    time.Duration
}

// TokenIssuer signs and verifies tokens. It holds no mutable state and is
// safe for concurrent use.
type TokenIssuer struct {
	method jwt.SigningMethod
	keys   map[Kind]keyset
	now    func() time.Time
}

// Option customizes a TokenIssuer.
type Option func(*TokenIssuer)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(ti *TokenIssuer) { ti.now = now }
}

// NewTokenIssuer builds an issuer from the server configuration.
func NewTokenIssuer(cfg *config.Config, opts ...Option) (*TokenIssuer, error) {
	method := jwt.GetSigningMethod(cfg.SigningAlgorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.SigningAlgorithm)
	}

	ti := &TokenIssuer{
		method: method,
		keys: map[Kind]keyset{
			KindAccess:  {secret: []byte(cfg.AccessSecretKey), ttl: cfg.AccessTokenValidityDuration},
			KindRefresh: {secret: []byte(cfg.RefreshSecretKey), ttl: cfg.RefreshTokenValidityDuration},
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(ti)
	}
	return ti, nil
}

// Issue returns a signed token of the given kind for subject, expiring after
// the kind's configured lifetime.
func (ti *TokenIssuer) Issue(subject string, kind Kind) (string, error) {
	ks, ok := ti.keys[kind]
	if !ok {
		return "", ErrUnknownKind
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(ti.now().Add(ks.ttl)),
		},
		Kind: kind,
	}

	token, err := jwt.NewWithClaims(ti.method, claims).SignedString(ks.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Validate checks token against the secret of the expected kind and returns
// its subject.
//
// Signature is checked first, so a token signed with the other kind's secret
// fails with ErrInvalidSignature even if it is also expired.
func (ti *TokenIssuer) Validate(token string, expected Kind) (string, error) {
	ks, ok := ti.keys[expected]
	if !ok {
		return "", ErrUnknownKind
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return ks.secret, nil },
		jwt.WithValidMethods([]string{ti.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return "", classify(err)
	}

	if claims.Subject == "" {
		return "", ErrMalformedToken
	}
	if claims.Kind != expected {
		return "", ErrTokenKind
	}

	return claims.Subject, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}

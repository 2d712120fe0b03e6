package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/keyxmakerx/hackhub/internal/apperror"
)

// TokenTTL is the fixed lifetime of a session token and its cookie.
const TokenTTL = 7 * 24 * time.Hour

const (
	// tokenTimePrecision is the resolution of iat and exp.
	tokenTimePrecision = time.Microsecond

	// issuedAtSkew is how far in the future iat may be before a token is
	// rejected as not yet active.
	issuedAtSkew = time.Second
)

func init() {
	jwt.TimePrecision = tokenTimePrecision
}

var (
	// ErrInvalidToken covers bad signatures, malformed tokens, unexpected
	// algorithms, and tokens without a subject.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned once the current time passes exp.
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenNotActive is returned for tokens issued in the future. It is
	// deliberately not one of the client-facing 401 classes.
	ErrTokenNotActive = errors.New("token not active yet")

	// ErrTokenRevoked is returned for a signed, unexpired token that was
	// logged out.
	ErrTokenRevoked = errors.New("token revoked")
)

// TokenIssuer signs and verifies session tokens. The claim set is exactly
// {sub, iat, exp}; nothing else about the user travels in the cookie.
//
// Every token an issuer hands out has a distinct iat: if the clock has not
// moved past the previous iat, the new one is advanced by one tick.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu         sync.Mutex
	lastIssued time.Time
}

// NewTokenIssuer creates an issuer for the given HMAC secret. An empty
// secret is a configuration error; there is no unsigned fallback.
func NewTokenIssuer(secret string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, apperror.NewConfig("JWT_SECRET")
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    TokenTTL,
		now:    time.Now,
	}, nil
}

// Issue returns a signed HS256 token for userID expiring TokenTTL from now.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("issuing token: empty user id")
	}

	issuedAt := t.nextIssuedAt()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(t.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// nextIssuedAt returns the current time, or one tick after the last issued
// iat when the clock has not advanced past it.
func (t *TokenIssuer) nextIssuedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	iat := t.now().Truncate(tokenTimePrecision)
	if !iat.After(t.lastIssued) {
		iat = t.lastIssued.Add(tokenTimePrecision)
	}
	t.lastIssued = iat
	return iat
}

// Verify checks the signature and expiry of token and returns its subject.
func (t *TokenIssuer) Verify(token string) (string, error) {
	claims, err := t.Parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Parse verifies token and returns its registered claims. Errors are always
// one of ErrInvalidToken, ErrExpiredToken, or ErrTokenNotActive.
func (t *TokenIssuer) Parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotActive
	default:
		return nil, ErrInvalidToken
	}

	if !parsed.Valid || claims.Subject == "" || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}
	// iat is checked here rather than by the parser so that a tick-advanced
	// iat verifies on the same instant it was issued.
	if claims.IssuedAt.After(t.now().Add(issuedAtSkew)) {
		return nil, ErrTokenNotActive
	}
	return claims, nil
}

// internal/httpserver/tokens.go
//
// Session tokens: HS256 JWTs whose subject is the session ID.
// Clients keep the token between requests instead of the raw ID, so a
// session cannot be addressed by guessing or reusing an expired handle.

package httpserver

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/robalobadob/wordchain/internal/game"
)

const (
	sessionHeader = "X-Session-Token"
	tokenIssuer   = "wordchain"
)

// Tokens signs and verifies session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens builds a token codec.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign creates a token for sessionID and returns it with its expiry.
func (t *Tokens) Sign(sessionID string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sessionID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := tok.SignedString(t.secret)
	return ss, exp, err
}

// Parse returns the session ID in raw. Missing, malformed or expired tokens
// all report game.ErrSessionNotFound.
func (t *Tokens) Parse(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", unknownSession(errors.New("missing session token"))
	}
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", unknownSession(err)
	}
	if !tok.Valid || claims.Subject == "" {
		return "", unknownSession(errors.New("token has no session"))
	}
	return claims.Subject, nil
}

func unknownSession(cause error) error {
	return &game.Error{Kind: game.KindSessionNotFound, Message: "unknown or expired session", Cause: cause}
}

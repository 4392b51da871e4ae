package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail to parse or verify.
var ErrInvalidToken = errors.New("invalid session token")

const issuer = "ganttboard"

type claims struct {
	User string `json:"user"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 session tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner returns a Signer. A ttl of zero means tokens never expire.
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for s.
func (sg *Signer) Issue(s Session) (string, error) {
	if len(sg.secret) == 0 {
		return "", errors.New("session secret is empty")
	}
	now := sg.now()
	c := claims{
		User: s.User,
		Role: s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       s.ID,
			Issuer:   issuer,
			Subject:  s.User,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if sg.ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(sg.ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(sg.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies token and returns the session it carries.
func (sg *Signer) Parse(token string) (Session, error) {
	if len(sg.secret) == 0 {
		return Session{}, ErrInvalidToken
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return sg.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(sg.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return Session{ID: c.ID, User: c.User, Role: c.Role}, nil
}

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Tokens signs and checks session tokens for user ids.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Generate creates a session token for userID.
func (t *Tokens) Generate(userID uint) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": now.Add(t.ttl).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Validate parses tokenString and returns the user id it was issued for.
func (t *Tokens) Validate(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}
	// JSON numbers decode as float64
	sub, ok := claims["sub"].(float64)
	if !ok || sub < 1 {
		return 0, ErrInvalidToken
	}
	return uint(sub), nil
}

package sessions

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidCookie = errors.New("invalid session cookie")

// CookieCodec signs the session id carried in the session cookie so a client
// cannot guess or forge ids.
type CookieCodec struct {
	secret  []byte
	nowTime func() time.Time
}

func NewCookieCodec(secret string) (*CookieCodec, error) {
	if secret == "" {
		return nil, errors.New("[NewCookieCodec] secret is required")
	}
	return &CookieCodec{secret: []byte(secret), nowTime: time.Now}, nil
}

func (c *CookieCodec) Encode(session *Session) (string, error) {
	claims := jwtlib.RegisteredClaims{
		ID:        session.ID,
		IssuedAt:  jwtlib.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwtlib.NewNumericDate(session.ExpiresAt),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("[CookieCodec.Encode] %w", err)
	}
	return signed, nil
}

// Decode verifies the cookie value and returns the session id inside it.
func (c *CookieCodec) Decode(value string) (string, error) {
	if value == "" {
		return "", ErrInvalidCookie
	}
	var claims jwtlib.RegisteredClaims
	token, err := jwtlib.ParseWithClaims(value, &claims,
		func(*jwtlib.Token) (any, error) { return c.secret, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(c.nowTime),
	)
	if err != nil || !token.Valid || claims.ID == "" {
		return "", ErrInvalidCookie
	}
	return claims.ID, nil
}

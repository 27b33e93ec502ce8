package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("authentication required")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNoSecret     = errors.New("jwt secret not configured")
)

// Claims is the token payload. Older tokens carry the user in "id"; newer
// ones use the standard subject.
type Claims struct {
	LegacyID any `json:"id,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the user identity carried by the claims.
func (c Claims) UserID() string {
	switch v := c.LegacyID.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	case float64:
		return strconv.FormatInt(int64(v), 10)
	}
	return strings.TrimSpace(c.Subject)
}

// Verifier validates HS256 bearer tokens.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithLeeway(30*time.Second),
		),
	}
}

// Verify parses the token and returns the user id it carries.
func (v *Verifier) Verify(token string) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrNoSecret
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}

	var claims Claims
	_, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	userID := claims.UserID()
	if userID == "" {
		return "", fmt.Errorf("%w: no user in token", ErrInvalidToken)
	}
	return userID, nil
}

// Issue mints a token for userID valid for ttl. A non-positive ttl
// produces a token without expiry.
func Issue(secret, userID string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id is required")
	}
	now := time.Now()
	claims := Claims{
		LegacyID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

package helpers

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of a session token when none is configured.
const DefaultTokenTTL = 7 * 24 * time.Hour

// ClaimUserID is the claim carrying the authenticated user's numeric id.
const ClaimUserID = "user_id"

// ErrInvalidToken is returned for every token that fails verification:
// bad signature, malformed structure, expired, or missing claims.
var ErrInvalidToken = errors.New("invalid token")

// JWTManager signs and verifies session tokens with a single process-wide secret.
type JWTManager struct {
	Secret []byte
	TTL    time.Duration

	now func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTManager{Secret: []byte(secret), TTL: ttl, now: time.Now}
}

// WithClock replaces the time source used for issuing and validating tokens.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	m.now = now
	return m
}

func (m *JWTManager) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}

// Encode signs claims with an exp of now+ttl. A non-positive ttl falls back to
// the manager's TTL. The caller's map is not modified.
func (m *JWTManager) Encode(claims map[string]any, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = m.TTL
	}
	mc := make(jwt.MapClaims, len(claims)+1)
	for k, v := range claims {
		mc[k] = v
	}
	mc["exp"] = m.clock().Add(ttl).Unix()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	return t.SignedString(m.Secret)
}

// Decode verifies tokenStr and returns its claims. Any failure yields
// ErrInvalidToken and nil claims.
func (m *JWTManager) Decode(tokenStr string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock),
		jwt.WithJSONNumber(),
	)
	tkn, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateAccessToken issues a session token for userID.
func (m *JWTManager) GenerateAccessToken(userID int64) (string, time.Time, error) {
	exp := m.clock().Add(m.TTL)
	s, err := m.Encode(map[string]any{ClaimUserID: userID}, m.TTL)
	return s, time.Unix(exp.Unix(), 0), err
}

// ParseAccessToken verifies a session token and returns its user id.
func (m *JWTManager) ParseAccessToken(tokenStr string) (int64, error) {
	claims, err := m.Decode(tokenStr)
	if err != nil {
		return 0, err
	}
	id, ok := int64Claim(claims[ClaimUserID])
	if !ok {
		return 0, ErrInvalidToken
	}
	return id, nil
}

func int64Claim(v any) (int64, bool) {
	switch x := v.(type) {
	case json.Number:
		i, err := x.Int64()
		return i, err == nil
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int64(x), true
	case int64:
		return x, true
	case int:
		return int64(x), true
	}
	return 0, false
}

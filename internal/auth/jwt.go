package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quizgrid/backend/internal/models"
)

// ErrInvalidToken covers malformed, tampered and expired tokens alike;
// callers never learn which. The decode detail is logged at the call site.
var ErrInvalidToken = errors.New("invalid token")

// Claims holds the JWT claims: subject username, role and numeric user id.
// Fields are trustworthy only after Validate has returned them.
type Claims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	UserID   int64       `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTService issues and validates signed tokens. Tokens are stateless: never
// persisted server-side, invalidated only by expiry.
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTService creates a JWT service with the given signing secret and TTL.
func NewJWTService(secret string, expireHours int) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		ttl:    time.Duration(expireHours) * time.Hour,
	}
}

// Generate creates a signed HS256 token for the user.
func (s *JWTService) Generate(username string, role models.Role, userID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		Role:     role,
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses and verifies a token, returning its claims.
// Expired and malformed tokens both come back as ErrInvalidToken.
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

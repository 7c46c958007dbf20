package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"grant-desk/domain"
	"grant-desk/errors"
)

// Claims defines the structure of the data stored inside the JWT.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies the signed tokens that back the
// authentication handshake. The secret is injected so tests and
// deployments never share a hardcoded key.
type TokenService struct {
	secret   []byte
	duration time.Duration
}

func NewTokenService(secret string, duration time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), duration: duration}
}

// Generate creates a signed JWT for a specific participant.
func (s *TokenService) Generate(userID string, role domain.Role) (string, error) {
	claims := &Claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "grant-desk",
		},
	}

	// HS256 (HMAC with SHA256), signed with the server's secret key.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses the token, validates its signature and expiration, and
// returns the participant it was issued to. Any failure is wrapped in
// ErrAuthenticationFailed so callers can treat it as fatal for the
// connection without inspecting jwt internals.
func (s *TokenService) Verify(tokenString string) (domain.Participant, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return domain.Participant{}, fmt.Errorf("%w: %v", errors.ErrAuthenticationFailed, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return domain.Participant{}, fmt.Errorf("%w: %v", errors.ErrAuthenticationFailed, jwt.ErrSignatureInvalid)
	}

	role := domain.Role(claims.Role)
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return domain.Participant{}, fmt.Errorf("%w: unknown role %q", errors.ErrAuthenticationFailed, claims.Role)
	}

	return domain.Participant{ID: claims.UserID, Role: role}, nil
}

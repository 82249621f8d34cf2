package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token is structurally invalid,
	// unsigned, or tampered with
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrMissingUserClaim is returned when a verified token carries no user id
	ErrMissingUserClaim = errors.New("token missing user_id claim")
)

// Claims are the signed claims carried by an access token.
//
// The canonical claim key for the tenant is "company_id". The legacy
// "companyId" spelling is not probed: tokens are validated against this single
// shape at the verification boundary and fail fast on mismatch. A token
// without company_id still verifies (CompanyID zero); tenant scoping rejects
// it downstream.
type Claims struct {
	UserID    int64 `json:"user_id"`
	CompanyID int64 `json:"company_id"`
	RoleID    int64 `json:"role_id"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 access tokens against a process-wide
// secret that is set at startup and never mutated.
type TokenService struct {
	secret []byte
	expiry time.Duration
}

// NewTokenService creates a TokenService. The secret must be at least 32 bytes.
func NewTokenService(secret string, expiry time.Duration) (*TokenService, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("token secret must be at least 32 bytes")
	}
	if expiry <= 0 {
		return nil, fmt.Errorf("token expiry must be positive")
	}
	return &TokenService{
		secret: []byte(secret),
		expiry: expiry,
	}, nil
}

// Generate issues a signed token for the given identity
func (s *TokenService) Generate(userID, companyID, roleID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		CompanyID: companyID,
		RoleID:    roleID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token string and returns its claims.
// It performs no I/O and never touches the database.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == 0 {
		return nil, ErrMissingUserClaim
	}

	return claims, nil
}

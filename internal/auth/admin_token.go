package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jungianjournals/journals-backend/errors"
)

const (
	RoleAdmin   = "admin"
	adminIssuer = "journals-admin"
)

// AdminClaims are carried by admin session tokens.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAdminToken issues an HS256 admin session token for adminID.
func GenerateAdminToken(adminID, secret string, ttl time.Duration) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("admin token secret is not configured")
	}
	now := time.Now()
	expires := now.Add(ttl)
	claims := AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			Issuer:    adminIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ValidateAdminToken verifies signature, expiry and the admin role.
func ValidateAdminToken(tokenString, secret string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(adminIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Unauthorized("token_expired", "Admin session expired")
		}
		return nil, apperrors.Unauthorized("invalid_token", "Invalid admin token")
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || claims.Role != RoleAdmin {
		return nil, apperrors.Unauthorized("invalid_claims", "Invalid token structure")
	}
	return claims, nil
}

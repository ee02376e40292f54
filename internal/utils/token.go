package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/mehmetcc/face-attendance-service/internal/person"
)

// TokenIssuer is stamped into every admin token and required on parse.
const TokenIssuer = "face-attendance"

var ErrWrongIssuer = errors.New("token issued by another service")

// AccessClaims carry the admin role; ID is the jti used for revocation.
type AccessClaims struct {
	Role person.Role `json:"role"`
	jwt.RegisteredClaims
}

func IssueAccessToken(subject string, role person.Role, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    TokenIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}).SignedString([]byte(secret))
}

func ParseAccessToken(tokenString, secret string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid access token")
	}
	if !claims.VerifyIssuer(TokenIssuer, true) {
		return nil, ErrWrongIssuer
	}
	return claims, nil
}

package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/maheshrc27/postsync/internal/transfer"
)

const tokenIssuer = "postsync"

var errInvalidClaims = errors.New("token claims are not session claims")

// sessionParser accepts only HS256 tokens issued by this service that carry
// an expiry.
var sessionParser = jwt.NewParser(
	jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	jwt.WithIssuer(tokenIssuer),
	jwt.WithExpirationRequired(),
)

// GenerateToken signs a session token for userID that expires after ttl.
func GenerateToken(secretKey, userID string, ttl time.Duration) (string, error) {
	issuedAt := time.Now()
	claims := transfer.CustomClaims{UserID: userID}
	claims.Issuer = tokenIssuer
	claims.IssuedAt = jwt.NewNumericDate(issuedAt)
	claims.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature, issuer and expiry of a session token.
func ValidateToken(secretKey, tokenString string) (*transfer.CustomClaims, error) {
	claims := &transfer.CustomClaims{}
	keyFunc := func(*jwt.Token) (any, error) { return []byte(secretKey), nil }

	token, err := sessionParser.ParseWithClaims(tokenString, claims, keyFunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errInvalidClaims
	}
	return claims, nil
}

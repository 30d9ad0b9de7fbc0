package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/libriahq/libria/internal/common"
)

// Claims extends the registered claims with the user id the identity
// provider put into the token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// GenerateToken signs an HS256 token for userID. The server itself never
// issues tokens to clients; this exists for tests and development tooling.
func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// IdentityFromToken verifies tokenString and returns the authenticated
// identity it carries.
func IdentityFromToken(tokenString string, secretKey []byte) (Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Anonymous(), common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return Anonymous(), common.ErrInvalidToken
	}

	return Authenticated(claims.UserID), nil
}

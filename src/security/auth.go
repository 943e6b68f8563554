package security

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService resolves externally issued access tokens to the boolean
// "authorized" signal the rest of the backend consumes. Identity, sessions
// and subscription billing live with the external provider; nothing here
// issues or stores credentials.
type AuthService struct {
	JWTSecret string
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{
		JWTSecret: secret,
	}
}

// ValidateToken verifies the token signature and expiry and returns the
// subject claim. Any failure means "not authorized", never a fatal error.
func (a *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.JWTSecret), nil
	})

	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		sub, ok := claims["sub"].(string)
		if !ok {
			return "", errors.New("invalid token: 'sub' claim missing or not a string")
		}
		return sub, nil
	}

	return "", errors.New("invalid token")
}

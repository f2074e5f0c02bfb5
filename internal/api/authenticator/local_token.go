package authenticator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	localIssuer   = "freshersjob"
	localTokenTTL = 7 * 24 * time.Hour
)

var ErrExpiredToken = errors.New("token expired")

type localClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken issues an HS256 token for a legacy email/password account.
func (a *Authenticator) GenerateToken(userID, email, name, role string) (string, error) {
	now := a.now()
	claims := &localClaims{
		Email: strings.ToLower(email),
		Name:  name,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    localIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(localTokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
}

func (a *Authenticator) VerifyLocalToken(token string) (*Session, error) {
	var claims localClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return a.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(localIssuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Email == "" {
		return nil, errors.New("invalid token: missing email")
	}

	return &Session{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Provider: ProviderLocal,
	}, nil
}

package services

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/citypress/account-service/app/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// sessionSecret is loaded lazily so we can validate it and avoid an empty secret.
var (
	sessionSecret  []byte
	secretLoadErr  error
	secretLoadOnce sync.Once
)

func getSessionSecret() ([]byte, error) {
	secretLoadOnce.Do(func() {
		val := os.Getenv("SESSION_SECRET")
		if val == "" {
			secretLoadErr = fmt.Errorf("SESSION_SECRET is not set")
			return
		}
		sessionSecret = []byte(val)
	})
	if secretLoadErr != nil {
		return nil, secretLoadErr
	}
	return sessionSecret, nil
}

const sessionTTL = 24 * time.Hour

// SessionClaims is the authentication cookie payload: who the caller is and
// which role gates apply.
type SessionClaims struct {
	UserID int64       `json:"sub"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// IssueSessionToken signs a session token for the given user.
func IssueSessionToken(user *models.User) (string, error) {
	secret, err := getSessionSecret()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := SessionClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateSessionToken parses and verifies a session token.
func ValidateSessionToken(tokenStr string) (*SessionClaims, error) {
	secret, err := getSessionSecret()
	if err != nil {
		return nil, err
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	return claims, nil
}

// SessionTTL returns the cookie lifetime matching the token expiry.
func SessionTTL() time.Duration {
	return sessionTTL
}

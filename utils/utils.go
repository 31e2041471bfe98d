package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword compares a bcrypt hash with a plaintext candidate.
func CheckPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

func sessionSecret() []byte {
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "dev-session-secret"
	}
	return []byte(secret)
}

// SignSessionToken issues the session token. The token is deliberately
// thin: it carries only the session reference (uid), never role or company.
// Identity is re-resolved from the user record on every request.
func SignSessionToken(uid string) (string, error) {
	claims := jwt.MapClaims{
		"uid": uid,
		"jti": uuid.NewString(),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(sessionSecret())
}

// ParseSessionToken validates a session token and returns the uid inside.
func ParseSessionToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return sessionSecret(), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse session token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid session token")
	}
	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return "", fmt.Errorf("uid not found in session token")
	}
	return uid, nil
}

// ExtractSessionToken pulls the bearer token from the Authorization header,
// falling back to the session cookie.
func ExtractSessionToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return "", fmt.Errorf("invalid token format")
		}
		return tokenParts[1], nil
	}

	cookie := c.Cookies("session")
	if cookie == "" {
		return "", fmt.Errorf("authorization header missing")
	}
	return cookie, nil
}

// ParseDateRange turns the list view's "from"/"to" filter strings into an
// inclusive day range. Either side may be empty.
func ParseDateRange(from, to string) (*time.Time, *time.Time, error) {
	var start, end *time.Time

	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid from date: %w", err)
		}
		s := now.With(t).BeginningOfDay()
		start = &s
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid to date: %w", err)
		}
		e := now.With(t).EndOfDay()
		end = &e
	}
	return start, end, nil
}

// Package auth gates the editor API behind a single shared password.
// There are no user accounts; a valid login yields a short-lived token
// and an empty configured password disables the gate entirely.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDisabled           = errors.New("authentication disabled")
)

const tokenSubject = "editor"

type Service struct {
	hash      []byte
	jwtSecret []byte
}

// NewService hashes the shared password once at startup. An empty
// password leaves the gate disabled.
func NewService(password, jwtSecret string) (*Service, error) {
	s := &Service{jwtSecret: []byte(jwtSecret)}
	if password == "" {
		return s, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	s.hash = hash
	return s, nil
}

func (s *Service) Enabled() bool {
	return len(s.hash) > 0
}

type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Service) Login(password string) (*AuthResult, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	expires := time.Now().Add(24 * time.Hour)
	token, err := s.issueToken(expires)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expires}, nil
}

func (s *Service) ValidateToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return errors.New("invalid token")
	}

	if sub, _ := claims["sub"].(string); sub != tokenSubject {
		return errors.New("invalid token subject")
	}
	return nil
}

func (s *Service) issueToken(expires time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": tokenSubject,
		"iat": time.Now().Unix(),
		"exp": expires.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

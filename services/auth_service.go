package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const tokenLifetime = 24 * time.Hour

type AuthService interface {
	// Login checks the admin password and issues a signed token.
	Login(ctx context.Context, password string) (string, error)
}

type authService struct {
	passwordHash string
	jwtSecret    string
	logger       *slog.Logger
}

func NewAuthService(passwordHash, jwtSecret string, logger *slog.Logger) AuthService {
	return &authService{
		passwordHash: passwordHash,
		jwtSecret:    jwtSecret,
		logger:       logger,
	}
}

func (s *authService) Login(ctx context.Context, password string) (string, error) {
	err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.WarnContext(ctx, "admin login rejected")
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to compare password hash: %w", err)
	}

	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	s.logger.InfoContext(ctx, "admin logged in")
	return signed, nil
}

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mferrero/trip-ledger/config"
	"github.com/mferrero/trip-ledger/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var _ AuthService = (*AuthServiceImpl)(nil)

type AuthService interface {
	// Login checks the owner password and returns a signed access token.
	// Returns types.ErrUnauthenticated on a wrong password.
	Login(ctx context.Context, password string) (string, error)
}

type AuthServiceImpl struct {
	logger *slog.Logger
	cfg    config.AuthConfig
}

func NewAuthService(cfg config.AuthConfig, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		cfg:    cfg,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, password string) (string, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	l := s.logger.With(slog.String("method", "Login"))

	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password)); err != nil {
		l.WarnContext(ctx, "Password mismatch on login attempt")
		span.SetStatus(codes.Error, "Password mismatch")
		return "", fmt.Errorf("password mismatch: %w", types.ErrUnauthenticated)
	}

	ttl := s.cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := time.Now()
	claims := Claims{
		Scope: "owner",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "owner",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		l.ErrorContext(ctx, "Failed to sign access token", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to sign access token")
		return "", fmt.Errorf("error signing access token: %w", err)
	}

	l.InfoContext(ctx, "Owner logged in")
	span.SetStatus(codes.Ok, "Owner logged in")
	return token, nil
}

// Package login implements session checks, sign-in and sign-out.
package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Mr-Dark-debug/yatter/internal/metrics"
)

// TokenReader reads the stored access token. A nil token means none is stored.
type TokenReader interface {
	GetAccessToken(ctx context.Context) (*string, error)
}

// TokenWriter persists or removes the access token.
type TokenWriter interface {
	SaveAccessToken(ctx context.Context, username, token string) error
	ClearAccessToken(ctx context.Context) error
}

// Authenticator exchanges credentials for an access token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (token string, err error)
}

// CheckLoginService reports whether a session exists.
type CheckLoginService struct {
	tokens TokenReader
}

// NewCheckLoginService creates a CheckLoginService reading from tokens.
func NewCheckLoginService(tokens TokenReader) *CheckLoginService {
	return &CheckLoginService{tokens: tokens}
}

// Execute returns true iff a non-empty token is stored. Read errors are
// returned as-is; interpreting them is up to the caller.
func (s *CheckLoginService) Execute(ctx context.Context) (bool, error) {
	token, err := s.tokens.GetAccessToken(ctx)
	if err != nil {
		return false, err
	}
	return IsLoggedIn(token), nil
}

// IsLoggedIn treats a nil and an empty token identically.
func IsLoggedIn(token *string) bool {
	return token != nil && *token != ""
}

// ErrMissingCredentials is returned when username or password is blank.
var ErrMissingCredentials = errors.New("username and password are required")

// LoginService signs in against the server and stores the token.
type LoginService struct {
	auth    Authenticator
	tokens  TokenWriter
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewLoginService creates a LoginService.
func NewLoginService(auth Authenticator, tokens TokenWriter, rec metrics.Recorder, logger *slog.Logger) *LoginService {
	return &LoginService{auth: auth, tokens: tokens, metrics: rec, logger: logger}
}

// Execute signs in as username and persists the returned token.
func (s *LoginService) Execute(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	token, err := s.auth.Login(ctx, username, password)
	if err != nil {
		s.metrics.RecordLogin(false)
		s.logger.Warn("login failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("logging in as %s: %w", username, err)
	}
	if token == "" {
		s.metrics.RecordLogin(false)
		return fmt.Errorf("logging in as %s: server returned an empty token", username)
	}

	if err := s.tokens.SaveAccessToken(ctx, username, token); err != nil {
		s.metrics.RecordLogin(false)
		return fmt.Errorf("storing session for %s: %w", username, err)
	}

	s.metrics.RecordLogin(true)
	s.logger.Info("logged in", slog.String("username", username))
	return nil
}

// LogoutService removes the stored session.
type LogoutService struct {
	tokens TokenWriter
	logger *slog.Logger
}

// NewLogoutService creates a LogoutService.
func NewLogoutService(tokens TokenWriter, logger *slog.Logger) *LogoutService {
	return &LogoutService{tokens: tokens, logger: logger}
}

// Execute clears the stored token.
func (s *LogoutService) Execute(ctx context.Context) error {
	if err := s.tokens.ClearAccessToken(ctx); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	s.logger.Info("logged out")
	return nil
}

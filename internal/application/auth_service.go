package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Djo9111/reporting-front/internal/remote"
	"github.com/Djo9111/reporting-front/internal/session"
)

// RemoteAuthenticator exposes the backend operations required by the auth service.
type RemoteAuthenticator interface {
	Login(ctx context.Context, username, password string) (remote.LoginResult, error)
	FetchUser(ctx context.Context, username string) (remote.Profile, error)
}

// SessionStore captures the persistence interactions for issued sessions.
type SessionStore interface {
	Save(ctx context.Context, s session.Session) error
	Load(ctx context.Context, token string, reference time.Time) (session.Session, error)
	Clear(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context, reference time.Time) error
}

// AuthService coordinates login against the backend and local session issuance.
type AuthService struct {
	remote         RemoteAuthenticator
	sessions       SessionStore
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(remoteClient RemoteAuthenticator, sessions SessionStore, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 8 * time.Hour
	}
	return &AuthService{
		remote:         remoteClient,
		sessions:       sessions,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login authenticates the manager against the backend and issues a gateway
// session token.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (result LoginResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.remote == nil {
		err = fmt.Errorf("remote client not configured")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session store not configured")
		return
	}

	username := strings.TrimSpace(params.Username)
	password := params.Password

	logger := s.loggerWith(ctx, "Login", "username", username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("display_name", result.Session.DisplayName).InfoContext(ctx, "login succeeded")
	}()

	if username == "" || password == "" {
		err = ErrInvalidCredentials
		return
	}

	var login remote.LoginResult
	login, err = s.remote.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, remote.ErrInvalidCredentials) {
			err = ErrInvalidCredentials
			return
		}
		if errors.Is(err, remote.ErrUnavailable) {
			err = fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return
	}

	displayName := s.resolveDisplayName(ctx, username, login.Profile)

	now := s.now()
	token := s.tokenGenerator()
	if token == "" {
		err = fmt.Errorf("token generator returned empty token")
		return
	}

	record := session.Session{
		Token:       token,
		Username:    username,
		DisplayName: displayName,
		RemoteToken: login.Token,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(s.sessionTTL),
	}

	if err = s.sessions.PurgeExpired(ctx, now); err != nil {
		return
	}
	if err = s.sessions.Save(ctx, record); err != nil {
		return
	}

	result = LoginResult{Session: SessionInfo{
		Token:       record.Token,
		Username:    record.Username,
		DisplayName: record.DisplayName,
		RemoteToken: record.RemoteToken,
		ExpiresAt:   record.ExpiresAt,
	}}
	return
}

// resolveDisplayName falls back to the user directory when the login response
// carried no usable name. Failures here never fail the login.
func (s *AuthService) resolveDisplayName(ctx context.Context, username string, profile remote.Profile) string {
	name := strings.TrimSpace(profile.DisplayName)
	if name != "" && name != username {
		return name
	}
	fetched, err := s.remote.FetchUser(ctx, username)
	if err != nil {
		s.loggerWith(ctx, "Login", "username", username).
			WarnContext(ctx, "profile lookup failed, keeping username as display name", "error", err)
		return username
	}
	if fetchedName := strings.TrimSpace(fetched.DisplayName); fetchedName != "" {
		return fetchedName
	}
	return username
}

// Logout clears the session for the provided token. Unknown tokens are not an
// error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session store not configured")
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "Logout", "token_provided", trimmed != "")
	if trimmed == "" {
		return nil
	}
	if err := s.sessions.Clear(ctx, trimmed); err != nil {
		logger.ErrorContext(ctx, "logout failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "session cleared")
	return nil
}

// ValidateSession verifies that the provided token corresponds to an active
// session and returns its identity.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (info SessionInfo, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session store not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if trimmed == "" {
		err = ErrUnauthorized
		return
	}

	var record session.Session
	record, err = s.sessions.Load(ctx, trimmed, s.now())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			err = ErrUnauthorized
		case errors.Is(err, session.ErrExpired):
			err = ErrSessionExpired
		}
		return
	}

	info = SessionInfo{
		Token:       record.Token,
		Username:    record.Username,
		DisplayName: record.DisplayName,
		RemoteToken: record.RemoteToken,
		ExpiresAt:   record.ExpiresAt,
	}
	return
}

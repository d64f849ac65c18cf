package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Djo9111/reporting-front/internal/remote"
	"github.com/Djo9111/reporting-front/internal/session"
)

type remoteAuthStub struct {
	loginResult remote.LoginResult
	loginErr    error
	loginCalls  int

	fetched    remote.Profile
	fetchErr   error
	fetchCalls int
}

func (s *remoteAuthStub) Login(_ context.Context, username, password string) (remote.LoginResult, error) {
	s.loginCalls++
	if s.loginErr != nil {
		return remote.LoginResult{}, s.loginErr
	}
	return s.loginResult, nil
}

func (s *remoteAuthStub) FetchUser(_ context.Context, username string) (remote.Profile, error) {
	s.fetchCalls++
	if s.fetchErr != nil {
		return remote.Profile{}, s.fetchErr
	}
	return s.fetched, nil
}

type sessionStoreStub struct {
	sessions   map[string]session.Session
	saveErr    error
	purgeCalls []time.Time
}

func newSessionStoreStub() *sessionStoreStub {
	return &sessionStoreStub{sessions: make(map[string]session.Session)}
}

func (s *sessionStoreStub) Save(_ context.Context, record session.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.sessions[record.Token] = record
	return nil
}

func (s *sessionStoreStub) Load(_ context.Context, token string, reference time.Time) (session.Session, error) {
	record, ok := s.sessions[token]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	if !record.ExpiresAt.IsZero() && !record.ExpiresAt.After(reference) {
		return session.Session{}, session.ErrExpired
	}
	return record, nil
}

func (s *sessionStoreStub) Clear(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

func (s *sessionStoreStub) PurgeExpired(_ context.Context, reference time.Time) error {
	s.purgeCalls = append(s.purgeCalls, reference)
	return nil
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	t.Run("issues a session for valid credentials", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		backend := &remoteAuthStub{loginResult: remote.LoginResult{
			Token:   "backend-token",
			Profile: remote.Profile{Username: "mdupont", DisplayName: "Marie Dupont"},
		}}
		store := newSessionStoreStub()
		svc := NewAuthService(backend, store, func() string { return "gateway-token" }, func() time.Time { return now }, 8*time.Hour, nil)

		result, err := svc.Login(context.Background(), LoginParams{Username: " mdupont ", Password: "secret"})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}

		if result.Session.Token != "gateway-token" {
			t.Fatalf("expected gateway token, got %s", result.Session.Token)
		}
		if result.Session.DisplayName != "Marie Dupont" {
			t.Fatalf("expected display name from login response, got %q", result.Session.DisplayName)
		}
		if result.Session.RemoteToken != "backend-token" {
			t.Fatalf("expected backend token to be kept, got %q", result.Session.RemoteToken)
		}
		if want := now.Add(8 * time.Hour); !result.Session.ExpiresAt.Equal(want) {
			t.Fatalf("expected expiry %v, got %v", want, result.Session.ExpiresAt)
		}
		if backend.fetchCalls != 0 {
			t.Fatalf("expected no directory lookup when the login response carries a name, got %d", backend.fetchCalls)
		}
		if len(store.purgeCalls) != 1 || !store.purgeCalls[0].Equal(now) {
			t.Fatalf("expected PurgeExpired to be called with now, got %#v", store.purgeCalls)
		}
		if _, ok := store.sessions["gateway-token"]; !ok {
			t.Fatal("expected session to be persisted")
		}
	})

	t.Run("falls back to the directory when the login response has no name", func(t *testing.T) {
		t.Parallel()

		backend := &remoteAuthStub{
			loginResult: remote.LoginResult{Profile: remote.Profile{Username: "mdupont", DisplayName: "mdupont"}},
			fetched:     remote.Profile{Username: "mdupont", DisplayName: "Marie Dupont"},
		}
		svc := NewAuthService(backend, newSessionStoreStub(), func() string { return "tok" }, nil, time.Hour, nil)

		result, err := svc.Login(context.Background(), LoginParams{Username: "mdupont", Password: "secret"})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if result.Session.DisplayName != "Marie Dupont" {
			t.Fatalf("expected directory display name, got %q", result.Session.DisplayName)
		}
		if backend.fetchCalls != 1 {
			t.Fatalf("expected one directory lookup, got %d", backend.fetchCalls)
		}
	})

	t.Run("keeps the username when the directory lookup fails", func(t *testing.T) {
		t.Parallel()

		backend := &remoteAuthStub{
			loginResult: remote.LoginResult{Profile: remote.Profile{Username: "mdupont", DisplayName: "mdupont"}},
			fetchErr:    errors.New("boom"),
		}
		svc := NewAuthService(backend, newSessionStoreStub(), func() string { return "tok" }, nil, time.Hour, nil)

		result, err := svc.Login(context.Background(), LoginParams{Username: "mdupont", Password: "secret"})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if result.Session.DisplayName != "mdupont" {
			t.Fatalf("expected username fallback, got %q", result.Session.DisplayName)
		}
	})

	t.Run("rejects empty credentials without calling the backend", func(t *testing.T) {
		t.Parallel()

		backend := &remoteAuthStub{}
		svc := NewAuthService(backend, newSessionStoreStub(), func() string { return "tok" }, nil, time.Hour, nil)

		_, err := svc.Login(context.Background(), LoginParams{Username: "mdupont"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		if backend.loginCalls != 0 {
			t.Fatalf("expected no backend call, got %d", backend.loginCalls)
		}
	})

	t.Run("maps backend rejection to invalid credentials", func(t *testing.T) {
		t.Parallel()

		backend := &remoteAuthStub{loginErr: remote.ErrInvalidCredentials}
		svc := NewAuthService(backend, newSessionStoreStub(), func() string { return "tok" }, nil, time.Hour, nil)

		_, err := svc.Login(context.Background(), LoginParams{Username: "mdupont", Password: "wrong"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("maps transport failures to backend unavailable", func(t *testing.T) {
		t.Parallel()

		backend := &remoteAuthStub{loginErr: remote.ErrUnavailable}
		svc := NewAuthService(backend, newSessionStoreStub(), func() string { return "tok" }, nil, time.Hour, nil)

		_, err := svc.Login(context.Background(), LoginParams{Username: "mdupont", Password: "secret"})
		if !errors.Is(err, ErrBackendUnavailable) {
			t.Fatalf("expected ErrBackendUnavailable, got %v", err)
		}
	})

	t.Run("propagates store failures", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("disk full")
		backend := &remoteAuthStub{loginResult: remote.LoginResult{Profile: remote.Profile{Username: "m", DisplayName: "M"}}}
		store := newSessionStoreStub()
		store.saveErr = expected
		svc := NewAuthService(backend, store, func() string { return "tok" }, nil, time.Hour, nil)

		_, err := svc.Login(context.Background(), LoginParams{Username: "m", Password: "x"})
		if !errors.Is(err, expected) {
			t.Fatalf("expected store error, got %v", err)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("returns the identity for a live session", func(t *testing.T) {
		t.Parallel()

		store := newSessionStoreStub()
		store.sessions["tok"] = session.Session{
			Token:       "tok",
			Username:    "mdupont",
			DisplayName: "Marie Dupont",
			RemoteToken: "backend-token",
			ExpiresAt:   now.Add(time.Hour),
		}
		svc := NewAuthService(&remoteAuthStub{}, store, nil, func() time.Time { return now }, time.Hour, nil)

		info, err := svc.ValidateSession(context.Background(), "tok")
		if err != nil {
			t.Fatalf("ValidateSession failed: %v", err)
		}
		if info.Username != "mdupont" || info.DisplayName != "Marie Dupont" {
			t.Fatalf("unexpected identity: %+v", info)
		}
	})

	t.Run("rejects unknown tokens", func(t *testing.T) {
		t.Parallel()

		svc := NewAuthService(&remoteAuthStub{}, newSessionStoreStub(), nil, func() time.Time { return now }, time.Hour, nil)
		if _, err := svc.ValidateSession(context.Background(), "missing"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects empty tokens", func(t *testing.T) {
		t.Parallel()

		svc := NewAuthService(&remoteAuthStub{}, newSessionStoreStub(), nil, func() time.Time { return now }, time.Hour, nil)
		if _, err := svc.ValidateSession(context.Background(), "  "); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("maps expired sessions to the expiry sentinel", func(t *testing.T) {
		t.Parallel()

		store := newSessionStoreStub()
		store.sessions["tok"] = session.Session{Token: "tok", Username: "mdupont", ExpiresAt: now.Add(-time.Minute)}
		svc := NewAuthService(&remoteAuthStub{}, store, nil, func() time.Time { return now }, time.Hour, nil)

		if _, err := svc.ValidateSession(context.Background(), "tok"); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Parallel()

	store := newSessionStoreStub()
	store.sessions["tok"] = session.Session{Token: "tok", Username: "mdupont", ExpiresAt: time.Now().Add(time.Hour)}
	svc := NewAuthService(&remoteAuthStub{}, store, nil, nil, time.Hour, nil)

	if err := svc.Logout(context.Background(), "tok"); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, ok := store.sessions["tok"]; ok {
		t.Fatal("expected session to be cleared")
	}

	if err := svc.Logout(context.Background(), "unknown"); err != nil {
		t.Fatalf("Logout of unknown token failed: %v", err)
	}
}

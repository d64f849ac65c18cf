package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Djo9111/reporting-front/internal/application"
)

type authService interface {
	Login(ctx context.Context, params application.LoginParams) (application.LoginResult, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler exposes login, logout and the current identity.
type AuthHandler struct {
	service   authService
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service authService, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

type loginRequest struct {
	Username string `json:"nom_utilisateur"`
	Password string `json:"mot_de_passe"`
}

type sessionResponse struct {
	Token       string `json:"token"`
	Username    string `json:"nom_utilisateur"`
	DisplayName string `json:"nom_complet"`
	ExpiresAt   string `json:"expire_le"`
}

func sessionPayload(info application.SessionInfo) sessionResponse {
	return sessionResponse{
		Token:       info.Token,
		Username:    info.Username,
		DisplayName: info.DisplayName,
		ExpiresAt:   info.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

// CreateSession authenticates against the backend and issues a gateway session.
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateSession", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode login request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	username := strings.TrimSpace(req.Username)
	logger := h.log(r.Context(), "CreateSession", "username", username)

	result, err := h.service.Login(r.Context(), application.LoginParams{
		Username: username,
		Password: req.Password,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "login failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	setSessionCookie(w, result.Session.Token, result.Session.ExpiresAt)
	w.Header().Set("X-Session-Token", result.Session.Token)

	logger.With("display_name", result.Session.DisplayName).InfoContext(r.Context(), "manager authenticated")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, sessionPayload(result.Session))
}

// GetCurrentSession returns the identity attached to the request.
func (h *AuthHandler) GetCurrentSession(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	info, ok := SessionFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionPayload(info))
}

// DeleteCurrentSession clears the session for the current token.
func (h *AuthHandler) DeleteCurrentSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	token := extractTokenFromRequest(r)
	if token == "" {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	logger := h.log(r.Context(), "DeleteCurrentSession", "token_present", true)
	if err := h.service.Logout(r.Context(), token); err != nil {
		logger.ErrorContext(r.Context(), "logout failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	clearSessionCookie(w)
	logger.InfoContext(r.Context(), "session cleared")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     "session_token",
		Value:    token,
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
	}
	http.SetCookie(w, cookie)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
	})
}

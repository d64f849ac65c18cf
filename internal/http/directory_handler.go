package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Djo9111/reporting-front/internal/application"
)

type directoryService interface {
	ListManagers(ctx context.Context, query string) ([]application.Manager, error)
}

// DirectoryHandler exposes the manager directory behind the administration key.
type DirectoryHandler struct {
	service   directoryService
	authorize func(key string) error
	responder responder
	logger    *slog.Logger
}

// NewDirectoryHandler constructs a DirectoryHandler. authorize checks the
// X-Admin-Key header value; a nil authorize denies everything.
func NewDirectoryHandler(service directoryService, authorize func(key string) error, logger *slog.Logger) *DirectoryHandler {
	base := defaultLogger(logger)
	return &DirectoryHandler{service: service, authorize: authorize, responder: newResponder(base), logger: base}
}

type managerDTO struct {
	Username    string `json:"nom_utilisateur"`
	DisplayName string `json:"nom_complet"`
	AgencyCode  string `json:"code_agence"`
	Email       string `json:"email"`
	Phone       string `json:"telephone"`
	Portfolio   string `json:"portefeuille"`
	Role        string `json:"fonction"`
}

// List returns the managers matching the optional q filter.
func (h *DirectoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := handlerLogger(r.Context(), h.logger, "DirectoryHandler", "List")

	if h.authorize == nil {
		h.responder.handleServiceError(r.Context(), w, application.ErrForbidden)
		return
	}
	if err := h.authorize(r.Header.Get("X-Admin-Key")); err != nil {
		logger.ErrorContext(r.Context(), "admin key rejected", "error_kind", "forbidden")
		h.responder.handleServiceError(r.Context(), w, application.ErrForbidden)
		return
	}

	managers, err := h.service.ListManagers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		logger.ErrorContext(r.Context(), "manager listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]managerDTO, 0, len(managers))
	for _, manager := range managers {
		payload = append(payload, managerDTO{
			Username:    manager.Username,
			DisplayName: manager.DisplayName,
			AgencyCode:  manager.AgencyCode,
			Email:       manager.Email,
			Phone:       manager.Phone,
			Portfolio:   manager.Portfolio,
			Role:        manager.Role,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

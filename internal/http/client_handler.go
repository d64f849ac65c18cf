package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Djo9111/reporting-front/internal/agenda"
	"github.com/Djo9111/reporting-front/internal/application"
)

type clientService interface {
	ListClients(ctx context.Context, params application.ClientListParams) ([]agenda.Client, error)
}

// ClientHandler exposes the manager's contact list.
type ClientHandler struct {
	service   clientService
	responder responder
	logger    *slog.Logger
}

func NewClientHandler(service clientService, logger *slog.Logger) *ClientHandler {
	base := defaultLogger(logger)
	return &ClientHandler{service: service, responder: newResponder(base), logger: base}
}

type clientDTO struct {
	ID            int64  `json:"id"`
	Name          string `json:"client"`
	ClientNumber  string `json:"numero_client"`
	Agency        string `json:"agence"`
	ContactReason string `json:"motif_de_contact"`
	Email         string `json:"email"`
	Phone         string `json:"telephone"`
}

// List returns the contacts of the session's manager, or of the manager named
// in the query when present.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	manager := requestedManager(r)
	logger := handlerLogger(r.Context(), h.logger, "ClientHandler", "List", "manager", manager)

	clients, err := h.service.ListClients(r.Context(), application.ClientListParams{
		Manager: manager,
		Query:   r.URL.Query().Get("q"),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "contact listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]clientDTO, 0, len(clients))
	for _, client := range clients {
		payload = append(payload, clientDTO{
			ID:            client.ID,
			Name:          client.Name,
			ClientNumber:  client.ClientNumber,
			Agency:        client.Agency,
			ContactReason: client.ContactReason,
			Email:         client.Email,
			Phone:         client.Phone,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

// requestedManager resolves the manager a request targets: an explicit query
// parameter wins over the session identity.
func requestedManager(r *http.Request) string {
	if manager := strings.TrimSpace(r.URL.Query().Get("manager")); manager != "" {
		return manager
	}
	if info, ok := SessionFromContext(r.Context()); ok {
		return info.Username
	}
	return ""
}

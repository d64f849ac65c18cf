package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Djo9111/reporting-front/internal/agenda"
	"github.com/Djo9111/reporting-front/internal/application"
)

var (
	errBadRequestBody      = errors.New("Format de requête invalide.")
	errInvalidEventID      = errors.New("Identifiant de rendez-vous invalide.")
	errMissingSessionToken = errors.New("Veuillez fournir un jeton de session.")
	errMissingFile         = errors.New("Veuillez joindre un fichier.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized), errors.Is(err, application.ErrSessionExpired):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_SESSION_INVALID",
			Message:   "Session invalide ou expirée. Veuillez vous reconnecter.",
		})
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_INVALID_CREDENTIALS",
			Message:   "Nom d'utilisateur ou mot de passe incorrect.",
		})
	case errors.Is(err, application.ErrForbidden):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "ADMIN_KEY_REQUIRED",
			Message:   "Clé d'administration invalide.",
		})
	case errors.Is(err, application.ErrNotFound), errors.Is(err, agenda.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "Ressource introuvable."})
	case errors.Is(err, agenda.ErrNoClientSelected):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "Veuillez d'abord sélectionner un client."})
	case errors.Is(err, agenda.ErrNoPendingCreation), errors.Is(err, agenda.ErrNoPendingEdit):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "Aucune opération en attente."})
	case errors.Is(err, application.ErrBackendUnavailable),
		errors.Is(err, agenda.ErrLoadFailed),
		errors.Is(err, agenda.ErrCreateFailed),
		errors.Is(err, agenda.ErrUpdateFailed):
		r.writeJSON(ctx, w, http.StatusBadGateway, errorResponse{Message: "Le service distant est indisponible. Veuillez réessayer."})
	default:
		if details := validationDetails(err); details != nil {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Certains champs sont invalides.",
				Errors:  details,
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Une erreur interne est survenue."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Requête incorrecte."
	case http.StatusUnauthorized:
		return "Authentification requise."
	case http.StatusForbidden:
		return "Vous n'êtes pas autorisé à effectuer cette opération."
	case http.StatusNotFound:
		return "Ressource introuvable."
	case http.StatusConflict:
		return "La requête entre en conflit avec l'état actuel."
	case http.StatusUnprocessableEntity:
		return "Certains champs sont invalides."
	case http.StatusBadGateway:
		return "Le service distant est indisponible. Veuillez réessayer."
	default:
		return "Une erreur interne est survenue."
	}
}

// validationDetails collects field errors from either validation error shape,
// translating the internal messages to the UI language.
func validationDetails(err error) map[string]string {
	var fields map[string]string

	var appErr *application.ValidationError
	var agendaErr *agenda.ValidationError
	switch {
	case errors.As(err, &appErr):
		fields = appErr.FieldErrors
	case errors.As(err, &agendaErr):
		fields = agendaErr.FieldErrors
	default:
		return nil
	}

	if len(fields) == 0 {
		return nil
	}
	translated := make(map[string]string, len(fields))
	for field, msg := range fields {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "subject is required":
		return "L'objet du rendez-vous est obligatoire."
	case "manager is required":
		return "Le gestionnaire est obligatoire."
	case "filename is required", "file content is required":
		return "Le fichier est obligatoire."
	case "client is required":
		return "Le client est obligatoire."
	case "start is required":
		return "La date de début est obligatoire."
	case "duration must be positive":
		return "La durée doit être positive."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}

package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RouterConfig wires the handlers and middleware into the API surface.
type RouterConfig struct {
	Auth        *AuthHandler
	Clients     *ClientHandler
	Directory   *DirectoryHandler
	Performance *PerformanceHandler
	Imports     *ImportHandler
	Agenda      *AgendaHandler
	// Middleware wraps every route, outermost first.
	Middleware []func(http.Handler) http.Handler
	// SessionGuard wraps every route except login. Typically RequireSession.
	SessionGuard func(http.Handler) http.Handler
}

// NewRouter assembles the gateway API. Every route lives under /api; only the
// login endpoint is reachable without a session.
func NewRouter(cfg RouterConfig) http.Handler {
	root := mux.NewRouter()
	api := root.PathPrefix("/api").Subrouter()

	if cfg.Auth != nil {
		api.HandleFunc("/sessions", cfg.Auth.CreateSession).Methods(http.MethodPost)
	}

	protected := api.NewRoute().Subrouter()
	if cfg.SessionGuard != nil {
		protected.Use(mux.MiddlewareFunc(cfg.SessionGuard))
	}

	if cfg.Auth != nil {
		protected.HandleFunc("/sessions/current", cfg.Auth.GetCurrentSession).Methods(http.MethodGet)
		protected.HandleFunc("/sessions/current", cfg.Auth.DeleteCurrentSession).Methods(http.MethodDelete)
	}
	if cfg.Clients != nil {
		protected.HandleFunc("/contacts", cfg.Clients.List).Methods(http.MethodGet)
	}
	if cfg.Directory != nil {
		protected.HandleFunc("/managers", cfg.Directory.List).Methods(http.MethodGet)
	}
	if cfg.Performance != nil {
		protected.HandleFunc("/performance", cfg.Performance.Get).Methods(http.MethodGet)
	}
	if cfg.Imports != nil {
		protected.HandleFunc("/imports/excel", cfg.Imports.Upload).Methods(http.MethodPost)
	}
	if cfg.Agenda != nil {
		protected.HandleFunc("/agenda", cfg.Agenda.Get).Methods(http.MethodGet)
		protected.HandleFunc("/agenda/pending", cfg.Agenda.ProposeCreation).Methods(http.MethodPost)
		protected.HandleFunc("/agenda/pending/confirmation", cfg.Agenda.ConfirmCreation).Methods(http.MethodPost)
		protected.HandleFunc("/agenda/pending", cfg.Agenda.CancelPending).Methods(http.MethodDelete)
		protected.HandleFunc("/agenda/edit", cfg.Agenda.SelectForEdit).Methods(http.MethodPost)
		protected.HandleFunc("/agenda/edit", cfg.Agenda.UpdateEditDraft).Methods(http.MethodPut)
		protected.HandleFunc("/agenda/edit/confirmation", cfg.Agenda.ConfirmEdit).Methods(http.MethodPost)
		protected.HandleFunc("/agenda/edit", cfg.Agenda.CancelEdit).Methods(http.MethodDelete)
	}

	var handler http.Handler = root
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

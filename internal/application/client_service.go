package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Djo9111/reporting-front/internal/agenda"
)

// RemoteContactLister exposes the backend contact listing required by the
// client service.
type RemoteContactLister interface {
	ListContacts(ctx context.Context, username string) ([]agenda.Client, error)
}

// ClientService serves the contact list backing the client search page.
type ClientService struct {
	remote RemoteContactLister
	cache  *contactCache
	logger *slog.Logger
}

// NewClientService constructs a ClientService. A zero cacheTTL selects the
// default.
func NewClientService(remoteClient RemoteContactLister, cacheTTL time.Duration, now func() time.Time, logger *slog.Logger) *ClientService {
	return &ClientService{
		remote: remoteClient,
		cache:  newContactCache(cacheTTL, 0, now),
		logger: defaultLogger(logger),
	}
}

func (s *ClientService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ClientService", operation, attrs...)
}

// ListClients returns the manager's contacts, filtered by the free-text query.
// The unfiltered list is cached briefly per manager.
func (s *ClientService) ListClients(ctx context.Context, params ClientListParams) (clients []agenda.Client, err error) {
	if s == nil {
		err = fmt.Errorf("ClientService is nil")
		return
	}
	if s.remote == nil {
		err = fmt.Errorf("remote client not configured")
		return
	}

	manager := strings.TrimSpace(params.Manager)
	logger := s.loggerWith(ctx, "ListClients", "manager", manager, "query", params.Query)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "contact listing failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if manager == "" {
		err = &ValidationError{FieldErrors: map[string]string{"manager": "manager is required"}}
		return
	}

	all, cached := s.cache.Get(manager)
	if !cached {
		all, err = s.remote.ListContacts(ctx, manager)
		if err != nil {
			return
		}
		s.cache.Store(manager, all)
	}

	clients = filterClients(all, params.Query)
	logger.InfoContext(ctx, "contacts listed", "total", len(all), "matched", len(clients), "cache_hit", cached)
	return
}

// InvalidateCache drops all cached contact lists. Called after an extract
// import so new clients show up immediately.
func (s *ClientService) InvalidateCache() {
	if s == nil {
		return
	}
	s.cache.Invalidate()
}

// filterClients keeps entries matching the query in any searchable field,
// case-insensitively. An empty query keeps everything.
func filterClients(clients []agenda.Client, query string) []agenda.Client {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		out := make([]agenda.Client, len(clients))
		copy(out, clients)
		return out
	}
	out := make([]agenda.Client, 0, len(clients))
	for _, client := range clients {
		if clientMatches(client, query) {
			out = append(out, client)
		}
	}
	return out
}

func clientMatches(client agenda.Client, query string) bool {
	fields := []string{
		client.Name,
		client.ClientNumber,
		client.Agency,
		client.ContactReason,
		client.Email,
		client.Phone,
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

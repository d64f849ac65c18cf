package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Djo9111/reporting-front/internal/remote"
)

// RemoteManagerLister exposes the backend user directory required by the
// directory service.
type RemoteManagerLister interface {
	ListManagers(ctx context.Context) ([]remote.Profile, error)
}

// DirectoryService serves the manager directory used by the administration
// page and the manager selector.
type DirectoryService struct {
	remote RemoteManagerLister
	logger *slog.Logger
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(remoteClient RemoteManagerLister, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{
		remote: remoteClient,
		logger: defaultLogger(logger),
	}
}

func (s *DirectoryService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "DirectoryService", operation, attrs...)
}

// ListManagers returns the known managers filtered by the free-text query and
// sorted by username.
func (s *DirectoryService) ListManagers(ctx context.Context, query string) (managers []Manager, err error) {
	if s == nil {
		err = fmt.Errorf("DirectoryService is nil")
		return
	}
	if s.remote == nil {
		err = fmt.Errorf("remote client not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListManagers", "query", query)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "manager listing failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "managers listed", "count", len(managers))
	}()

	var profiles []remote.Profile
	profiles, err = s.remote.ListManagers(ctx)
	if err != nil {
		return
	}

	query = strings.ToLower(strings.TrimSpace(query))
	managers = make([]Manager, 0, len(profiles))
	for _, profile := range profiles {
		manager := Manager{
			Username:    profile.Username,
			DisplayName: profile.DisplayName,
			AgencyCode:  profile.AgencyCode,
			Email:       profile.Email,
			Phone:       profile.Phone,
			Portfolio:   profile.Portfolio,
			Role:        profile.Role,
		}
		if query != "" && !managerMatches(manager, query) {
			continue
		}
		managers = append(managers, manager)
	}

	sort.Slice(managers, func(i, j int) bool {
		return managers[i].Username < managers[j].Username
	})
	return
}

func managerMatches(manager Manager, query string) bool {
	fields := []string{
		manager.Username,
		manager.DisplayName,
		manager.AgencyCode,
		manager.Email,
		manager.Portfolio,
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

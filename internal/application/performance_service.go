package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/Djo9111/reporting-front/internal/remote"
)

// RemotePerformanceLister exposes the backend KPI listing required by the
// performance service.
type RemotePerformanceLister interface {
	ListPerformance(ctx context.Context, username string) ([]remote.Indicator, error)
}

// PerformanceService builds KPI reports for the dashboard page.
type PerformanceService struct {
	remote RemotePerformanceLister
	logger *slog.Logger
}

// NewPerformanceService constructs a PerformanceService.
func NewPerformanceService(remoteClient RemotePerformanceLister, logger *slog.Logger) *PerformanceService {
	return &PerformanceService{
		remote: remoteClient,
		logger: defaultLogger(logger),
	}
}

func (s *PerformanceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "PerformanceService", operation, attrs...)
}

// Report fetches the manager's indicators and derives completion rates,
// attainment levels and portfolio totals.
func (s *PerformanceService) Report(ctx context.Context, manager string) (report PerformanceReport, err error) {
	if s == nil {
		err = fmt.Errorf("PerformanceService is nil")
		return
	}
	if s.remote == nil {
		err = fmt.Errorf("remote client not configured")
		return
	}

	manager = strings.TrimSpace(manager)
	logger := s.loggerWith(ctx, "Report", "manager", manager)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "performance report failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "performance report built", "indicators", len(report.Indicators))
	}()

	if manager == "" {
		err = &ValidationError{FieldErrors: map[string]string{"manager": "manager is required"}}
		return
	}

	var rows []remote.Indicator
	rows, err = s.remote.ListPerformance(ctx, manager)
	if err != nil {
		return
	}

	report = PerformanceReport{Manager: manager, Indicators: make([]PerformanceIndicator, 0, len(rows))}
	for _, row := range rows {
		rate := completionRate(row.Realization, row.Objective)
		report.Indicators = append(report.Indicators, PerformanceIndicator{
			Name:        row.Name,
			Objective:   row.Objective,
			Realization: row.Realization,
			Rate:        rate,
			Level:       attainmentLevel(rate),
		})
		report.TotalObjective += row.Objective
		report.TotalRealization += row.Realization
	}
	report.OverallRate = completionRate(report.TotalRealization, report.TotalObjective)
	return
}

// completionRate returns the realization as a rounded percentage of the
// objective. A zero objective yields zero rather than a division error.
func completionRate(realization, objective float64) int {
	if objective == 0 {
		return 0
	}
	return int(math.Round(100 * realization / objective))
}

func attainmentLevel(rate int) string {
	switch {
	case rate >= 100:
		return AttainmentReached
	case rate >= 70:
		return AttainmentOnTrack
	default:
		return AttainmentBehind
	}
}

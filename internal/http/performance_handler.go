package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Djo9111/reporting-front/internal/application"
)

type performanceService interface {
	Report(ctx context.Context, manager string) (application.PerformanceReport, error)
}

// PerformanceHandler exposes the KPI overview.
type PerformanceHandler struct {
	service   performanceService
	responder responder
	logger    *slog.Logger
}

func NewPerformanceHandler(service performanceService, logger *slog.Logger) *PerformanceHandler {
	base := defaultLogger(logger)
	return &PerformanceHandler{service: service, responder: newResponder(base), logger: base}
}

type indicatorDTO struct {
	Name        string  `json:"indicateur"`
	Objective   float64 `json:"objectif"`
	Realization float64 `json:"realisation"`
	Rate        int     `json:"taux"`
	Level       string  `json:"niveau"`
}

type performanceDTO struct {
	Manager          string         `json:"gestionnaire"`
	Indicators       []indicatorDTO `json:"indicateurs"`
	TotalObjective   float64        `json:"objectif_total"`
	TotalRealization float64        `json:"realisation_totale"`
	OverallRate      int            `json:"taux_global"`
}

// Get returns the KPI report of the session's manager, or of the manager
// named in the query when present.
func (h *PerformanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	manager := requestedManager(r)
	logger := handlerLogger(r.Context(), h.logger, "PerformanceHandler", "Get", "manager", manager)

	report, err := h.service.Report(r.Context(), manager)
	if err != nil {
		logger.ErrorContext(r.Context(), "performance report failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := performanceDTO{
		Manager:          report.Manager,
		Indicators:       make([]indicatorDTO, 0, len(report.Indicators)),
		TotalObjective:   report.TotalObjective,
		TotalRealization: report.TotalRealization,
		OverallRate:      report.OverallRate,
	}
	for _, indicator := range report.Indicators {
		payload.Indicators = append(payload.Indicators, indicatorDTO{
			Name:        indicator.Name,
			Objective:   indicator.Objective,
			Realization: indicator.Realization,
			Rate:        indicator.Rate,
			Level:       indicator.Level,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

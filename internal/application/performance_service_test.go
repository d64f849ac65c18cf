package application

import (
	"context"
	"errors"
	"testing"

	"github.com/Djo9111/reporting-front/internal/remote"
	"github.com/Djo9111/reporting-front/internal/testfixtures"
)

type performanceListerStub struct {
	rows []remote.Indicator
	err  error
}

func (s *performanceListerStub) ListPerformance(_ context.Context, username string) ([]remote.Indicator, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func TestPerformanceService_Report(t *testing.T) {
	t.Parallel()

	t.Run("derives rates, levels and totals", func(t *testing.T) {
		t.Parallel()

		rows := append(testfixtures.Indicators(), remote.Indicator{Name: "Nouveau produit", Objective: 0, Realization: 5})
		backend := &performanceListerStub{rows: rows}
		svc := NewPerformanceService(backend, nil)

		report, err := svc.Report(context.Background(), "mdupont")
		if err != nil {
			t.Fatalf("Report failed: %v", err)
		}

		want := []struct {
			rate  int
			level string
		}{
			{rate: 120, level: AttainmentReached},
			{rate: 75, level: AttainmentOnTrack},
			{rate: 20, level: AttainmentBehind},
			{rate: 0, level: AttainmentBehind},
		}
		if len(report.Indicators) != len(want) {
			t.Fatalf("expected %d indicators, got %d", len(want), len(report.Indicators))
		}
		for i, w := range want {
			got := report.Indicators[i]
			if got.Rate != w.rate {
				t.Errorf("indicator %d rate = %d, want %d", i, got.Rate, w.rate)
			}
			if got.Level != w.level {
				t.Errorf("indicator %d level = %s, want %s", i, got.Level, w.level)
			}
		}

		if report.TotalObjective != 350 {
			t.Errorf("total objective = %v, want 350", report.TotalObjective)
		}
		if report.TotalRealization != 285 {
			t.Errorf("total realization = %v, want 285", report.TotalRealization)
		}
		if report.OverallRate != 81 {
			t.Errorf("overall rate = %d, want 81", report.OverallRate)
		}
	})

	t.Run("rounds completion rates to the nearest percent", func(t *testing.T) {
		t.Parallel()

		backend := &performanceListerStub{rows: []remote.Indicator{
			{Name: "A", Objective: 3, Realization: 2},
		}}
		svc := NewPerformanceService(backend, nil)

		report, err := svc.Report(context.Background(), "mdupont")
		if err != nil {
			t.Fatalf("Report failed: %v", err)
		}
		if report.Indicators[0].Rate != 67 {
			t.Errorf("rate = %d, want 67", report.Indicators[0].Rate)
		}
	})

	t.Run("handles an empty indicator list", func(t *testing.T) {
		t.Parallel()

		svc := NewPerformanceService(&performanceListerStub{}, nil)
		report, err := svc.Report(context.Background(), "mdupont")
		if err != nil {
			t.Fatalf("Report failed: %v", err)
		}
		if len(report.Indicators) != 0 || report.OverallRate != 0 {
			t.Fatalf("unexpected report: %+v", report)
		}
	})

	t.Run("requires a manager", func(t *testing.T) {
		t.Parallel()

		svc := NewPerformanceService(&performanceListerStub{}, nil)
		_, err := svc.Report(context.Background(), " ")
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("propagates backend failures", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("boom")
		svc := NewPerformanceService(&performanceListerStub{err: expected}, nil)
		if _, err := svc.Report(context.Background(), "mdupont"); !errors.Is(err, expected) {
			t.Fatalf("expected backend error, got %v", err)
		}
	})
}

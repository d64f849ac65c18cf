package application

import (
	"context"
	"errors"
	"testing"

	"github.com/Djo9111/reporting-front/internal/remote"
)

type managerListerStub struct {
	profiles []remote.Profile
	err      error
}

func (s *managerListerStub) ListManagers(_ context.Context) ([]remote.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profiles, nil
}

func TestDirectoryService_ListManagers(t *testing.T) {
	t.Parallel()

	profiles := []remote.Profile{
		{Username: "pleroy", DisplayName: "Pierre Leroy", AgencyCode: "A002", Email: "pleroy@example.com"},
		{Username: "mdupont", DisplayName: "Marie Dupont", AgencyCode: "A001", Email: "mdupont@example.com"},
	}

	t.Run("returns managers sorted by username", func(t *testing.T) {
		t.Parallel()

		svc := NewDirectoryService(&managerListerStub{profiles: profiles}, nil)
		managers, err := svc.ListManagers(context.Background(), "")
		if err != nil {
			t.Fatalf("ListManagers failed: %v", err)
		}
		if len(managers) != 2 {
			t.Fatalf("expected 2 managers, got %d", len(managers))
		}
		if managers[0].Username != "mdupont" || managers[1].Username != "pleroy" {
			t.Fatalf("unexpected order: %s, %s", managers[0].Username, managers[1].Username)
		}
	})

	t.Run("filters by query", func(t *testing.T) {
		t.Parallel()

		svc := NewDirectoryService(&managerListerStub{profiles: profiles}, nil)

		cases := []struct {
			name  string
			query string
			want  string
		}{
			{name: "by username", query: "pleroy", want: "pleroy"},
			{name: "by display name", query: "dupont", want: "mdupont"},
			{name: "by agency", query: "a002", want: "pleroy"},
		}
		for _, tc := range cases {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()
				managers, err := svc.ListManagers(context.Background(), tc.query)
				if err != nil {
					t.Fatalf("ListManagers failed: %v", err)
				}
				if len(managers) != 1 || managers[0].Username != tc.want {
					t.Fatalf("query %q: got %+v, want single %s", tc.query, managers, tc.want)
				}
			})
		}
	})

	t.Run("propagates backend failures", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("boom")
		svc := NewDirectoryService(&managerListerStub{err: expected}, nil)
		if _, err := svc.ListManagers(context.Background(), ""); !errors.Is(err, expected) {
			t.Fatalf("expected backend error, got %v", err)
		}
	})
}

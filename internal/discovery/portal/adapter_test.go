package portal_test

import (
	"context"
	"errors"
	"testing"

	"civicintel/internal/config"
	"civicintel/internal/discovery"
	"civicintel/internal/discovery/portal"
	"civicintel/internal/logging"
	"civicintel/internal/meetings"
)

type stubFetcher struct {
	clips []portal.Clip
	err   error
}

func (s *stubFetcher) FetchClips(ctx context.Context, max int) ([]portal.Clip, error) {
	return s.clips, s.err
}

func boulderParams(bodies []string) discovery.Params {
	return discovery.Params{
		Jurisdiction: config.Jurisdiction{
			Name:          "Boulder",
			PortalSite:    "boulder.granicus.com",
			MeetingBodies: bodies,
		},
		Limit: 50,
	}
}

func TestAdapterFiltersTestClipsAndBodies(t *testing.T) {
	fetcher := &stubFetcher{clips: []portal.Clip{
		{ID: "1", Title: "City Council Regular Meeting", Date: "2024-05-06", Duration: 5400, BodyName: "City Council", VideoURL: "https://x/1"},
		{ID: "2", Title: "Stream Test - please ignore"},
		{ID: "3", Title: "Parks Board", BodyName: "Parks and Recreation Board"},
		{ID: "4", Title: "Unknown body clip", BodyName: ""},
	}}
	adapter := portal.NewAdapter(fetcher, logging.NewNop())

	records, err := adapter.Discover(context.Background(), boulderParams([]string{"City Council", "Planning Board"}))
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.ID != "granicus_1" {
		t.Errorf("id = %q, want granicus_ prefix", first.ID)
	}
	if first.Source != meetings.SourcePortal {
		t.Errorf("source = %q", first.Source)
	}
	if first.DurationMinutes != 90.0 {
		t.Errorf("duration = %v", first.DurationMinutes)
	}

	if records[1].ID != "granicus_4" {
		t.Errorf("clip with unknown body should pass filter, got %q", records[1].ID)
	}
}

func TestAdapterSkipsJurisdictionWithoutPortal(t *testing.T) {
	adapter := portal.NewAdapter(&stubFetcher{err: errors.New("should not be called")}, logging.NewNop())
	params := discovery.Params{Jurisdiction: config.Jurisdiction{Name: "Aurora"}}
	records, err := adapter.Discover(context.Background(), params)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if records != nil {
		t.Errorf("records = %v, want none", records)
	}
}

func TestAdapterPropagatesFetchError(t *testing.T) {
	adapter := portal.NewAdapter(&stubFetcher{err: errors.New("boom")}, logging.NewNop())
	if _, err := adapter.Discover(context.Background(), boulderParams(nil)); err == nil {
		t.Fatal("expected fetch error")
	}
}

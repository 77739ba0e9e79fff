package legistar_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"civicintel/internal/analysis"
	"civicintel/internal/config"
	"civicintel/internal/discovery"
	"civicintel/internal/discovery/legistar"
	"civicintel/internal/logging"
	"civicintel/internal/meetings"
)

type stubEventLister struct {
	events   []legistar.Event
	items    map[int][]legistar.EventItem
	itemsErr error
	err      error
	gotSince time.Time
}

func (s *stubEventLister) ClientName() string { return "denver" }

func (s *stubEventLister) Events(ctx context.Context, since time.Time) ([]legistar.Event, error) {
	s.gotSince = since
	return s.events, s.err
}

func (s *stubEventLister) EventItems(ctx context.Context, eventID int) ([]legistar.EventItem, error) {
	if s.itemsErr != nil {
		return nil, s.itemsErr
	}
	return s.items[eventID], nil
}

func denverParams(bodies []string) discovery.Params {
	return discovery.Params{
		Jurisdiction: config.Jurisdiction{
			Name:           "Denver",
			LegistarClient: "denver",
			MeetingBodies:  bodies,
		},
	}
}

func TestAdapterBuildsScoredRecords(t *testing.T) {
	lister := &stubEventLister{
		events: []legistar.Event{
			{ID: 100, BodyName: "City Council", Date: "2024-06-01", VideoURL: "https://video/100"},
			{ID: 101, BodyName: "Parks Board", Date: "2024-06-02"},
		},
		items: map[int][]legistar.EventItem{
			100: {
				{Title: "Affordable housing bond"},
				{Title: "Inclusionary zoning amendment", MatterName: "ADU ordinance"},
			},
		},
	}
	adapter := legistar.NewAdapter(lister, config.DefaultHousingKeywords(), 90, logging.NewNop())

	records, err := adapter.Discover(context.Background(), denverParams([]string{"City Council"}))
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 after body filter", len(records))
	}

	rec := records[0]
	if rec.ID != "legistar_denver_100" {
		t.Errorf("id = %q", rec.ID)
	}
	if rec.Source != meetings.SourceLegistar {
		t.Errorf("source = %q", rec.Source)
	}
	if rec.Title != "City Council \u2013 2024-06-01" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.HousingRelevanceScore <= 0 {
		t.Errorf("relevance = %v, want keyword-driven score", rec.HousingRelevanceScore)
	}

	if time.Since(lister.gotSince) > 91*24*time.Hour || time.Since(lister.gotSince) < 89*24*time.Hour {
		t.Errorf("lookback since = %v", lister.gotSince)
	}
}

func TestAdapterItemFailureFallsBackToBodyScore(t *testing.T) {
	lister := &stubEventLister{
		events:   []legistar.Event{{ID: 7, BodyName: "Community Planning and Housing", Date: "2024-06-01"}},
		itemsErr: errors.New("items endpoint down"),
	}
	adapter := legistar.NewAdapter(lister, config.DefaultHousingKeywords(), 90, logging.NewNop())

	records, err := adapter.Discover(context.Background(), denverParams(nil))
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want event kept despite item failure", len(records))
	}
	if records[0].HousingRelevanceScore != 0.3 {
		t.Errorf("relevance = %v, want 0.3 housing-body fallback", records[0].HousingRelevanceScore)
	}
}

func TestAdapterSkipsJurisdictionWithoutClient(t *testing.T) {
	adapter := legistar.NewAdapter(&stubEventLister{err: errors.New("should not be called")}, nil, 90, logging.NewNop())
	params := discovery.Params{Jurisdiction: config.Jurisdiction{Name: "Lakewood"}}
	records, err := adapter.Discover(context.Background(), params)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if records != nil {
		t.Errorf("records = %v, want none", records)
	}
}

func TestScoreRelevance(t *testing.T) {
	matcher := analysis.NewMatcher([]string{"affordable housing", "zoning", "adu", "ami", "rent"})

	noItems := legistar.Event{BodyName: "Finance Committee"}
	if got := legistar.ScoreRelevance(noItems, matcher); got != 0.1 {
		t.Errorf("non-housing body = %v, want 0.1", got)
	}

	housingBody := legistar.Event{BodyName: "Land Use Committee"}
	if got := legistar.ScoreRelevance(housingBody, matcher); got != 0.3 {
		t.Errorf("housing body = %v, want 0.3", got)
	}

	emptyItems := legistar.Event{Items: []legistar.EventItem{{}, {}}}
	if got := legistar.ScoreRelevance(emptyItems, matcher); got != 0.1 {
		t.Errorf("blank item text = %v, want 0.1", got)
	}

	rich := legistar.Event{Items: []legistar.EventItem{
		{Title: "Affordable housing near transit", MatterName: "Zoning map amendment"},
		{Title: "ADU pilot", ActionText: "Rent stabilization report at 60% AMI"},
	}}
	if got := legistar.ScoreRelevance(rich, matcher); got != 1.0 {
		t.Errorf("five distinct keywords = %v, want 1.0", got)
	}
}

func TestFormatAgendaText(t *testing.T) {
	event := legistar.Event{
		BodyName: "City Council",
		Date:     "2024-06-01",
		Location: "Council Chambers",
		Items: []legistar.EventItem{
			{
				Title:        "Rezoning 123 Main St",
				MatterName:   "CB24-0456",
				MatterType:   "Ordinance",
				MatterStatus: "Passed",
				ActionText:   "Approved on first reading",
				Votes:        []legistar.Vote{{Value: "Aye"}, {Value: "Aye"}, {Value: "Nay"}},
			},
			{Title: "Public comment"},
		},
	}

	text := legistar.FormatAgendaText(event)
	for _, want := range []string{
		"Meeting: City Council",
		"Date: 2024-06-01",
		"AGENDA ITEMS:",
		"1. Rezoning 123 Main St",
		"   Matter: CB24-0456",
		"   Type: Ordinance",
		"   Status: Passed",
		"   Action: Approved on first reading",
		"   Votes: Aye: 2, Nay: 1",
		"2. Public comment",
	} {
		if !containsLine(text, want) {
			t.Errorf("agenda text missing %q:\n%s", want, text)
		}
	}
}

func containsLine(text, want string) bool {
	for _, line := range strings.Split(text, "\n") {
		if line == want {
			return true
		}
	}
	return false
}

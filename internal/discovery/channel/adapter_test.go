package channel_test

import (
	"context"
	"errors"
	"testing"

	"civicintel/internal/config"
	"civicintel/internal/discovery"
	"civicintel/internal/discovery/channel"
	"civicintel/internal/logging"
	"civicintel/internal/meetings"
	"civicintel/internal/services/ytdlp"
)

type stubLister struct {
	entries []ytdlp.Entry
	err     error
	gotURL  string
	gotMax  int
}

func (s *stubLister) List(ctx context.Context, channelURL string, max int) ([]ytdlp.Entry, error) {
	s.gotURL = channelURL
	s.gotMax = max
	return s.entries, s.err
}

func denverParams(limit int) discovery.Params {
	return discovery.Params{
		Jurisdiction: config.Jurisdiction{
			Name:       "Denver",
			ChannelURL: "https://www.youtube.com/@CityOfDenver",
		},
		Limit: limit,
	}
}

func TestDiscoverFiltersNonMeetingTitles(t *testing.T) {
	lister := &stubLister{entries: []ytdlp.Entry{
		{ID: "v1", Title: "City Council Meeting - March 3, 2024", Duration: 5400},
		{ID: "v2", Title: "Denver Parks Summer Promo"},
		{ID: "v3", Title: "Planning Board Study Session", UploadDate: "20240210"},
		{ID: "", Title: "City Council Meeting broken entry"},
	}}
	adapter := channel.New(lister, config.DefaultMeetingTitleKeywords(), logging.NewNop())

	records, err := adapter.Discover(context.Background(), denverParams(25))
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.ID != "v1" || first.Source != meetings.SourceChannel {
		t.Errorf("first record = %+v", first)
	}
	if first.Date != "2024-03-03" {
		t.Errorf("title date = %q", first.Date)
	}
	if first.VideoURL != "https://www.youtube.com/watch?v=v1" {
		t.Errorf("video url = %q", first.VideoURL)
	}
	if first.DurationMinutes != 90.0 {
		t.Errorf("duration = %v minutes", first.DurationMinutes)
	}

	if records[1].Date != "2024-02-10" {
		t.Errorf("upload-date fallback = %q", records[1].Date)
	}

	if lister.gotURL != "https://www.youtube.com/@CityOfDenver" || lister.gotMax != 25 {
		t.Errorf("lister called with %q / %d", lister.gotURL, lister.gotMax)
	}
}

func TestDiscoverSkipsJurisdictionWithoutChannel(t *testing.T) {
	lister := &stubLister{}
	adapter := channel.New(lister, config.DefaultMeetingTitleKeywords(), logging.NewNop())

	params := discovery.Params{Jurisdiction: config.Jurisdiction{Name: "Lakewood"}}
	records, err := adapter.Discover(context.Background(), params)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if records != nil {
		t.Errorf("records = %v, want none", records)
	}
	if lister.gotURL != "" {
		t.Error("lister called despite missing channel url")
	}
}

func TestDiscoverPropagatesListerError(t *testing.T) {
	adapter := channel.New(&stubLister{err: errors.New("boom")}, nil, logging.NewNop())
	if _, err := adapter.Discover(context.Background(), denverParams(10)); err == nil {
		t.Fatal("expected error from lister")
	}
}

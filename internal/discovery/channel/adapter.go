// Package channel discovers meetings from a city's video channel using the
// yt-dlp flat-playlist listing. Titles are filtered against a meeting
// vocabulary so channel promos and PSAs never enter the store.
package channel

import (
	"context"
	"log/slog"
	"math"

	"civicintel/internal/analysis"
	"civicintel/internal/discovery"
	"civicintel/internal/logging"
	"civicintel/internal/meetings"
	"civicintel/internal/services/ytdlp"
)

// Adapter discovers meetings from a channel listing.
type Adapter struct {
	lister ytdlp.Lister
	titles *analysis.Matcher
	logger *slog.Logger
}

// New builds a channel adapter over a yt-dlp lister and a title keyword
// vocabulary.
func New(lister ytdlp.Lister, titleKeywords []string, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Adapter{
		lister: lister,
		titles: analysis.NewMatcher(titleKeywords),
		logger: logging.NewComponentLogger(logger, "discovery-channel"),
	}
}

// Name implements discovery.Source.
func (a *Adapter) Name() meetings.Source {
	return meetings.SourceChannel
}

// Discover lists the channel's newest videos and keeps the ones whose
// titles look like meetings. The record ID is the bare video ID.
func (a *Adapter) Discover(ctx context.Context, params discovery.Params) ([]meetings.Record, error) {
	j := params.Jurisdiction
	if j.ChannelURL == "" {
		return nil, nil
	}

	entries, err := a.lister.List(ctx, j.ChannelURL, params.Limit)
	if err != nil {
		return nil, err
	}

	var records []meetings.Record
	for _, entry := range entries {
		if entry.ID == "" {
			continue
		}
		if !a.titles.MatchesAny(entry.Title) {
			continue
		}

		date := ExtractDate(entry.Title)
		if date == "" {
			date = NormalizeUploadDate(entry.UploadDate)
		}

		var minutes float64
		if entry.Duration > 0 {
			minutes = math.Round(entry.Duration/60*10) / 10
		}

		records = append(records, meetings.Record{
			ID:              entry.ID,
			Jurisdiction:    j.Name,
			Title:           entry.Title,
			Date:            date,
			VideoURL:        "https://www.youtube.com/watch?v=" + entry.ID,
			Source:          meetings.SourceChannel,
			DurationMinutes: minutes,
		})

		a.logger.Info("found meeting video",
			logging.String(logging.FieldJurisdiction, j.Name),
			logging.String(logging.FieldMeetingID, entry.ID),
			logging.String("title", entry.Title),
			logging.String("date", date))
	}

	a.logger.Info("channel discovery complete",
		logging.String(logging.FieldJurisdiction, j.Name),
		logging.Int("listed", len(entries)),
		logging.Int("kept", len(records)))
	return records, nil
}

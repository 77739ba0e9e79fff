// Package portal discovers meetings from Granicus-style city media portals.
// It prefers the site's JSON clips API, scrapes the HTML listing when the
// API is absent, and downloads agenda and minutes documents alongside the
// recordings.
package portal

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"civicintel/internal/discovery"
	"civicintel/internal/logging"
	"civicintel/internal/meetings"
)

var denyTerms = []string{"test", "training", "demo", "sample"}

// ClipFetcher lists clips from a portal site.
type ClipFetcher interface {
	FetchClips(ctx context.Context, max int) ([]Clip, error)
}

// Adapter discovers meetings from one portal site.
type Adapter struct {
	client ClipFetcher
	logger *slog.Logger
}

// NewAdapter wraps a portal client as a discovery source.
func NewAdapter(client ClipFetcher, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Adapter{
		client: client,
		logger: logging.NewComponentLogger(logger, "discovery-portal"),
	}
}

// Name implements discovery.Source.
func (a *Adapter) Name() meetings.Source {
	return meetings.SourcePortal
}

// Discover lists portal clips and turns them into meeting records. Portal
// clips are all government meetings, so filtering is a denylist of test
// content plus an optional body filter; clips with an unknown body pass
// the filter rather than being dropped.
func (a *Adapter) Discover(ctx context.Context, params discovery.Params) ([]meetings.Record, error) {
	j := params.Jurisdiction
	if j.PortalSite == "" {
		return nil, nil
	}

	clips, err := a.client.FetchClips(ctx, params.Limit)
	if err != nil {
		return nil, err
	}

	var records []meetings.Record
	for _, clip := range clips {
		if isDenied(clip.Title) {
			continue
		}
		if !matchesBody(clip.BodyName, j.MeetingBodies) {
			continue
		}

		var minutes float64
		if clip.Duration > 0 {
			minutes = math.Round(float64(clip.Duration)/60*10) / 10
		}

		records = append(records, meetings.Record{
			ID:              "granicus_" + clip.ID,
			Jurisdiction:    j.Name,
			Title:           clip.Title,
			Date:            clip.Date,
			VideoURL:        clip.VideoURL,
			Source:          meetings.SourcePortal,
			DurationMinutes: minutes,
		})

		a.logger.Info("found portal meeting",
			logging.String(logging.FieldJurisdiction, j.Name),
			logging.String(logging.FieldMeetingID, "granicus_"+clip.ID),
			logging.String("title", clip.Title),
			logging.String("date", clip.Date))
	}

	a.logger.Info("portal discovery complete",
		logging.String(logging.FieldJurisdiction, j.Name),
		logging.Int("listed", len(clips)),
		logging.Int("kept", len(records)))
	return records, nil
}

func isDenied(title string) bool {
	lower := strings.ToLower(title)
	for _, term := range denyTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func matchesBody(bodyName string, bodies []string) bool {
	if bodyName == "" || len(bodies) == 0 {
		return true
	}
	lower := strings.ToLower(bodyName)
	for _, b := range bodies {
		if strings.Contains(lower, strings.ToLower(b)) {
			return true
		}
	}
	return false
}

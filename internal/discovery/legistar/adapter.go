// Package legistar discovers meetings and legislative metadata from the
// Legistar Web API. The API is public and keyless; every request is
// followed by a politeness delay.
package legistar

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"civicintel/internal/analysis"
	"civicintel/internal/discovery"
	"civicintel/internal/logging"
	"civicintel/internal/meetings"
)

// EventLister is the slice of the client the adapter needs.
type EventLister interface {
	ClientName() string
	Events(ctx context.Context, since time.Time) ([]Event, error)
	EventItems(ctx context.Context, eventID int) ([]EventItem, error)
}

// Adapter discovers meetings from Legistar events.
type Adapter struct {
	client   EventLister
	matcher  *analysis.Matcher
	lookback time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewAdapter wraps a Legistar client as a discovery source. lookbackDays
// bounds how far back events are fetched.
func NewAdapter(client EventLister, housingKeywords []string, lookbackDays int, logger *slog.Logger) *Adapter {
	if lookbackDays <= 0 {
		lookbackDays = 90
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Adapter{
		client:   client,
		matcher:  analysis.NewMatcher(housingKeywords),
		lookback: time.Duration(lookbackDays) * 24 * time.Hour,
		now:      time.Now,
		logger:   logging.NewComponentLogger(logger, "discovery-legistar"),
	}
}

// Name implements discovery.Source.
func (a *Adapter) Name() meetings.Source {
	return meetings.SourceLegistar
}

// Discover fetches recent events, filters them by the jurisdiction's
// configured bodies, and scores housing relevance from agenda items.
// Item fetch failures degrade to body-name scoring instead of dropping
// the event.
func (a *Adapter) Discover(ctx context.Context, params discovery.Params) ([]meetings.Record, error) {
	j := params.Jurisdiction
	if j.LegistarClient == "" {
		return nil, nil
	}

	since := a.now().Add(-a.lookback)
	events, err := a.client.Events(ctx, since)
	if err != nil {
		return nil, err
	}

	var records []meetings.Record
	for _, event := range events {
		if params.Limit > 0 && len(records) >= params.Limit {
			break
		}
		if !bodyMatches(event.BodyName, j.MeetingBodies) {
			continue
		}

		items, err := a.client.EventItems(ctx, event.ID)
		if err != nil {
			a.logger.Warn("agenda items unavailable",
				logging.Int("event_id", event.ID),
				logging.Error(err))
		} else {
			event.Items = items
		}

		relevance := ScoreRelevance(event, a.matcher)
		id := fmt.Sprintf("legistar_%s_%d", a.client.ClientName(), event.ID)

		records = append(records, meetings.Record{
			ID:                    id,
			Jurisdiction:          j.Name,
			Title:                 fmt.Sprintf("%s – %s", event.BodyName, event.Date),
			Date:                  event.Date,
			VideoURL:              event.VideoURL,
			Source:                meetings.SourceLegistar,
			HousingRelevanceScore: relevance,
		})

		a.logger.Info("found legistar event",
			logging.String(logging.FieldJurisdiction, j.Name),
			logging.String(logging.FieldMeetingID, id),
			logging.String("body", event.BodyName),
			logging.String("date", event.Date),
			logging.Float64("relevance", relevance))
	}

	a.logger.Info("legistar discovery complete",
		logging.String(logging.FieldJurisdiction, j.Name),
		logging.Int("events", len(events)),
		logging.Int("kept", len(records)))
	return records, nil
}

func bodyMatches(bodyName string, bodies []string) bool {
	if len(bodies) == 0 {
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

package portal

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"civicintel/internal/config"
	"civicintel/internal/discovery"
	"civicintel/internal/logging"
	"civicintel/internal/meetings"
)

// documentDelay paces clip document downloads against portal sites.
const documentDelay = time.Second

// MultiSource is a discovery source spanning jurisdictions. Each
// jurisdiction hosts its own portal site, so a client is built per
// Discover call from the jurisdiction's configured site.
type MultiSource struct {
	logger *slog.Logger
	opts   []Option
	sleep  func(time.Duration)
}

// NewSource builds a portal discovery source. Options are forwarded to
// every per-site client.
func NewSource(logger *slog.Logger, opts ...Option) *MultiSource {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &MultiSource{logger: logger, opts: opts, sleep: time.Sleep}
}

// WithSleeper replaces the politeness sleep between clip document
// downloads (for tests).
func (s *MultiSource) WithSleeper(sleep func(time.Duration)) *MultiSource {
	if sleep != nil {
		s.sleep = sleep
	}
	return s
}

// Name implements discovery.Source.
func (s *MultiSource) Name() meetings.Source {
	return meetings.SourcePortal
}

// Discover implements discovery.Source.
func (s *MultiSource) Discover(ctx context.Context, params discovery.Params) ([]meetings.Record, error) {
	if params.Jurisdiction.PortalSite == "" {
		return nil, nil
	}
	client, err := NewClient(params.Jurisdiction.PortalSite, s.opts...)
	if err != nil {
		return nil, err
	}
	return NewAdapter(client, s.logger).Discover(ctx, params)
}

// ResolveVideo upgrades a portal record's player-page URL to the direct
// media URL embedded in the page. Records whose URL is not a player page
// come back unchanged.
func (s *MultiSource) ResolveVideo(ctx context.Context, j config.Jurisdiction, rec meetings.Record) (string, error) {
	if j.PortalSite == "" || !strings.Contains(rec.VideoURL, "/player/clip/") {
		return rec.VideoURL, nil
	}
	client, err := NewClient(j.PortalSite, s.opts...)
	if err != nil {
		return "", err
	}
	return client.ResolveVideoURL(ctx, strings.TrimPrefix(rec.ID, "granicus_"))
}

// DownloadDocuments fetches a jurisdiction's clip listing and saves every
// published agenda and minutes document, pausing between clips. Returns
// the saved paths; documents already on disk count as saved.
func (s *MultiSource) DownloadDocuments(ctx context.Context, params discovery.Params, agendaDir, minutesDir string) ([]string, error) {
	if params.Jurisdiction.PortalSite == "" {
		return nil, nil
	}
	client, err := NewClient(params.Jurisdiction.PortalSite, s.opts...)
	if err != nil {
		return nil, err
	}

	clips, err := client.FetchClips(ctx, params.Limit)
	if err != nil {
		return nil, err
	}

	logger := logging.NewComponentLogger(s.logger, "portal-documents")
	var saved []string
	for _, clip := range clips {
		if clip.AgendaURL == "" && clip.MinutesURL == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return saved, err
		}

		if path, err := client.DownloadAgenda(ctx, clip, agendaDir, logger); err != nil {
			logger.Warn("agenda download failed",
				logging.String("clip_id", clip.ID),
				logging.Error(err))
		} else if path != "" {
			saved = append(saved, path)
		}
		if path, err := client.DownloadMinutes(ctx, clip, minutesDir, logger); err != nil {
			logger.Warn("minutes download failed",
				logging.String("clip_id", clip.ID),
				logging.Error(err))
		} else if path != "" {
			saved = append(saved, path)
		}

		s.sleep(documentDelay)
	}

	logger.Info("portal documents downloaded",
		logging.String(logging.FieldJurisdiction, params.Jurisdiction.Name),
		logging.Int("documents", len(saved)))
	return saved, nil
}

package legistar

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"civicintel/internal/config"
	"civicintel/internal/discovery"
	"civicintel/internal/logging"
	"civicintel/internal/meetings"
)

// MultiSource is a discovery source spanning jurisdictions. Legistar
// clients are per tenant, so one is built (and reused) per configured
// legistar_client value.
type MultiSource struct {
	cfg      config.Legistar
	keywords []string
	logger   *slog.Logger
	opts     []Option

	mu      sync.Mutex
	clients map[string]*Client
}

// NewSource builds a Legistar discovery source from the shared Legistar
// configuration and the housing keyword vocabulary.
func NewSource(cfg config.Legistar, housingKeywords []string, logger *slog.Logger, opts ...Option) *MultiSource {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &MultiSource{
		cfg:      cfg,
		keywords: housingKeywords,
		logger:   logger,
		opts:     opts,
		clients:  make(map[string]*Client),
	}
}

// Name implements discovery.Source.
func (s *MultiSource) Name() meetings.Source {
	return meetings.SourceLegistar
}

// Discover implements discovery.Source.
func (s *MultiSource) Discover(ctx context.Context, params discovery.Params) ([]meetings.Record, error) {
	tenant := params.Jurisdiction.LegistarClient
	if tenant == "" {
		return nil, nil
	}
	client, err := s.clientFor(tenant)
	if err != nil {
		return nil, err
	}
	adapter := NewAdapter(client, s.keywords, s.cfg.LookbackDays, s.logger)
	return adapter.Discover(ctx, params)
}

// ClientFor exposes the per-tenant client for commands that need direct
// API access (bodies listing, event detail).
func (s *MultiSource) ClientFor(tenant string) (*Client, error) {
	return s.clientFor(tenant)
}

func (s *MultiSource) clientFor(tenant string) (*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if client, ok := s.clients[tenant]; ok {
		return client, nil
	}
	client, err := NewClient(
		s.cfg.BaseURL,
		tenant,
		s.cfg.PageSize,
		time.Duration(s.cfg.RateDelay*float64(time.Second)),
		time.Duration(s.cfg.RequestTimeout)*time.Second,
		s.opts...,
	)
	if err != nil {
		return nil, err
	}
	s.clients[tenant] = client
	return client, nil
}

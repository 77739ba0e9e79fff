package testsupport

import (
	"path/filepath"
	"testing"

	"civicintel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// API keys are set to placeholders so pipeline stages treat the services as
// configured.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = base
	cfg.Paths.AudioDir = filepath.Join(base, "audio")
	cfg.Paths.TranscriptDir = filepath.Join(base, "transcripts")
	cfg.Paths.AnalysisDir = filepath.Join(base, "analysis")
	cfg.Paths.AgendaDir = filepath.Join(base, "agendas")
	cfg.Paths.MinutesDir = filepath.Join(base, "minutes")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StorePath = filepath.Join(base, "meetings.json")
	cfg.Deepgram.APIKey = "test-deepgram-key"
	cfg.Anthropic.APIKey = "test-anthropic-key"
	cfg.Processing.RateLimitSeconds = 0

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithJurisdictions replaces the configured jurisdictions.
func WithJurisdictions(jurisdictions ...config.Jurisdiction) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Jurisdictions = jurisdictions
	}
}

// WithoutDeepgramKey clears the transcription API key.
func WithoutDeepgramKey() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Deepgram.APIKey = ""
	}
}

// WithoutAnthropicKey clears the analysis API key.
func WithoutAnthropicKey() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Anthropic.APIKey = ""
	}
}

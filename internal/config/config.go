package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for pipeline artifacts.
type Paths struct {
	DataDir       string `toml:"data_dir"`
	AudioDir      string `toml:"audio_dir"`
	TranscriptDir string `toml:"transcript_dir"`
	AnalysisDir   string `toml:"analysis_dir"`
	AgendaDir     string `toml:"agenda_dir"`
	MinutesDir    string `toml:"minutes_dir"`
	LogDir        string `toml:"log_dir"`
	StorePath     string `toml:"store_path"`
}

// Jurisdiction describes one configured city and its discovery endpoints.
// Any of the three source locators may be empty; discovery simply skips
// sources a jurisdiction does not have.
type Jurisdiction struct {
	Name           string   `toml:"name"`
	ChannelURL     string   `toml:"channel_url"`
	PortalSite     string   `toml:"portal_site"`
	LegistarClient string   `toml:"legistar_client"`
	MeetingBodies  []string `toml:"meeting_bodies"`
}

// Keywords holds the matching vocabularies used by discovery and analysis.
type Keywords struct {
	MeetingTitles []string `toml:"meeting_titles"`
	Housing       []string `toml:"housing"`
}

// Deepgram contains configuration for the transcription service.
type Deepgram struct {
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	APIKey         string `toml:"-"`
}

// Anthropic contains configuration for the analysis service.
type Anthropic struct {
	BaseURL            string `toml:"base_url"`
	Model              string `toml:"model"`
	MaxTokens          int    `toml:"max_tokens"`
	MaxTranscriptChars int    `toml:"max_transcript_chars"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
	APIKey             string `toml:"-"`
}

// Legistar contains configuration for the Legistar Web API.
type Legistar struct {
	BaseURL        string  `toml:"base_url"`
	PageSize       int     `toml:"page_size"`
	RateDelay      float64 `toml:"rate_delay_seconds"`
	LookbackDays   int     `toml:"lookback_days"`
	RequestTimeout int     `toml:"request_timeout_seconds"`
}

// Processing contains pipeline pacing and sizing settings.
type Processing struct {
	AudioFormat      string `toml:"audio_format"`
	AudioQuality     string `toml:"audio_quality"`
	RateLimitSeconds int    `toml:"rate_limit_seconds"`
	MaxPerRun        int    `toml:"max_meetings_per_run"`
	MaxPerSource     int    `toml:"max_items_per_source"`
	// MaxConcurrency is recorded but not yet enforced; the pipeline runs
	// sequentially and store writes are serialized.
	MaxConcurrency int `toml:"max_concurrency"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for civicintel.
//
// API keys are intentionally absent from the TOML surface; they are read
// from DEEPGRAM_API_KEY and ANTHROPIC_API_KEY during normalization so a
// shared config file never carries credentials.
type Config struct {
	Paths         Paths          `toml:"paths"`
	Jurisdictions []Jurisdiction `toml:"jurisdiction"`
	Keywords      Keywords       `toml:"keywords"`
	Deepgram      Deepgram       `toml:"deepgram"`
	Anthropic     Anthropic      `toml:"anthropic"`
	Legistar      Legistar       `toml:"legistar"`
	Processing    Processing     `toml:"processing"`
	Logging       Logging        `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/civicintel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and API keys resolved from the
// environment.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("civicintel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the artifact directories required for a run.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.DataDir,
		c.Paths.AudioDir,
		c.Paths.TranscriptDir,
		c.Paths.AnalysisDir,
		c.Paths.AgendaDir,
		c.Paths.MinutesDir,
		c.Paths.LogDir,
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JurisdictionByName returns the configured jurisdiction matching name.
func (c *Config) JurisdictionByName(name string) (Jurisdiction, bool) {
	for _, j := range c.Jurisdictions {
		if strings.EqualFold(j.Name, name) {
			return j, true
		}
	}
	return Jurisdiction{}, false
}

// JurisdictionNames returns the configured jurisdiction names in order.
func (c *Config) JurisdictionNames() []string {
	names := make([]string, 0, len(c.Jurisdictions))
	for _, j := range c.Jurisdictions {
		names = append(names, j.Name)
	}
	return names
}

// AudioPath returns the deterministic audio artifact path for a record ID.
// Artifact naming doubles as the stage idempotency key, so these layouts
// must stay stable across releases.
func (c *Config) AudioPath(id string) string {
	return filepath.Join(c.Paths.AudioDir, id+"."+c.Processing.AudioFormat)
}

// TranscriptPath returns the deterministic transcript artifact path for a record ID.
func (c *Config) TranscriptPath(id string) string {
	return filepath.Join(c.Paths.TranscriptDir, id+"_transcript.json")
}

// AnalysisPath returns the deterministic analysis artifact path for a record ID.
func (c *Config) AnalysisPath(id string) string {
	return filepath.Join(c.Paths.AnalysisDir, id+"_analysis.json")
}

// SummaryPath returns the deterministic summary artifact path for a record ID.
func (c *Config) SummaryPath(id string) string {
	return filepath.Join(c.Paths.AnalysisDir, id+"_summary.md")
}

// YtdlpBinary returns the listing/download executable name.
func (c *Config) YtdlpBinary() string {
	return "yt-dlp"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. API keys are deliberately
// not validated here; an unconfigured service degrades the matching stage
// at run time instead of blocking discovery.
func (c *Config) Validate() error {
	if err := c.validateJurisdictions(); err != nil {
		return err
	}
	if err := c.validateKeywords(); err != nil {
		return err
	}
	if err := c.validateServices(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateJurisdictions() error {
	if len(c.Jurisdictions) == 0 {
		return errors.New("at least one [[jurisdiction]] must be configured")
	}
	seen := make(map[string]struct{}, len(c.Jurisdictions))
	for _, j := range c.Jurisdictions {
		if j.Name == "" {
			return errors.New("jurisdiction.name must be set")
		}
		key := strings.ToLower(j.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate jurisdiction %q", j.Name)
		}
		seen[key] = struct{}{}
		if j.ChannelURL == "" && j.PortalSite == "" && j.LegistarClient == "" {
			return fmt.Errorf("jurisdiction %q has no discovery sources configured", j.Name)
		}
	}
	return nil
}

func (c *Config) validateKeywords() error {
	if len(c.Keywords.MeetingTitles) == 0 {
		return errors.New("keywords.meeting_titles must not be empty")
	}
	if len(c.Keywords.Housing) == 0 {
		return errors.New("keywords.housing must not be empty")
	}
	return nil
}

func (c *Config) validateServices() error {
	if c.Deepgram.BaseURL == "" {
		return errors.New("deepgram.base_url must be set")
	}
	if c.Anthropic.BaseURL == "" {
		return errors.New("anthropic.base_url must be set")
	}
	if c.Anthropic.MaxTokens <= 0 {
		return errors.New("anthropic.max_tokens must be positive")
	}
	if c.Anthropic.MaxTranscriptChars <= 0 {
		return errors.New("anthropic.max_transcript_chars must be positive")
	}
	if c.Legistar.BaseURL == "" {
		return errors.New("legistar.base_url must be set")
	}
	if c.Legistar.PageSize <= 0 {
		return errors.New("legistar.page_size must be positive")
	}
	if c.Legistar.RateDelay < 0 {
		return errors.New("legistar.rate_delay_seconds must not be negative")
	}
	if c.Legistar.LookbackDays <= 0 {
		return errors.New("legistar.lookback_days must be positive")
	}
	return nil
}

func (c *Config) validateProcessing() error {
	if c.Processing.AudioFormat == "" {
		return errors.New("processing.audio_format must be set")
	}
	if c.Processing.RateLimitSeconds < 0 {
		return errors.New("processing.rate_limit_seconds must not be negative")
	}
	if c.Processing.MaxPerRun <= 0 {
		return errors.New("processing.max_meetings_per_run must be positive")
	}
	if c.Processing.MaxPerSource <= 0 {
		return errors.New("processing.max_items_per_source must be positive")
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"strings"
)

// normalize expands paths, derives artifact directories from the data dir
// when unset, and resolves API keys from the environment.
func (c *Config) normalize() error {
	dataDir, err := expandPath(c.Paths.DataDir)
	if err != nil {
		return err
	}
	c.Paths.DataDir = dataDir

	derive := func(current, child string) (string, error) {
		if strings.TrimSpace(current) == "" {
			return filepath.Join(dataDir, child), nil
		}
		return expandPath(current)
	}

	if c.Paths.AudioDir, err = derive(c.Paths.AudioDir, "audio"); err != nil {
		return err
	}
	if c.Paths.TranscriptDir, err = derive(c.Paths.TranscriptDir, "transcripts"); err != nil {
		return err
	}
	if c.Paths.AnalysisDir, err = derive(c.Paths.AnalysisDir, "analysis"); err != nil {
		return err
	}
	if c.Paths.AgendaDir, err = derive(c.Paths.AgendaDir, "agendas"); err != nil {
		return err
	}
	if c.Paths.MinutesDir, err = derive(c.Paths.MinutesDir, "minutes"); err != nil {
		return err
	}
	if c.Paths.StorePath, err = derive(c.Paths.StorePath, "meetings.json"); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	for i := range c.Jurisdictions {
		c.Jurisdictions[i].Name = strings.TrimSpace(c.Jurisdictions[i].Name)
		c.Jurisdictions[i].ChannelURL = strings.TrimSpace(c.Jurisdictions[i].ChannelURL)
		c.Jurisdictions[i].PortalSite = strings.TrimSpace(c.Jurisdictions[i].PortalSite)
		c.Jurisdictions[i].LegistarClient = strings.TrimSpace(c.Jurisdictions[i].LegistarClient)
	}

	c.Deepgram.APIKey = strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY"))
	c.Anthropic.APIKey = strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))

	return nil
}

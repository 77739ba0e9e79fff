package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"civicintel/internal/analysis"
	"civicintel/internal/config"
	"civicintel/internal/fileutil"
	"civicintel/internal/meetings"
	"civicintel/internal/services/anthropic"
)

// Transcriber is the slice of the Deepgram client the pipeline needs.
type Transcriber interface {
	HasKey() bool
	TranscribeFile(ctx context.Context, audioPath string) ([]byte, error)
}

// Analyzer is the slice of the Anthropic client the pipeline needs.
type Analyzer interface {
	HasKey() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

// VideoResolver upgrades a record's video URL to a directly downloadable
// media URL just before acquisition. Sources whose listings carry
// player-page URLs implement it.
type VideoResolver interface {
	ResolveVideo(ctx context.Context, j config.Jurisdiction, rec meetings.Record) (string, error)
}

// acquire downloads the record's audio, or returns the existing file.
// Existence of the artifact is the cache key; a present file is never
// re-downloaded.
func (r *Runner) acquire(ctx context.Context, rec *meetings.Record) (string, error) {
	dest := r.cfg.AudioPath(rec.ID)
	if _, err := os.Stat(dest); err == nil {
		r.logger.Info("audio already exists", logStageAttrs(rec, "acquire")...)
		return dest, nil
	}
	if rec.VideoURL == "" {
		return "", fmt.Errorf("record has no video url")
	}
	url := r.resolveVideoURL(ctx, rec)
	return r.downloader.DownloadAudio(ctx, url, dest,
		r.cfg.Processing.AudioFormat, r.cfg.Processing.AudioQuality)
}

// resolveVideoURL asks the configured resolver for the record's direct
// media URL. Resolution failures fall back to the record's own URL; the
// downloader may still cope with a player page.
func (r *Runner) resolveVideoURL(ctx context.Context, rec *meetings.Record) string {
	if r.resolver == nil || rec.Source != meetings.SourcePortal {
		return rec.VideoURL
	}
	jurisdiction, ok := r.cfg.JurisdictionByName(rec.Jurisdiction)
	if !ok {
		return rec.VideoURL
	}
	resolved, err := r.resolver.ResolveVideo(ctx, jurisdiction, *rec)
	if err != nil {
		r.logger.Warn("video url resolution failed; using listing url",
			logStageAttrs(rec, "acquire")...)
		return rec.VideoURL
	}
	if resolved != rec.VideoURL {
		r.logger.Info("resolved direct media url", logStageAttrs(rec, "acquire")...)
	}
	return resolved
}

// transcribe produces the raw transcript artifact for a record, returning
// its path. The raw API response is persisted verbatim so a re-run never
// pays for the same transcription twice.
func (r *Runner) transcribe(ctx context.Context, rec *meetings.Record, audioPath string) (string, error) {
	dest := r.cfg.TranscriptPath(rec.ID)
	if _, err := os.Stat(dest); err == nil {
		r.logger.Info("transcript already exists", logStageAttrs(rec, "transcribe")...)
		return dest, nil
	}

	raw, err := r.transcriber.TranscribeFile(ctx, audioPath)
	if err != nil {
		return "", err
	}
	if err := fileutil.WriteFileAtomic(dest, raw, 0o644); err != nil {
		return "", fmt.Errorf("persist transcript: %w", err)
	}
	return dest, nil
}

// analyze runs the model over the transcript text and persists both the
// analysis JSON and its markdown summary. A previously saved analysis is
// reused, including the unparseable-response marker: the raw text was
// already paid for, so the record completes with the marker as its
// analysis rather than re-billing the model on every run.
func (r *Runner) analyze(ctx context.Context, rec *meetings.Record, transcript string) (map[string]any, error) {
	dest := r.cfg.AnalysisPath(rec.ID)
	if cached, ok := loadCachedAnalysis(dest); ok {
		r.logger.Info("analysis already exists", logStageAttrs(rec, "analyze")...)
		return cached, nil
	}

	prompt := anthropic.BuildAnalysisPrompt(
		rec.Jurisdiction, rec.Title, rec.Date, transcript,
		r.cfg.Anthropic.MaxTranscriptChars)

	text, err := r.analyzer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	obj := analysis.ExtractObject(text)
	if err := writeJSON(dest, obj); err != nil {
		return nil, err
	}
	if obj["parse_error"] == true {
		r.logger.Warn("model response was not parseable JSON; keeping raw marker",
			logStageAttrs(rec, "analyze")...)
	}

	summary := analysis.RenderSummary(obj, *rec)
	summaryPath := r.cfg.SummaryPath(rec.ID)
	if err := fileutil.WriteFileAtomic(summaryPath, []byte(summary), 0o644); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}
	return obj, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return data, nil
}

// loadCachedAnalysis returns a previously persisted analysis object,
// marker objects included. Only corrupt files read as cache misses.
func loadCachedAnalysis(path string) (map[string]any, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func writeJSON(path string, obj map[string]any) error {
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}

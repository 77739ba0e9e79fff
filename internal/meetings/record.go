package meetings

import "strings"

// Source identifies which discovery adapter produced a record. The wire
// values match the artifact layout of prior deployments and must not change.
type Source string

const (
	SourceChannel  Source = "youtube"
	SourcePortal   Source = "granicus"
	SourceLegistar Source = "legistar"
)

// Error tags persisted on a record when a pipeline stage fails. All are
// recoverable by re-running; Processed is the only terminal state.
const (
	ErrTagDownloadFailed      = "download_failed"
	ErrTagTranscriptionFailed = "transcription_failed"
	ErrTagNoDeepgramKey       = "no_deepgram_key"
	ErrTagEmptyTranscript     = "empty_transcript"
	ErrTagAnalysisFailed      = "analysis_failed"
	ErrTagNoAnthropicKey      = "no_anthropic_key"
	ErrTagUnexpected          = "unexpected_error"
)

// Record represents one discovered legislative session.
//
// The ID is globally unique and source-qualified (channel video IDs are
// used bare; portal and Legistar records carry a source prefix). Artifact
// path fields are monotonic: once a stage sets one it is never cleared by
// a later stage.
type Record struct {
	ID                    string  `json:"id"`
	Jurisdiction          string  `json:"jurisdiction"`
	Title                 string  `json:"title"`
	Date                  string  `json:"date"` // ISO YYYY-MM-DD, empty when undeterminable
	VideoURL              string  `json:"video_url"`
	Source                Source  `json:"source"`
	DurationMinutes       float64 `json:"duration_minutes"`
	AudioPath             string  `json:"audio_path"`
	TranscriptPath        string  `json:"transcript_path"`
	AnalysisPath          string  `json:"analysis_path"`
	SummaryPath           string  `json:"summary_path"`
	HousingMentions       int     `json:"housing_mentions"`
	HousingRelevanceScore float64 `json:"housing_relevance_score"`
	Processed             bool    `json:"processed"`
	Error                 string  `json:"error"`
}

// MarkProcessed flips the record into its terminal state. It refuses to do
// so while an analysis artifact is missing, preserving the invariant that
// processed records always have one.
func (r *Record) MarkProcessed() bool {
	if strings.TrimSpace(r.AnalysisPath) == "" {
		return false
	}
	r.Processed = true
	r.Error = ""
	return true
}

// MarkFailed records an error tag without touching artifact paths, so
// partial progress survives for the next run's cache checks.
func (r *Record) MarkFailed(tag string) {
	r.Error = tag
	r.Processed = false
}

// HighRelevance reports whether the record cleared the reporting threshold.
func (r Record) HighRelevance() bool {
	return r.HousingRelevanceScore >= 0.5
}

// ParseSource converts a string into a known Source.
func ParseSource(value string) (Source, bool) {
	normalized := Source(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case SourceChannel, SourcePortal, SourceLegistar:
		return normalized, true
	}
	return "", false
}

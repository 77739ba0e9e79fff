// Package pipeline orchestrates the meeting ingestion flow: discover
// candidate meetings, acquire audio, transcribe, and analyze. Every
// transition is persisted to the store, and every stage caches by
// artifact existence, so an interrupted run resumes where it stopped.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"civicintel/internal/analysis"
	"civicintel/internal/config"
	"civicintel/internal/discovery"
	"civicintel/internal/logging"
	"civicintel/internal/meetings"
	"civicintel/internal/services/deepgram"
	"civicintel/internal/services/ytdlp"
)

// Options selects what one pipeline run covers.
type Options struct {
	// Jurisdictions limits the run to the named jurisdictions. Empty
	// means all configured jurisdictions.
	Jurisdictions []string
	// Limit overrides the per-source discovery limit.
	Limit int
	// Sources restricts discovery to the named sources ("youtube",
	// "granicus", "legistar"). Empty means all.
	Sources []string
	// SkipDiscovery processes the existing backlog without contacting
	// any source.
	SkipDiscovery bool
	// DiscoveryOnly stops after discovery; nothing is downloaded or
	// analyzed.
	DiscoveryOnly bool
	// RunID labels all log lines of this run.
	RunID string
}

// JurisdictionSummary is the per-jurisdiction outcome of a run.
type JurisdictionSummary struct {
	Name          string
	Discovered    int
	Processed     int
	HighRelevance int
}

// Summary is the outcome of one pipeline run.
type Summary struct {
	Jurisdictions  []JurisdictionSummary
	TotalMeetings  int
	TotalProcessed int
	NewlyFound     int
	Failed         int
}

// Runner drives the pipeline over a store and a set of discovery sources.
type Runner struct {
	cfg         *config.Config
	store       *meetings.Store
	sources     []discovery.Source
	downloader  ytdlp.Downloader
	transcriber Transcriber
	analyzer    Analyzer
	matcher     *analysis.Matcher
	resolver    VideoResolver
	sleep       func(time.Duration)
	logger      *slog.Logger
}

// NewRunner wires a pipeline runner. Sources run in the order given.
func NewRunner(
	cfg *config.Config,
	store *meetings.Store,
	sources []discovery.Source,
	downloader ytdlp.Downloader,
	transcriber Transcriber,
	analyzer Analyzer,
	logger *slog.Logger,
) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:         cfg,
		store:       store,
		sources:     sources,
		downloader:  downloader,
		transcriber: transcriber,
		analyzer:    analyzer,
		matcher:     analysis.NewMatcher(cfg.Keywords.Housing),
		sleep:       time.Sleep,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
	}
}

// WithVideoResolver installs a resolver that turns player-page video URLs
// into direct media URLs before download.
func (r *Runner) WithVideoResolver(resolver VideoResolver) *Runner {
	r.resolver = resolver
	return r
}

// WithSleeper replaces the politeness sleep between records (for tests).
func (r *Runner) WithSleeper(sleep func(time.Duration)) *Runner {
	if sleep != nil {
		r.sleep = sleep
	}
	return r
}

// Run executes one full pipeline pass and returns its summary. Failures
// of individual records never abort the run; they are tagged on the
// record and the run moves on.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	logger := r.logger
	if opts.RunID != "" {
		logger = r.logger.With(logging.String(logging.FieldRunID, opts.RunID))
	}

	scope := r.scopeNames(opts.Jurisdictions)

	var summary Summary
	if !opts.SkipDiscovery {
		summary.NewlyFound = r.discover(ctx, logger, scope, opts)
	}
	if opts.DiscoveryOnly {
		r.fillSummary(&summary, scope)
		return summary, nil
	}

	backlog := r.backlog(scope)
	logger.Info("processing backlog", logging.Int("meetings", len(backlog)))

	for idx, rec := range backlog {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		logger.Info("processing meeting",
			logging.String(logging.FieldMeetingID, rec.ID),
			logging.String(logging.FieldJurisdiction, rec.Jurisdiction),
			logging.String("title", rec.Title),
			logging.Int("position", idx+1),
			logging.Int("total", len(backlog)))

		r.processGuarded(ctx, logger, rec)

		if idx < len(backlog)-1 && r.cfg.Processing.RateLimitSeconds > 0 {
			r.sleep(time.Duration(r.cfg.Processing.RateLimitSeconds) * time.Second)
		}
	}

	r.fillSummary(&summary, scope)
	return summary, nil
}

// discover runs every source for every jurisdiction in scope, inserting
// records the store has not seen. Known IDs are left untouched so prior
// progress survives re-discovery.
func (r *Runner) discover(ctx context.Context, logger *slog.Logger, scope []string, opts Options) int {
	limit := opts.Limit
	if limit <= 0 {
		limit = r.cfg.Processing.MaxPerSource
	}
	wanted := make(map[meetings.Source]struct{}, len(opts.Sources))
	for _, name := range opts.Sources {
		if src, ok := meetings.ParseSource(name); ok {
			wanted[src] = struct{}{}
		} else {
			logger.Warn("unknown source", logging.String(logging.FieldSource, name))
		}
	}

	newlyFound := 0
	for _, name := range scope {
		jurisdiction, ok := r.cfg.JurisdictionByName(name)
		if !ok {
			logger.Warn("unknown jurisdiction", logging.String(logging.FieldJurisdiction, name))
			continue
		}
		for _, source := range r.sources {
			if len(wanted) > 0 {
				if _, ok := wanted[source.Name()]; !ok {
					continue
				}
			}
			records, err := source.Discover(ctx, discovery.Params{
				Jurisdiction: jurisdiction,
				Limit:        limit,
			})
			if err != nil {
				logger.Error("discovery source failed",
					logging.String(logging.FieldJurisdiction, name),
					logging.String(logging.FieldSource, string(source.Name())),
					logging.Error(err))
				continue
			}
			for _, rec := range records {
				if _, known := r.store.Get(rec.ID); known {
					continue
				}
				if err := r.store.Upsert(rec); err != nil {
					logger.Error("store insert failed",
						logging.String(logging.FieldMeetingID, rec.ID),
						logging.Error(err))
					continue
				}
				newlyFound++
			}
		}
	}
	logger.Info("discovery complete", logging.Int("new_meetings", newlyFound))
	return newlyFound
}

// scopeNames resolves requested jurisdiction names to their configured
// spellings so downstream lookups and summaries agree. Unknown names pass
// through and get warned about during discovery.
func (r *Runner) scopeNames(requested []string) []string {
	if len(requested) == 0 {
		return r.cfg.JurisdictionNames()
	}
	scope := make([]string, len(requested))
	for i, name := range requested {
		scope[i] = name
		if jur, ok := r.cfg.JurisdictionByName(name); ok {
			scope[i] = jur.Name
		}
	}
	return scope
}

// backlog lists the unprocessed records of the scoped jurisdictions.
// Scope names match case-insensitively, like jurisdiction lookups do.
func (r *Runner) backlog(scope []string) []meetings.Record {
	inScope := make(map[string]struct{}, len(scope))
	for _, name := range scope {
		inScope[strings.ToLower(name)] = struct{}{}
	}

	var backlog []meetings.Record
	for _, rec := range r.store.ListUnprocessed() {
		if _, ok := inScope[strings.ToLower(rec.Jurisdiction)]; !ok {
			continue
		}
		backlog = append(backlog, rec)
		if r.cfg.Processing.MaxPerRun > 0 && len(backlog) >= r.cfg.Processing.MaxPerRun {
			break
		}
	}
	return backlog
}

// processGuarded isolates one record's processing. A panic inside a stage
// tags the record instead of killing the run.
func (r *Runner) processGuarded(ctx context.Context, logger *slog.Logger, rec meetings.Record) {
	defer func() {
		if cause := recover(); cause != nil {
			logger.Error("unexpected processing failure",
				logging.String(logging.FieldMeetingID, rec.ID),
				logging.Any("panic", cause))
			rec.MarkFailed(meetings.ErrTagUnexpected)
			if err := r.store.Upsert(rec); err != nil {
				logger.Error("store update failed", logging.Error(err))
			}
		}
	}()
	r.process(ctx, logger, rec)
}

func (r *Runner) process(ctx context.Context, logger *slog.Logger, rec meetings.Record) {
	fail := func(tag string, err error) {
		logger.Warn("stage failed",
			logging.String(logging.FieldMeetingID, rec.ID),
			logging.String(logging.FieldErrorHint, tag),
			logging.Error(err))
		rec.MarkFailed(tag)
		if upsertErr := r.store.Upsert(rec); upsertErr != nil {
			logger.Error("store update failed", logging.Error(upsertErr))
		}
	}

	audioPath, err := r.acquire(ctx, &rec)
	if err != nil {
		fail(meetings.ErrTagDownloadFailed, err)
		return
	}
	rec.AudioPath = audioPath
	if err := r.store.Upsert(rec); err != nil {
		logger.Error("store update failed", logging.Error(err))
	}

	if !r.transcriber.HasKey() {
		fail(meetings.ErrTagNoDeepgramKey, nil)
		return
	}
	transcriptPath, err := r.transcribe(ctx, &rec, audioPath)
	if err != nil {
		fail(meetings.ErrTagTranscriptionFailed, err)
		return
	}
	rec.TranscriptPath = transcriptPath
	if err := r.store.Upsert(rec); err != nil {
		logger.Error("store update failed", logging.Error(err))
	}

	raw, err := readFile(transcriptPath)
	if err != nil {
		fail(meetings.ErrTagTranscriptionFailed, err)
		return
	}
	transcript, err := deepgram.FormatTranscript(raw)
	if err != nil {
		fail(meetings.ErrTagTranscriptionFailed, err)
		return
	}
	if transcript == "" {
		fail(meetings.ErrTagEmptyTranscript, nil)
		return
	}

	rec.HousingMentions = r.matcher.Count(transcript)

	if !r.analyzer.HasKey() {
		fail(meetings.ErrTagNoAnthropicKey, nil)
		return
	}
	obj, err := r.analyze(ctx, &rec, transcript)
	if err != nil {
		fail(meetings.ErrTagAnalysisFailed, err)
		return
	}

	rec.AnalysisPath = r.cfg.AnalysisPath(rec.ID)
	rec.SummaryPath = r.cfg.SummaryPath(rec.ID)
	rec.HousingRelevanceScore = analysis.RelevanceScore(obj)
	if !rec.MarkProcessed() {
		fail(meetings.ErrTagUnexpected, fmt.Errorf("record not completable"))
		return
	}
	if err := r.store.Upsert(rec); err != nil {
		logger.Error("store update failed", logging.Error(err))
		return
	}

	logger.Info("meeting processed",
		logging.String(logging.FieldMeetingID, rec.ID),
		logging.Int("housing_mentions", rec.HousingMentions),
		logging.Float64("relevance", rec.HousingRelevanceScore))
}

func (r *Runner) fillSummary(summary *Summary, scope []string) {
	for _, name := range scope {
		js := JurisdictionSummary{Name: name}
		for _, rec := range r.store.ListByJurisdiction(name) {
			js.Discovered++
			if rec.Processed {
				js.Processed++
				if rec.HighRelevance() {
					js.HighRelevance++
				}
			} else if rec.Error != "" {
				summary.Failed++
			}
		}
		summary.Jurisdictions = append(summary.Jurisdictions, js)
	}
	summary.TotalMeetings = r.store.Count()
	for _, rec := range r.store.All() {
		if rec.Processed {
			summary.TotalProcessed++
		}
	}
}

func logStageAttrs(rec *meetings.Record, stage string) []any {
	return logging.Args(
		logging.String(logging.FieldMeetingID, rec.ID),
		logging.String(logging.FieldStage, stage),
	)
}

package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"civicintel/internal/discovery"
	"civicintel/internal/discovery/channel"
	"civicintel/internal/discovery/legistar"
	"civicintel/internal/discovery/portal"
	"civicintel/internal/meetings"
	"civicintel/internal/pipeline"
	"civicintel/internal/services/anthropic"
	"civicintel/internal/services/deepgram"
	"civicintel/internal/services/ytdlp"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		jurisdictions []string
		sources       []string
		limit         int
		skipDiscovery bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Discover, transcribe, and analyze meetings",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			runner, store, err := buildRunner(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			summary, err := runner.Run(runCtx, pipeline.Options{
				Jurisdictions: jurisdictions,
				Sources:       sources,
				Limit:         limit,
				SkipDiscovery: skipDiscovery,
				RunID:         uuid.NewString(),
			})
			if err != nil {
				return err
			}

			printRunSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&jurisdictions, "jurisdiction", nil, "Limit the run to the named jurisdictions")
	cmd.Flags().StringSliceVar(&sources, "source", nil, "Limit discovery to the named sources (youtube, granicus, legistar)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Override the per-source discovery limit")
	cmd.Flags().BoolVar(&skipDiscovery, "skip-discovery", false, "Process the existing backlog without contacting sources")

	return cmd
}

func buildRunner(ctx *commandContext) (*pipeline.Runner, *meetings.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	store, err := ctx.openStore()
	if err != nil {
		return nil, nil, err
	}

	yt, err := ytdlp.New(cfg.YtdlpBinary())
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	portalSource := portal.NewSource(logger)
	sources := []discovery.Source{
		channel.New(yt, cfg.Keywords.MeetingTitles, logger),
		portalSource,
		legistar.NewSource(cfg.Legistar, cfg.Keywords.Housing, logger),
	}

	transcriber := deepgram.New(
		cfg.Deepgram.BaseURL,
		cfg.Deepgram.APIKey,
		cfg.Deepgram.Model,
		cfg.Deepgram.Language,
		time.Duration(cfg.Deepgram.TimeoutSeconds)*time.Second,
	)
	analyzer := anthropic.New(
		cfg.Anthropic.BaseURL,
		cfg.Anthropic.APIKey,
		cfg.Anthropic.Model,
		cfg.Anthropic.MaxTokens,
		time.Duration(cfg.Anthropic.TimeoutSeconds)*time.Second,
	)

	runner := pipeline.NewRunner(cfg, store, sources, yt, transcriber, analyzer, logger).
		WithVideoResolver(portalSource)
	return runner, store, nil
}

func printRunSummary(cmd *cobra.Command, summary pipeline.Summary) {
	headers := []string{"Jurisdiction", "Discovered", "Processed", "High Relevance"}
	rows := make([][]string, 0, len(summary.Jurisdictions))
	for _, j := range summary.Jurisdictions {
		rows = append(rows, []string{
			j.Name,
			strconv.Itoa(j.Discovered),
			strconv.Itoa(j.Processed),
			strconv.Itoa(j.HighRelevance),
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(headers, rows, 1, 2, 3))
	fmt.Fprintf(out, "Meetings tracked: %d (%d new this run)\n", summary.TotalMeetings, summary.NewlyFound)
	fmt.Fprintf(out, "Processed: %d  Failed: %d\n", summary.TotalProcessed, summary.Failed)
}

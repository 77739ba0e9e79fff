package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"civicintel/internal/discovery"
	"civicintel/internal/discovery/portal"
	"civicintel/internal/pipeline"
)

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	var (
		jurisdictions []string
		sources       []string
		limit         int
		downloadDocs  bool
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find new meetings without downloading or analyzing them",
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
				DiscoveryOnly: true,
				RunID:         uuid.NewString(),
			})
			if err != nil {
				return err
			}

			headers := []string{"Jurisdiction", "Discovered"}
			rows := make([][]string, 0, len(summary.Jurisdictions))
			for _, j := range summary.Jurisdictions {
				rows = append(rows, []string{j.Name, strconv.Itoa(j.Discovered)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(headers, rows, 1))
			fmt.Fprintf(out, "Meetings tracked: %d (%d new)\n", summary.TotalMeetings, summary.NewlyFound)

			if downloadDocs {
				return downloadPortalDocuments(runCtx, cmd, ctx, jurisdictions, limit)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&jurisdictions, "jurisdiction", nil, "Limit discovery to the named jurisdictions")
	cmd.Flags().StringSliceVar(&sources, "source", nil, "Limit discovery to the named sources (youtube, granicus, legistar)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Override the per-source discovery limit")
	cmd.Flags().BoolVar(&downloadDocs, "download-documents", false, "Also download published agenda and minutes documents from portal sites")

	return cmd
}

// downloadPortalDocuments saves agenda and minutes documents for every
// scoped jurisdiction that has a portal site configured.
func downloadPortalDocuments(runCtx context.Context, cmd *cobra.Command, ctx *commandContext, requested []string, limit int) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	if limit <= 0 {
		limit = cfg.Processing.MaxPerSource
	}

	scope := cfg.Jurisdictions
	if len(requested) > 0 {
		scope = nil
		for _, name := range requested {
			if jur, ok := cfg.JurisdictionByName(name); ok {
				scope = append(scope, jur)
			}
		}
	}

	source := portal.NewSource(logger)
	out := cmd.OutOrStdout()
	for _, jurisdiction := range scope {
		if jurisdiction.PortalSite == "" {
			continue
		}
		saved, err := source.DownloadDocuments(runCtx, discovery.Params{
			Jurisdiction: jurisdiction,
			Limit:        limit,
		}, cfg.Paths.AgendaDir, cfg.Paths.MinutesDir)
		if err != nil {
			return fmt.Errorf("download documents for %s: %w", jurisdiction.Name, err)
		}
		fmt.Fprintf(out, "%s: %d documents saved\n", jurisdiction.Name, len(saved))
	}
	return nil
}

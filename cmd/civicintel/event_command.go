package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"civicintel/internal/discovery/legistar"
)

func newEventCommand(ctx *commandContext) *cobra.Command {
	var (
		jurisdiction    string
		downloadAgenda  bool
		downloadMinutes bool
	)

	cmd := &cobra.Command{
		Use:   "event <event-id>",
		Short: "Show a Legistar event with its agenda items and votes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("event id must be numeric: %q", args[0])
			}

			client, err := legistarClientForJurisdiction(ctx, jurisdiction)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			event, err := client.EventDetail(cmd.Context(), eventID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, legistar.FormatAgendaText(event))

			if downloadAgenda {
				path, err := client.DownloadAgenda(cmd.Context(), event, cfg.Paths.AgendaDir, logger)
				if err != nil {
					return err
				}
				if path == "" {
					fmt.Fprintln(out, "No agenda document published for this event.")
				} else {
					fmt.Fprintf(out, "Agenda saved to %s\n", path)
				}
			}
			if downloadMinutes {
				path, err := client.DownloadMinutes(cmd.Context(), event, cfg.Paths.MinutesDir, logger)
				if err != nil {
					return err
				}
				if path == "" {
					fmt.Fprintln(out, "No minutes document published for this event.")
				} else {
					fmt.Fprintf(out, "Minutes saved to %s\n", path)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&jurisdiction, "jurisdiction", "", "Configured jurisdiction name (required)")
	cmd.Flags().BoolVar(&downloadAgenda, "download-agenda", false, "Download the agenda document")
	cmd.Flags().BoolVar(&downloadMinutes, "download-minutes", false, "Download the minutes document")
	cmd.MarkFlagRequired("jurisdiction") //nolint:errcheck

	return cmd
}

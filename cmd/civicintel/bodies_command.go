package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"civicintel/internal/discovery/legistar"
)

func newBodiesCommand(ctx *commandContext) *cobra.Command {
	var jurisdiction string

	cmd := &cobra.Command{
		Use:   "bodies",
		Short: "List the legislative bodies of a Legistar jurisdiction",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := legistarClientForJurisdiction(ctx, jurisdiction)
			if err != nil {
				return err
			}

			bodies, err := client.Bodies(cmd.Context())
			if err != nil {
				return err
			}

			headers := []string{"ID", "Name", "Type", "Housing"}
			rows := make([][]string, 0, len(bodies))
			for _, body := range bodies {
				housing := ""
				if legistar.HousingBody(body.Name) {
					housing = "yes"
				}
				rows = append(rows, []string{strconv.Itoa(body.ID), body.Name, body.TypeName, housing})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, 0))
			return nil
		},
	}

	cmd.Flags().StringVar(&jurisdiction, "jurisdiction", "", "Configured jurisdiction name (required)")
	cmd.MarkFlagRequired("jurisdiction") //nolint:errcheck

	return cmd
}

func legistarClientForJurisdiction(ctx *commandContext, name string) (*legistar.Client, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}

	jur, ok := cfg.JurisdictionByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown jurisdiction %q", name)
	}
	if jur.LegistarClient == "" {
		return nil, fmt.Errorf("jurisdiction %q has no legistar_client configured", name)
	}

	source := legistar.NewSource(cfg.Legistar, cfg.Keywords.Housing, logger)
	return source.ClientFor(jur.LegistarClient)
}

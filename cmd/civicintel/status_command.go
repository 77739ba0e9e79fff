package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"civicintel/internal/meetings"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var (
		jurisdiction string
		showAll      bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show tracked meetings and pipeline progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			records := store.All()
			if jurisdiction != "" {
				records = store.ListByJurisdiction(jurisdiction)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(records)
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No meetings tracked yet. Run \"civicintel discover\" first.")
				return nil
			}

			fmt.Fprintln(out, renderStatusOverview(records))
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderMeetingRows(records, showAll))
			return nil
		},
	}

	cmd.Flags().StringVar(&jurisdiction, "jurisdiction", "", "Limit output to one jurisdiction")
	cmd.Flags().BoolVar(&showAll, "all", false, "List every record instead of the most recent 25")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit records as JSON instead of tables")

	return cmd
}

func renderStatusOverview(records []meetings.Record) string {
	type tally struct {
		discovered    int
		processed     int
		failed        int
		highRelevance int
	}
	byJurisdiction := map[string]*tally{}
	order := []string{}
	for _, rec := range records {
		t, ok := byJurisdiction[rec.Jurisdiction]
		if !ok {
			t = &tally{}
			byJurisdiction[rec.Jurisdiction] = t
			order = append(order, rec.Jurisdiction)
		}
		t.discovered++
		if rec.Processed {
			t.processed++
		}
		if rec.Error != "" {
			t.failed++
		}
		if rec.HighRelevance() {
			t.highRelevance++
		}
	}

	headers := []string{"Jurisdiction", "Tracked", "Processed", "Failed", "High Relevance"}
	rows := make([][]string, 0, len(order))
	for _, name := range order {
		t := byJurisdiction[name]
		rows = append(rows, []string{
			name,
			strconv.Itoa(t.discovered),
			strconv.Itoa(t.processed),
			strconv.Itoa(t.failed),
			strconv.Itoa(t.highRelevance),
		})
	}
	return renderTable(headers, rows, 1, 2, 3, 4)
}

func renderMeetingRows(records []meetings.Record, showAll bool) string {
	const recent = 25
	if !showAll && len(records) > recent {
		records = records[:recent]
	}

	headers := []string{"ID", "Date", "Jurisdiction", "Title", "Source", "Score", "State"}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.ID,
			valueOrDash(rec.Date),
			rec.Jurisdiction,
			truncateTitle(rec.Title, 48),
			string(rec.Source),
			fmt.Sprintf("%.2f", rec.HousingRelevanceScore),
			recordState(rec),
		})
	}
	return renderTable(headers, rows, 5)
}

func recordState(rec meetings.Record) string {
	switch {
	case rec.Processed:
		return "processed"
	case rec.Error != "":
		return rec.Error
	case rec.TranscriptPath != "":
		return "transcribed"
	case rec.AudioPath != "":
		return "downloaded"
	default:
		return "pending"
	}
}

func truncateTitle(title string, max int) string {
	title = strings.TrimSpace(title)
	if len(title) <= max {
		return title
	}
	if max <= 3 {
		return title[:max]
	}
	return title[:max-3] + "..."
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

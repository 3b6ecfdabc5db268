package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/azdolinski/emissary/internal/model"
	"github.com/azdolinski/emissary/internal/report"
)

// defaultHistoryLimit is the number of runs listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [profile]",
		Short: "List past runs",
		Long: `History lists stored run reports, most recent first.

Examples:
  # Last runs of every profile
  emissary history

  # Last five runs of one profile
  emissary history blog --limit 5

  # Show one run in full
  emissary history --run 12 --format markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: withApp(runHistoryCmd),
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of runs to list (0 for all)")
	cmd.Flags().Int64("run", 0, "Print the full report of one run by ID")
	cmd.Flags().String("format", report.FormatText, "Report format for --run: text, html, json or markdown")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	runID, err := flags.GetInt64("run")
	if err != nil {
		return err
	}

	var profileID string
	if len(args) == 1 {
		p, _, err := a.findProfile(ctx, args[0])
		if err != nil {
			return err
		}
		profileID = p.ID
	}

	if runID > 0 {
		// A run ID is unique, so list everything and pick it out.
		limit = 0
	}
	reports, err := a.db.ListRuns(ctx, profileID, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if runID > 0 {
		format, err := flags.GetString("format")
		if err != nil {
			return err
		}
		for _, rep := range reports {
			if rep.RunID == runID {
				w, err := report.NewWriter(format, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				_, err = w.Write(rep)
				return err
			}
		}
		return fmt.Errorf("run %d not found", runID)
	}

	if len(reports) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs found.")
		return nil
	}
	return writeHistoryTable(cmd, reports)
}

func writeHistoryTable(cmd *cobra.Command, reports []*model.ExecutionReport) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Run", "Profile", "Started", "Duration", "Succeeded", "Failed")
	for _, rep := range reports {
		if err := table.Append([]string{
			strconv.FormatInt(rep.RunID, 10),
			rep.ProfileName,
			humanize.Time(rep.StartedAt),
			rep.Duration().Round(time.Millisecond).String(),
			strconv.Itoa(rep.SuccessCount()),
			strconv.Itoa(rep.FailureCount()),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

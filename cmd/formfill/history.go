package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/formfill/internal/db"
)

var historyCommand = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded fill passes, or the answers given in one",
	Long: `Reads fill history from PostgreSQL (--db-url or $DATABASE_URL). Without an
argument the most recent passes are listed; with a run ID every question of
that pass is shown with the answer and the rule that produced it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var historyLimit int

func init() {
	historyCommand.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to list")
	rootCmd.AddCommand(historyCommand)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if settings.DatabaseURL == "" {
		return fmt.Errorf("history needs a database: set --db-url or $%s", envDB)
	}

	var runID uuid.UUID
	if len(args) == 1 {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}
		runID = id
	}

	ctx := context.Background()
	store, err := openHistory(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if runID == uuid.Nil {
		runs, err := store.ListRuns(ctx, historyLimit)
		if err != nil {
			return err
		}
		printRuns(out, runs)
		return nil
	}

	run, err := store.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}
	results, err := store.ListResults(ctx, runID)
	if err != nil {
		return err
	}
	printRunDetail(out, run, results)
	return nil
}

func printRuns(out io.Writer, runs []db.Run) {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, "No fill passes recorded yet.")
		return
	}
	for _, r := range runs {
		_, _ = fmt.Fprintf(out, "%s  %s  %-9s filled %d, skipped %d, failed %d  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Status,
			r.Filled, r.Skipped, r.Failed, r.FormURL)
	}
}

func printRunDetail(out io.Writer, run *db.Run, results []db.ResultRow) {
	_, _ = fmt.Fprintf(out, "Run:     %s\n", run.ID)
	_, _ = fmt.Fprintf(out, "Form:    %s\n", run.FormURL)
	_, _ = fmt.Fprintf(out, "Started: %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(out, "Status:  %s\n\n", run.Status)

	for _, r := range results {
		line := fmt.Sprintf("%2d. [%-7s] %s", r.Position+1, r.Outcome, r.QuestionText)
		if r.Value != nil {
			line += " -> " + *r.Value
		}
		if r.Rule != nil {
			line += "  (" + *r.Rule + ")"
		}
		if r.ErrorMessage != nil {
			line += "  error: " + *r.ErrorMessage
		}
		_, _ = fmt.Fprintln(out, line)
	}
}

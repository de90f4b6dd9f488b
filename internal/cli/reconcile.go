package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klokku/calsync/internal/app"
	"github.com/klokku/calsync/pkg/event"
	"github.com/klokku/calsync/pkg/reconciliation"
	"github.com/spf13/cobra"
)

func newReconcileCommand(root *rootOptions) *cobra.Command {
	var dryRun bool
	var from, to string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile both calendars with the local event files",
		Long: `Reconcile compares local events with the remote calendars over the default
window (or --from/--to) and applies the needed changes. With --dry-run it only
prints the planned actions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseWindow(from, to)
			if err != nil {
				return err
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			deps, err := app.BuildDependencies(cfg)
			if err != nil {
				return err
			}
			defer deps.Close()

			if from == "" {
				start, end = deps.Reconciler.DefaultWindow()
			}

			result, err := deps.Reconciler.ReconcileBetween(cmd.Context(), start, end, dryRun)
			printResult(cmd.OutOrStdout(), result)
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only print the planned actions")
	cmd.Flags().StringVar(&from, "from", "", "window start, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "window end, YYYY-MM-DD")
	return cmd
}

// parseWindow validates --from/--to. Both empty returns zero times.
func parseWindow(from, to string) (time.Time, time.Time, error) {
	if (from == "") != (to == "") {
		return time.Time{}, time.Time{}, errors.New("--from and --to must be given together")
	}
	if from == "" {
		return time.Time{}, time.Time{}, nil
	}
	start, err := event.ParseDate(from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
	}
	end, err := event.ParseDate(to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", to, from)
	}
	return start, end, nil
}

func printResult(w io.Writer, result reconciliation.Result) {
	if result.DryRun {
		fmt.Fprintln(w, "=== DRY RUN ===")
		if len(result.Actions) == 0 {
			fmt.Fprintln(w, "No actions needed - calendars are in sync!")
			return
		}
		fmt.Fprintf(w, "Found %d action(s) to perform:\n", len(result.Actions))
		for _, action := range result.Actions {
			fmt.Fprintf(w, "  - %s\n", action)
		}
		return
	}
	report := result.Report
	fmt.Fprintf(w, "Planned: %d, executed: %d, failed: %d, orphans: %d\n",
		report.Planned, report.Executed, report.Failed, report.Orphans)
}

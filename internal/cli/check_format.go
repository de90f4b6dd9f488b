package cli

import (
	"fmt"

	"github.com/klokku/calsync/pkg/event"
	"github.com/spf13/cobra"
)

// ErrFormatProblems makes the command exit non-zero without printing usage.
var ErrFormatProblems = fmt.Errorf("event files have format problems")

func newCheckFormatCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check-format",
		Short: "Validate every release and call file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			loader := event.NewLoader(cfg.Events.ReleasesDir, cfg.Events.CallsDir)
			problems, checked, err := loader.CheckFormat()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, problem := range problems {
				fmt.Fprintf(out, "%s: %v\n", problem.Path, problem.Err)
			}
			fmt.Fprintf(out, "Checked %d file(s), %d problem(s)\n", checked, len(problems))
			if len(problems) > 0 {
				return ErrFormatProblems
			}
			return nil
		},
	}
}

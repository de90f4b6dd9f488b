package cli

import (
	"context"

	"github.com/klokku/calsync/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	debug      bool
}

// NewRootCommand builds the calsync command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "calsync",
		Short: "Keep Google Calendar in sync with local release and call definitions",
		Long: `calsync reads release and call events from YAML files and reconciles them
into two Google calendars, creating, updating and deleting only the events it manages.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.debug {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "path to the YAML configuration file")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newReconcileCommand(opts),
		newCheckFormatCommand(opts),
		newReleaseSyncCommand(opts),
		newServeCommand(opts),
	)
	return root
}

func (o *rootOptions) loadConfig() (config.Application, error) {
	return config.Load(o.configPath)
}

// Execute runs the root command with a background context.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}

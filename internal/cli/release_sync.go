package cli

import (
	"fmt"

	"github.com/klokku/calsync/pkg/release_sync"
	"github.com/spf13/cobra"
)

func newReleaseSyncCommand(root *rootOptions) *cobra.Command {
	var repositoryUrl, minVersion string

	cmd := &cobra.Command{
		Use:   "release-sync",
		Short: "Write release files for platform versions published on Maven Central",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			syncer := release_sync.NewSyncer(release_sync.NewMavenRepository(repositoryUrl), cfg.Events.ReleasesDir, minVersion)
			summary, err := syncer.Sync(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created: %d, updated: %d, unchanged: %d\n",
				summary.Created, summary.Updated, summary.Unchanged)
			return nil
		},
	}

	cmd.Flags().StringVar(&repositoryUrl, "repository", release_sync.DefaultRepositoryUrl, "Maven directory listing of the platform BOM")
	cmd.Flags().StringVar(&minVersion, "min-version", release_sync.DefaultMinVersion, "oldest version to write")
	return cmd
}

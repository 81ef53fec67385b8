package cmd

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/bucu0368/Webhook-Create/webhookcreate"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of the application",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), versionString())
	},
}

// versionString formats the build info. Versions set at build time are
// normalized as semver, while anything else (ex: 'dev') is printed as-is.
func versionString() string {
	version := webhookcreate.Version
	if v, err := semver.NewVersion(version); err == nil {
		version = v.String()
		if v.Prerelease() != "" {
			version += " (pre-release)"
		}
	}
	return fmt.Sprintf(
		"version=%s commit=%s built: %s",
		version,
		webhookcreate.CommitSHA,
		webhookcreate.BuildTime,
	)
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(versionCmd)
}

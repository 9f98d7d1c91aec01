package cmd

import (
	"fmt"

	"github.com/blang/semver"
	"github.com/spf13/cobra"
)

const devVersion = "dev"

var (
	version   = devVersion
	buildTime = "unknown"
)

// SetVersion records the build metadata injected by main
func SetVersion(v, built string) {
	if v != "" {
		version = v
	}
	if built != "" {
		buildTime = built
	}
}

// currentVersion parses the build version, tolerating a leading "v"
func currentVersion() (semver.Version, error) {
	if version == devVersion {
		return semver.Version{}, fmt.Errorf("development build has no release version")
	}
	v, err := semver.ParseTolerant(version)
	if err != nil {
		return semver.Version{}, fmt.Errorf("invalid build version %q: %w", version, err)
	}
	return v, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// does not need configuration
	PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
	PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := version
		if v, err := currentVersion(); err == nil {
			shown = v.String()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "openstates %s (built %s)\n", shown, buildTime)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

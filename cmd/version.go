package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	cmd.Printf("upsend %s\n", Version)
	cmd.Printf("  commit:   %s\n", Commit)
	cmd.Printf("  built:    %s\n", Date)
	cmd.Printf("  go:       %s\n", runtime.Version())
	cmd.Printf("  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}

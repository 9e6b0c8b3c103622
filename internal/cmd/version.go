package cmd

import (
	"fmt"
	"runtime"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information. Use --extended for build, Go, Gofulmen and Crucible versions.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		extended, err := cmd.Flags().GetBool("extended")
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		name := rootCmd.Name()
		if identity := GetAppIdentity(); identity != nil && identity.BinaryName != "" {
			name = identity.BinaryName
		}

		_, _ = fmt.Fprintf(w, "%s %s\n", name, versionInfo.Version)
		if !extended {
			return nil
		}

		version := crucible.GetVersion()
		_, _ = fmt.Fprintf(w, "Commit: %s\n", versionInfo.Commit)
		_, _ = fmt.Fprintf(w, "Built: %s\n", versionInfo.BuildDate)
		_, _ = fmt.Fprintf(w, "Go: %s\n\n", runtime.Version())
		_, _ = fmt.Fprintf(w, "Gofulmen: %s\n", version.Gofulmen)
		_, _ = fmt.Fprintf(w, "Crucible: %s\n", version.Crucible)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolP("extended", "e", false, "show extended version information")
}

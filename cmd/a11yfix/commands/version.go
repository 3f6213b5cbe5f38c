package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/a11yfix/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(version.Get())
		}
		if full, _ := cmd.Flags().GetBool("full"); full {
			fmt.Fprintln(out, version.Full())
			return nil
		}
		fmt.Fprintln(out, "a11yfix", version.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("full", false, "include build details")
	versionCmd.Flags().Bool("json", false, "print as JSON")
}

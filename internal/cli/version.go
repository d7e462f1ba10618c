package cli

import (
	"fmt"

	"github.com/ppiankov/orcall/openrouter"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the orcall version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "orcall %s (endpoint %s)\n", version, openrouter.APIURL)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/avrforge/sketchforge/internal/version"
	"github.com/spf13/cobra"
)

var versionJSON bool

// versionCmd implements the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sketchforge",
	RunE: func(_ *cobra.Command, _ []string) error {
		info := version.Get()
		if versionJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		if verbose {
			fmt.Printf("sketchforge version %s\n", info.Full())
			return nil
		}
		fmt.Printf("sketchforge version %s\n", info)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print version information as JSON")
	rootCmd.AddCommand(versionCmd)
}

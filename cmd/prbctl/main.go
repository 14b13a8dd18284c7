// Command prbctl inspects and manipulates partitioned-ring-buffer journal
// segments from the shell: creating new segments, appending records,
// dumping their contents, and reporting occupancy.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "prbctl",
	Short:   "Inspect and manipulate partitioned-ring-buffer journal segments",
	Version: "0.1.0",
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(appendCmd)
	rootCmd.AddCommand(dumpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "prbctl: %v\n", err)
		os.Exit(1)
	}
}

// vecsim boots a chip profile on the register simulator and prints the
// resulting vector tables, boot reports and secondary-core launches.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "vecsim",
	Short:         "Simulate Cortex-M vector table boot and dispatch",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(listCmd, tableCmd, bootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

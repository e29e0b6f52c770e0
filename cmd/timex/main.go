// Command timex turns a full-scan netlist and an expansion configuration
// into time-expansion models for transition-fault ATPG: the expanded
// (Broadside or DI) netlist, and the ATPG reference/implementation pair.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev" // set by build flags

var (
	verbose    bool
	logFormat  string
	outputFile string
)

var rootCmd = &cobra.Command{
	Use:     "timex [config-file]",
	Short:   "Time-expansion netlist transformer for transition-fault ATPG",
	Long:    `timex reads an expansion config describing a full-scan netlist's flip-flop library and target faults, and emits the Broadside or DI time-expanded netlist plus the ATPG reference/implementation pair.`,
	Args:    cobra.MaximumNArgs(1),
	Version: version,
	RunE:    runExpansion,
}

func init() {
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "emit debug-level progress on the diagnostic stream")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "text", "diagnostic stream format (text, json)")
	rootCmd.Flags().StringVar(&outputFile, "output-verilog", "", "override the config's output-verilog path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

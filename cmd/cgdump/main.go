package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	optimizeFirst bool
	verifyGraph   bool
	noColor       bool
	logLevel      = "warn"
)

var rootCmd = &cobra.Command{
	Use:   "cgdump",
	Short: "Inspect the constraint graph of a constraint-set description",
	Long: `cgdump builds the type checker's constraint graph from a YAML
constraint-set description and dumps it in several forms: the per-variable
adjacency structure, the connected components with their one-way solve
order, or a Graphviz DOT rendering.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&optimizeFirst, "optimize", false,
		"contract equality-like edges before dumping")
	rootCmd.PersistentFlags().BoolVar(&verifyGraph, "verify", false,
		"verify graph invariants before dumping")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"disable colored output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"log level for graph debug traces (debug, info, warn, error)")

	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(componentsCmd)
	rootCmd.AddCommand(dotCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lumalang/luma/internal/solver"
)

// loadSystem builds the constraint system for a subcommand's file argument
// and applies the shared flags.
func loadSystem(path string) (*solver.System, error) {
	s, err := solver.LoadFile(path)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	s.SetLogger(log)

	if optimizeFirst {
		s.Graph().Optimize()
	}
	if verifyGraph {
		s.Graph().Verify()
	}
	return s, nil
}

// header prints a section header, bold when stdout is a terminal.
func header(text string) {
	useColor := !noColor && isatty.IsTerminal(os.Stdout.Fd())
	if useColor {
		fmt.Printf("\x1b[1m%s\x1b[0m\n", text)
		return
	}
	fmt.Println(text)
}

var graphCmd = &cobra.Command{
	Use:   "graph <file.yaml>",
	Short: "Dump the per-variable constraint graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSystem(args[0])
		if err != nil {
			return err
		}

		header("Constraint graph:")
		s.Graph().Print(os.Stdout)
		return nil
	},
}

var componentsCmd = &cobra.Command{
	Use:   "components <file.yaml>",
	Short: "Dump connected components and their one-way solve order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSystem(args[0])
		if err != nil {
			return err
		}

		header("Connected components:")
		s.Graph().PrintConnectedComponents(os.Stdout)
		return nil
	},
}

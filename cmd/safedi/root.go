package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is the build version, overridable with
// `-ldflags "-X main.Version=..."` — the common Go convention for
// keeping versioning out of the cobra command tree itself.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "safedi",
	Short: "Dependency-graph analyzer and code generator",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintln(os.Stdout, Version)
			return nil
		}
		return cmd.Help()
	},
}

var showVersion bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&showVersion, "show-version", false, "print the build version and exit")
	rootCmd.AddCommand(generateCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

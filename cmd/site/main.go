package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "site",
		Short: "Voltline corporate site",
		Long: `site serves the Voltline corporate website: the JSON API used by the
admin and the public pages composed from sections.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var envFile string
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to the .env file (empty disables it)")

	rootCmd.AddCommand(newServeCommand(&envFile))
	rootCmd.AddCommand(newSeedCommand(&envFile))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

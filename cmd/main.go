package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "biotech-funding-tracker",
	Short: "A CLI for managing the biotech funding tracker services",
	Long:  `Biotech Funding Tracker ingests biotech/pharma news feeds, extracts funding rounds into a structured store, and serves them over an HTTP API.`,
}

func main() {

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}

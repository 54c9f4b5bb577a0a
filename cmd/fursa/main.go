// Package main provides the entry point for the job aggregation pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fursa",
	Short: "Product-management job aggregator",
	Long:  "Fursa discovers company career pages, extracts product-management job listings via ATS APIs, open job feeds, and LLM page extraction, and reconciles them into a searchable store.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

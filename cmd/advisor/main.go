// Package main provides the entry point for the career advisor service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Career transition advisory service",
	Long:  "Career advisor analyzes resumes and skill self-ratings, finds matching courses, and composes personalized career transition plans.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

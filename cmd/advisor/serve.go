package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jordan/career-advisor/internal/config"
	"github.com/jordan/career-advisor/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the advisory REST API server",
	Long:  `Start an HTTP server exposing the resume analysis, course search, and transition plan endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	a, err := buildApp(cmd.Context(), cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to wire service: %w", err)
	}
	defer a.close()

	return server.New(*cfg, a.deps).Start()
}

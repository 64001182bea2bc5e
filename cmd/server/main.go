package main

import (
	"fmt"
	"os"

	"github.com/eleven-am/playback-gateway/internal/bootstrap"
	"github.com/spf13/cobra"
)

// @title Playback Gateway API
// @version 1.0.0
// @description Control plane for streaming stories and music to connected devices

// @host localhost:8003
// @BasePath /

var envFile string

var rootCmd = &cobra.Command{
	Use:           "playback-gateway",
	Short:         "Stream stories and music to connected devices",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and device websocket server",
	RunE:  serve,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := bootstrap.LoadConfig(envFile)
		if err != nil {
			return err
		}
		if err := bootstrap.Migrate(cfg); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

func serve(*cobra.Command, []string) error {
	cfg, err := bootstrap.LoadConfig(envFile)
	if err != nil {
		return err
	}
	bootstrap.Run(cfg)
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

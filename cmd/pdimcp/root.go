package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/bbeeken/PDIMCPServer/internal/config"
	"github.com/bbeeken/PDIMCPServer/internal/logging"
	"github.com/bbeeken/PDIMCPServer/internal/registry"
	"github.com/bbeeken/PDIMCPServer/internal/tools"
	"github.com/bbeeken/PDIMCPServer/internal/version"
	"github.com/bbeeken/PDIMCPServer/internal/warehouse"
)

var (
	// configFlag is the CLI --config flag value
	configFlag string
)

var rootCmd = &cobra.Command{
	Use:   "pdimcp",
	Short: "PDI sales analytics tool server",
	Long: `pdimcp exposes parameterized analytics over a retail sales warehouse
as a set of tools. The same tool catalog is served two ways: over stdio
as an MCP (Model Context Protocol) JSON-RPC server for LLM clients, and
over HTTP for dashboards and scripts.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("pdimcp version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"Path to YAML config file (environment variables take precedence)")
}

// loadConfig reads the effective configuration from the --config flag and
// the environment.
func loadConfig() (*config.Config, error) {
	return config.Load(configFlag)
}

// newLogger builds the process logger from configuration. output selects
// the stream: the MCP command must log to stderr because stdout carries
// the protocol.
func newLogger(cfg *config.Config, output io.Writer) *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.ParseFormat(cfg.Logging.Format),
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Output: output,
	})
}

// buildRegistry opens the warehouse and registers the full tool catalog.
// The caller owns the returned DB and must close it.
func buildRegistry(cfg *config.Config, logger *logging.Logger) (*registry.Registry, *warehouse.DB, error) {
	db, err := warehouse.Open(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	reg := registry.New()
	tools.New(db, logger).RegisterAll(reg)
	return reg, db, nil
}

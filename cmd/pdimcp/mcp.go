package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bbeeken/PDIMCPServer/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start the Model Context Protocol (MCP) server.

The server communicates over stdio using line-delimited JSON-RPC 2.0 and
exposes the sales analytics tool catalog to MCP clients. Logs go to stderr
because stdout carries the protocol.

This command is typically invoked by an MCP client, not directly by users.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg, os.Stderr)

	reg, db, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	server := mcp.NewServer(cfg.Server.Name, cfg.Server.Version, reg, logger)
	if err := server.Start(); err != nil {
		logger.Error("MCP server error", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bbeeken/PDIMCPServer/internal/logging"
	"github.com/bbeeken/PDIMCPServer/internal/registry"
	"github.com/bbeeken/PDIMCPServer/internal/tools"
)

var toolsJSON bool

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List registered tools",
	Long: `List every tool in the catalog with its description. Use --json to
emit the full descriptors including input schemas.`,
	RunE: runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "Emit full descriptors as JSON")
}

func runTools(cmd *cobra.Command, args []string) error {
	// Descriptors are static; no warehouse connection is needed to list them.
	logger := logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.ErrorLevel,
		Output: os.Stderr,
	})

	reg := registry.New()
	tools.New(nil, logger).RegisterAll(reg)

	catalog := reg.List()

	if toolsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(catalog)
	}

	fmt.Printf("%d tools registered:\n\n", len(catalog))
	for _, tool := range catalog {
		fmt.Printf("  %-28s %s\n", tool.Name, tool.Description)
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show effective configuration",
	Long: `Print the effective configuration after merging defaults, the optional
config file, and PDI_* environment variables. Secrets are elided.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rendered, err := cfg.Render()
	if err != nil {
		return err
	}

	fmt.Print(rendered)
	return nil
}

package cmd

import (
	"fmt"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/deckcheck/internal/config"
	"github.com/arcanaland/deckcheck/internal/urlbuilder"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change deckcheck configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, colorize.CyanString("File:      ")+config.GetConfigFilePath())
		fmt.Fprintln(out, colorize.CyanString("Base URL:  ")+cfg.BaseURL)
		fmt.Fprintln(out, colorize.CyanString("Timeout:   ")+cfg.Timeout().String())
		fmt.Fprintln(out, colorize.CyanString("Log level: ")+cfg.LogLevel)
		fmt.Fprintln(out, colorize.CyanString("Pile:      ")+cfg.PileName)
		return nil
	},
}

var configSetURLCmd = &cobra.Command{
	Use:   "set-url [base_url]",
	Short: "Set the deck API base URL",
	Long: `Set the base URL used for every request, for example a local copy of the
service at http://localhost:8000/api/deck.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		baseURL := urlbuilder.New(args[0]).BaseURL()
		if baseURL == "" {
			return fmt.Errorf("base url cannot be empty")
		}
		if err := config.SetBaseURL(baseURL); err != nil {
			return fmt.Errorf("error setting base url: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Base URL set to %s\n", baseURL)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetURLCmd)
}

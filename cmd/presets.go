package cmd

import (
	"fmt"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/deckcheck/internal/config"
	"github.com/arcanaland/deckcheck/internal/deck"
)

// presetsCmd represents the presets command
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List partial deck presets",
	Long: `List the built-in partial deck presets and any defined in
XDG_CONFIG_HOME/deckcheck/presets.toml. Use one with 'deck new --preset NAME'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		presets, err := deck.LoadPresets(config.GetPresetsFilePath())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, name := range deck.Names(presets) {
			p := presets[name]
			fmt.Fprintf(out, "%s %s\n", colorize.HiWhiteString("%-10s", name), colorize.CyanString("(%d cards)", len(p.Cards)))
			if p.Description != "" {
				fmt.Fprintf(out, "  %s\n", p.Description)
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(presetsCmd)
}

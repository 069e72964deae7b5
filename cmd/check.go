package cmd

import (
	"context"
	"fmt"

	colorize "github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arcanaland/deckcheck/internal/conformance"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the deck API against its documented behavior",
	Long: `Check runs every deck API scenario against the configured service, each with
a fresh deck. Known quirks of the service are reported as warnings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		checker := conformance.NewChecker(newClient(), conformance.Options{
			PileName: cfg.PileName,
			Logger:   log.WithField("base_url", cfg.BaseURL),
		})

		results, err := checker.Run(context.Background())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Check Results:")
		fmt.Fprintln(out, "--------------")
		fmt.Fprintf(out, "Run %s against %s\n\n", results.RunID, cfg.BaseURL)

		for _, name := range results.Passed {
			fmt.Fprintf(out, "%s %s\n", colorize.GreenString("✓"), name)
		}

		if len(results.Warnings) > 0 {
			fmt.Fprintln(out, "\nWarnings:")
			for i, warn := range results.Warnings {
				fmt.Fprintf(out, "%d. %s\n", i+1, warn)
			}
		}

		fmt.Fprintln(out)
		if !results.OK() {
			fmt.Fprintf(out, "❌ %d of %d scenarios failed:\n", len(results.Failures), len(results.Failures)+len(results.Passed))
			for i, failure := range results.Failures {
				fmt.Fprintf(out, "%d. %s\n", i+1, failure)
			}
			return fmt.Errorf("check failed")
		}

		fmt.Fprintf(out, "✅ All %d scenarios passed.\n", len(results.Passed))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(checkCmd)
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/arcanaland/deckcheck/internal/urlbuilder"
)

var pileDrawCount int

// pileCmd represents the pile command group
var pileCmd = &cobra.Command{
	Use:   "pile",
	Short: "Manage named piles within a deck",
	Long: `Piles are named sets of cards inside one deck. A pile is created the
first time cards are added to it.`,
}

var pileAddCmd = &cobra.Command{
	Use:   "add [deck_id] [pile] [card...]",
	Short: "Add drawn cards to a pile",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return pileRequest(cmd, func(b urlbuilder.Builder) (string, error) {
			return b.AddToPile(args[0], args[1], parseCards(args[2:])...)
		})
	},
}

var pileListCmd = &cobra.Command{
	Use:   "list [deck_id] [pile]",
	Short: "List the cards in a pile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return pileRequest(cmd, func(b urlbuilder.Builder) (string, error) {
			return b.ListPile(args[0], args[1])
		})
	},
}

var pileDrawCmd = &cobra.Command{
	Use:   "draw [deck_id] [pile]",
	Short: "Draw cards from the top of a pile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return pileRequest(cmd, func(b urlbuilder.Builder) (string, error) {
			return b.DrawFromPile(args[0], args[1], pileDrawCount)
		})
	},
}

var pileShuffleCmd = &cobra.Command{
	Use:   "shuffle [deck_id] [pile]",
	Short: "Shuffle a pile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return pileRequest(cmd, func(b urlbuilder.Builder) (string, error) {
			return b.ShufflePile(args[0], args[1])
		})
	},
}

var pileReturnCmd = &cobra.Command{
	Use:   "return [deck_id] [pile] [card...]",
	Short: "Return pile cards to the deck",
	Long:  `Return the given cards from a pile to the deck, or the whole pile without cards.`,
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return pileRequest(cmd, func(b urlbuilder.Builder) (string, error) {
			return b.ReturnPile(args[0], args[1], parseCards(args[2:])...)
		})
	},
}

func pileRequest(cmd *cobra.Command, build func(urlbuilder.Builder) (string, error)) error {
	resp, err := runRequest(cmd, build)
	if err != nil || resp == nil {
		return err
	}
	printResponse(cmd, resp)
	return nil
}

func init() {
	RootCmd.AddCommand(pileCmd)
	pileCmd.AddCommand(pileAddCmd)
	pileCmd.AddCommand(pileListCmd)
	pileCmd.AddCommand(pileDrawCmd)
	pileCmd.AddCommand(pileShuffleCmd)
	pileCmd.AddCommand(pileReturnCmd)

	pileDrawCmd.Flags().IntVarP(&pileDrawCount, "count", "n", 1, "Number of cards to draw")
}

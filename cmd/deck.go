package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arcanaland/deckcheck/internal/config"
	"github.com/arcanaland/deckcheck/internal/deck"
	"github.com/arcanaland/deckcheck/internal/urlbuilder"
)

var (
	newShuffle    bool
	newJokers     bool
	newCards      string
	newPreset     string
	remainingOnly bool
	drawCount     int
	drawArt       bool
)

// deckCmd represents the deck command group
var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Create, shuffle and draw from decks",
	Long:  `Commands for creating decks on the deck API and drawing or returning cards.`,
}

// deckNewCmd represents the deck new command
var deckNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new deck",
	Long: `Create a new deck of 52 cards, 54 with --jokers, or a partial deck with
--cards or --preset.

Examples:
  deckcheck deck new --shuffle
  deckcheck deck new --cards AS,2S,KH
  deckcheck deck new --preset euchre --shuffle`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		codes := parseCards([]string{newCards})

		if newPreset != "" {
			if len(codes) > 0 {
				return fmt.Errorf("--cards and --preset cannot be combined")
			}
			presets, err := deck.LoadPresets(config.GetPresetsFilePath())
			if err != nil {
				return err
			}
			p, ok := presets[newPreset]
			if !ok {
				return fmt.Errorf("unknown preset %q (available: %s)", newPreset, strings.Join(deck.Names(presets), ", "))
			}
			codes = p.Codes()
		}

		resp, err := runRequest(cmd, func(b urlbuilder.Builder) (string, error) {
			if len(codes) > 0 {
				return b.NewPartialDeck(codes...), nil
			}
			return b.NewDeck(urlbuilder.NewDeckOptions{Shuffle: newShuffle, JokersEnabled: newJokers}), nil
		})
		if err != nil || resp == nil {
			return err
		}

		// The partial deck endpoint ignores shuffle, so shuffle afterwards
		if len(codes) > 0 && newShuffle {
			deckID := resp.DeckID
			resp, err = runRequest(cmd, func(b urlbuilder.Builder) (string, error) { return b.ShuffleDeck(deckID) })
			if err != nil {
				return err
			}
		}

		printResponse(cmd, resp)
		return nil
	},
}

// deckShuffleCmd represents the deck shuffle command
var deckShuffleCmd = &cobra.Command{
	Use:   "shuffle [deck_id]",
	Short: "Shuffle a deck",
	Long: `Shuffle returns every drawn card to the deck and shuffles it. With
--remaining only the cards still in the deck are shuffled.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := runRequest(cmd, func(b urlbuilder.Builder) (string, error) {
			return b.ReshuffleDeck(args[0], remainingOnly)
		})
		if err != nil || resp == nil {
			return err
		}
		printResponse(cmd, resp)
		return nil
	},
}

// deckDrawCmd represents the deck draw command
var deckDrawCmd = &cobra.Command{
	Use:   "draw [deck_id]",
	Short: "Draw cards from a deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := runRequest(cmd, func(b urlbuilder.Builder) (string, error) {
			return b.DrawCards(args[0], drawCount)
		})
		if err != nil || resp == nil {
			return err
		}
		printResponse(cmd, resp)

		if drawArt {
			return printCardArt(cmd, resp.Cards)
		}
		return nil
	},
}

// deckReturnCmd represents the deck return command
var deckReturnCmd = &cobra.Command{
	Use:   "return [deck_id] [card...]",
	Short: "Return drawn cards to a deck",
	Long: `Return the given cards to the deck. Without cards every drawn card is
returned.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := runRequest(cmd, func(b urlbuilder.Builder) (string, error) {
			return b.ReturnToDeck(args[0], parseCards(args[1:])...)
		})
		if err != nil || resp == nil {
			return err
		}
		printResponse(cmd, resp)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(deckCmd)
	deckCmd.AddCommand(deckNewCmd)
	deckCmd.AddCommand(deckShuffleCmd)
	deckCmd.AddCommand(deckDrawCmd)
	deckCmd.AddCommand(deckReturnCmd)

	deckNewCmd.Flags().BoolVarP(&newShuffle, "shuffle", "s", false, "Shuffle the new deck")
	deckNewCmd.Flags().BoolVarP(&newJokers, "jokers", "j", false, "Include the two jokers")
	deckNewCmd.Flags().StringVar(&newCards, "cards", "", "Comma separated card codes for a partial deck")
	deckNewCmd.Flags().StringVarP(&newPreset, "preset", "p", "", "Create a partial deck from a named preset")

	deckShuffleCmd.Flags().BoolVar(&remainingOnly, "remaining", false, "Shuffle only the cards remaining in the deck")

	deckDrawCmd.Flags().IntVarP(&drawCount, "count", "n", 1, "Number of cards to draw")
	deckDrawCmd.Flags().BoolVar(&drawArt, "art", false, "Render the drawn cards as ANSI art")
}

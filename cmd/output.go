package cmd

import (
	"fmt"
	"sort"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/deckcheck/internal/card"
	"github.com/arcanaland/deckcheck/internal/deckapi"
)

// printResponse writes the interesting fields of a payload
func printResponse(cmd *cobra.Command, resp *deckapi.Response) {
	out := cmd.OutOrStdout()

	if !resp.Succeeded() {
		fmt.Fprintln(out, colorize.RedString("API reported failure: ")+resp.Error)
	}
	if resp.DeckID != "" {
		fmt.Fprintln(out, colorize.CyanString("Deck:      ")+colorize.HiWhiteString(resp.DeckID))
	}
	if resp.Remaining != nil {
		fmt.Fprintln(out, colorize.CyanString("Remaining: ")+colorize.HiWhiteString("%d", *resp.Remaining))
	}
	if resp.Shuffled != nil {
		fmt.Fprintln(out, colorize.CyanString("Shuffled:  ")+colorize.HiWhiteString("%t", *resp.Shuffled))
	}

	if len(resp.Cards) > 0 {
		fmt.Fprintln(out, colorize.CyanString("Cards:"))
		printCards(cmd, resp.Cards)
	}

	if len(resp.Piles) > 0 {
		names := make([]string, 0, len(resp.Piles))
		for name := range resp.Piles {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(out, colorize.CyanString("Piles:"))
		for _, name := range names {
			pile := resp.Piles[name]
			fmt.Fprintf(out, "  %s (%d remaining)\n", name, pile.Remaining)
			if pile.HasCards() {
				printCards(cmd, pile.Cards)
			}
		}
	}
}

func printCards(cmd *cobra.Command, cards []card.Card) {
	for _, c := range cards {
		fmt.Fprintf(cmd.OutOrStdout(), "    %s %s %s\n", suitSymbol(c.Suit), colorize.HiWhiteString("%-3s", c.Code), c.Name())
	}
}

func suitSymbol(suit string) string {
	switch suit {
	case "SPADES":
		return "♠"
	case "HEARTS":
		return colorize.RedString("♥")
	case "DIAMONDS":
		return colorize.RedString("♦")
	case "CLUBS":
		return "♣"
	case "RED":
		return colorize.RedString("★")
	case "BLACK":
		return "★"
	default:
		return "•"
	}
}

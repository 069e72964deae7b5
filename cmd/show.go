package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arcanaland/deckcheck/internal/card"
	"github.com/arcanaland/deckcheck/internal/cardart"
)

var showCmd = &cobra.Command{
	Use:   "show [card_code]",
	Short: "Display a card with ANSI art",
	Long: `Show fetches the image of a card from the deck API and prints it as ANSI
terminal art next to the card's details. Rendered art is cached under
XDG_CACHE_HOME/deckcheck.

Examples:
  deckcheck show AS
  deckcheck show 0H
  deckcheck show X1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := card.ParseCode(strings.ToUpper(args[0]))
		if err != nil {
			return err
		}

		client := newClient()
		imageURL := client.URLs().CardImage(code.Raw)
		if printURL {
			fmt.Fprintln(cmd.OutOrStdout(), imageURL)
			return nil
		}

		art, err := loadCardArt(context.Background(), client, imageURL)
		if err != nil {
			return fmt.Errorf("error loading card art: %w", err)
		}

		displayCard(cmd, code, imageURL, art)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(showCmd)
}

// displayCard prints the art on the left and the card details on the right
func displayCard(cmd *cobra.Command, code card.Code, imageURL, art string) {
	out := cmd.OutOrStdout()

	artLines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	maxArtWidth := 0
	for _, line := range artLines {
		maxArtWidth = max(maxArtWidth, cardart.VisibleWidth(line))
	}

	width := terminalWidth()

	infoLines := []string{
		colorize.CyanString("Card:  ") + colorize.HiWhiteString(code.Name()),
		colorize.CyanString("Code:  ") + colorize.HiWhiteString(code.Raw),
		colorize.CyanString("Value: ") + colorize.HiWhiteString(code.Rank),
		colorize.CyanString("Suit:  ") + colorize.HiWhiteString("%s · %s", code.Suit, suitSymbol(code.Suit)),
	}

	spacing := 4
	infoStartCol := maxArtWidth + spacing

	// Long image URLs go below the art on narrow terminals
	imageLine := colorize.CyanString("Image: ") + imageURL
	if width-infoStartCol-2 >= len(imageURL)+7 {
		infoLines = append(infoLines, "", imageLine)
		imageLine = ""
	}

	fmt.Fprintln(out)
	for i := 0; i < max(len(artLines), len(infoLines)); i++ {
		fmt.Fprint(out, "  ")
		if i < len(artLines) {
			fmt.Fprint(out, artLines[i])
			fmt.Fprint(out, strings.Repeat(" ", infoStartCol-cardart.VisibleWidth(artLines[i])))
		} else {
			fmt.Fprint(out, strings.Repeat(" ", infoStartCol))
		}
		if i < len(infoLines) {
			fmt.Fprint(out, infoLines[i])
		}
		fmt.Fprintln(out)
	}
	if imageLine != "" {
		fmt.Fprintln(out, "  "+imageLine)
	}
	fmt.Fprintln(out)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

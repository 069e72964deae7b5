package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	colorize "github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arcanaland/deckcheck/internal/card"
	"github.com/arcanaland/deckcheck/internal/cardart"
	"github.com/arcanaland/deckcheck/internal/config"
	"github.com/arcanaland/deckcheck/internal/deckapi"
)

func artCache() cardart.Cache {
	return cardart.Cache{Dir: filepath.Join(config.GetCacheDir(), "ansi_cache")}
}

// loadCardArt returns cached art for an image URL, fetching and rendering it
// on a miss
func loadCardArt(ctx context.Context, client *deckapi.Client, imageURL string) (string, error) {
	cache := artCache()
	if art, ok := cache.Load(imageURL); ok {
		return art, nil
	}

	img, err := client.FetchCardImage(ctx, imageURL)
	if err != nil {
		return "", err
	}

	art := cardart.Render(img, cardart.DefaultWidth, cardart.DefaultHeight)
	if err := cache.Store(imageURL, art); err != nil {
		log.WithError(err).Warn("could not cache card art")
	}
	return art, nil
}

func printCardArt(cmd *cobra.Command, cards []card.Card) error {
	client := newClient()
	for _, c := range cards {
		if c.Image == "" {
			continue
		}
		art, err := loadCardArt(context.Background(), client, c.Image)
		if err != nil {
			return fmt.Errorf("error rendering %s: %w", c.Code, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), colorize.HiWhiteString(c.Name()))
		fmt.Fprint(cmd.OutOrStdout(), art)
	}
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arcanaland/deckcheck/internal/config"
	"github.com/arcanaland/deckcheck/internal/deckapi"
	"github.com/arcanaland/deckcheck/internal/urlbuilder"
)

var (
	baseURLFlag string
	verbose     bool
	printURL    bool

	// cfg is loaded before every command runs
	cfg *config.Config
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "deckcheck",
	Short: "Drive and check the deck of cards API",
	Long: `Deckcheck is a command-line tool for the deck of cards API (deckofcardsapi.com).
It creates, shuffles and draws from decks, manages piles, and checks that the
service answers with the documented response shapes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnv(); err != nil {
			return err
		}

		loaded, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if baseURLFlag != "" {
			loaded.BaseURL = baseURLFlag
		}
		cfg = loaded

		return setupLogging(cmd, cfg.LogLevel)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "Deck API base URL (default from config)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every request")
	RootCmd.PersistentFlags().BoolVar(&printURL, "print-url", false, "Print the request URL instead of sending it")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

func setupLogging(cmd *cobra.Command, level string) error {
	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&log.TextFormatter{})

	parsed, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %v", level, err)
	}
	if verbose {
		parsed = log.DebugLevel
	}
	log.SetLevel(parsed)
	return nil
}

func newClient() *deckapi.Client {
	return deckapi.New(deckapi.Options{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout(),
		Logger:  log.WithField("base_url", cfg.BaseURL),
	})
}

// runRequest builds the URL for an operation and sends it, or only prints it
// with --print-url. A nil response with a nil error means nothing was sent.
func runRequest(cmd *cobra.Command, build func(urlbuilder.Builder) (string, error)) (*deckapi.Response, error) {
	client := newClient()

	url, err := build(client.URLs())
	if err != nil {
		return nil, err
	}
	if printURL {
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil, nil
	}

	resp, err := client.Get(context.Background(), url)
	if err != nil {
		// success:false still carries a payload worth showing
		var reqErr *deckapi.RequestError
		if errors.As(err, &reqErr) && reqErr.Response != nil {
			printResponse(cmd, reqErr.Response)
		}
		return nil, err
	}
	return resp, nil
}

// parseCards accepts card codes as separate args or comma lists
func parseCards(args []string) []string {
	var codes []string
	for _, arg := range args {
		for _, code := range strings.Split(arg, ",") {
			code = strings.ToUpper(strings.TrimSpace(code))
			if code != "" {
				codes = append(codes, code)
			}
		}
	}
	return codes
}

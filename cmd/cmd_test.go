package cmd

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/deckcheck/internal/config"
	"github.com/arcanaland/deckcheck/internal/deckapi"
	"github.com/arcanaland/deckcheck/internal/deckapitest"
	"github.com/arcanaland/deckcheck/internal/urlbuilder"
)

// execute runs the root command in an isolated XDG environment and returns
// what it printed
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	colorize.NoColor = true
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(config.EnvBaseURL, "")
	t.Setenv(config.EnvTimeoutSeconds, "")
	t.Setenv(config.EnvLogLevel, "")

	resetFlags(RootCmd)
	t.Cleanup(func() { resetFlags(RootCmd) })

	var out, errOut bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetArgs(args)

	err := RootCmd.Execute()
	return out.String(), err
}

// resetFlags puts every flag back to its default between runs
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func newTestDeck(t *testing.T, server *deckapitest.Server, cards ...string) string {
	t.Helper()
	client := deckapi.New(deckapi.Options{BaseURL: server.BaseURL(), Timeout: 2 * time.Second})
	resp, err := client.NewPartialDeck(context.Background(), cards...)
	require.NoError(t, err)
	require.NotEmpty(t, resp.DeckID)
	return resp.DeckID
}

func TestPrintURL(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "draw",
			args: []string{"deck", "draw", "abc123", "-n", "3"},
			want: urlbuilder.DefaultBaseURL + "/abc123/draw/?count=3",
		},
		{
			name: "new shuffled with jokers",
			args: []string{"deck", "new", "-s", "-j"},
			want: urlbuilder.DefaultBaseURL + "/new/?shuffle=true&jokers_enabled=true",
		},
		{
			name: "partial deck",
			args: []string{"deck", "new", "--cards", "as, 2s"},
			want: urlbuilder.DefaultBaseURL + "/new/?cards=AS,2S",
		},
		{
			name: "return everything",
			args: []string{"deck", "return", "abc123"},
			want: urlbuilder.DefaultBaseURL + "/abc123/return/",
		},
		{
			name: "pile add",
			args: []string{"pile", "add", "abc123", "discard", "AS", "2S,3S"},
			want: urlbuilder.DefaultBaseURL + "/abc123/pile/discard/add/?cards=AS,2S,3S",
		},
		{
			name: "pile draw",
			args: []string{"pile", "draw", "abc123", "discard", "-n", "2"},
			want: urlbuilder.DefaultBaseURL + "/abc123/pile/discard/draw/?count=2",
		},
		{
			name: "shuffle remaining",
			args: []string{"deck", "shuffle", "abc123", "--remaining"},
			want: urlbuilder.DefaultBaseURL + "/abc123/shuffle/?remaining=true",
		},
		{
			name: "card image",
			args: []string{"show", "0h"},
			want: "https://deckofcardsapi.com/static/img/0H.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append(tt.args, "--print-url")...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestPrintURLBaseOverride(t *testing.T) {
	out, err := execute(t, "deck", "shuffle", "abc123", "--print-url", "--base-url", "http://localhost:8000/api/deck/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api/deck/abc123/shuffle/\n", out)
}

func TestArgumentErrorBeforeRequest(t *testing.T) {
	_, err := execute(t, "deck", "draw", "  ", "--print-url")
	require.Error(t, err)
	assert.ErrorIs(t, err, urlbuilder.ErrMissingDeckID)
}

func TestDeckNew(t *testing.T) {
	server := deckapitest.NewServer()
	defer server.Close()

	out, err := execute(t, "deck", "new", "--shuffle", "--base-url", server.BaseURL())
	require.NoError(t, err)
	assert.Contains(t, out, "Remaining: 52")
	assert.Contains(t, out, "Shuffled:  true")
	assert.Contains(t, out, "Deck:      ")
}

func TestDeckNewPresetShuffled(t *testing.T) {
	server := deckapitest.NewServer()
	defer server.Close()

	out, err := execute(t, "deck", "new", "--preset", "aces", "--shuffle", "--base-url", server.BaseURL())
	require.NoError(t, err)
	assert.Contains(t, out, "Remaining: 4")
	assert.Contains(t, out, "Shuffled:  true")
}

func TestDeckNewUnknownPreset(t *testing.T) {
	_, err := execute(t, "deck", "new", "--preset", "pinochle", "--print-url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown preset "pinochle"`)
	assert.Contains(t, err.Error(), "aces, euchre, royals")
}

func TestDeckDrawAndPiles(t *testing.T) {
	server := deckapitest.NewServer()
	defer server.Close()
	deckID := newTestDeck(t, server, "AS", "2S", "KH")

	out, err := execute(t, "deck", "draw", deckID, "-n", "2", "--base-url", server.BaseURL())
	require.NoError(t, err)
	assert.Contains(t, out, "Remaining: 1")
	assert.Contains(t, out, "Cards:")

	out, err = execute(t, "pile", "add", deckID, "discard", "AS,2S", "--base-url", server.BaseURL())
	require.NoError(t, err)
	assert.Contains(t, out, "discard (2 remaining)")

	out, err = execute(t, "pile", "list", deckID, "discard", "--base-url", server.BaseURL())
	require.NoError(t, err)
	assert.Contains(t, out, "Ace of Spades")
	assert.Contains(t, out, "2 of Spades")

	out, err = execute(t, "pile", "return", deckID, "discard", "--base-url", server.BaseURL())
	require.NoError(t, err)
	assert.Contains(t, out, "Remaining: 3")
}

func TestDeckDrawTooMany(t *testing.T) {
	server := deckapitest.NewServer()
	defer server.Close()
	deckID := newTestDeck(t, server, "AS")

	out, err := execute(t, "deck", "draw", deckID, "-n", "3", "--base-url", server.BaseURL())
	require.Error(t, err)
	assert.ErrorIs(t, err, deckapi.ErrUnsuccessful)
	assert.Contains(t, out, "API reported failure")
	assert.Contains(t, out, "Ace of Spades")
}

func TestUnknownDeck(t *testing.T) {
	server := deckapitest.NewServer()
	defer server.Close()

	_, err := execute(t, "deck", "shuffle", "nosuchdeck00", "--base-url", server.BaseURL())
	require.Error(t, err)
	assert.ErrorIs(t, err, deckapi.ErrHTTPStatus)
}

func TestShowCard(t *testing.T) {
	server := deckapitest.NewServer()
	defer server.Close()

	out, err := execute(t, "show", "as", "--base-url", server.BaseURL())
	require.NoError(t, err)
	assert.Contains(t, out, "Ace of Spades")
	assert.Contains(t, out, "SPADES")
	assert.Contains(t, out, "▀")

	_, err = os.Stat(artCache().Path(server.URL + "/static/img/AS.png"))
	assert.NoError(t, err)
}

func TestShowInvalidCode(t *testing.T) {
	_, err := execute(t, "show", "ZZ")
	require.Error(t, err)
}

func TestCheck(t *testing.T) {
	server := deckapitest.NewServer()
	defer server.Close()

	out, err := execute(t, "check", "--base-url", server.BaseURL())
	require.NoError(t, err)
	assert.Contains(t, out, "Check Results:")
	assert.Contains(t, out, "scenarios passed")
	assert.Contains(t, out, "Warnings:")
}

func TestPresets(t *testing.T) {
	out, err := execute(t, "presets")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "aces"))
	assert.Contains(t, out, "(24 cards)")
	assert.Contains(t, out, "Jacks, queens and kings")
}

func TestConfigSetURL(t *testing.T) {
	colorize.NoColor = true
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvBaseURL, "")

	resetFlags(RootCmd)
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&bytes.Buffer{})

	RootCmd.SetArgs([]string{"config", "set-url", "http://localhost:8000/api/deck/"})
	require.NoError(t, RootCmd.Execute())
	assert.Contains(t, out.String(), "Base URL set to http://localhost:8000/api/deck")

	out.Reset()
	RootCmd.SetArgs([]string{"config", "show"})
	require.NoError(t, RootCmd.Execute())
	assert.Contains(t, out.String(), "Base URL:  http://localhost:8000/api/deck\n")
	assert.Contains(t, out.String(), "Pile:      test_pile")
}

package conformance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/deckcheck/internal/deckapi"
	"github.com/arcanaland/deckcheck/internal/deckapitest"
)

func TestCheckerPassesAgainstFakeAPI(t *testing.T) {
	server := deckapitest.NewServer()
	defer server.Close()

	client := deckapi.New(deckapi.Options{BaseURL: server.BaseURL(), Timeout: 2 * time.Second})
	checker := NewChecker(client, Options{})

	results, err := checker.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, results.Failures)
	assert.True(t, results.OK())
	assert.Len(t, results.Passed, len(scenarios()))
	assert.NotEmpty(t, results.RunID)

	joined := strings.Join(results.Warnings, "\n")
	assert.Contains(t, joined, "draw varied counts: drawing 55 cards")
	assert.Contains(t, joined, "draw more than available: drawing 60 cards")
	assert.Contains(t, joined, "add invalid cards to pile: invalid card codes were accepted")
	assert.Contains(t, joined, "draw negative count")
}

func TestCheckerReportsFailures(t *testing.T) {
	// Every endpoint answers with the same short deck
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "deck_id": "abc", "remaining": 50, "cards": []}`))
	}))
	defer server.Close()

	client := deckapi.New(deckapi.Options{BaseURL: server.URL + "/api/deck", Timeout: 2 * time.Second})
	results, err := NewChecker(client, Options{PileName: "mine"}).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, results.OK())
	joined := strings.Join(results.Failures, "\n")
	assert.Contains(t, joined, "new deck options: {Shuffle:false JokersEnabled:false}: remaining 50, want 52")
	assert.Contains(t, joined, "draw cards: drew 0 cards, want 5")
	assert.Contains(t, joined, "shuffle invalid deck: request succeeded, want 404")
}

func TestCheckerUnavailableService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := deckapi.New(deckapi.Options{BaseURL: server.URL, Timeout: 2 * time.Second})
	_, err := NewChecker(client, Options{}).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, deckapi.ErrRequestFailed)
	assert.Contains(t, err.Error(), "deck api unavailable")
}

func TestUniqueAndSameCodes(t *testing.T) {
	assert.NoError(t, unique([]string{"AS", "2S"}))
	assert.EqualError(t, unique([]string{"AS", "AS"}), "duplicate card AS")

	assert.NoError(t, sameCodes([]string{"AS", "2S"}, []string{"2S", "AS"}))
	assert.EqualError(t, sameCodes([]string{"AS"}, []string{"AS", "2S"}), "pile holds 2 cards, want 1")
	assert.EqualError(t, sameCodes([]string{"AS", "3S"}, []string{"AS", "2S"}), "card 3S missing from pile")
}

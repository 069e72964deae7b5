package deckapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestNormalizeReturnsPayload(t *testing.T) {
	t.Parallel()

	resp, err := Normalize(stubResponse(http.StatusOK,
		`{"success": true, "deck_id": "abc", "shuffled": true, "remaining": 52}`))
	require.NoError(t, err)

	assert.Equal(t, "abc", resp.DeckID)
	assert.Equal(t, 52, resp.RemainingCount())
	require.NotNil(t, resp.Shuffled)
	assert.True(t, *resp.Shuffled)
	assert.True(t, resp.Has("deck_id"))
	assert.False(t, resp.Has("cards"))
}

func TestNormalizeAbsentSuccessIsSuccess(t *testing.T) {
	t.Parallel()

	resp, err := Normalize(stubResponse(http.StatusOK, `{"deck_id": "abc"}`))
	require.NoError(t, err)
	assert.True(t, resp.Succeeded())
	assert.Equal(t, -1, resp.RemainingCount())
}

func TestNormalizeDecodesCardsAndPiles(t *testing.T) {
	t.Parallel()

	body := `{
		"success": true,
		"deck_id": "abc",
		"remaining": 42,
		"cards": [{"code": "6H", "image": "https://x/6H.png", "images": {"png": "https://x/6H.png"}, "value": "6", "suit": "HEARTS"}],
		"piles": {
			"discard": {"remaining": 2, "cards": [{"code": "AS"}, {"code": "2S"}]},
			"other": {"remaining": 0}
		}
	}`
	resp, err := Normalize(stubResponse(http.StatusOK, body))
	require.NoError(t, err)

	require.Len(t, resp.Cards, 1)
	assert.Equal(t, "6H", resp.Cards[0].Code)
	assert.Equal(t, "HEARTS", resp.Cards[0].Suit)
	assert.Equal(t, "https://x/6H.png", resp.Cards[0].Images.PNG)

	discard := resp.Piles["discard"]
	assert.True(t, discard.HasCards())
	assert.Equal(t, 2, discard.Remaining)
	assert.Len(t, discard.Cards, 2)
	assert.False(t, resp.Piles["other"].HasCards())
}

func TestNormalizeFailures(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		status  int
		body    string
		cause   error
		message string
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"success": false, "error": "Deck ID does not exist."}`, cause: ErrHTTPStatus, message: "404 Not Found"},
		{name: "server error html", status: http.StatusInternalServerError, body: `<h1>Server Error (500)</h1>`, cause: ErrHTTPStatus, message: "Server Error"},
		{name: "bad request", status: http.StatusBadRequest, body: ``, cause: ErrHTTPStatus, message: "400 Bad Request"},
		{name: "not json", status: http.StatusOK, body: `{not-json`, cause: ErrMalformedBody, message: "decode"},
		{name: "json array", status: http.StatusOK, body: `[1, 2]`, cause: ErrMalformedBody, message: "decode"},
		{name: "json null", status: http.StatusOK, body: `null`, cause: ErrMalformedBody, message: "not a json object"},
		{name: "trailing data", status: http.StatusOK, body: `{"success": true} {"extra": true}`, cause: ErrMalformedBody, message: "trailing"},
		{name: "success false", status: http.StatusOK, body: `{"success": false, "error": "Not enough cards remaining to draw 60 additional"}`, cause: ErrUnsuccessful, message: "Not enough cards"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			resp, err := Normalize(stubResponse(tc.status, tc.body))
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRequestFailed)
			assert.ErrorIs(t, err, tc.cause)
			assert.Contains(t, err.Error(), tc.message)

			var reqErr *RequestError
			require.True(t, errors.As(err, &reqErr))
			assert.Equal(t, tc.status, reqErr.StatusCode)
		})
	}
}

func TestNormalizeKeepsPayloadOnUnsuccessful(t *testing.T) {
	t.Parallel()

	_, err := Normalize(stubResponse(http.StatusOK,
		`{"success": false, "deck_id": "abc", "remaining": 0, "cards": [{"code": "AS"}], "error": "Not enough cards"}`))

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	require.NotNil(t, reqErr.Response)
	assert.Equal(t, 0, reqErr.Response.RemainingCount())
	assert.Len(t, reqErr.Response.Cards, 1)
	assert.True(t, reqErr.Response.Has("error"))
}

func TestNormalizeRejectsOversizedBody(t *testing.T) {
	t.Parallel()

	body := `{"error": "` + strings.Repeat("x", maxResponseBodyBytes) + `"}`
	_, err := Normalize(stubResponse(http.StatusOK, body))
	assert.ErrorIs(t, err, ErrMalformedBody)
}

func TestClientGetCarriesRequestURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL + "/api/deck", Timeout: 2 * time.Second})
	_, err := client.ShuffleDeck(context.Background(), "invalid123")

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, server.URL+"/api/deck/invalid123/shuffle/", reqErr.URL)
	assert.Contains(t, err.Error(), "Not Found")
}

func TestClientTimeoutIsNetworkFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL, Timeout: 5 * time.Millisecond})
	_, err := client.DrawCards(context.Background(), "abc", 1)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.ErrorIs(t, err, ErrNetwork)
}

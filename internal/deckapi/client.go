// Package deckapi issues GET requests against the deck of cards API and
// normalizes the responses.
package deckapi

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/arcanaland/deckcheck/internal/urlbuilder"
)

const defaultTimeout = 10 * time.Second

// Options configures a Client
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *log.Entry
}

// Client calls the deck API. One request per call; nothing is retried.
type Client struct {
	httpClient *http.Client
	urls       urlbuilder.Builder
	log        *log.Entry
}

// New returns a Client. An empty BaseURL uses the public API.
func New(opts Options) *Client {
	base := opts.BaseURL
	if strings.TrimSpace(base) == "" {
		base = urlbuilder.DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "deckapi")
	}
	return &Client{
		httpClient: httpClient,
		urls:       urlbuilder.New(base),
		log:        logger,
	}
}

// URLs exposes the builder the client formats requests with
func (c *Client) URLs() urlbuilder.Builder {
	return c.urls
}

// Get issues a GET for url and normalizes the response
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &RequestError{URL: url, Err: fmt.Errorf("%w: build request: %v", ErrNetwork, err)}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithFields(log.Fields{"url": url, "error": err}).Debug("deck api request failed")
		return nil, &RequestError{URL: url, Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}

	c.log.WithFields(log.Fields{
		"url":     url,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start),
	}).Debug("deck api request")

	return Normalize(resp)
}

// NewDeck creates a deck of 52 cards, or 54 with jokers
func (c *Client) NewDeck(ctx context.Context, opts urlbuilder.NewDeckOptions) (*Response, error) {
	return c.Get(ctx, c.urls.NewDeck(opts))
}

// CreateDeck creates a deck and returns only its id
func (c *Client) CreateDeck(ctx context.Context, opts urlbuilder.NewDeckOptions) (string, error) {
	resp, err := c.NewDeck(ctx, opts)
	if err != nil {
		return "", err
	}
	if resp.DeckID == "" {
		return "", &RequestError{URL: c.urls.NewDeck(opts), Response: resp, Err: fmt.Errorf("%w: deck_id missing", ErrMalformedBody)}
	}
	return resp.DeckID, nil
}

// NewPartialDeck creates a deck holding only the given card codes
func (c *Client) NewPartialDeck(ctx context.Context, cards ...string) (*Response, error) {
	return c.Get(ctx, c.urls.NewPartialDeck(cards...))
}

func (c *Client) ShuffleDeck(ctx context.Context, deckID string) (*Response, error) {
	return c.call(ctx, func(b urlbuilder.Builder) (string, error) { return b.ShuffleDeck(deckID) })
}

func (c *Client) ReshuffleDeck(ctx context.Context, deckID string, remainingOnly bool) (*Response, error) {
	return c.call(ctx, func(b urlbuilder.Builder) (string, error) { return b.ReshuffleDeck(deckID, remainingOnly) })
}

func (c *Client) DrawCards(ctx context.Context, deckID string, count int) (*Response, error) {
	return c.call(ctx, func(b urlbuilder.Builder) (string, error) { return b.DrawCards(deckID, count) })
}

func (c *Client) AddToPile(ctx context.Context, deckID, pile string, cards ...string) (*Response, error) {
	return c.call(ctx, func(b urlbuilder.Builder) (string, error) { return b.AddToPile(deckID, pile, cards...) })
}

func (c *Client) DrawFromPile(ctx context.Context, deckID, pile string, count int) (*Response, error) {
	return c.call(ctx, func(b urlbuilder.Builder) (string, error) { return b.DrawFromPile(deckID, pile, count) })
}

func (c *Client) ListPile(ctx context.Context, deckID, pile string) (*Response, error) {
	return c.call(ctx, func(b urlbuilder.Builder) (string, error) { return b.ListPile(deckID, pile) })
}

func (c *Client) ShufflePile(ctx context.Context, deckID, pile string) (*Response, error) {
	return c.call(ctx, func(b urlbuilder.Builder) (string, error) { return b.ShufflePile(deckID, pile) })
}

func (c *Client) ReturnToDeck(ctx context.Context, deckID string, cards ...string) (*Response, error) {
	return c.call(ctx, func(b urlbuilder.Builder) (string, error) { return b.ReturnToDeck(deckID, cards...) })
}

func (c *Client) ReturnPile(ctx context.Context, deckID, pile string, cards ...string) (*Response, error) {
	return c.call(ctx, func(b urlbuilder.Builder) (string, error) { return b.ReturnPile(deckID, pile, cards...) })
}

// FetchCardImage downloads and decodes a card image
func (c *Client) FetchCardImage(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &RequestError{URL: url, Err: fmt.Errorf("%w: build request: %v", ErrNetwork, err)}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{URL: url, Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &RequestError{URL: url, StatusCode: resp.StatusCode, Err: ErrHTTPStatus}
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, 4*maxResponseBodyBytes))
	if err != nil {
		return nil, &RequestError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: decode image: %v", ErrMalformedBody, err)}
	}
	return img, nil
}

// call builds the URL first so argument errors never reach the network
func (c *Client) call(ctx context.Context, build func(urlbuilder.Builder) (string, error)) (*Response, error) {
	url, err := build(c.urls)
	if err != nil {
		return nil, err
	}
	return c.Get(ctx, url)
}

// IsArgumentError reports whether err is a local precondition failure raised
// before any request was sent
func IsArgumentError(err error) bool {
	return errors.Is(err, urlbuilder.ErrInvalidArgument)
}

// Package conformance runs the deck API scenarios against a live service and
// collects pass/fail/warning results.
package conformance

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/arcanaland/deckcheck/internal/card"
	"github.com/arcanaland/deckcheck/internal/deck"
	"github.com/arcanaland/deckcheck/internal/deckapi"
	"github.com/arcanaland/deckcheck/internal/urlbuilder"
)

// Results of a run. Warnings record third-party quirks that were observed
// and reported rather than treated as failures.
type Results struct {
	RunID    string
	Passed   []string
	Failures []string
	Warnings []string
}

// OK reports whether no scenario failed
func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Options configures a Checker
type Options struct {
	PileName string
	Logger   *log.Entry
}

// Checker runs every scenario with its own fresh deck
type Checker struct {
	client    *deckapi.Client
	pile      string
	log       *log.Entry
	Results   Results
	scenarios []scenario
}

type scenario struct {
	name string
	// fresh scenarios get a new shuffled deck in their fixture
	fresh bool
	run   func(ctx context.Context, f *fixture) error
}

// fixture is passed explicitly to each scenario in place of shared state
type fixture struct {
	client   *deckapi.Client
	deckID   string
	pile     string
	warnings []string
}

func (f *fixture) warn(format string, args ...any) {
	f.warnings = append(f.warnings, fmt.Sprintf(format, args...))
}

func NewChecker(client *deckapi.Client, opts Options) *Checker {
	pile := opts.PileName
	if pile == "" {
		pile = "test_pile"
	}
	runID := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}

	return &Checker{
		client:    client,
		pile:      pile,
		log:       logger.WithField("run_id", runID),
		Results:   Results{RunID: runID},
		scenarios: scenarios(),
	}
}

// Run executes all scenarios. It returns an error only when the service
// cannot create a deck at all.
func (c *Checker) Run(ctx context.Context) (Results, error) {
	if _, err := c.client.CreateDeck(ctx, urlbuilder.NewDeckOptions{}); err != nil {
		return c.Results, fmt.Errorf("deck api unavailable at %s: %w", c.client.URLs().BaseURL(), err)
	}

	for _, s := range c.scenarios {
		c.runScenario(ctx, s)
	}

	c.log.WithFields(log.Fields{
		"passed":   len(c.Results.Passed),
		"failures": len(c.Results.Failures),
		"warnings": len(c.Results.Warnings),
	}).Info("conformance run complete")

	return c.Results, nil
}

func (c *Checker) runScenario(ctx context.Context, s scenario) {
	entry := c.log.WithField("scenario", s.name)
	f := &fixture{client: c.client, pile: c.pile}

	err := func() error {
		if s.fresh {
			deckID, err := c.client.CreateDeck(ctx, urlbuilder.NewDeckOptions{Shuffle: true})
			if err != nil {
				return fmt.Errorf("create deck: %w", err)
			}
			f.deckID = deckID
		}
		return s.run(ctx, f)
	}()

	for _, w := range f.warnings {
		c.Results.Warnings = append(c.Results.Warnings, fmt.Sprintf("%s: %s", s.name, w))
	}

	if err != nil {
		entry.WithError(err).Warn("scenario failed")
		c.Results.Failures = append(c.Results.Failures, fmt.Sprintf("%s: %v", s.name, err))
		return
	}
	entry.WithField("deck_id", f.deckID).Debug("scenario passed")
	c.Results.Passed = append(c.Results.Passed, s.name)
}

func scenarios() []scenario {
	return []scenario{
		{name: "new deck options", run: newDeckOptions},
		{name: "shuffle deck", fresh: true, run: shuffleDeck},
		{name: "draw cards", fresh: true, run: drawCards},
		{name: "draw varied counts", run: drawVariedCounts},
		{name: "add to pile and list", fresh: true, run: addAndListPile},
		{name: "shuffle pile", fresh: true, run: shufflePile},
		{name: "draw from pile counts", run: drawFromPileCounts},
		{name: "return to deck", fresh: true, run: returnToDeck},
		{name: "partial deck", run: partialDeck},
		{name: "reshuffle remaining", fresh: true, run: reshuffleRemaining},
		{name: "shuffle invalid deck", run: shuffleInvalidDeck},
		{name: "draw from nonexistent pile", fresh: true, run: drawFromNonexistentPile},
		{name: "draw more than available", fresh: true, run: drawMoreThanAvailable},
		{name: "draw negative count", fresh: true, run: drawNegativeCount},
		{name: "add invalid cards to pile", fresh: true, run: addInvalidCards},
	}
}

func expect(cond bool, format string, args ...any) error {
	if cond {
		return nil
	}
	return fmt.Errorf(format, args...)
}

func newDeckOptions(ctx context.Context, f *fixture) error {
	for _, opts := range []urlbuilder.NewDeckOptions{
		{},
		{Shuffle: true},
		{JokersEnabled: true},
		{Shuffle: true, JokersEnabled: true},
	} {
		resp, err := f.client.NewDeck(ctx, opts)
		if err != nil {
			return err
		}
		want := deck.Size
		if opts.JokersEnabled {
			want += 2
		}
		if err := expect(resp.Has("deck_id") && resp.DeckID != "", "%+v: deck_id missing", opts); err != nil {
			return err
		}
		if err := expect(resp.RemainingCount() == want, "%+v: remaining %d, want %d", opts, resp.RemainingCount(), want); err != nil {
			return err
		}
	}
	return nil
}

func shuffleDeck(ctx context.Context, f *fixture) error {
	resp, err := f.client.ShuffleDeck(ctx, f.deckID)
	if err != nil {
		return err
	}
	return expect(resp.Shuffled != nil && *resp.Shuffled, "shuffled flag not true")
}

func drawCards(ctx context.Context, f *fixture) error {
	resp, err := f.client.DrawCards(ctx, f.deckID, 5)
	if err != nil {
		return err
	}
	if err := expect(len(resp.Cards) == 5, "drew %d cards, want 5", len(resp.Cards)); err != nil {
		return err
	}
	return expect(resp.RemainingCount() == 47, "remaining %d, want 47", resp.RemainingCount())
}

func drawVariedCounts(ctx context.Context, f *fixture) error {
	for _, count := range []int{1, 5, 52, 0, 55} {
		deckID, err := f.client.CreateDeck(ctx, urlbuilder.NewDeckOptions{Shuffle: true})
		if err != nil {
			return err
		}

		resp, err := f.client.DrawCards(ctx, deckID, count)
		if err != nil && count > deck.Size {
			resp, err = overDrawPayload(f, count, err)
		}
		if err != nil {
			return fmt.Errorf("count %d: %w", count, err)
		}

		want := min(count, deck.Size)
		if err := expect(resp.Has("cards"), "count %d: cards missing", count); err != nil {
			return err
		}
		if err := expect(len(resp.Cards) == want, "count %d: drew %d cards, want %d", count, len(resp.Cards), want); err != nil {
			return err
		}
		if err := expect(resp.RemainingCount() == deck.Size-want, "count %d: remaining %d, want %d", count, resp.RemainingCount(), deck.Size-want); err != nil {
			return err
		}
	}
	return nil
}

// overDrawPayload accepts the service's success:false answer to an
// over-draw, records it, and hands back the payload for inspection
func overDrawPayload(f *fixture, count int, err error) (*deckapi.Response, error) {
	if !errors.Is(err, deckapi.ErrUnsuccessful) {
		return nil, err
	}
	var reqErr *deckapi.RequestError
	if !errors.As(err, &reqErr) || reqErr.Response == nil {
		return nil, err
	}
	f.warn("drawing %d cards returned the remaining cards with success false", count)
	return reqErr.Response, nil
}

func addAndListPile(ctx context.Context, f *fixture) error {
	drawn, err := f.client.DrawCards(ctx, f.deckID, 5)
	if err != nil {
		return err
	}
	codes := card.Codes(drawn.Cards)

	added, err := f.client.AddToPile(ctx, f.deckID, f.pile, codes...)
	if err != nil {
		return err
	}
	if _, ok := added.Piles[f.pile]; !ok {
		return fmt.Errorf("pile %s missing from add response", f.pile)
	}

	listed, err := f.client.ListPile(ctx, f.deckID, f.pile)
	if err != nil {
		return err
	}
	pile, ok := listed.Piles[f.pile]
	if !ok || !pile.HasCards() {
		return fmt.Errorf("pile %s has no cards list", f.pile)
	}
	if err := unique(card.Codes(pile.Cards)); err != nil {
		return err
	}
	return sameCodes(codes, card.Codes(pile.Cards))
}

func shufflePile(ctx context.Context, f *fixture) error {
	drawn, err := f.client.DrawCards(ctx, f.deckID, 5)
	if err != nil {
		return err
	}
	if _, err := f.client.AddToPile(ctx, f.deckID, f.pile, card.Codes(drawn.Cards)...); err != nil {
		return err
	}
	resp, err := f.client.ShufflePile(ctx, f.deckID, f.pile)
	if err != nil {
		return err
	}
	return expect(resp.Piles[f.pile].Remaining == 5, "pile remaining %d after shuffle, want 5", resp.Piles[f.pile].Remaining)
}

func drawFromPileCounts(ctx context.Context, f *fixture) error {
	const pileSize = 20

	for _, count := range []int{0, 3, 5, 1, 10} {
		deckID, err := f.client.CreateDeck(ctx, urlbuilder.NewDeckOptions{Shuffle: true})
		if err != nil {
			return err
		}
		drawn, err := f.client.DrawCards(ctx, deckID, pileSize)
		if err != nil {
			return err
		}
		if _, err := f.client.AddToPile(ctx, deckID, f.pile, card.Codes(drawn.Cards)...); err != nil {
			return err
		}

		resp, err := f.client.DrawFromPile(ctx, deckID, f.pile, count)
		if err != nil {
			return fmt.Errorf("count %d: %w", count, err)
		}
		want := min(count, pileSize)
		if err := expect(len(resp.Cards) == want, "count %d: drew %d cards from pile, want %d", count, len(resp.Cards), want); err != nil {
			return err
		}
		if err := unique(card.Codes(resp.Cards)); err != nil {
			return fmt.Errorf("count %d: %w", count, err)
		}
	}
	return nil
}

func returnToDeck(ctx context.Context, f *fixture) error {
	drawn, err := f.client.DrawCards(ctx, f.deckID, 5)
	if err != nil {
		return err
	}
	resp, err := f.client.ReturnToDeck(ctx, f.deckID, card.Codes(drawn.Cards)...)
	if err != nil {
		return err
	}
	return expect(resp.RemainingCount() == deck.Size, "remaining %d after return, want %d", resp.RemainingCount(), deck.Size)
}

func partialDeck(ctx context.Context, f *fixture) error {
	resp, err := f.client.NewPartialDeck(ctx, "AS", "2S", "KH")
	if err != nil {
		return err
	}
	f.deckID = resp.DeckID
	return expect(resp.RemainingCount() == 3, "partial deck remaining %d, want 3", resp.RemainingCount())
}

func reshuffleRemaining(ctx context.Context, f *fixture) error {
	if _, err := f.client.DrawCards(ctx, f.deckID, 2); err != nil {
		return err
	}
	resp, err := f.client.ReshuffleDeck(ctx, f.deckID, true)
	if err != nil {
		return err
	}
	if err := expect(resp.RemainingCount() == deck.Size-2, "remaining %d after remaining-only shuffle, want %d", resp.RemainingCount(), deck.Size-2); err != nil {
		return err
	}
	resp, err = f.client.ReshuffleDeck(ctx, f.deckID, false)
	if err != nil {
		return err
	}
	return expect(resp.RemainingCount() == deck.Size, "remaining %d after full reshuffle, want %d", resp.RemainingCount(), deck.Size)
}

func shuffleInvalidDeck(ctx context.Context, f *fixture) error {
	_, err := f.client.ShuffleDeck(ctx, "invalid123")
	return expectStatus(err, func(code int) bool { return code == http.StatusNotFound }, "404")
}

func drawFromNonexistentPile(ctx context.Context, f *fixture) error {
	_, err := f.client.DrawFromPile(ctx, f.deckID, "nonexistent_pile", 5)
	return expectStatus(err, func(code int) bool { return code >= http.StatusInternalServerError }, "5xx")
}

func expectStatus(err error, ok func(int) bool, want string) error {
	if err == nil {
		return fmt.Errorf("request succeeded, want %s", want)
	}
	var reqErr *deckapi.RequestError
	if !errors.As(err, &reqErr) || !ok(reqErr.StatusCode) {
		return fmt.Errorf("got %v, want %s", err, want)
	}
	return nil
}

func drawMoreThanAvailable(ctx context.Context, f *fixture) error {
	resp, err := f.client.DrawCards(ctx, f.deckID, 60)
	if err != nil {
		resp, err = overDrawPayload(f, 60, err)
		if err != nil {
			return err
		}
	}
	if err := expect(resp.RemainingCount() == 0, "remaining %d, want 0", resp.RemainingCount()); err != nil {
		return err
	}
	return expect(len(resp.Cards) == deck.Size, "drew %d cards, want %d", len(resp.Cards), deck.Size)
}

func drawNegativeCount(ctx context.Context, f *fixture) error {
	resp, err := f.client.DrawCards(ctx, f.deckID, -5)
	if err == nil {
		return fmt.Errorf("negative count accepted, %d cards drawn", len(resp.Cards))
	}
	if !errors.Is(err, deckapi.ErrUnsuccessful) && !errors.Is(err, deckapi.ErrHTTPStatus) {
		return err
	}

	var reqErr *deckapi.RequestError
	if errors.As(err, &reqErr) && reqErr.Response != nil {
		if !reqErr.Response.Has("error") {
			return fmt.Errorf("negative count rejected without an error message")
		}
		if n := len(reqErr.Response.Cards); n > 0 {
			f.warn("negative count was rejected but still drew %d cards", n)
		}
	}
	return nil
}

func addInvalidCards(ctx context.Context, f *fixture) error {
	resp, err := f.client.AddToPile(ctx, f.deckID, "invalid_pile", "ZZ", "AA")
	if err == nil {
		f.warn("invalid card codes were accepted into a pile (success %v)", resp.Succeeded())
		return nil
	}
	if errors.Is(err, deckapi.ErrUnsuccessful) {
		return nil
	}
	return err
}

func unique(codes []string) error {
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if seen[code] {
			return fmt.Errorf("duplicate card %s", code)
		}
		seen[code] = true
	}
	return nil
}

func sameCodes(want, got []string) error {
	if len(want) != len(got) {
		return fmt.Errorf("pile holds %d cards, want %d", len(got), len(want))
	}
	index := make(map[string]bool, len(got))
	for _, code := range got {
		index[code] = true
	}
	for _, code := range want {
		if !index[code] {
			return fmt.Errorf("card %s missing from pile", code)
		}
	}
	return nil
}

// Package urlbuilder formats deck API endpoint URLs.
//
// Deck ids and pile names are inserted as raw path segments and query values
// are not escaped, so the output matches the documented endpoint shapes
// literally.
package urlbuilder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultBaseURL is the public deck of cards API
const DefaultBaseURL = "https://deckofcardsapi.com/api/deck"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrMissingDeckID   = fmt.Errorf("%w: deck id is required", ErrInvalidArgument)
	ErrMissingPileName = fmt.Errorf("%w: pile name is required", ErrInvalidArgument)
)

// Default builds URLs against DefaultBaseURL
var Default = New(DefaultBaseURL)

// Builder maps an operation and its parameters to a URL
type Builder struct {
	base string
}

// NewDeckOptions are the optional flags of the new deck endpoint
type NewDeckOptions struct {
	Shuffle       bool
	JokersEnabled bool
}

// New returns a Builder rooted at base
func New(base string) Builder {
	return Builder{base: strings.TrimRight(strings.TrimSpace(base), "/")}
}

// BaseURL returns the base the builder was created with
func (b Builder) BaseURL() string {
	return b.base
}

// NewDeck builds /new/ with shuffle and jokers_enabled flags when set
func (b Builder) NewDeck(opts NewDeckOptions) string {
	var params []string
	if opts.Shuffle {
		params = append(params, "shuffle=true")
	}
	if opts.JokersEnabled {
		params = append(params, "jokers_enabled=true")
	}
	return withQuery(b.base+"/new/", params)
}

// NewPartialDeck builds /new/?cards=... for a deck holding only the given cards
func (b Builder) NewPartialDeck(cards ...string) string {
	return b.base + "/new/?cards=" + strings.Join(cards, ",")
}

// ShuffleDeck builds /{deck_id}/shuffle/
func (b Builder) ShuffleDeck(deckID string) (string, error) {
	return b.ReshuffleDeck(deckID, false)
}

// ReshuffleDeck builds /{deck_id}/shuffle/, optionally limited to the cards
// still in the deck
func (b Builder) ReshuffleDeck(deckID string, remainingOnly bool) (string, error) {
	root, err := b.deck(deckID)
	if err != nil {
		return "", err
	}
	var params []string
	if remainingOnly {
		params = append(params, "remaining=true")
	}
	return withQuery(root+"/shuffle/", params), nil
}

// DrawCards builds /{deck_id}/draw/?count=N
func (b Builder) DrawCards(deckID string, count int) (string, error) {
	root, err := b.deck(deckID)
	if err != nil {
		return "", err
	}
	return root + "/draw/?count=" + strconv.Itoa(count), nil
}

// AddToPile builds /{deck_id}/pile/{pile}/add/?cards=...
func (b Builder) AddToPile(deckID, pile string, cards ...string) (string, error) {
	root, err := b.pile(deckID, pile)
	if err != nil {
		return "", err
	}
	return root + "/add/?cards=" + strings.Join(cards, ","), nil
}

// DrawFromPile builds /{deck_id}/pile/{pile}/draw/?count=N
func (b Builder) DrawFromPile(deckID, pile string, count int) (string, error) {
	root, err := b.pile(deckID, pile)
	if err != nil {
		return "", err
	}
	return root + "/draw/?count=" + strconv.Itoa(count), nil
}

// ListPile builds /{deck_id}/pile/{pile}/list/
func (b Builder) ListPile(deckID, pile string) (string, error) {
	root, err := b.pile(deckID, pile)
	if err != nil {
		return "", err
	}
	return root + "/list/", nil
}

// ShufflePile builds /{deck_id}/pile/{pile}/shuffle/
func (b Builder) ShufflePile(deckID, pile string) (string, error) {
	root, err := b.pile(deckID, pile)
	if err != nil {
		return "", err
	}
	return root + "/shuffle/", nil
}

// ReturnToDeck builds /{deck_id}/return/. Without cards the API returns every
// drawn card, so the query is left off.
func (b Builder) ReturnToDeck(deckID string, cards ...string) (string, error) {
	root, err := b.deck(deckID)
	if err != nil {
		return "", err
	}
	return withCards(root+"/return/", cards), nil
}

// ReturnPile builds /{deck_id}/pile/{pile}/return/
func (b Builder) ReturnPile(deckID, pile string, cards ...string) (string, error) {
	root, err := b.pile(deckID, pile)
	if err != nil {
		return "", err
	}
	return withCards(root+"/return/", cards), nil
}

// CardImage builds the PNG image URL of a card on the API host
func (b Builder) CardImage(code string) string {
	origin := strings.TrimSuffix(b.base, "/api/deck")
	return origin + "/static/img/" + code + ".png"
}

func (b Builder) deck(deckID string) (string, error) {
	if strings.TrimSpace(deckID) == "" {
		return "", ErrMissingDeckID
	}
	return b.base + "/" + deckID, nil
}

func (b Builder) pile(deckID, pile string) (string, error) {
	root, err := b.deck(deckID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(pile) == "" {
		return "", ErrMissingPileName
	}
	return root + "/pile/" + pile, nil
}

func withCards(url string, cards []string) string {
	if len(cards) == 0 {
		return url
	}
	return url + "?cards=" + strings.Join(cards, ",")
}

func withQuery(url string, params []string) string {
	if len(params) == 0 {
		return url
	}
	return url + "?" + strings.Join(params, "&")
}

package card

import (
	"fmt"
	"strings"
)

// Card represents a playing card as returned by the deck API
type Card struct {
	Code   string `json:"code"`  // Rank+suit code (e.g., AS, 0H, X1)
	Image  string `json:"image"` // PNG image URL
	Images Images `json:"images,omitempty"`
	Value  string `json:"value"` // ACE, 2..10, JACK, QUEEN, KING, JOKER
	Suit   string `json:"suit"`  // SPADES, DIAMONDS, CLUBS, HEARTS, BLACK, RED
}

// Images holds the alternate image formats for a card
type Images struct {
	SVG string `json:"svg,omitempty"`
	PNG string `json:"png,omitempty"`
}

// Code is a parsed card code
type Code struct {
	Raw   string
	Rank  string // ACE, 2..10, JACK, QUEEN, KING or JOKER
	Suit  string // SPADES, DIAMONDS, CLUBS, HEARTS, BLACK or RED
	Joker bool
}

var rankNames = map[byte]string{
	'A': "ACE",
	'2': "2",
	'3': "3",
	'4': "4",
	'5': "5",
	'6': "6",
	'7': "7",
	'8': "8",
	'9': "9",
	'0': "10",
	'J': "JACK",
	'Q': "QUEEN",
	'K': "KING",
}

var suitNames = map[byte]string{
	'S': "SPADES",
	'D': "DIAMONDS",
	'C': "CLUBS",
	'H': "HEARTS",
}

// ParseCode parses a two character card code such as "AS" or "0H".
// Jokers are "X1" (black) and "X2" (red).
func ParseCode(code string) (Code, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return Code{}, fmt.Errorf("invalid card code: %q", code)
	}

	switch code {
	case "X1":
		return Code{Raw: code, Rank: "JOKER", Suit: "BLACK", Joker: true}, nil
	case "X2":
		return Code{Raw: code, Rank: "JOKER", Suit: "RED", Joker: true}, nil
	}

	rank, ok := rankNames[code[0]]
	if !ok {
		return Code{}, fmt.Errorf("invalid card rank in %q", code)
	}
	suit, ok := suitNames[code[1]]
	if !ok {
		return Code{}, fmt.Errorf("invalid card suit in %q", code)
	}

	return Code{Raw: code, Rank: rank, Suit: suit}, nil
}

// Name returns the display name (e.g., "Ace of Spades", "Black Joker")
func (c Code) Name() string {
	if c.Joker {
		return titleWord(c.Suit) + " Joker"
	}
	return titleWord(c.Rank) + " of " + titleWord(c.Suit)
}

// Name returns the display name of a card, falling back to its code
func (c Card) Name() string {
	parsed, err := ParseCode(c.Code)
	if err != nil {
		return c.Code
	}
	return parsed.Name()
}

// Codes extracts the codes of cards in order
func Codes(cards []Card) []string {
	codes := make([]string, 0, len(cards))
	for _, c := range cards {
		codes = append(codes, c.Code)
	}
	return codes
}

// JoinCodes joins card codes into the comma list the API expects
func JoinCodes(codes []string) string {
	return strings.Join(codes, ",")
}

// SplitCodes splits a comma list, dropping empty entries
func SplitCodes(list string) []string {
	var codes []string
	for _, c := range strings.Split(list, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

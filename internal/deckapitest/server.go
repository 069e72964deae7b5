// Package deckapitest runs an in-memory stand-in for the deck of cards API.
//
// It serves the same GET endpoints and JSON shapes as the public service,
// including its observed quirks: drawing more cards than remain (or a
// negative count) returns the available cards with success false, unknown
// deck ids answer 404, unknown piles answer 500, and unknown card codes are
// accepted into piles.
package deckapitest

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"

	"github.com/arcanaland/deckcheck/internal/card"
	"github.com/arcanaland/deckcheck/internal/deck"
)

// Server is a running fake deck API
type Server struct {
	*httptest.Server

	mu    sync.Mutex
	decks map[string]*deckState
}

type deckState struct {
	cards     []string // index 0 is the top of the deck
	drawn     []string
	piles     map[string][]string // last element is the top of the pile
	pileOrder []string
}

type wireCard struct {
	Code   string            `json:"code"`
	Image  string            `json:"image"`
	Images map[string]string `json:"images"`
	Value  string            `json:"value"`
	Suit   string            `json:"suit"`
}

type wirePile struct {
	Remaining int         `json:"remaining"`
	Cards     *[]wireCard `json:"cards,omitempty"`
}

type wireResponse struct {
	Success   bool                `json:"success"`
	DeckID    string              `json:"deck_id"`
	Shuffled  *bool               `json:"shuffled,omitempty"`
	Remaining int                 `json:"remaining"`
	Cards     *[]wireCard         `json:"cards,omitempty"`
	Piles     map[string]wirePile `json:"piles,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// NewServer starts a fake deck API. Close it when done.
func NewServer() *Server {
	s := &Server{decks: make(map[string]*deckState)}
	s.Server = httptest.NewServer(s.Handler())
	return s
}

// BaseURL is the deck API base of the running server
func (s *Server) BaseURL() string {
	return s.URL + "/api/deck"
}

// Remaining reports how many cards are left in a deck
func (s *Server) Remaining(deckID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.decks[deckID]
	if !ok {
		return 0, false
	}
	return len(d.cards), true
}

// Handler returns the router without starting a listener
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/deck/new/", s.newDeck)
	r.Get("/api/deck/{deck_id}/shuffle/", s.withDeck(s.shuffleDeck))
	r.Get("/api/deck/{deck_id}/draw/", s.withDeck(s.drawCards))
	r.Get("/api/deck/{deck_id}/return/", s.withDeck(s.returnCards))
	r.Get("/api/deck/{deck_id}/pile/{pile_name}/add/", s.withDeck(s.addToPile))
	r.Get("/api/deck/{deck_id}/pile/{pile_name}/list/", s.withDeck(s.withPile(s.listPile)))
	r.Get("/api/deck/{deck_id}/pile/{pile_name}/shuffle/", s.withDeck(s.withPile(s.shufflePile)))
	r.Get("/api/deck/{deck_id}/pile/{pile_name}/draw/", s.withDeck(s.withPile(s.drawFromPile)))
	r.Get("/api/deck/{deck_id}/pile/{pile_name}/return/", s.withDeck(s.withPile(s.returnPile)))
	r.Get("/static/img/{file}", serveCardImage)

	return r
}

type deckHandler func(w http.ResponseWriter, r *http.Request, id string, d *deckState)

// withDeck resolves deck_id and holds the lock for the whole request
func (s *Server) withDeck(next deckHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "deck_id")

		s.mu.Lock()
		defer s.mu.Unlock()

		d, ok := s.decks[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, wireResponse{Success: false, Error: "Deck ID does not exist."})
			return
		}
		next(w, r, id, d)
	}
}

func (s *Server) withPile(next deckHandler) deckHandler {
	return func(w http.ResponseWriter, r *http.Request, id string, d *deckState) {
		if _, ok := d.piles[chi.URLParam(r, "pile_name")]; !ok {
			serverError(w)
			return
		}
		next(w, r, id, d)
	}
}

func (s *Server) newDeck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var codes []string
	if list := q.Get("cards"); list != "" {
		for _, code := range card.SplitCodes(list) {
			if parsed, err := card.ParseCode(code); err == nil {
				codes = append(codes, parsed.Raw)
			}
		}
	} else if q.Get("jokers_enabled") == "true" {
		codes = deck.WithJokers()
	} else {
		codes = deck.Standard()
	}

	shuffled := q.Get("shuffle") == "true"
	if shuffled {
		shuffle(codes)
	}

	id := newDeckID()
	d := &deckState{cards: codes, piles: make(map[string][]string)}

	s.mu.Lock()
	s.decks[id] = d
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, wireResponse{
		Success:   true,
		DeckID:    id,
		Shuffled:  &shuffled,
		Remaining: len(codes),
	})
}

func (s *Server) shuffleDeck(w http.ResponseWriter, r *http.Request, id string, d *deckState) {
	if r.URL.Query().Get("remaining") != "true" {
		d.cards = append(d.cards, d.drawn...)
		d.drawn = nil
		for _, name := range d.pileOrder {
			d.cards = append(d.cards, d.piles[name]...)
		}
		d.piles = make(map[string][]string)
		d.pileOrder = nil
	}
	shuffle(d.cards)

	shuffled := true
	writeJSON(w, http.StatusOK, wireResponse{
		Success:   true,
		DeckID:    id,
		Shuffled:  &shuffled,
		Remaining: len(d.cards),
	})
}

func (s *Server) drawCards(w http.ResponseWriter, r *http.Request, id string, d *deckState) {
	count, ok := parseCount(r)
	if !ok {
		serverError(w)
		return
	}

	resp := wireResponse{Success: true, DeckID: id}
	n := count
	if count < 0 || count > len(d.cards) {
		resp.Success = false
		resp.Error = fmt.Sprintf("Not enough cards remaining to draw %d additional", count)
		n = len(d.cards)
	}

	drawn := append([]string(nil), d.cards[:n]...)
	d.cards = d.cards[n:]
	d.drawn = append(d.drawn, drawn...)

	cards := wireCards(r, drawn)
	resp.Cards = &cards
	resp.Remaining = len(d.cards)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) returnCards(w http.ResponseWriter, r *http.Request, id string, d *deckState) {
	codes := card.SplitCodes(r.URL.Query().Get("cards"))
	if len(codes) == 0 {
		d.cards = append(d.cards, d.drawn...)
		d.drawn = nil
	} else {
		for _, code := range codes {
			code = strings.ToUpper(code)
			if !d.takeDrawn(code) {
				writeJSON(w, http.StatusOK, wireResponse{
					Success:   false,
					DeckID:    id,
					Remaining: len(d.cards),
					Error:     fmt.Sprintf("The card %s is not drawn.", code),
				})
				return
			}
			d.cards = append(d.cards, code)
		}
	}

	writeJSON(w, http.StatusOK, wireResponse{
		Success:   true,
		DeckID:    id,
		Remaining: len(d.cards),
		Piles:     d.pileSummary("", r),
	})
}

func (s *Server) addToPile(w http.ResponseWriter, r *http.Request, id string, d *deckState) {
	name := chi.URLParam(r, "pile_name")
	if _, ok := d.piles[name]; !ok {
		d.piles[name] = nil
		d.pileOrder = append(d.pileOrder, name)
	}

	for _, code := range card.SplitCodes(r.URL.Query().Get("cards")) {
		code = strings.ToUpper(code)
		if !d.takeDrawn(code) {
			d.takeFromDeck(code)
		}
		d.piles[name] = append(d.piles[name], code)
	}

	writeJSON(w, http.StatusOK, wireResponse{
		Success:   true,
		DeckID:    id,
		Remaining: len(d.cards),
		Piles:     d.pileSummary("", r),
	})
}

func (s *Server) listPile(w http.ResponseWriter, r *http.Request, id string, d *deckState) {
	writeJSON(w, http.StatusOK, wireResponse{
		Success:   true,
		DeckID:    id,
		Remaining: len(d.cards),
		Piles:     d.pileSummary(chi.URLParam(r, "pile_name"), r),
	})
}

func (s *Server) shufflePile(w http.ResponseWriter, r *http.Request, id string, d *deckState) {
	shuffle(d.piles[chi.URLParam(r, "pile_name")])
	writeJSON(w, http.StatusOK, wireResponse{
		Success:   true,
		DeckID:    id,
		Remaining: len(d.cards),
		Piles:     d.pileSummary("", r),
	})
}

func (s *Server) drawFromPile(w http.ResponseWriter, r *http.Request, id string, d *deckState) {
	name := chi.URLParam(r, "pile_name")
	count, ok := parseCount(r)
	if !ok || count < 0 {
		serverError(w)
		return
	}

	pile := d.piles[name]
	if count > len(pile) {
		count = len(pile)
	}

	drawn := make([]string, 0, count)
	for i := 0; i < count; i++ {
		top := len(pile) - 1
		drawn = append(drawn, pile[top])
		pile = pile[:top]
	}
	d.piles[name] = pile
	d.drawn = append(d.drawn, drawn...)

	cards := wireCards(r, drawn)
	writeJSON(w, http.StatusOK, wireResponse{
		Success:   true,
		DeckID:    id,
		Remaining: len(d.cards),
		Cards:     &cards,
		Piles:     d.pileSummary("", r),
	})
}

func (s *Server) returnPile(w http.ResponseWriter, r *http.Request, id string, d *deckState) {
	name := chi.URLParam(r, "pile_name")
	codes := card.SplitCodes(r.URL.Query().Get("cards"))

	if len(codes) == 0 {
		d.cards = append(d.cards, d.piles[name]...)
		d.piles[name] = nil
	} else {
		for _, code := range codes {
			code = strings.ToUpper(code)
			idx := indexOf(d.piles[name], code)
			if idx < 0 {
				writeJSON(w, http.StatusOK, wireResponse{
					Success:   false,
					DeckID:    id,
					Remaining: len(d.cards),
					Error:     fmt.Sprintf("The card %s is not in pile %s.", code, name),
				})
				return
			}
			d.piles[name] = append(d.piles[name][:idx], d.piles[name][idx+1:]...)
			d.cards = append(d.cards, code)
		}
	}

	writeJSON(w, http.StatusOK, wireResponse{
		Success:   true,
		DeckID:    id,
		Remaining: len(d.cards),
		Piles:     d.pileSummary("", r),
	})
}

// pileSummary lists every pile; the named one also carries its cards
func (d *deckState) pileSummary(withCards string, r *http.Request) map[string]wirePile {
	piles := make(map[string]wirePile, len(d.piles))
	for name, codes := range d.piles {
		p := wirePile{Remaining: len(codes)}
		if name == withCards {
			cards := wireCards(r, codes)
			p.Cards = &cards
		}
		piles[name] = p
	}
	return piles
}

func (d *deckState) takeDrawn(code string) bool {
	if idx := indexOf(d.drawn, code); idx >= 0 {
		d.drawn = append(d.drawn[:idx], d.drawn[idx+1:]...)
		return true
	}
	return false
}

func (d *deckState) takeFromDeck(code string) {
	if idx := indexOf(d.cards, code); idx >= 0 {
		d.cards = append(d.cards[:idx], d.cards[idx+1:]...)
	}
}

func wireCards(r *http.Request, codes []string) []wireCard {
	origin := "http://" + r.Host
	cards := make([]wireCard, 0, len(codes))
	for _, code := range codes {
		c := wireCard{
			Code:  code,
			Image: origin + "/static/img/" + code + ".png",
			Images: map[string]string{
				"svg": origin + "/static/img/" + code + ".svg",
				"png": origin + "/static/img/" + code + ".png",
			},
		}
		if parsed, err := card.ParseCode(code); err == nil {
			c.Value = parsed.Rank
			c.Suit = parsed.Suit
		}
		cards = append(cards, c)
	}
	return cards
}

// serveCardImage renders a small solid PNG so image consumers can be tested
func serveCardImage(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	code, ok := strings.CutSuffix(file, ".png")
	if !ok {
		http.NotFound(w, r)
		return
	}
	parsed, err := card.ParseCode(code)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	fill := color.RGBA{R: 20, G: 20, B: 20, A: 255}
	if parsed.Suit == "HEARTS" || parsed.Suit == "DIAMONDS" || parsed.Suit == "RED" {
		fill = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	}

	img := image.NewRGBA(image.Rect(0, 0, 8, 12))
	for y := 0; y < 12; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, fill)
		}
	}

	w.Header().Set("Content-Type", "image/png")
	_ = png.Encode(w, img)
}

func parseCount(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("count")
	if raw == "" {
		return 1, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

func serverError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte("<h1>Server Error (500)</h1>"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newDeckID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func shuffle(codes []string) {
	rand.Shuffle(len(codes), func(i, j int) {
		codes[i], codes[j] = codes[j], codes[i]
	})
}

func indexOf(codes []string, code string) int {
	for i, c := range codes {
		if c == code {
			return i
		}
	}
	return -1
}

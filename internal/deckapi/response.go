package deckapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/arcanaland/deckcheck/internal/card"
)

const maxResponseBodyBytes = 1 << 20

var (
	ErrRequestFailed = errors.New("request failed")
	ErrHTTPStatus    = errors.New("unexpected http status")
	ErrMalformedBody = errors.New("malformed response body")
	ErrUnsuccessful  = errors.New("api reported failure")
	ErrNetwork       = errors.New("network error")
)

// Response is a decoded deck API payload
type Response struct {
	Success   *bool           `json:"success,omitempty"`
	DeckID    string          `json:"deck_id,omitempty"`
	Shuffled  *bool           `json:"shuffled,omitempty"`
	Remaining *int            `json:"remaining,omitempty"`
	Cards     []card.Card     `json:"cards,omitempty"`
	Piles     map[string]Pile `json:"piles,omitempty"`
	Error     string          `json:"error,omitempty"`

	// Fields holds every top-level key of the payload
	Fields map[string]json.RawMessage `json:"-"`
}

// Pile is one entry of the piles object
type Pile struct {
	Remaining int         `json:"remaining"`
	Cards     []card.Card `json:"cards,omitempty"`

	hasCards bool
}

func (p *Pile) UnmarshalJSON(data []byte) error {
	var raw struct {
		Remaining int          `json:"remaining"`
		Cards     *[]card.Card `json:"cards"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Remaining = raw.Remaining
	p.hasCards = raw.Cards != nil
	p.Cards = nil
	if raw.Cards != nil {
		p.Cards = *raw.Cards
	}
	return nil
}

// HasCards reports whether the pile entry carried a cards list. The list
// endpoint only includes it for the requested pile.
func (p Pile) HasCards() bool {
	return p.hasCards
}

// Has reports whether key was present in the payload
func (r *Response) Has(key string) bool {
	_, ok := r.Fields[key]
	return ok
}

// Succeeded treats an absent success field as success
func (r *Response) Succeeded() bool {
	return r.Success == nil || *r.Success
}

// RemainingCount returns remaining or -1 when absent
func (r *Response) RemainingCount() int {
	if r.Remaining == nil {
		return -1
	}
	return *r.Remaining
}

// RequestError is the unified failure of a deck API call. It matches
// ErrRequestFailed and its cause with errors.Is.
type RequestError struct {
	URL        string
	StatusCode int
	// Response is set when the body could be decoded
	Response *Response
	Err      error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	b.WriteString(ErrRequestFailed.Error())
	if e.URL != "" {
		b.WriteString(": GET ")
		b.WriteString(e.URL)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RequestError) Unwrap() []error {
	return []error{ErrRequestFailed, e.Err}
}

// Normalize validates a completed response and decodes its JSON payload.
// It fails on 4xx/5xx status, a body that is not a JSON object, or a success
// field that is present and false. The body is always closed.
func Normalize(resp *http.Response) (*Response, error) {
	defer resp.Body.Close()

	reqErr := &RequestError{StatusCode: resp.StatusCode}
	if resp.Request != nil && resp.Request.URL != nil {
		reqErr.URL = resp.Request.URL.String()
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes+1))
	if err != nil {
		reqErr.Err = fmt.Errorf("%w: read body: %v", ErrNetwork, err)
		return nil, reqErr
	}
	if len(body) > maxResponseBodyBytes {
		reqErr.Err = fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedBody, maxResponseBodyBytes)
		return nil, reqErr
	}

	payload, decodeErr := decode(body)
	reqErr.Response = payload

	if resp.StatusCode >= http.StatusBadRequest {
		reqErr.Err = ErrHTTPStatus
		if payload != nil && payload.Error != "" {
			reqErr.Err = fmt.Errorf("%w: %s", ErrHTTPStatus, payload.Error)
		}
		return nil, reqErr
	}
	if decodeErr != nil {
		reqErr.Err = decodeErr
		return nil, reqErr
	}
	if !payload.Succeeded() {
		reqErr.Err = ErrUnsuccessful
		if payload.Error != "" {
			reqErr.Err = fmt.Errorf("%w: %s", ErrUnsuccessful, payload.Error)
		}
		return nil, reqErr
	}

	return payload, nil
}

func decode(body []byte) (*Response, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))

	var fields map[string]json.RawMessage
	if err := decoder.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMalformedBody, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: body is not a json object", ErrMalformedBody)
	}
	var trailing json.RawMessage
	if err := decoder.Decode(&trailing); err != io.EOF {
		return nil, fmt.Errorf("%w: response body has trailing data", ErrMalformedBody)
	}

	var payload Response
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMalformedBody, err)
	}
	payload.Fields = fields

	return &payload, nil
}

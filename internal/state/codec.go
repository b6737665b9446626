package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrMalformedHistory is returned when persisted text does not decode to a
// stroke history.
var ErrMalformedHistory = errors.New("malformed stroke history")

// quoteSubstitute stands in for '"' in persisted text; the attribute storage
// of the host document cannot hold raw double quotes.
const quoteSubstitute = "!"

// Decode parses persisted text into a stroke history. Empty text is an
// empty history.
func Decode(raw string) (StrokeHistory, error) {
	if strings.TrimSpace(raw) == "" {
		return StrokeHistory{}, nil
	}
	text := strings.ReplaceAll(raw, quoteSubstitute, `"`)
	var h StrokeHistory
	if err := json.Unmarshal([]byte(text), &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHistory, err)
	}
	if h == nil {
		// "null" is valid JSON but not a history
		return nil, fmt.Errorf("%w: not an array", ErrMalformedHistory)
	}
	for i := range h {
		if h[i].Points == nil {
			h[i].Points = []Point{}
		}
	}
	return h, nil
}

// DecodeOrEmpty decodes raw and falls back to an empty history when the text
// is malformed. The decode error is still returned so it can be logged.
func DecodeOrEmpty(raw string) (StrokeHistory, error) {
	h, err := Decode(raw)
	if err != nil {
		return StrokeHistory{}, err
	}
	return h, nil
}

// Encode serializes h for attribute storage.
func Encode(h StrokeHistory) (string, error) {
	if h == nil {
		h = StrokeHistory{}
	}
	data, err := json.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("encode stroke history: %w", err)
	}
	return strings.ReplaceAll(string(data), `"`, quoteSubstitute), nil
}

// ValidColor reports whether c can go through Encode and Decode unchanged.
func ValidColor(c string) bool {
	return c != "" && utf8.ValidString(c) && !strings.ContainsAny(c, `!"`)
}

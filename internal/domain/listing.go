package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Listing is a third-party offer. Only Title and Manufacturer are
// interpreted; the original JSON object is kept so that every other field
// is re-emitted unchanged.
type Listing struct {
	Title        string
	Manufacturer string

	raw json.RawMessage
}

type listingFields struct {
	Title        *string `json:"title"`
	Manufacturer *string `json:"manufacturer"`
}

// ParseListing decodes one listing object. Missing title or manufacturer
// default to the empty string.
func ParseListing(data []byte) (*Listing, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: listing is not a JSON object", ErrMalformedRecord)
	}

	var fields listingFields
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	l := &Listing{raw: compact.Bytes()}
	if fields.Title != nil {
		l.Title = *fields.Title
	}
	if fields.Manufacturer != nil {
		l.Manufacturer = *fields.Manufacturer
	}
	return l, nil
}

// MarshalJSON returns the listing exactly as it was read.
func (l *Listing) MarshalJSON() ([]byte, error) {
	if len(l.raw) == 0 {
		return json.Marshal(listingFields{Title: &l.Title, Manufacturer: &l.Manufacturer})
	}
	return l.raw, nil
}

// Fields decodes the full listing into a generic map.
func (l *Listing) Fields() (map[string]interface{}, error) {
	data, err := l.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

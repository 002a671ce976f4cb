package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Payload is an opaque record body: field name to value. The core never
// interprets it beyond the "id" and "status" fields.
//
// Decoded numbers are kept as [json.Number] so amounts and bigint
// references encode back byte for byte.
type Payload map[string]any

// UnmarshalJSON decodes a JSON object keeping numbers as json.Number.
func (p *Payload) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	*p = m
	return nil
}

const (
	// FieldID is the payload field carrying the remote record identifier.
	FieldID = "id"
	// FieldStatus is the payload field the safety guard rewrites.
	FieldStatus = "status"
)

// Clone returns a shallow copy of p. Nested values are shared.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// RecordID returns the payload "id" as a string. Numeric identifiers are
// formatted without a fractional part.
func (p Payload) RecordID() (string, bool) {
	v, ok := p[FieldID]
	if !ok || v == nil {
		return "", false
	}

	switch id := v.(type) {
	case string:
		return id, id != ""
	case json.Number:
		return id.String(), id != ""
	case float64:
		return fmt.Sprintf("%.0f", id), true
	case int:
		return fmt.Sprintf("%d", id), true
	case int64:
		return fmt.Sprintf("%d", id), true
	default:
		return fmt.Sprint(id), true
	}
}

// Status returns the payload "status" field and whether it is present.
func (p Payload) Status() (any, bool) {
	v, ok := p[FieldStatus]
	return v, ok
}

// Without returns a copy of p with the given keys removed.
func (p Payload) Without(keys ...string) Payload {
	out := p.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Merge returns a copy of p overlaid with the fields of other.
func (p Payload) Merge(other Payload) Payload {
	out := p.Clone()
	if out == nil {
		out = make(Payload, len(other))
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-offline-keeper/models"
)

func encodePayload(p models.Payload) (string, error) {
	if p == nil {
		p = models.Payload{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}
	return string(data), nil
}

func decodePayload(raw string) (models.Payload, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var p map[string]any
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}
	if p == nil {
		p = models.Payload{}
	}
	return p, nil
}

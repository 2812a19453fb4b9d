package persist

import (
	"encoding/json"
	"fmt"

	"github.com/seniorplus/agenda/internal/event"
)

// Storage keys. Both are written on every save so consumers still reading
// the legacy flat array keep working while the envelope schema is adopted.
const (
	// LegacyKey holds a plain JSON array of events.
	LegacyKey = "events"
	// SharedKey holds an {items, updatedAt} envelope and is the key other
	// execution contexts watch for changes.
	SharedKey = "seniorplus:events"
)

// Envelope is the shared-key schema: the event list plus a write stamp.
// Stamps are RFC 3339 UTC so string comparison is order-preserving.
type Envelope struct {
	Items     []event.Event `json:"items"`
	UpdatedAt string        `json:"updatedAt"`
}

// Codec names one persisted schema. Adding a third schema means adding a
// codec here; call sites go through the Layer and stay untouched.
type Codec interface {
	// Key is the storage key this codec owns.
	Key() string
	// Encode serializes the collection. stamp is the envelope write stamp;
	// codecs without a stamp field ignore it.
	Encode(events []event.Event, stamp string) (string, error)
	// Decode parses a stored payload into raw records for normalization.
	// Both the bare-array and the envelope shapes are accepted regardless
	// of which codec owns the key, since legacy writers and shared writers
	// may have raced on either.
	Decode(payload string) ([]map[string]any, error)
}

// legacyCodec persists the collection as a plain JSON array.
type legacyCodec struct{}

func (legacyCodec) Key() string { return LegacyKey }

func (legacyCodec) Encode(events []event.Event, _ string) (string, error) {
	data, err := json.Marshal(events)
	if err != nil {
		return "", fmt.Errorf("encode legacy payload: %w", err)
	}
	return string(data), nil
}

func (legacyCodec) Decode(payload string) ([]map[string]any, error) {
	raws, _, err := ParsePayload(payload)
	return raws, err
}

// sharedCodec persists the collection inside the versioned envelope.
type sharedCodec struct{}

func (sharedCodec) Key() string { return SharedKey }

func (sharedCodec) Encode(events []event.Event, stamp string) (string, error) {
	data, err := json.Marshal(Envelope{Items: events, UpdatedAt: stamp})
	if err != nil {
		return "", fmt.Errorf("encode shared payload: %w", err)
	}
	return string(data), nil
}

func (sharedCodec) Decode(payload string) ([]map[string]any, error) {
	raws, _, err := ParsePayload(payload)
	return raws, err
}

// ParsePayload parses a stored payload that may be either a bare JSON array
// of records or an {items, updatedAt} envelope. stamp is empty for bare
// arrays and envelopes without a stamp.
func ParsePayload(payload string) (raws []map[string]any, stamp string, err error) {
	if err := json.Unmarshal([]byte(payload), &raws); err == nil {
		return raws, "", nil
	}

	var env struct {
		Items     []map[string]any `json:"items"`
		UpdatedAt string           `json:"updatedAt"`
	}
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return nil, "", fmt.Errorf("parse stored payload: %w", err)
	}
	if env.Items == nil {
		return nil, "", fmt.Errorf("parse stored payload: no items field")
	}
	return env.Items, env.UpdatedAt, nil
}

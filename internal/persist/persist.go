package persist

import (
	"context"
	"log/slog"
	"time"

	"github.com/seniorplus/agenda/internal/event"
	"github.com/seniorplus/agenda/internal/kv"
)

// Layer reads and writes the two persisted representations of the event
// collection. Loads prefer the shared envelope and fall back to the legacy
// array; saves write both keys. Storage failures never propagate: the
// in-memory collection stays the source of truth for the session.
type Layer struct {
	store  *kv.Store
	norm   *event.Normalizer
	clock  event.Clock
	log    *slog.Logger
	codecs []Codec // load preference order; all are written on save
}

// NewLayer creates a persistence layer over the given key-value store.
// A nil logger falls back to slog.Default().
func NewLayer(store *kv.Store, norm *event.Normalizer, clock event.Clock, log *slog.Logger) *Layer {
	if log == nil {
		log = slog.Default()
	}
	return &Layer{
		store:  store,
		norm:   norm,
		clock:  clock,
		log:    log,
		codecs: []Codec{sharedCodec{}, legacyCodec{}},
	}
}

// Load returns the persisted collection, normalized. The first codec whose
// key holds a parsable non-empty list wins. Absent, empty and unparsable
// payloads are logged and treated as absent; Load never fails.
func (l *Layer) Load(ctx context.Context) []event.Event {
	for _, codec := range l.codecs {
		payload, ok, err := l.store.Get(ctx, codec.Key())
		if err != nil {
			l.log.Warn("reading storage key failed", "key", codec.Key(), "error", err)
			continue
		}
		if !ok || payload == "" {
			continue
		}

		raws, err := codec.Decode(payload)
		if err != nil {
			l.log.Warn("stored payload unparsable, treating as absent", "key", codec.Key(), "error", err)
			continue
		}
		if len(raws) == 0 {
			continue
		}

		return l.norm.NormalizeAll(raws)
	}
	return []event.Event{}
}

// Save writes the collection under every codec's key. Each write is
// attempted even if another fails; failures are logged and swallowed.
// Returns the envelope stamp of this save so callers can recognize their
// own write when it echoes back through the shared key.
func (l *Layer) Save(ctx context.Context, events []event.Event) (stamp string) {
	stamp = l.clock.Now().UTC().Format(time.RFC3339)

	for _, codec := range l.codecs {
		payload, err := codec.Encode(events, stamp)
		if err != nil {
			l.log.Warn("encoding collection failed", "key", codec.Key(), "error", err)
			continue
		}
		if err := l.store.Set(ctx, codec.Key(), payload); err != nil {
			l.log.Warn("writing storage key failed", "key", codec.Key(), "error", err)
		}
	}
	return stamp
}

// LoadShared reads only the shared key, without the legacy fallback.
// Used by the cross-context watcher: raws are the stored records, stamp the
// envelope write stamp. ok is false when the key is absent or unparsable.
func (l *Layer) LoadShared(ctx context.Context) (raws []map[string]any, stamp string, ok bool) {
	payload, present, err := l.store.Get(ctx, SharedKey)
	if err != nil {
		l.log.Warn("reading shared key failed", "error", err)
		return nil, "", false
	}
	if !present || payload == "" {
		return nil, "", false
	}

	raws, stamp, err = ParsePayload(payload)
	if err != nil {
		l.log.Warn("shared payload unparsable, ignoring", "error", err)
		return nil, "", false
	}
	return raws, stamp, true
}

// Normalizer exposes the layer's normalizer for the replacement path.
func (l *Layer) Normalizer() *event.Normalizer { return l.norm }

package event

import (
	"time"

	"golang.org/x/text/unicode/norm"
)

// fieldAlias maps a canonical field to the input keys that may carry it.
// The canonical name is always tried first; legacy (Portuguese) names and
// historical shorthands follow in priority order.
type fieldAlias struct {
	canonical string
	aliases   []string
}

// aliasTable is the full alias mapping, one row per canonical field.
// Resolution picks the first alias whose value is a non-empty string, which
// matches the legacy records where an empty current-name field coexists with
// a populated legacy-name field.
var aliasTable = []fieldAlias{
	{"id", []string{"id"}},
	{"title", []string{"title", "titulo"}},
	{"date", []string{"date", "data"}},
	{"startTime", []string{"startTime", "horaInicio", "start"}},
	{"endTime", []string{"endTime", "horaFim", "end"}},
	{"location", []string{"location", "local"}},
	{"description", []string{"description", "descricao"}},
	{"category", []string{"category", "categoria"}},
	{"status", []string{"status"}},
	{"createdAt", []string{"createdAt", "criadoEm"}},
	{"updatedAt", []string{"updatedAt", "atualizadoEm"}},
}

// Aliases returns the accepted input keys for a canonical field name.
// The canonical name itself is the first entry. Returns nil for unknown
// fields.
func Aliases(canonical string) []string {
	for _, fa := range aliasTable {
		if fa.canonical == canonical {
			return fa.aliases
		}
	}
	return nil
}

// Resolve returns the first non-empty string value among the aliases of the
// given canonical field. ok is false when no alias carries a usable value.
func Resolve(raw map[string]any, canonical string) (value string, ok bool) {
	for _, key := range Aliases(canonical) {
		if s, isString := raw[key].(string); isString && s != "" {
			return s, true
		}
	}
	return "", false
}

// Normalizer maps arbitrary input records (current or legacy field names)
// to canonical Events. It is referentially pure apart from identifier
// generation: normalizing an already-canonical record yields the same
// record.
type Normalizer struct {
	IDs   IDGenerator
	Clock Clock
	Loc   *time.Location // local-time zone for date defaulting
}

// NewNormalizer creates a Normalizer with the given generators.
// A nil loc falls back to time.Local.
func NewNormalizer(ids IDGenerator, clock Clock, loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{IDs: ids, Clock: clock, Loc: loc}
}

// Normalize maps a raw record to its canonical Event.
//
// Returns ok=false for a nil record and for a record whose date is present
// but not a well-formed "2006-01-02" string; such records are discarded at
// load and import time rather than admitted with a sentinel date.
//
// Defaults when no alias carries a value: title empty, date the current
// local date, category Outro, status Pendente, timestamps the current time.
// Malformed start/end times normalize to empty (open-ended) rather than
// rejecting the whole record.
func (n *Normalizer) Normalize(raw map[string]any) (Event, bool) {
	if raw == nil {
		return Event{}, false
	}

	now := n.Clock.Now().In(n.Loc)

	e := Event{
		Title:       norm.NFC.String(stringOr(raw, "title", "")),
		Location:    norm.NFC.String(stringOr(raw, "location", "")),
		Description: norm.NFC.String(stringOr(raw, "description", "")),
		Category:    stringOr(raw, "category", CategoryOther),
		Status:      stringOr(raw, "status", StatusPending),
		CreatedAt:   stringOr(raw, "createdAt", now.Format(time.RFC3339)),
		UpdatedAt:   stringOr(raw, "updatedAt", now.Format(time.RFC3339)),
	}

	if id, ok := Resolve(raw, "id"); ok {
		e.ID = id
	} else {
		e.ID = n.IDs.Generate()
	}

	if date, ok := Resolve(raw, "date"); ok {
		if !ValidDate(date) {
			return Event{}, false
		}
		e.Date = date
	} else {
		e.Date = now.Format(DateLayout)
	}

	if start, ok := Resolve(raw, "startTime"); ok && ValidTime(start) {
		e.StartTime = start
	}
	if end, ok := Resolve(raw, "endTime"); ok && ValidTime(end) {
		e.EndTime = end
	}

	if !ValidCategory(e.Category) {
		e.Category = CategoryOther
	}
	if !ValidStatus(e.Status) {
		e.Status = StatusPending
	}

	return e, true
}

// NormalizeAll maps a batch of raw records, silently dropping the ones
// Normalize rejects. Used by the load and cross-context replacement paths.
func (n *Normalizer) NormalizeAll(raws []map[string]any) []Event {
	events := make([]Event, 0, len(raws))
	for _, raw := range raws {
		if e, ok := n.Normalize(raw); ok {
			events = append(events, e)
		}
	}
	return events
}

// Renormalize runs an existing canonical event back through Normalize.
// Used after merges to re-enforce the category/status/format invariants.
func (n *Normalizer) Renormalize(e Event) Event {
	out, _ := n.Normalize(e.Fields())
	return out
}

func stringOr(raw map[string]any, canonical, fallback string) string {
	if v, ok := Resolve(raw, canonical); ok {
		return v
	}
	return fallback
}

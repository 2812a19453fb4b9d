// Package importer admits bulk-supplied raw records (already parsed from
// CSV or JSON by the caller) into the event collection.
//
// Admission is two gates. The structural gate checks each record against a
// CUE schema: every known field, current or legacy name, must be a string.
// The admission gate requires title, date and start time to be present and
// non-empty in the original record, under any alias, before Normalizer
// defaulting kicks in.
package importer

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/seniorplus/agenda/internal/event"
)

// rawEventSchema is the structural contract for one import record. The
// struct is open: unknown columns from hand-edited spreadsheets pass
// through, but a known field carrying a non-string value rejects the
// record.
const rawEventSchema = `
#RawEvent: {
	id?:           string
	title?:        string
	titulo?:       string
	date?:         string
	data?:         string
	startTime?:    string
	horaInicio?:   string
	start?:        string
	endTime?:      string
	horaFim?:      string
	end?:          string
	location?:     string
	local?:        string
	description?:  string
	descricao?:    string
	category?:     string
	categoria?:    string
	status?:       string
	createdAt?:    string
	criadoEm?:     string
	updatedAt?:    string
	atualizadoEm?: string
	...
}
`

// mandatoryFields must be present (under any alias) and non-empty in the
// original record. The Normalizer would default them, but defaulted events
// are useless to the calendar surfaces, so the importer re-checks against
// the record as supplied.
var mandatoryFields = []string{"title", "date", "startTime"}

// Validator bulk-normalizes externally supplied records and filters out the
// structurally invalid ones.
type Validator struct {
	norm   *event.Normalizer
	cuectx *cue.Context
	schema cue.Value
}

// NewValidator compiles the record schema and returns a ready validator.
func NewValidator(norm *event.Normalizer) (*Validator, error) {
	cuectx := cuecontext.New()

	compiled := cuectx.CompileString(rawEventSchema)
	if err := compiled.Err(); err != nil {
		return nil, fmt.Errorf("compile import schema: %w", err)
	}
	schema := compiled.LookupPath(cue.ParsePath("#RawEvent"))
	if !schema.Exists() {
		return nil, fmt.Errorf("compile import schema: #RawEvent not found")
	}

	return &Validator{norm: norm, cuectx: cuectx, schema: schema}, nil
}

// Admit normalizes every record and returns the admitted subset in input
// order, plus the number of records rejected by either gate. Records that
// the Normalizer discards (malformed dates) count as rejected too.
func (v *Validator) Admit(records []map[string]any) (admitted []event.Event, rejected int) {
	admitted = make([]event.Event, 0, len(records))
	for _, raw := range records {
		e, ok := v.admitOne(raw)
		if !ok {
			rejected++
			continue
		}
		admitted = append(admitted, e)
	}
	return admitted, rejected
}

func (v *Validator) admitOne(raw map[string]any) (event.Event, bool) {
	if raw == nil {
		return event.Event{}, false
	}

	if !v.structurallyValid(raw) {
		return event.Event{}, false
	}

	for _, field := range mandatoryFields {
		if _, ok := event.Resolve(raw, field); !ok {
			return event.Event{}, false
		}
	}

	return v.norm.Normalize(raw)
}

// structurallyValid unifies the record with the schema and checks the
// result. A known field with the wrong type makes unification fail.
func (v *Validator) structurallyValid(raw map[string]any) bool {
	val := v.cuectx.Encode(raw)
	if val.Err() != nil {
		return false
	}
	unified := v.schema.Unify(val)
	return unified.Validate(cue.Concrete(false)) == nil
}

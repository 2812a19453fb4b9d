package event

import "time"

// Event is the canonical, schema-complete representation of a care event.
// All calendar fields are fixed-width strings ("2006-01-02" dates, "15:04"
// times) so that lexicographic comparison is order-preserving; the
// Normalizer enforces the formats at every admission point.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"` // empty means open-ended
	Location    string `json:"location"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// Event statuses. Toggle is the only transition; there is no terminal state.
const (
	StatusPending = "Pendente"
	StatusDone    = "Concluído"
)

// Event categories. Unrecognized input normalizes to CategoryOther.
const (
	CategoryActivity    = "Atividade"
	CategoryAppointment = "Consulta"
	CategorySocial      = "Social"
	CategoryMedication  = "Medicação"
	CategoryOther       = "Outro"
)

// Categories lists the fixed category label set in display order.
var Categories = []string{
	CategoryActivity,
	CategoryAppointment,
	CategorySocial,
	CategoryMedication,
	CategoryOther,
}

// ValidCategory reports whether c is one of the fixed category labels.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is one of the two event statuses.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusDone
}

// DateLayout and TimeLayout are the only accepted calendar formats.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ValidDate reports whether d is a well-formed zero-padded calendar date.
func ValidDate(d string) bool {
	if len(d) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, d)
	return err == nil
}

// ValidTime reports whether t is a well-formed zero-padded 24-hour time.
func ValidTime(t string) bool {
	if len(t) != len(TimeLayout) {
		return false
	}
	_, err := time.Parse(TimeLayout, t)
	return err == nil
}

// Fields returns the event as a map keyed by canonical field names.
// Used by the update path to merge a partial record onto an existing one
// before re-normalizing.
func (e Event) Fields() map[string]any {
	return map[string]any{
		"id":          e.ID,
		"title":       e.Title,
		"date":        e.Date,
		"startTime":   e.StartTime,
		"endTime":     e.EndTime,
		"location":    e.Location,
		"description": e.Description,
		"category":    e.Category,
		"status":      e.Status,
		"createdAt":   e.CreatedAt,
		"updatedAt":   e.UpdatedAt,
	}
}

// Clock abstracts wall time so normalization is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

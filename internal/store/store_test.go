package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seniorplus/agenda/internal/event"
	"github.com/seniorplus/agenda/internal/importer"
	"github.com/seniorplus/agenda/internal/kv"
	"github.com/seniorplus/agenda/internal/persist"
	"github.com/seniorplus/agenda/internal/testutil"
)

// recordingNotifier captures every notification per channel.
type recordingNotifier struct {
	successes []string
	errors    []string
	infos     []string
}

func (r *recordingNotifier) ShowSuccess(text string) { r.successes = append(r.successes, text) }
func (r *recordingNotifier) ShowError(text string)   { r.errors = append(r.errors, text) }
func (r *recordingNotifier) ShowInfo(text string)    { r.infos = append(r.infos, text) }

type fixture struct {
	store  *EventStore
	layer  *persist.Layer
	clock  *testutil.FixedClock
	notify *recordingNotifier
}

func newFixture(t *testing.T, ids ...string) *fixture {
	t.Helper()

	db, err := kv.Open(filepath.Join(t.TempDir(), "agenda.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := testutil.NewFixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	norm := event.NewNormalizer(event.NewFixedIDGenerator(ids...), clock, time.UTC)
	layer := persist.NewLayer(db, norm, clock, nil)

	validator, err := importer.NewValidator(norm)
	require.NoError(t, err)

	notify := &recordingNotifier{}
	st := New(layer, validator, clock, notify)
	st.SetUser(context.Background(), "cuidador")

	return &fixture{store: st, layer: layer, clock: clock, notify: notify}
}

func TestAdd(t *testing.T) {
	f := newFixture(t, "evt-1")
	ctx := context.Background()

	e, ok := f.store.Add(ctx, "Consulta", "2025-03-10", "09:00", "10:00", "", "", event.CategoryAppointment)
	require.True(t, ok)

	assert.Equal(t, "evt-1", e.ID)
	assert.Equal(t, event.StatusPending, e.Status)
	assert.Equal(t, []string{`Evento "Consulta" adicionado com sucesso!`}, f.notify.successes)

	// The mutation is complete only once both keys reflect it.
	persisted := f.layer.Load(ctx)
	require.Len(t, persisted, 1)
	assert.Equal(t, e, persisted[0])
}

func TestAdd_IDsAreUnique(t *testing.T) {
	f := newFixture(t, "evt-1", "evt-2", "evt-3")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, ok := f.store.Add(ctx, "A", "2025-03-10", "09:00", "", "", "", "")
		require.True(t, ok)
	}

	seen := map[string]bool{}
	for _, e := range f.store.Events() {
		assert.False(t, seen[e.ID], "duplicate id %q", e.ID)
		seen[e.ID] = true
	}
}

func TestUpdate_MergesPartial(t *testing.T) {
	f := newFixture(t, "evt-1")
	ctx := context.Background()

	_, ok := f.store.Add(ctx, "Consulta", "2025-03-10", "09:00", "10:00", "Clínica", "rotina", event.CategoryAppointment)
	require.True(t, ok)

	f.clock.Advance(time.Minute)
	updated, found := f.store.Update(ctx, "evt-1", map[string]any{"startTime": "11:00"})
	require.True(t, found)

	assert.Equal(t, "11:00", updated.StartTime)
	assert.Equal(t, "Consulta", updated.Title, "unspecified fields preserved")
	assert.Equal(t, "Clínica", updated.Location)
	assert.Equal(t, "2025-03-10T09:01:00Z", updated.UpdatedAt)
	assert.Contains(t, f.notify.successes, "Evento atualizado com sucesso!")
}

func TestUpdate_UnknownIDIsSilentMiss(t *testing.T) {
	f := newFixture(t, "evt-1")
	ctx := context.Background()

	f.store.Add(ctx, "A", "2025-03-10", "09:00", "", "", "", "")
	before := f.store.Events()
	f.notify.successes = nil

	_, found := f.store.Update(ctx, "nope", map[string]any{"title": "B"})
	assert.False(t, found)
	assert.Empty(t, f.notify.successes, "a miss must not notify")
	assert.Empty(t, f.notify.errors, "a miss is not an error either")
	assert.Equal(t, before, f.store.Events())
}

func TestDelete(t *testing.T) {
	f := newFixture(t, "evt-1", "evt-2")
	ctx := context.Background()

	f.store.Add(ctx, "A", "2025-03-10", "09:00", "", "", "", "")
	f.store.Add(ctx, "B", "2025-03-11", "10:00", "", "", "", "")

	require.True(t, f.store.Delete(ctx, "evt-1"))
	assert.Contains(t, f.notify.successes, `Evento "A" removido com sucesso!`)

	events := f.store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "evt-2", events[0].ID)

	// Deletion is immediate and irreversible: storage holds one event.
	assert.Len(t, f.layer.Load(ctx), 1)

	assert.False(t, f.store.Delete(ctx, "evt-1"), "second delete finds nothing")
}

func TestToggleStatus_IsAnInvolution(t *testing.T) {
	f := newFixture(t, "evt-1")
	ctx := context.Background()

	added, _ := f.store.Add(ctx, "Caminhada", "2025-03-10", "07:00", "", "", "", event.CategoryActivity)
	require.Equal(t, event.StatusPending, added.Status)

	f.clock.Advance(time.Minute)
	first, found := f.store.ToggleStatus(ctx, "evt-1")
	require.True(t, found)
	assert.Equal(t, event.StatusDone, first.Status)
	assert.Contains(t, f.notify.infos, `Evento "Caminhada" marcado como concluído.`)

	f.clock.Advance(time.Minute)
	second, found := f.store.ToggleStatus(ctx, "evt-1")
	require.True(t, found)
	assert.Equal(t, event.StatusPending, second.Status, "two toggles restore the original status")
	assert.Greater(t, second.UpdatedAt, first.UpdatedAt, "updatedAt is monotonic across toggles")
	assert.Greater(t, first.UpdatedAt, added.UpdatedAt)
}

func TestToggleStatus_UnknownID(t *testing.T) {
	f := newFixture(t)

	_, found := f.store.ToggleStatus(context.Background(), "nope")
	assert.False(t, found)
	assert.Empty(t, f.notify.infos)
}

func TestImportBatch(t *testing.T) {
	f := newFixture(t, "evt-1")
	ctx := context.Background()

	admitted := f.store.ImportBatch(ctx, []map[string]any{
		{"titulo": "A", "data": "2025-03-10", "horaInicio": "08:00"},
		{"titulo": ""},
	})

	require.Len(t, admitted, 1)
	assert.Equal(t, "A", admitted[0].Title)
	assert.Len(t, f.store.Events(), 1, "store grows by exactly the admitted subset")
	assert.Equal(t, []string{"1 eventos importados com sucesso!"}, f.notify.successes)
	assert.Empty(t, f.notify.errors)
}

func TestImportBatch_EmptyInput(t *testing.T) {
	f := newFixture(t)

	admitted := f.store.ImportBatch(context.Background(), nil)
	assert.Empty(t, admitted)
	assert.Equal(t, []string{"Dados de importação inválidos ou vazios"}, f.notify.errors)
}

func TestImportBatch_EntirelyInvalid(t *testing.T) {
	f := newFixture(t)

	admitted := f.store.ImportBatch(context.Background(), []map[string]any{
		{"titulo": ""},
		{"title": "no date", "startTime": "08:00"},
	})

	assert.Empty(t, admitted)
	assert.Empty(t, f.store.Events(), "nothing admitted leaves the store untouched")
	require.Len(t, f.notify.errors, 1)
	assert.Equal(t, "Nenhum evento válido encontrado na importação (2 registros rejeitados)", f.notify.errors[0])
}

func TestReplaceAll_DoesNotWriteBack(t *testing.T) {
	f := newFixture(t, "evt-1")
	ctx := context.Background()

	f.store.Add(ctx, "local", "2025-03-10", "09:00", "", "", "", "")

	var persisted int
	f.store.OnPersist(func(string) { persisted++ })

	f.store.ReplaceAll([]event.Event{{
		ID: "x", Title: "B", Date: "2025-04-01", StartTime: "07:00",
		Category: event.CategoryOther, Status: event.StatusPending,
	}})

	events := f.store.Events()
	require.Len(t, events, 1, "replacement discards whatever was present")
	assert.Equal(t, "x", events[0].ID)
	assert.Zero(t, persisted, "the sync path must never persist")

	// Storage still holds the pre-replacement write.
	stored := f.layer.Load(ctx)
	require.Len(t, stored, 1)
	assert.Equal(t, "evt-1", stored[0].ID)
}

func TestSetUser_LogoutClearsMemoryOnly(t *testing.T) {
	f := newFixture(t, "evt-1")
	ctx := context.Background()

	f.store.Add(ctx, "A", "2025-03-10", "09:00", "", "", "", "")

	f.store.SetUser(ctx, "")
	assert.Empty(t, f.store.Events(), "logout resets in-memory state")
	assert.Len(t, f.layer.Load(ctx), 1, "storage is untouched by logout")

	f.store.SetUser(ctx, "cuidador")
	events := f.store.Events()
	require.Len(t, events, 1, "login reloads from persistence")
	assert.Equal(t, "evt-1", events[0].ID)
}

func TestMutationsWithoutSessionStayMemoryOnly(t *testing.T) {
	f := newFixture(t, "evt-1")
	ctx := context.Background()
	f.store.SetUser(ctx, "")

	f.store.Add(ctx, "A", "2025-03-10", "09:00", "", "", "", "")
	assert.Len(t, f.store.Events(), 1, "memory is still the session's source of truth")
	assert.Empty(t, f.layer.Load(ctx), "no session, no storage write")
}

func TestOnPersist_ReceivesEnvelopeStamp(t *testing.T) {
	f := newFixture(t, "evt-1")
	ctx := context.Background()

	var stamps []string
	f.store.OnPersist(func(stamp string) { stamps = append(stamps, stamp) })

	f.store.Add(ctx, "A", "2025-03-10", "09:00", "", "", "", "")
	require.Len(t, stamps, 1)
	assert.Equal(t, "2025-03-10T09:00:00Z", stamps[0])
}

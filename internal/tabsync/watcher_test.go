package tabsync

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
	"github.com/seniorplus/agenda/internal/store"
	"github.com/seniorplus/agenda/internal/testutil"
)

type fixture struct {
	watcher *Watcher
	store   *store.EventStore
	db      *kv.Store
	clock   *testutil.FixedClock
}

func newFixture(t *testing.T, ids ...string) *fixture {
	t.Helper()

	db, err := kv.Open(filepath.Join(t.TempDir(), "agenda.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := testutil.NewFixedClock(time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC))
	norm := event.NewNormalizer(event.NewFixedIDGenerator(ids...), clock, time.UTC)
	layer := persist.NewLayer(db, norm, clock, nil)

	validator, err := importer.NewValidator(norm)
	require.NoError(t, err)

	st := store.New(layer, validator, clock, nil)
	st.SetUser(context.Background(), "cuidador")

	return &fixture{
		watcher: New(layer, st, nil),
		store:   st,
		db:      db,
		clock:   clock,
	}
}

// writeForeign simulates another context writing the shared key.
func writeForeign(t *testing.T, db *kv.Store, payload string) {
	t.Helper()
	require.NoError(t, db.Set(context.Background(), persist.SharedKey, payload))
}

func TestCheckNow_AppliesForeignWrite(t *testing.T) {
	f := newFixture(t, "local-1")
	ctx := context.Background()

	f.store.Add(ctx, "local", "2025-04-01", "09:00", "", "", "", "")

	writeForeign(t, f.db, `{"items":[{"id":"x","title":"B","date":"2025-04-01","startTime":"07:00"}],"updatedAt":"2025-04-01T08:30:00Z"}`)

	assert.True(t, f.watcher.CheckNow(ctx))

	events := f.store.Events()
	require.Len(t, events, 1, "replacement discards the previous collection")
	assert.Equal(t, "x", events[0].ID)
	assert.Equal(t, "B", events[0].Title)
	assert.Equal(t, event.StatusPending, events[0].Status, "foreign records are normalized")
}

func TestCheckNow_SkipsOwnEchoedWrite(t *testing.T) {
	f := newFixture(t, "local-1")
	ctx := context.Background()

	// The local save reports its stamp through the OnPersist hook.
	f.store.Add(ctx, "local", "2025-04-01", "09:00", "", "", "", "")

	assert.False(t, f.watcher.CheckNow(ctx), "own write must not be re-applied")
}

func TestCheckNow_SameStampAppliedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	writeForeign(t, f.db, `{"items":[{"id":"x","title":"B","date":"2025-04-01","startTime":"07:00"}],"updatedAt":"2025-04-01T08:30:00Z"}`)

	assert.True(t, f.watcher.CheckNow(ctx))
	assert.False(t, f.watcher.CheckNow(ctx), "second poll sees the same stamp")
}

func TestCheckNow_AbsentKey(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.watcher.CheckNow(context.Background()))
}

func TestCheckNow_MalformedPayloadIgnored(t *testing.T) {
	f := newFixture(t, "local-1")
	ctx := context.Background()

	f.store.Add(ctx, "local", "2025-04-01", "09:00", "", "", "", "")
	before := f.store.Events()

	writeForeign(t, f.db, "{corrupted")

	assert.False(t, f.watcher.CheckNow(ctx))
	assert.Equal(t, before, f.store.Events(), "no partial merge on malformed payloads")
}

func TestCheckNow_DiscardsUnparsableRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	writeForeign(t, f.db, `{"items":[{"id":"ok","title":"A","date":"2025-04-02","startTime":"07:00"},{"id":"bad","title":"B","date":"garbage"}],"updatedAt":"2025-04-01T09:00:00Z"}`)

	require.True(t, f.watcher.CheckNow(ctx))
	events := f.store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "ok", events[0].ID)
}

func TestStartStop(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.watcher.Start("@every 1s"))
	f.watcher.Stop()
}

func TestStop_WithoutStart(t *testing.T) {
	f := newFixture(t)
	f.watcher.Stop()
}

func TestStart_InvalidSchedule(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.watcher.Start("not a schedule"))
}

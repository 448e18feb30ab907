package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/gastos/internal/id"
	"github.com/cleared-dev/gastos/internal/model"
	"github.com/cleared-dev/gastos/internal/slot"
)

var fixedNow = time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func newTestStore(t *testing.T, s slot.Slot) *Store {
	t.Helper()
	return New(s, Options{IDs: id.NewSequence("exp"), Now: func() time.Time { return fixedNow }})
}

// failingSlot rejects every write.
type failingSlot struct {
	*slot.Memory
}

func (f *failingSlot) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestLoad_EmptySlotSeeds(t *testing.T) {
	mem := slot.NewMemory()
	st := newTestStore(t, mem)

	seeded := st.Load(context.Background())
	assert.True(t, seeded)

	records := st.All()
	require.Len(t, records, 2)
	assert.Equal(t, "exp-001", records[0].ID)
	assert.Equal(t, model.CategoryFuel, records[0].Category)
	assert.True(t, records[0].Amount.Equal(dec("320.5")))
	assert.Equal(t, "2025-03-15", records[0].Date.Format(model.DateFormat))
	assert.Equal(t, model.JobInlandWaters, records[1].JobType)

	// Seed is persisted.
	data, err := mem.Get(context.Background(), DefaultKey)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Repostaje gasóleo")
}

func TestLoad_CorruptSlotSeeds(t *testing.T) {
	for _, body := range []string{"{not json", "null", `{"id":"a"}`, `"text"`} {
		mem := slot.NewMemory()
		require.NoError(t, mem.Put(context.Background(), DefaultKey, []byte(body)))

		st := newTestStore(t, mem)
		assert.True(t, st.Load(context.Background()), "body %q", body)
		assert.Equal(t, 2, st.Len(), "body %q", body)
	}
}

func TestLoad_EmptyArrayStaysEmpty(t *testing.T) {
	mem := slot.NewMemory()
	require.NoError(t, mem.Put(context.Background(), DefaultKey, []byte("[]")))

	st := newTestStore(t, mem)
	assert.False(t, st.Load(context.Background()))
	assert.Equal(t, 0, st.Len())
}

func TestLoad_LegacyNumbersAndRepairedIDs(t *testing.T) {
	body := `[
		{"id":"a1","date":"2025-03-01","category":"Combustible","amount":"abc","taxRate":7,"jobType":"Portuarios"},
		{"id":"a1","date":"2025-03-02","category":"Tasas","amount":10,"jobType":"Portuarios"},
		{"date":"2025-03-03","category":"Seguro","amount":5,"taxRate":null}
	]`
	mem := slot.NewMemory()
	require.NoError(t, mem.Put(context.Background(), DefaultKey, []byte(body)))

	st := newTestStore(t, mem)
	require.False(t, st.Load(context.Background()))

	records := st.All()
	require.Len(t, records, 3)
	assert.True(t, records[0].Amount.IsZero(), "non-numeric amount coerces to zero")
	assert.Equal(t, "a1", records[0].ID)
	assert.Equal(t, "exp-001", records[1].ID, "duplicate id repaired")
	assert.Equal(t, "exp-002", records[2].ID, "missing id repaired")
	assert.True(t, records[2].TaxRate.IsZero())

	summary := Summarize(records)
	assert.True(t, summary.Total.Equal(dec("15")))
}

func TestPersistenceRoundTrip(t *testing.T) {
	mem := slot.NewMemory()
	ctx := context.Background()

	st := newTestStore(t, mem)
	require.NoError(t, mem.Put(ctx, DefaultKey, []byte("[]")))
	st.Load(ctx)

	_, err := st.Add(ctx, model.Expense{
		Date: date(2025, 3, 10), Category: model.CategoryFuel, Crew: "Tripulante 1",
		Amount: dec("320.50"), TaxRate: dec("7"), JobType: model.JobPort, Notes: `He said, "full tank"`,
	})
	require.NoError(t, err)

	reopened := newTestStore(t, mem)
	assert.False(t, reopened.Load(ctx))
	got := reopened.All()
	require.Len(t, got, 1)
	assert.Equal(t, `He said, "full tank"`, got[0].Notes)
	assert.True(t, got[0].Gross().Equal(dec("342.935")))
}

func TestAdd(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, slot.NewMemory())
	st.Load(ctx) // seeds exp-001, exp-002

	added, err := st.Add(ctx, model.Expense{Date: date(2025, 3, 20), Amount: dec("12"), TaxRate: dec("7")})
	require.NoError(t, err)
	assert.Equal(t, "exp-003", added.ID)
	assert.Equal(t, model.CategoryFuel, added.Category, "empty category defaults")
	assert.Equal(t, model.JobPort, added.JobType, "empty job type defaults")

	records := st.All()
	require.Len(t, records, 3)
	assert.Equal(t, "exp-003", records[0].ID, "new records are prepended")
}

func TestAdd_RejectsInvalidAmount(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemory()
	st := newTestStore(t, mem)
	st.Load(ctx)

	for _, amount := range []string{"0", "-4"} {
		_, err := st.Add(ctx, model.Expense{Date: date(2025, 3, 20), Amount: dec(amount)})
		assert.ErrorIs(t, err, model.ErrInvalidAmount)
	}
	assert.Equal(t, 2, st.Len(), "no record added")
}

func TestAdd_SkipsTakenIDs(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemory()
	require.NoError(t, mem.Put(ctx, DefaultKey, []byte(`[{"id":"exp-001","date":"2025-03-01","amount":1}]`)))

	st := newTestStore(t, mem)
	st.Load(ctx)

	added, err := st.Add(ctx, model.Expense{Date: date(2025, 3, 2), Amount: dec("1")})
	require.NoError(t, err)
	assert.Equal(t, "exp-002", added.ID)
}

func TestAdd_IDExhausted(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemory()
	require.NoError(t, mem.Put(ctx, DefaultKey, []byte(`[{"id":"same","date":"2025-03-01","amount":1}]`)))

	st := New(mem, Options{IDs: id.GeneratorFunc(func() string { return "same" })})
	st.Load(ctx)

	_, err := st.Add(ctx, model.Expense{Date: date(2025, 3, 2), Amount: dec("1")})
	assert.ErrorIs(t, err, ErrIDExhausted)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, slot.NewMemory())
	require.NoError(t, st.slot.Put(ctx, DefaultKey, []byte("[]")))
	st.Load(ctx)

	for i := 1; i <= 4; i++ {
		_, err := st.Add(ctx, model.Expense{Date: date(2025, 3, i), Amount: decimal.NewFromInt(int64(i))})
		require.NoError(t, err)
	}
	before := st.All() // exp-004, exp-003, exp-002, exp-001

	assert.True(t, st.Remove(ctx, "exp-003"))
	after := st.All()
	require.Len(t, after, 3)
	assert.Equal(t, []model.Expense{before[0], before[2], before[3]}, after)

	// Absent id: no-op.
	assert.False(t, st.Remove(ctx, "exp-003"))
	assert.False(t, st.Remove(ctx, "nope"))
	assert.Equal(t, after, st.All())
}

func TestMerge_PrependsInOrder(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, slot.NewMemory())
	st.Load(ctx) // exp-001, exp-002

	res, err := st.Merge(ctx, []model.Expense{
		{ID: "csv-1", Date: date(2025, 2, 1), Amount: dec("1")},
		{ID: "csv-2", Date: date(2025, 2, 2), Amount: dec("2")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)
	assert.Empty(t, res.Regenerated)

	ids := make([]string, 0, st.Len())
	for _, e := range st.All() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"csv-1", "csv-2", "exp-001", "exp-002"}, ids)
}

func TestMerge_RegeneratesCollisions(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, slot.NewMemory())
	st.Load(ctx) // exp-001, exp-002

	original, ok := st.Get("exp-001")
	require.True(t, ok)

	res, err := st.Merge(ctx, []model.Expense{
		{ID: "exp-001", Date: date(2025, 2, 1), Amount: dec("99"), Notes: "imported"},
		{ID: "dup", Date: date(2025, 2, 2), Amount: dec("1")},
		{ID: "dup", Date: date(2025, 2, 3), Amount: dec("2")},
		{ID: "", Date: date(2025, 2, 4), Amount: dec("3")},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Added)
	assert.Equal(t, []Regeneration{
		{From: "exp-001", To: "exp-003"},
		{From: "dup", To: "exp-004"},
	}, res.Regenerated)

	// Existing record untouched, imported values kept under the fresh id.
	got, ok := st.Get("exp-001")
	require.True(t, ok)
	assert.Equal(t, original, got)
	imported, ok := st.Get("exp-003")
	require.True(t, ok)
	assert.Equal(t, "imported", imported.Notes)

	// Empty id got a fresh one silently.
	_, ok = st.Get("exp-005")
	assert.True(t, ok)

	// Ids stay unique.
	seen := make(map[string]bool)
	for _, e := range st.All() {
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestMerge_Empty(t *testing.T) {
	st := newTestStore(t, slot.NewMemory())
	st.Load(context.Background())

	res, err := st.Merge(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Added)
	assert.Equal(t, 2, st.Len())
}

func TestSaveFailureDegrades(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, &failingSlot{Memory: slot.NewMemory()})

	st.Load(ctx)
	assert.True(t, st.Degraded())

	// Still fully usable in memory.
	_, err := st.Add(ctx, model.Expense{Date: date(2025, 3, 1), Amount: dec("5")})
	require.NoError(t, err)
	assert.Equal(t, 3, st.Len())
	assert.True(t, st.Remove(ctx, "exp-003"))
	assert.Equal(t, 2, st.Len())
}

func TestImport_Serialized(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, slot.NewMemory())
	require.NoError(t, st.slot.Put(ctx, DefaultKey, []byte("[]")))
	st.Load(ctx)

	var (
		mu      sync.Mutex
		running int
		maxSeen int
		wg      sync.WaitGroup
	)
	parse := func(n int) func(context.Context) ([]model.Expense, error) {
		return func(context.Context) ([]model.Expense, error) {
			mu.Lock()
			running++
			if running > maxSeen {
				maxSeen = running
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
			return []model.Expense{{Date: date(2025, 3, n), Amount: dec("1")}}, nil
		}
	}

	for i := 1; i <= 5; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.Import(ctx, parse(i))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen, "imports must not overlap")
	assert.Equal(t, 5, st.Len(), "no import lost")
}

func TestImport_CancelledWhileWaiting(t *testing.T) {
	st := newTestStore(t, slot.NewMemory())
	st.Load(context.Background())

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = st.Import(context.Background(), func(context.Context) ([]model.Expense, error) {
			close(started)
			<-release
			return nil, nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := st.Import(ctx, func(context.Context) ([]model.Expense, error) {
		t.Fatal("parse must not run")
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrImportCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	close(release)
}

func TestImport_ParseError(t *testing.T) {
	st := newTestStore(t, slot.NewMemory())
	st.Load(context.Background())

	_, err := st.Import(context.Background(), func(context.Context) ([]model.Expense, error) {
		return nil, errors.New("read failed")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read failed")
	assert.Equal(t, 2, st.Len())
}

func TestView(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, slot.NewMemory())
	st.Load(ctx) // two seed records dated 2025-03-15

	_, err := st.Add(ctx, model.Expense{Date: date(2025, 4, 1), Amount: dec("100"), TaxRate: dec("7")})
	require.NoError(t, err)

	v := st.View(Filter{Month: "2025-03", JobType: model.JobAll})
	assert.Len(t, v.Records, 2)
	assert.Equal(t, 2, v.Summary.Count)
	assert.True(t, v.Summary.Total.Equal(dec("342.935").Add(dec("48.364"))))
}

func TestStoredJSONShape(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemory()
	st := newTestStore(t, mem)
	st.Load(ctx)

	data, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)
	assert.Equal(t, 320.5, raw[0]["amount"])
	assert.Equal(t, float64(7), raw[0]["taxRate"])
	assert.Equal(t, "Portuarios", raw[0]["jobType"])
}

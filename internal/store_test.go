package internal

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	store, err := OpenStore(filepath.Join(t.TempDir(), "nested", "flad.db"), NewLogger(&logs, "debug", "json"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, &logs
}

func TestStore_ImportAndLoadOrder(t *testing.T) {
	store, logs := openTestStore(t)
	ctx := context.Background()

	second := gardenDataset(Slot{Contract: ContractHeating, Line: Line3}, "B1")
	first := gardenDataset(Slot{Contract: ContractMaintenance, Line: Line1}, "A1", "A2")
	first.Format = "legacy-json"

	replaced, err := store.ImportDataset(ctx, second)
	require.NoError(t, err)
	assert.False(t, replaced)
	_, err = store.ImportDataset(ctx, first)
	require.NoError(t, err)

	datasets, err := store.Datasets(ctx)
	require.NoError(t, err)
	require.Len(t, datasets, 2)
	assert.Equal(t, second.Slot, datasets[0].Slot)
	assert.Equal(t, first.Slot, datasets[1].Slot)
	assert.Equal(t, "legacy-json", datasets[1].Format)
	assert.False(t, datasets[1].ImportedAt.IsZero())
	require.Len(t, datasets[1].Requirements, 2)
	assert.True(t, datasets[1].Requirements[0].TotalPrice.Equal(dec("1000")))
	assert.Equal(t, Date("2024-01-01"), datasets[1].Requirements[0].RegisteredDate)

	assert.Contains(t, logs.String(), `"message":"dataset imported"`)
}

func TestStore_ReimportReplacesSlotAndResetsSelection(t *testing.T) {
	store, logs := openTestStore(t)
	ctx := context.Background()
	slot := Slot{Contract: ContractGreenArea, Line: Line2}

	_, err := store.ImportDataset(ctx, gardenDataset(slot, "A1", "A2"))
	require.NoError(t, err)
	require.NoError(t, store.SaveSelection(ctx, slot, []string{"A1"}))

	replaced, err := store.ImportDataset(ctx, gardenDataset(slot, "C1", "C2", "C3"))
	require.NoError(t, err)
	assert.True(t, replaced)

	datasets, err := store.Datasets(ctx)
	require.NoError(t, err)
	require.Len(t, datasets, 1)
	assert.Equal(t, []string{"C1", "C2", "C3"}, datasets[0].GardenCodes())

	sel, err := store.Selection(ctx)
	require.NoError(t, err)
	_, ok := sel.Gardens(slot)
	assert.False(t, ok, "selection should be reset after re-import")

	assert.Contains(t, logs.String(), `"message":"dataset replaced"`)
}

func TestStore_Selection(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	slot := Slot{Contract: ContractElevators, Line: Line1}

	_, err := store.ImportDataset(ctx, gardenDataset(slot, "A1", "A2"))
	require.NoError(t, err)

	require.NoError(t, store.SaveSelection(ctx, slot, []string{"A2"}))
	sel, err := store.Selection(ctx)
	require.NoError(t, err)
	codes, ok := sel.Gardens(slot)
	require.True(t, ok)
	assert.Equal(t, []string{"A2"}, codes)

	// empty list is persisted and excludes the slot
	require.NoError(t, store.SaveSelection(ctx, slot, nil))
	sel, err = store.Selection(ctx)
	require.NoError(t, err)
	codes, ok = sel.Gardens(slot)
	require.True(t, ok)
	assert.Empty(t, codes)

	datasets, err := store.Datasets(ctx)
	require.NoError(t, err)
	assert.Empty(t, sel.Requirements(datasets))

	err = store.SaveSelection(ctx, Slot{Contract: ContractElevators, Line: Line4}, []string{"A1"})
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestStore_RemoveAndClear(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	a := Slot{Contract: ContractMaintenance, Line: Line4}
	b := Slot{Contract: ContractHeating, Line: Line5}

	for _, slot := range []Slot{a, b} {
		_, err := store.ImportDataset(ctx, gardenDataset(slot, "X1"))
		require.NoError(t, err)
	}

	require.NoError(t, store.RemoveDataset(ctx, a))
	_, err := store.Dataset(ctx, a)
	assert.ErrorIs(t, err, ErrDatasetNotFound)
	assert.ErrorIs(t, store.RemoveDataset(ctx, a), ErrDatasetNotFound)

	ds, err := store.Dataset(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, b, ds.Slot)

	require.NoError(t, store.Clear(ctx))
	datasets, err := store.Datasets(ctx)
	require.NoError(t, err)
	assert.Empty(t, datasets)
}

func TestStore_RejectsInvalidSlot(t *testing.T) {
	store, _ := openTestStore(t)
	_, err := store.ImportDataset(context.Background(), gardenDataset(Slot{Contract: ContractElevators, Line: Line2}, "A1"))
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flad.db")
	ctx := context.Background()
	slot := Slot{Contract: ContractMaintenance, Line: Line1}

	store, err := OpenStore(path, zerolog.Nop())
	require.NoError(t, err)
	store.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	_, err = store.ImportDataset(ctx, gardenDataset(slot, "A1"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// migrations are idempotent on an existing file
	store, err = OpenStore(path, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	ds, err := store.Dataset(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), ds.ImportedAt.UTC())
}

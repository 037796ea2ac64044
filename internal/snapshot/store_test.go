package snapshot

import (
	"context"
	"errors"
	"fmt"
	"snapshotd/internal/models"
	"snapshotd/internal/objectstore"
	"snapshotd/internal/structures"
	"snapshotd/internal/testutil"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "inj1abcdefghijklmnopqrst"

type storeFixture struct {
	store   *Store
	objects *testutil.MockObjectStore
	cache   *testutil.MockCache
	metrics *testutil.MockMetrics
	logger  *testutil.MockLogger
}

func newStoreFixture(t *testing.T, compress bool) *storeFixture {
	t.Helper()
	compressor, err := NewZstdCompressor()
	require.NoError(t, err)

	conf := &structures.Config{Storage: structures.StorageConfig{
		Namespace:    "snapshots",
		FileName:     "latest.json",
		Compress:     compress,
		PurgeLimit:   100,
		PurgeWorkers: 4,
	}}
	f := &storeFixture{
		objects: testutil.NewMockObjectStore(),
		cache:   testutil.NewMockCache(),
		metrics: &testutil.MockMetrics{},
		logger:  &testutil.MockLogger{},
	}
	f.store = NewStore(conf, f.objects, compressor, f.cache, f.metrics, f.logger).(*Store)
	return f
}

func sampleSnapshot(capturedAt int64) *models.Snapshot {
	return &models.Snapshot{
		Version:    models.CurrentVersion,
		CapturedAt: capturedAt,
		Stake: models.StakeSeries{
			Labels: []string{"a", "b"},
			Data:   []models.Number{1, models.NaN()},
			Moves:  []models.Number{0, 2},
			Types:  []string{DefaultStakeType, "Restake"},
		},
		Withdrawals: models.WithdrawalSeries{Labels: []string{}, Values: []models.Number{}, Times: []models.Number{}},
		NetWorth:    models.NetWorthSeries{Times: []models.Number{5}, USD: []models.Number{6}, INJ: []models.Number{7}},
	}
}

func TestStore_ObjectKey(t *testing.T) {
	f := newStoreFixture(t, false)
	assert.Equal(t, "snapshots/"+testAddress+"/latest.json", f.store.ObjectKey(testAddress))
}

func TestStore_LatestOnEmptyStore(t *testing.T) {
	f := newStoreFixture(t, false)

	snap, ok := f.store.Latest(context.Background(), testAddress)
	assert.False(t, ok)
	assert.Nil(t, snap)
	assert.Equal(t, 0, f.logger.Count("warn"))
	assert.Empty(t, f.metrics.StoreErrors)
}

func TestStore_SaveThenLatest(t *testing.T) {
	for _, compress := range []bool{false, true} {
		t.Run(fmt.Sprintf("compress=%v", compress), func(t *testing.T) {
			f := newStoreFixture(t, compress)
			ctx := context.Background()

			receipt, err := f.store.Save(ctx, testAddress, sampleSnapshot(1700))
			require.NoError(t, err)
			assert.Equal(t, "memory://test/snapshots/"+testAddress+"/latest.json", receipt.StoredAt)
			assert.Equal(t, int64(1700), receipt.CapturedAt)

			blob, err := f.objects.MemoryStore.Get(ctx, f.store.ObjectKey(testAddress))
			require.NoError(t, err)
			assert.Equal(t, compress, IsZstdFrame(blob))

			// bypass the cache
			f.cache.Del(cacheKey(testAddress))

			snap, ok := f.store.Latest(ctx, testAddress)
			require.True(t, ok)
			assert.Equal(t, int64(1700), snap.CapturedAt)
			assert.Equal(t, []string{"a", "b"}, snap.Stake.Labels)
			assert.Equal(t, models.Number(1), snap.Stake.Data[0])
			assert.True(t, snap.Stake.Data[1].IsNaN())
			assert.NotNil(t, snap.Withdrawals.Values)
			assert.Equal(t, []models.Number{7}, snap.NetWorth.INJ)
		})
	}
}

func TestStore_SaveOverwritesFixedPath(t *testing.T) {
	f := newStoreFixture(t, false)
	ctx := context.Background()

	_, err := f.store.Save(ctx, testAddress, sampleSnapshot(1))
	require.NoError(t, err)
	_, err = f.store.Save(ctx, testAddress, sampleSnapshot(2))
	require.NoError(t, err)

	assert.Equal(t, 1, f.objects.Len())
	f.cache.Del(cacheKey(testAddress))
	snap, ok := f.store.Latest(ctx, testAddress)
	require.True(t, ok)
	assert.Equal(t, int64(2), snap.CapturedAt)
}

func TestStore_LatestServesFromCache(t *testing.T) {
	f := newStoreFixture(t, false)
	ctx := context.Background()

	_, err := f.store.Save(ctx, testAddress, sampleSnapshot(42))
	require.NoError(t, err)
	gets := f.objects.CallCount("get")

	snap, ok := f.store.Latest(ctx, testAddress)
	require.True(t, ok)
	assert.Equal(t, int64(42), snap.CapturedAt)
	assert.Equal(t, gets, f.objects.CallCount("get"))
}

func TestStore_LatestDoesNotFillCache(t *testing.T) {
	f := newStoreFixture(t, false)
	ctx := context.Background()

	_, err := f.store.Save(ctx, testAddress, sampleSnapshot(7))
	require.NoError(t, err)
	f.cache.Del(cacheKey(testAddress))

	_, ok := f.store.Latest(ctx, testAddress)
	require.True(t, ok)
	_, cached := f.cache.Get(cacheKey(testAddress))
	assert.False(t, cached)
}

func TestStore_ReadAfterPurgeOnAnotherInstance(t *testing.T) {
	f := newStoreFixture(t, false)
	ctx := context.Background()

	other := NewStore(&structures.Config{Storage: structures.StorageConfig{
		Namespace:    "snapshots",
		FileName:     "latest.json",
		PurgeLimit:   100,
		PurgeWorkers: 2,
	}}, f.objects, &testutil.MockCompressor{}, testutil.NewMockCache(), f.metrics, f.logger)

	_, err := other.Save(ctx, testAddress, sampleSnapshot(11))
	require.NoError(t, err)

	snap, ok := f.store.Latest(ctx, testAddress)
	require.True(t, ok)
	assert.Equal(t, int64(11), snap.CapturedAt)

	result, err := other.DeleteAll(ctx, testAddress)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Deleted)

	snap, ok = f.store.Latest(ctx, testAddress)
	assert.False(t, ok)
	assert.Nil(t, snap)
}

func TestStore_OverflowSurvivesSaveAndLatest(t *testing.T) {
	f := newStoreFixture(t, true)
	ctx := context.Background()

	sanitizer := NewSanitizer(&structures.Config{})
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"stake":{"labels":["a","b"],"data":["1e999",2]}}`), &payload))
	saved := sanitizer.Sanitize(payload)

	_, err := f.store.Save(ctx, testAddress, saved)
	require.NoError(t, err)
	f.cache.Del(cacheKey(testAddress))

	loaded, ok := f.store.Latest(ctx, testAddress)
	require.True(t, ok)

	want, err := json.Marshal(saved)
	require.NoError(t, err)
	got, err := json.Marshal(loaded)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
	assert.True(t, loaded.Stake.Data[0].IsNaN())
	assert.Equal(t, models.Number(2), loaded.Stake.Data[1])
}

func TestStore_LatestFallsBackToNewestListed(t *testing.T) {
	f := newStoreFixture(t, false)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	prefix := "snapshots/" + testAddress + "/"
	f.objects.SetClock(func() time.Time { return base })
	require.NoError(t, f.objects.Put(ctx, prefix+"old.json", []byte(`{"version":1,"capturedAt":1}`), "application/json"))
	f.objects.SetClock(func() time.Time { return base.Add(time.Minute) })
	require.NoError(t, f.objects.Put(ctx, prefix+"new.json", []byte(`{"version":1,"capturedAt":2}`), "application/json"))

	snap, ok := f.store.Latest(ctx, testAddress)
	require.True(t, ok)
	assert.Equal(t, int64(2), snap.CapturedAt)
	assert.Equal(t, 1, snap.Version)
	assert.NotNil(t, snap.NetWorth.Times)
	assert.Equal(t, 1, f.objects.CallCount("list"))
}

func TestStore_LatestDegradesToAbsent(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *storeFixture)
	}{
		{
			name: "get fails",
			setup: func(f *storeFixture) {
				f.objects.GetFn = func(string) ([]byte, error) { return nil, errors.New("connection reset") }
			},
		},
		{
			name: "list fails",
			setup: func(f *storeFixture) {
				f.objects.ListFn = func(string, int) ([]objectstore.ObjectInfo, error) { return nil, errors.New("timeout") }
			},
		},
		{
			name: "undecodable content",
			setup: func(f *storeFixture) {
				_ = f.objects.MemoryStore.Put(context.Background(), f.store.ObjectKey(testAddress), []byte("not json"), "")
			},
		},
		{
			name: "corrupt zstd frame",
			setup: func(f *storeFixture) {
				_ = f.objects.MemoryStore.Put(context.Background(), f.store.ObjectKey(testAddress), []byte{0x28, 0xb5, 0x2f, 0xfd, 0x01}, "")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStoreFixture(t, false)
			tt.setup(f)

			snap, ok := f.store.Latest(context.Background(), testAddress)
			assert.False(t, ok)
			assert.Nil(t, snap)
			assert.Equal(t, 1, f.logger.Count("warn"))
		})
	}
}

func TestStore_SaveFailureIsStoreUnavailable(t *testing.T) {
	f := newStoreFixture(t, false)
	f.cache.Set(cacheKey(testAddress), []byte(`{"version":2,"capturedAt":1}`))
	f.objects.PutFn = func(string, []byte) error { return errors.New("503 slow down") }

	receipt, err := f.store.Save(context.Background(), testAddress, sampleSnapshot(5))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Nil(t, receipt)
	assert.Equal(t, 1, f.metrics.StoreErrors["put"])

	_, cached := f.cache.Get(cacheKey(testAddress))
	assert.False(t, cached)
}

func TestStore_DeleteAll(t *testing.T) {
	f := newStoreFixture(t, false)
	ctx := context.Background()

	prefix := "snapshots/" + testAddress + "/"
	for i := 0; i < 5; i++ {
		require.NoError(t, f.objects.MemoryStore.Put(ctx, fmt.Sprintf("%sold-%d.json", prefix, i), []byte("{}"), ""))
	}
	require.NoError(t, f.objects.MemoryStore.Put(ctx, "snapshots/inj1otheraddressxxxxxxxxx/latest.json", []byte("{}"), ""))
	_, err := f.store.Save(ctx, testAddress, sampleSnapshot(1))
	require.NoError(t, err)

	result, err := f.store.DeleteAll(ctx, testAddress)
	require.NoError(t, err)
	assert.Equal(t, &models.PurgeResult{Listed: 6, Deleted: 6, Failed: 0}, result)
	assert.Equal(t, 1, f.objects.Len())
	assert.Equal(t, 6, f.metrics.Purged["deleted"])

	_, ok := f.store.Latest(ctx, testAddress)
	assert.False(t, ok)
}

func TestStore_DeleteAllCountsFailures(t *testing.T) {
	f := newStoreFixture(t, false)
	ctx := context.Background()

	prefix := "snapshots/" + testAddress + "/"
	for i := 0; i < 4; i++ {
		require.NoError(t, f.objects.MemoryStore.Put(ctx, fmt.Sprintf("%s%d.json", prefix, i), []byte("{}"), ""))
	}
	f.objects.DeleteFn = func(key string) error {
		if strings.HasSuffix(key, "1.json") || strings.HasSuffix(key, "3.json") {
			return errors.New("access denied")
		}
		return nil
	}

	result, err := f.store.DeleteAll(ctx, testAddress)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Listed)
	assert.Equal(t, 2, result.Deleted)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 2, f.objects.Len())
	assert.Equal(t, 2, f.metrics.StoreErrors["delete"])
	assert.Equal(t, 2, f.logger.Count("warn"))
}

func TestStore_DeleteAllOnEmptyPrefix(t *testing.T) {
	f := newStoreFixture(t, false)

	result, err := f.store.DeleteAll(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, &models.PurgeResult{}, result)
	assert.Equal(t, 0, f.objects.CallCount("delete"))
}

func TestStore_DeleteAllListFailure(t *testing.T) {
	f := newStoreFixture(t, false)
	f.objects.ListFn = func(string, int) ([]objectstore.ObjectInfo, error) { return nil, errors.New("no route") }

	result, err := f.store.DeleteAll(context.Background(), testAddress)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Nil(t, result)
}

func TestStore_DeleteAllHonoursPurgeLimit(t *testing.T) {
	f := newStoreFixture(t, false)
	f.store.purgeLimit = 3
	ctx := context.Background()

	prefix := "snapshots/" + testAddress + "/"
	for i := 0; i < 5; i++ {
		require.NoError(t, f.objects.MemoryStore.Put(ctx, fmt.Sprintf("%s%d.json", prefix, i), []byte("{}"), ""))
	}

	result, err := f.store.DeleteAll(ctx, testAddress)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Listed)
	assert.Equal(t, 2, f.objects.Len())
}

func TestStore_CompressFailureSkipsPut(t *testing.T) {
	f := newStoreFixture(t, true)
	f.store.compressor = &testutil.MockCompressor{
		CompressFn: func([]byte) ([]byte, error) { return nil, errors.New("encoder closed") },
	}

	_, err := f.store.Save(context.Background(), testAddress, sampleSnapshot(1))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, 0, f.objects.CallCount("put"))
}

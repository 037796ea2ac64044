package testutil

import (
	"context"
	"io"
	"snapshotd/internal/models"
	"snapshotd/internal/objectstore"
	"snapshotd/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

// MockMetrics implements providers.MetricsProviderInterface and counts store errors and purges.
type MockMetrics struct {
	mu          sync.Mutex
	StoreErrors map[string]int
	Purged      map[string]int
	Points      map[string]int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}
func (m *MockMetrics) ObserveStoreDuration(_ string, _ time.Duration)   {}

func (m *MockMetrics) IncStoreErrors(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StoreErrors == nil {
		m.StoreErrors = make(map[string]int)
	}
	m.StoreErrors[op]++
}

func (m *MockMetrics) AddPurgedObjects(outcome string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Purged == nil {
		m.Purged = make(map[string]int)
	}
	m.Purged[outcome] += count
}

func (m *MockMetrics) ObserveSnapshotPoints(series string, points int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Points == nil {
		m.Points = make(map[string]int)
	}
	m.Points[series] = points
}

// MockObjectStore wraps an in-memory store, counts calls and lets tests
// inject failures per primitive.
type MockObjectStore struct {
	*objectstore.MemoryStore

	mu       sync.Mutex
	Calls    map[string]int
	GetFn    func(key string) ([]byte, error)
	PutFn    func(key string, data []byte) error
	ListFn   func(prefix string, limit int) ([]objectstore.ObjectInfo, error)
	DeleteFn func(key string) error
}

func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{
		MemoryStore: objectstore.NewMemoryStore("test"),
		Calls:       make(map[string]int),
	}
}

func (m *MockObjectStore) count(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[op]++
}

// CallCount returns the number of calls to op ("get", "put", "list", "delete").
func (m *MockObjectStore) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[op]
}

// TotalCalls returns the number of calls to any primitive.
func (m *MockObjectStore) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		n += c
	}
	return n
}

func (m *MockObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.count("get")
	if m.GetFn != nil {
		return m.GetFn(key)
	}
	return m.MemoryStore.Get(ctx, key)
}

func (m *MockObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	m.count("put")
	if m.PutFn != nil {
		if err := m.PutFn(key, data); err != nil {
			return err
		}
	}
	return m.MemoryStore.Put(ctx, key, data, contentType)
}

func (m *MockObjectStore) List(ctx context.Context, prefix string, limit int) ([]objectstore.ObjectInfo, error) {
	m.count("list")
	if m.ListFn != nil {
		return m.ListFn(prefix, limit)
	}
	return m.MemoryStore.List(ctx, prefix, limit)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	m.count("delete")
	if m.DeleteFn != nil {
		if err := m.DeleteFn(key); err != nil {
			return err
		}
	}
	return m.MemoryStore.Delete(ctx, key)
}

// MockSnapshotStore implements interfaces.StoreInterface.
type MockSnapshotStore struct {
	mu          sync.Mutex
	Snapshots   map[string]*models.Snapshot
	SaveErr     error
	DeleteErr   error
	LatestCalls int
	SaveCalls   int
	DeleteCalls int
}

func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{Snapshots: make(map[string]*models.Snapshot)}
}

func (m *MockSnapshotStore) Latest(_ context.Context, address string) (*models.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LatestCalls++
	snap, ok := m.Snapshots[address]
	return snap, ok
}

func (m *MockSnapshotStore) Save(_ context.Context, address string, snap *models.Snapshot) (*models.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}
	m.Snapshots[address] = snap
	return &models.Receipt{StoredAt: "memory://test/" + address, CapturedAt: snap.CapturedAt}, nil
}

func (m *MockSnapshotStore) DeleteAll(_ context.Context, address string) (*models.PurgeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.DeleteErr != nil {
		return nil, m.DeleteErr
	}
	listed := 0
	if _, ok := m.Snapshots[address]; ok {
		listed = 1
		delete(m.Snapshots, address)
	}
	return &models.PurgeResult{Listed: listed, Deleted: listed}, nil
}

// StoreCalls returns the total number of store calls.
func (m *MockSnapshotStore) StoreCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LatestCalls + m.SaveCalls + m.DeleteCalls
}

// MockSyncService implements services.SyncServiceInterface with injectable behavior.
type MockSyncService struct {
	ReadFn  func(ctx context.Context, address string) (*models.Snapshot, error)
	WriteFn func(ctx context.Context, address string, body io.Reader) (*models.Receipt, error)
	PurgeFn func(ctx context.Context, address string) (*models.PurgeResult, error)
}

func (m *MockSyncService) Read(ctx context.Context, address string) (*models.Snapshot, error) {
	return m.ReadFn(ctx, address)
}

func (m *MockSyncService) Write(ctx context.Context, address string, body io.Reader) (*models.Receipt, error) {
	return m.WriteFn(ctx, address, body)
}

func (m *MockSyncService) Purge(ctx context.Context, address string) (*models.PurgeResult, error) {
	return m.PurgeFn(ctx, address)
}

package objectstore

import (
	"context"
	"strings"
	"sync"
	"time"
)

const BackendMemory = "memory"

type memoryObject struct {
	data     []byte
	modified time.Time
}

// MemoryStore keeps objects in process memory. It backs local runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]memoryObject
	now     func() time.Time
}

func NewMemoryStore(bucket string) *MemoryStore {
	if bucket == "" {
		bucket = "snapshots"
	}
	return &MemoryStore{
		bucket:  bucket,
		objects: make(map[string]memoryObject),
		now:     time.Now,
	}
}

// SetClock replaces the clock used to stamp LastModified.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return out, nil
}

func (m *MemoryStore) Put(ctx context.Context, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := make([]byte, len(data))
	copy(stored, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: stored, modified: m.now()}
	return nil
}

func (m *MemoryStore) List(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	list := make([]ObjectInfo, 0)
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			list = append(list, ObjectInfo{Key: key, Size: int64(len(obj.data)), LastModified: obj.modified})
		}
	}
	m.mu.RUnlock()

	return newestFirst(list, limit), nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryStore) URL(key string) string {
	return "memory://" + m.bucket + "/" + key
}

func (m *MemoryStore) Backend() string {
	return BackendMemory
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

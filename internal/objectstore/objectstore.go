package objectstore

import (
	"context"
	"errors"
	"fmt"
	"snapshotd/internal/providers"
	"snapshotd/internal/structures"
	"sort"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes one listed object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore is the set of primitives the snapshot store needs from a bucket.
type ObjectStore interface {
	// Get returns ErrObjectNotFound when key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put overwrites whatever is stored at key.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// List returns at most limit objects under prefix, newest first.
	List(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// URL is the externally visible location of key.
	URL(key string) string
	Backend() string
}

func NewObjectStoreProvider(conf *structures.Config, logger providers.Logger) (ObjectStore, error) {
	switch conf.Storage.Backend {
	case BackendMinio:
		return NewMinioStore(&conf.Storage, logger)
	case BackendMemory:
		logger.Warnf(providers.TypeApp, "Using in-memory object store, snapshots will not survive a restart")
		return NewMemoryStore(conf.Storage.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", conf.Storage.Backend)
	}
}

// newestFirst orders objects by LastModified descending, then by key
// descending for equal timestamps, and keeps at most limit of them.
// A limit of zero or less keeps everything.
func newestFirst(objects []ObjectInfo, limit int) []ObjectInfo {
	sort.Slice(objects, func(i, j int) bool {
		if !objects[i].LastModified.Equal(objects[j].LastModified) {
			return objects[i].LastModified.After(objects[j].LastModified)
		}
		return objects[i].Key > objects[j].Key
	})
	if limit > 0 && len(objects) > limit {
		objects = objects[:limit]
	}
	return objects
}

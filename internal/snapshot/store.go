package snapshot

import (
	"context"
	"errors"
	"fmt"
	"snapshotd/internal/models"
	"snapshotd/internal/objectstore"
	"snapshotd/internal/providers"
	"snapshotd/internal/snapshot/interfaces"
	"snapshotd/internal/structures"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	json "github.com/goccy/go-json"
)

var ErrStoreUnavailable = errors.New("object store unavailable")

const (
	contentTypeJSON = "application/json"
	contentTypeZstd = "application/zstd"

	// fallbackListLimit is how many of the newest listed objects the fallback
	// read asks for when the fixed path is missing.
	fallbackListLimit = 1
)

// Store keeps one snapshot object per address at
// <namespace>/<address>/<fileName> and serves it back.
type Store struct {
	objects      objectstore.ObjectStore
	compressor   interfaces.CompressorInterface
	cache        providers.CacheProviderInterface
	metrics      providers.MetricsProviderInterface
	logger       providers.Logger
	namespace    string
	fileName     string
	compress     bool
	purgeLimit   int
	purgeWorkers int
}

func NewStore(conf *structures.Config, objects objectstore.ObjectStore, compressor interfaces.CompressorInterface, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) interfaces.StoreInterface {
	return &Store{
		objects:      objects,
		compressor:   compressor,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		namespace:    conf.Storage.Namespace,
		fileName:     conf.Storage.FileName,
		compress:     conf.Storage.Compress,
		purgeLimit:   max(conf.Storage.PurgeLimit, 1),
		purgeWorkers: max(conf.Storage.PurgeWorkers, 1),
	}
}

func (s *Store) prefix(address string) string {
	return s.namespace + "/" + address + "/"
}

// ObjectKey is the fixed location of the address snapshot.
func (s *Store) ObjectKey(address string) string {
	return s.prefix(address) + s.fileName
}

func cacheKey(address string) string {
	return "snap:" + address
}

func (s *Store) observe(op string, start time.Time, err error) {
	s.metrics.ObserveStoreDuration(op, time.Since(start))
	if err != nil && !errors.Is(err, objectstore.ErrObjectNotFound) {
		s.metrics.IncStoreErrors(op)
	}
}

// Latest reads the fixed path first and falls back to the newest listed
// object under the address prefix. Every failure reads as "no data yet".
// Only Save fills the cache; a read never writes back what it fetched.
func (s *Store) Latest(ctx context.Context, address string) (*models.Snapshot, bool) {
	if plain, ok := s.cache.Get(cacheKey(address)); ok {
		if snap, err := decodeSnapshot(plain); err == nil {
			return snap, true
		}
	}

	blob, err := s.get(ctx, s.ObjectKey(address))
	if errors.Is(err, objectstore.ErrObjectNotFound) {
		blob, err = s.newestListed(ctx, address)
	}
	if err != nil {
		if !errors.Is(err, objectstore.ErrObjectNotFound) {
			s.logger.Warnf(providers.TypeStore, "Latest %s degraded to empty: %s", address, err)
		}
		return nil, false
	}

	plain, err := s.unpack(blob)
	if err != nil {
		s.logger.Warnf(providers.TypeStore, "Latest %s: unreadable blob: %s", address, err)
		return nil, false
	}
	snap, err := decodeSnapshot(plain)
	if err != nil {
		s.logger.Warnf(providers.TypeStore, "Latest %s: undecodable snapshot: %s", address, err)
		return nil, false
	}

	return snap, true
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	blob, err := s.objects.Get(ctx, key)
	s.observe("get", start, err)
	return blob, err
}

func (s *Store) list(ctx context.Context, prefix string, limit int) ([]objectstore.ObjectInfo, error) {
	start := time.Now()
	objects, err := s.objects.List(ctx, prefix, limit)
	s.observe("list", start, err)
	return objects, err
}

func (s *Store) newestListed(ctx context.Context, address string) ([]byte, error) {
	objects, err := s.list(ctx, s.prefix(address), fallbackListLimit)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, objectstore.ErrObjectNotFound
	}
	s.logger.Debugf(providers.TypeStore, "Latest %s: fixed path missing, using listed object %s", address, objects[0].Key)
	return s.get(ctx, objects[0].Key)
}

func (s *Store) unpack(blob []byte) ([]byte, error) {
	if IsZstdFrame(blob) {
		return s.compressor.Decompress(blob)
	}
	return blob, nil
}

func decodeSnapshot(plain []byte) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.Unmarshal(plain, &snap); err != nil {
		return nil, err
	}
	snap.Normalize()
	return &snap, nil
}

// Save overwrites the fixed path of address with snap.
func (s *Store) Save(ctx context.Context, address string, snap *models.Snapshot) (*models.Receipt, error) {
	plain, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	blob, contentType := plain, contentTypeJSON
	if s.compress {
		blob, err = s.compressor.Compress(plain)
		if err != nil {
			return nil, fmt.Errorf("compress snapshot: %w", err)
		}
		contentType = contentTypeZstd
	}

	key := s.ObjectKey(address)
	start := time.Now()
	err = s.objects.Put(ctx, key, blob, contentType)
	s.observe("put", start, err)
	if err != nil {
		s.cache.Del(cacheKey(address))
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	s.cache.Set(cacheKey(address), plain)
	s.logger.Infof(providers.TypeStore, "Saved snapshot for %s at %s (%d bytes)", address, key, len(blob))

	return &models.Receipt{
		StoredAt:   s.objects.URL(key),
		CapturedAt: snap.CapturedAt,
	}, nil
}

// DeleteAll removes every object listed under the address prefix, up to the
// purge limit. Individual delete failures are counted, not returned.
func (s *Store) DeleteAll(ctx context.Context, address string) (*models.PurgeResult, error) {
	defer s.cache.Del(cacheKey(address))

	objects, err := s.list(ctx, s.prefix(address), s.purgeLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	result := &models.PurgeResult{Listed: len(objects)}
	if len(objects) == 0 {
		return result, nil
	}

	pool := pond.NewPool(min(s.purgeWorkers, len(objects)))
	defer pool.StopAndWait()

	var deleted atomic.Int64
	group := pool.NewGroupContext(ctx)
	for _, obj := range objects {
		group.Submit(func() {
			start := time.Now()
			err := s.objects.Delete(ctx, obj.Key)
			s.observe("delete", start, err)
			if err != nil {
				s.logger.Warnf(providers.TypeStore, "Purge %s: delete %s failed: %s", address, obj.Key, err)
				return
			}
			deleted.Add(1)
		})
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		s.logger.Warnf(providers.TypeStore, "Purge %s: worker group: %s", address, err)
	}

	result.Deleted = int(deleted.Load())
	result.Failed = result.Listed - result.Deleted
	s.metrics.AddPurgedObjects("deleted", result.Deleted)
	s.metrics.AddPurgedObjects("failed", result.Failed)
	s.logger.Infof(providers.TypeStore, "Purged %s: %d deleted, %d failed", address, result.Deleted, result.Failed)

	return result, nil
}

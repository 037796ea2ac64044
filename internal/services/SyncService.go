package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"snapshotd/internal/models"
	"snapshotd/internal/providers"
	"snapshotd/internal/snapshot"
	"snapshotd/internal/snapshot/interfaces"
	"snapshotd/internal/structures"

	json "github.com/goccy/go-json"
)

const DefaultMaxBodyBytes = 2 << 20

var (
	ErrInvalidKey       = errors.New("invalid address")
	ErrBodyTooLarge     = errors.New("payload too large")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrStoreUnavailable = snapshot.ErrStoreUnavailable
)

type SyncServiceInterface interface {
	// Read returns (nil, nil) when the address has no readable snapshot.
	Read(ctx context.Context, address string) (*models.Snapshot, error)
	Write(ctx context.Context, address string, body io.Reader) (*models.Receipt, error)
	Purge(ctx context.Context, address string) (*models.PurgeResult, error)
}

type SyncService struct {
	store        interfaces.StoreInterface
	sanitizer    *snapshot.Sanitizer
	maxBodyBytes int64
	metrics      providers.MetricsProviderInterface
	logger       providers.Logger
}

func NewSyncService(conf *structures.Config, store interfaces.StoreInterface, sanitizer *snapshot.Sanitizer, metrics providers.MetricsProviderInterface, logger providers.Logger) SyncServiceInterface {
	maxBodyBytes := conf.Snapshot.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &SyncService{
		store:        store,
		sanitizer:    sanitizer,
		maxBodyBytes: maxBodyBytes,
		metrics:      metrics,
		logger:       logger,
	}
}

func validateKey(raw string) (string, error) {
	key, err := snapshot.ValidateAddress(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, raw)
	}
	return key, nil
}

func (ss *SyncService) Read(ctx context.Context, address string) (*models.Snapshot, error) {
	key, err := validateKey(address)
	if err != nil {
		return nil, err
	}
	snap, ok := ss.store.Latest(ctx, key)
	if !ok {
		ss.logger.Debugf(providers.TypeGet, "No snapshot for %s", key)
		return nil, nil
	}
	return snap, nil
}

func (ss *SyncService) Write(ctx context.Context, address string, body io.Reader) (*models.Receipt, error) {
	key, err := validateKey(address)
	if err != nil {
		return nil, err
	}

	payload, err := ss.readPayload(body)
	if err != nil {
		ss.logger.Warnf(providers.TypePost, "Rejected payload for %s: %s", key, err)
		return nil, err
	}

	snap := ss.sanitizer.Sanitize(payload)
	ss.metrics.ObserveSnapshotPoints(snapshot.StakeSpec.Name, snap.Stake.Len())
	ss.metrics.ObserveSnapshotPoints(snapshot.WithdrawalSpec.Name, snap.Withdrawals.Len())
	ss.metrics.ObserveSnapshotPoints(snapshot.NetWorthSpec.Name, snap.NetWorth.Len())

	receipt, err := ss.store.Save(ctx, key, snap)
	if err != nil {
		ss.logger.Errorf(providers.TypePost, "Save for %s failed: %s", key, err)
		return nil, err
	}
	return receipt, nil
}

// readPayload stops reading one byte past the cap and requires a JSON object.
func (ss *SyncService) readPayload(body io.Reader) (map[string]any, error) {
	if body == nil {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}

	data, err := io.ReadAll(io.LimitReader(body, ss.maxBodyBytes+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, ss.maxBodyBytes)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if int64(len(data)) > ss.maxBodyBytes {
		return nil, fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, ss.maxBodyBytes)
	}

	var payload map[string]any
	if err = json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedPayload)
	}
	return payload, nil
}

func (ss *SyncService) Purge(ctx context.Context, address string) (*models.PurgeResult, error) {
	key, err := validateKey(address)
	if err != nil {
		return nil, err
	}
	result, err := ss.store.DeleteAll(ctx, key)
	if err != nil {
		ss.logger.Errorf(providers.TypeDelete, "Purge for %s failed: %s", key, err)
		return nil, err
	}
	return result, nil
}

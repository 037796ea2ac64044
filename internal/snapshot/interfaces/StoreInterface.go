package interfaces

import (
	"context"
	"snapshotd/internal/models"
)

// StoreInterface maps a validated address to object store operations.
type StoreInterface interface {
	// Latest reports false when nothing readable is stored for the address.
	Latest(ctx context.Context, address string) (*models.Snapshot, bool)
	Save(ctx context.Context, address string, snap *models.Snapshot) (*models.Receipt, error)
	DeleteAll(ctx context.Context, address string) (*models.PurgeResult, error)
}

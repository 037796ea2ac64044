//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"snapshotd/internal"
	"snapshotd/internal/controllers"
	"snapshotd/internal/objectstore"
	"snapshotd/internal/providers"
	"snapshotd/internal/services"
	"snapshotd/internal/snapshot"
	"snapshotd/internal/structures"
)

var serviceSet = wire.NewSet(
	providers.NewConfigProvider,
	providers.NewMetricsProvider,
	providers.NewInstrumentedCacheProvider,
	objectstore.NewObjectStoreProvider,

	snapshot.NewZstdCompressor,
	snapshot.NewSanitizer,
	snapshot.NewStore,
	services.NewSyncService,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		serviceSet,
		providers.NewLogProvider,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}

func InitSyncService(cfg *structures.CliFlags) (services.SyncServiceInterface, func(), error) {

	wire.Build(serviceSet, providers.NewLogProviderWithCleanup)

	return nil, nil, nil
}

//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"fmd/internal"
	"fmd/internal/controllers"
	"fmd/internal/providers"
	"fmd/internal/services"
	"fmd/internal/store"
	"fmd/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewUploadProvider,

		store.NewMemoryStore,
		store.NewZstdCompressor,
		store.NewSnapshotManager,
		store.NewScheduler,
		wire.Bind(new(store.SessionPruner), new(services.AuthServiceInterface)),

		services.NewDeviceService,
		services.NewAuthService,

		controllers.NewApiController,
		controllers.NewAuthController,
		controllers.NewAdminController,
		controllers.NewStreamController,
		controllers.NewHealthController,

		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}

//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"srtrack/internal"
	"srtrack/internal/controllers"
	"srtrack/internal/discovery"
	"srtrack/internal/providers"
	"srtrack/internal/ranking"
	"srtrack/internal/scheduler"
	"srtrack/internal/services"
	"srtrack/internal/session"
	"srtrack/internal/structures"
	"srtrack/internal/upstream"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewZstdCompressor,

		upstream.NewClient,
		ranking.NewResolver,
		ranking.NewParticipantCounter,
		ranking.NewBlockReconciler,
		ranking.NewStandingResolver,
		discovery.NewLiveRooms,
		discovery.NewEventDirectory,
		session.NewDeps,
		services.NewTrackingService,
		scheduler.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}

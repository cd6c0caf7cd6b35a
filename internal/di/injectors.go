//go:build wireinject
// +build wireinject

package di

import (
	"birdsong/internal"
	"birdsong/internal/api"
	"birdsong/internal/controllers"
	"birdsong/internal/preferences"
	"birdsong/internal/providers"
	"birdsong/internal/quarters"
	"birdsong/internal/structures"
	"birdsong/internal/timeline"
	"birdsong/internal/view"

	wire "github.com/google/wire"
)

var coreSet = wire.NewSet(
	providers.NewConfigProvider,
	providers.NewMetricsProvider,

	api.NewClient,
	preferences.ProvideStorage,
	preferences.ProvideStore,
	timeline.ProvideCompressor,
	timeline.ProvidePageStore,
	timeline.ProvideEngine,
	quarters.ProvideLookup,
	view.NewController,

	wire.Bind(new(view.PreferenceStore), new(*preferences.Store)),
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		coreSet,
		providers.NewLogProvider,
		preferences.ProvideNotifier,
		controllers.NewDashboardController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,

		wire.Bind(new(controllers.ViewControllerInterface), new(*view.Controller)),
		wire.Bind(new(controllers.PreferenceReader), new(*preferences.Store)),
	)

	return nil, nil, nil
}

func InitSession(cfg *structures.CliFlags) (*internal.Session, func(), error) {

	wire.Build(
		coreSet,
		providers.NewCliLogProvider,
		internal.NewSession,
	)

	return nil, nil, nil
}

//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"sae/internal"
	"sae/internal/archive"
	"sae/internal/controllers"
	"sae/internal/export"
	"sae/internal/providers"
	"sae/internal/services"
	"sae/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		services.NewArchiveService,

		archive.NewParser,
		archive.NewDiskSupplier,
		archive.NewScanner,
		archive.NewZstdCompressor,
		archive.NewFileManager,
		archive.NewScheduler,

		export.NewCompositor,
		export.NewFFmpegBackend,
		export.NewCanvasBackend,
		export.NewBackendSelector,
		wire.Bind(new(export.BackendSelectorInterface), new(*export.BackendSelector)),
		export.NewFileSink,
		export.NewComposer,

		controllers.NewApiController,
		controllers.NewExportController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}

package internal

import (
	"net/http"

	"sae/internal/controllers"
	"sae/internal/providers"
	"sae/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, exportController *controllers.ExportController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/dates", http.HandlerFunc(apiController.GetDates))
	routers.Get("/stories", http.HandlerFunc(apiController.GetStories))
	routers.Get("/users", http.HandlerFunc(apiController.GetUsers))
	routers.Get("/user", http.HandlerFunc(apiController.GetUser))
	routers.Get("/profiles", http.HandlerFunc(apiController.GetProfiles))
	routers.Get("/file", http.HandlerFunc(apiController.GetFile))

	routers.Post("/export", http.HandlerFunc(exportController.StartExport))
	routers.Get("/export/status", http.HandlerFunc(exportController.ExportStatus))
	routers.Post("/export/cancel", http.HandlerFunc(exportController.CancelExport))
	return routers
}

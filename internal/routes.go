package internal

import (
	"net/http"

	"birdsong/internal/controllers"
	"birdsong/internal/providers"
)

func InitRoutes(dashboard *controllers.DashboardController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/timeline", http.HandlerFunc(dashboard.GetTimeline))
	routers.Post("/timeline/older", http.HandlerFunc(dashboard.LoadOlder))
	routers.Get("/preferences", http.HandlerFunc(dashboard.GetPreferences))
	routers.Post("/preferences", http.HandlerFunc(dashboard.ApplyPreferences))
	routers.Post("/preferences/reset", http.HandlerFunc(dashboard.ResetPreferences))
	routers.Get("/quarters", http.HandlerFunc(dashboard.GetQuarters))
	return routers
}

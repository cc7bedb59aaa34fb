package internal

import (
	"net/http"
	"srtrack/internal/controllers"
	"srtrack/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/events", http.HandlerFunc(apiController.GetEvents))
	routers.Get("/sessions", http.HandlerFunc(apiController.GetSessions))
	routers.Post("/track", http.HandlerFunc(apiController.Track))
	routers.Post("/untrack", http.HandlerFunc(apiController.Untrack))
	routers.Get("/snapshot", http.HandlerFunc(apiController.GetSnapshot))
	routers.Get("/log", http.HandlerFunc(apiController.GetLog))
	routers.Get("/needed", http.HandlerFunc(apiController.GetNeeded))
	return routers
}

package app

import "github.com/gofiber/adaptor/v2"

// initDefaultRoutes initializes the applications default routes.
//  These are the routes which always are the same in every application.
//  Things like user api, version, ...
func (app *App) initDefaultRoutes() {
	api := app.web.Group("/")
	if app.config.Webserver.Webservices["version"] {
		api.Get("/version", app.HandleVersion())
	}
	if app.config.Webserver.Webservices["health"] {
		api.Get("/health", app.HandleHealth())
	}
	if app.config.Webserver.Webservices["data"] {
		api.Get("/data", app.HandleData())
	}
	if app.config.Webserver.Webservices["stats"] {
		api.Get("/stats", app.HandleStats())
	}
	if app.config.Webserver.Webservices["annotations"] {
		api.Get("/annotations", app.HandleAnnotations())
	}
	if app.config.Webserver.Webservices["metrics"] {
		api.Get("/metrics", adaptor.HTTPHandler(app.metrics.Handler()))
	}
}

package app

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"

	"rcdl/pkg/jrc"
)

// runWebServer starts the applications web server and listens for web requests.
//  It's designed to run in a separate go function to not block the main go function.
//  e.g.: go runWebServer()
//  See app.Run()
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
}

// HandleData is the get last decoded packet web handler.
func (app *App) HandleData() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request data")

		app.packet.RLock()
		defer app.packet.RUnlock()

		if !app.packet.seen {
			return ctx.SendStatus(http.StatusNoContent)
		}
		return ctx.JSON(app.packet.last)
	}
}

// HandleStats is the get statistics snapshot web handler.
func (app *App) HandleStats() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request stats")

		return ctx.JSON(app.decoder.Stats().Snapshot())
	}
}

// HandleAnnotations is the get recent annotations web handler. The response
// carries the row grouping so a host can lay the spans out.
func (app *App) HandleAnnotations() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request annotations")

		return ctx.JSON(struct {
			Rows        []jrc.Row        `json:"rows"`
			Annotations []jrc.Annotation `json:"annotations"`
		}{
			Rows:        jrc.Rows(),
			Annotations: app.recorder.Snapshot(),
		})
	}
}

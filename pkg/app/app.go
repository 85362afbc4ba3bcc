package app

import (
	"io"
	"net/url"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"

	"rcdl/pkg/annotate"
	"rcdl/pkg/app/config"
	"rcdl/pkg/jrc"
	"rcdl/pkg/metrics"
	"rcdl/pkg/mqtt"
	"rcdl/pkg/port"
	"rcdl/pkg/raspberry"
	"rcdl/pkg/replay"
)

// annotationBacklog is the number of recent annotations kept for the web layer.
const annotationBacklog = 4096

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Url parameter
	// and makes it easier to get params out of e.g.
	// url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// chip is the handler to the rpi gpio character device (gpiod driver only)
	chip *raspberry.Chip

	// closers releases the edge source on shutdown
	closers []io.Closer

	// decoder is the protocol decoder fed by the edge source
	decoder *jrc.Decoder

	// recorder keeps recent annotations for the web layer
	recorder *annotate.Recorder

	// metrics holds the prometheus counters
	metrics *metrics.Metrics

	// packet holds the last decoded packet
	packet struct {
		sync.RWMutex
		last jrc.Packet
		seen bool
	}

	// restart signals application restart
	restart chan struct{}
	// shutdown signals application shutdown
	shutdown chan struct{}
}

// New checks the Web server URL and initialize the main app structure
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	return &App{
		config:    config,
		urlParsed: u,

		web:      fiber.New(),
		mqtt:     mqtt.New(),
		recorder: annotate.NewRecorder(annotationBacklog),
		metrics:  metrics.New(),

		restart:  make(chan struct{}),
		shutdown: make(chan struct{}),
	}, err
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	go app.mqtt.Service()
	go app.runWebServer()
	go app.decode()
	go app.readPackets()

	return nil
}

// init opens the edge source and wires it to the decoder and the
// annotation sinks.
func (app *App) init() error {
	events, err := app.openSource()
	if err != nil {
		debug.ErrorLog.Printf("can't open edge source: %v", err)
		return err
	}

	emitter := annotate.Multi{annotate.Tracer{}, app.recorder, app.metrics}

	app.decoder, err = jrc.New(port.NewSource(events), emitter,
		app.config.SampleRate, app.config.TargetData)
	if err != nil {
		debug.ErrorLog.Printf("can't start decoder: %v", err)
		return err
	}

	if err = app.mqtt.Connect(app.config.MQTT.Connection); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	// initDefaultRoutes should be always called last because it may access
	// things which must be initialized before
	app.initDefaultRoutes()

	return nil
}

// openSource opens the configured edge source: a gpio line watched by one of
// the two backends, or a capture file replay.
func (app *App) openSource() (<-chan port.Event, error) {
	if app.config.Source == "file" {
		r, err := replay.Open(app.config.CaptureFile)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, r)
		return r.C, nil
	}

	if app.config.Driver == "gpiomem" {
		l, err := raspberry.OpenMem(app.config.Gpio, app.config.Terminator, app.config.SampleRate)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, l)
		return l.C, nil
	}

	chip, err := raspberry.Open()
	if err != nil {
		return nil, err
	}
	app.chip = chip

	line, err := chip.NewLine(app.config.Gpio, app.config.Terminator,
		app.config.BounceTime, app.config.SampleRate)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, line)
	return line.C, nil
}

// decode runs the decoder until the edge source is exhausted and then signals
// application shutdown.
func (app *App) decode() {
	if err := app.decoder.Run(); err != nil {
		debug.ErrorLog.Printf("decoder stopped: %v", err)
	}
	close(app.shutdown)
}

// Restart returns the read only restart channel.
// Restart is used to be able to react on application restart. (see cmd/rcdl.go)
func (app *App) Restart() <-chan struct{} {
	return app.restart
}

// Shutdown returns the read only shutdown channel.
// Shutdown is used to be able to react on application shutdown. (see cmd/rcdl.go)
func (app *App) Shutdown() <-chan struct{} {
	return app.shutdown
}

func (app *App) Close() error {
	if app.mqtt != nil {
		_ = app.mqtt.Disconnect()
	}

	for _, c := range app.closers {
		_ = c.Close()
	}
	if app.chip != nil {
		_ = app.chip.Close()
	}
	return nil
}

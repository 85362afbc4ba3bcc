package app

import (
	"github.com/womat/debug"

	"rcdl/pkg/jrc"
)

// readPackets waits in an endless loop for completed packets. Each packet is
// saved to the app main structure, accounted in the prometheus counters and
// sent to the mqtt broker.
func (app *App) readPackets() {
	for p := range app.decoder.C {
		debug.DebugLog.Printf("packet [%d..%d]: start 0x%02X, payload %v, checksum ok %v",
			p.Start, p.End, p.StartCode, p.Payload, p.ChecksumOK)

		app.packet.Lock()
		app.packet.last = p
		app.packet.seen = true
		app.packet.Unlock()

		app.metrics.Observe(p, app.config.TargetData)
		app.sendMQTT(app.config.MQTT.Topic, p)
	}
}

// sendMQTT sends a decoded packet to the mqtt broker.
func (app *App) sendMQTT(topic string, p jrc.Packet) {
	go func() {
		debug.TraceLog.Printf("prepare mqtt message %v %v", topic, p)
		app.mqtt.PublishJSON(topic, app.config.MQTT.Qos, app.config.MQTT.Retained, p)
	}()
}

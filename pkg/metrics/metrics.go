// Package metrics exposes prometheus counters for the decode activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rcdl/pkg/jrc"
)

// Metrics contains all prometheus metrics of the decoder service.
type Metrics struct {
	// Packet metrics, driven by the packet listener.
	PacketsDecoded prometheus.Counter
	PacketsPassed  prometheus.Counter
	PacketsFailed  prometheus.Counter
	ChecksumErrors prometheus.Counter

	// Annotation metrics, driven by the emitter path.
	Annotations    *prometheus.CounterVec
	InvalidSymbols prometheus.Counter
}

// New registers the decoder metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		PacketsDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rcdl_packets_decoded_total",
			Help: "Total number of packet cycles completed.",
		}),
		PacketsPassed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rcdl_packets_passed_total",
			Help: "Packets matching the configured target payload.",
		}),
		PacketsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rcdl_packets_failed_total",
			Help: "Packets not matching the configured target payload.",
		}),
		ChecksumErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rcdl_checksum_errors_total",
			Help: "Packets whose checksum byte did not match the payload sum.",
		}),
		Annotations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rcdl_annotations_total",
			Help: "Annotations emitted by the decoder, by class.",
		}, []string{"class"}),
		InvalidSymbols: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rcdl_invalid_symbols_total",
			Help: "Bit symbols whose pulse timing matched no logic level.",
		}),
	}
}

// Put implements jrc.Emitter and counts every emitted span.
func (m *Metrics) Put(_, _ uint64, class jrc.Class, labels []string) {
	m.Annotations.WithLabelValues(class.String()).Inc()

	if class == jrc.Bit && len(labels) > 0 && labels[0] == "Invalid" {
		m.InvalidSymbols.Inc()
	}
}

// Observe accounts one completed packet. A zero target keeps the pass/fail
// counters untouched, mirroring the statistics aggregator.
func (m *Metrics) Observe(p jrc.Packet, target uint32) {
	m.PacketsDecoded.Inc()

	if !p.ChecksumOK {
		m.ChecksumErrors.Inc()
	}

	if target == 0 {
		return
	}
	if p.Matches(target) {
		m.PacketsPassed.Inc()
	} else {
		m.PacketsFailed.Inc()
	}
}

// Handler returns the http handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

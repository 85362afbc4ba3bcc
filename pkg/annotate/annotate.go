// Package annotate provides host-side annotation sinks: a trace logger, a
// bounded in-memory recorder and a fan-out over several sinks.
package annotate

import (
	"strings"
	"sync"

	"github.com/womat/debug"

	"rcdl/pkg/jrc"
)

// Tracer writes every labeled span to the trace log.
type Tracer struct{}

// Put implements jrc.Emitter.
func (Tracer) Put(start, end uint64, class jrc.Class, labels []string) {
	debug.TraceLog.Printf("[%d..%d] %s: %s", start, end, class, strings.Join(labels, "|"))
}

// Recorder keeps the most recent annotations in a bounded ring so the web
// layer can serve them. It is safe for concurrent use.
type Recorder struct {
	mu sync.Mutex
	// buf holds up to max annotations, oldest first.
	buf []jrc.Annotation
	max int
}

// NewRecorder initials a recorder keeping the last max annotations.
func NewRecorder(max int) *Recorder {
	return &Recorder{
		buf: make([]jrc.Annotation, 0, max),
		max: max,
	}
}

// Put implements jrc.Emitter.
func (r *Recorder) Put(start, end uint64, class jrc.Class, labels []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.buf) == r.max {
		copy(r.buf, r.buf[1:])
		r.buf = r.buf[:len(r.buf)-1]
	}

	r.buf = append(r.buf, jrc.Annotation{
		Start:  start,
		End:    end,
		Class:  class,
		Labels: labels,
	})
}

// Snapshot returns a copy of the recorded annotations, oldest first.
func (r *Recorder) Snapshot() []jrc.Annotation {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := make([]jrc.Annotation, len(r.buf))
	copy(s, r.buf)
	return s
}

// Multi fans every span out to all sinks in order.
type Multi []jrc.Emitter

// Put implements jrc.Emitter.
func (m Multi) Put(start, end uint64, class jrc.Class, labels []string) {
	for _, e := range m {
		e.Put(start, end, class, labels)
	}
}

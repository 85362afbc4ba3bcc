// Package replay feeds recorded edge events from a CSV capture file into the
// same event stream the GPIO backends produce, so captures can be decoded
// offline.
//
// The capture format is one event per line: "<sample>,<edge>" with edge 'r'
// (rising) or 'f' (falling). A "sample,edge" header line is skipped.
package replay

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/womat/debug"

	"rcdl/pkg/port"
)

// Reader replays a capture file as a stream of edge events.
type Reader struct {
	file *os.File
	// C is the channel the replayed events are sent to.
	// It is closed when the capture is exhausted.
	C chan port.Event
}

// Open opens a capture file and starts replaying it.
func Open(name string) (*Reader, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		file: f,
		C:    make(chan port.Event),
	}

	go r.run()
	return r, nil
}

// run parses the capture line by line and sends each event to C.
func (r *Reader) run() {
	defer close(r.C)

	scanner := bufio.NewScanner(r.file)
	line := 0

	for scanner.Scan() {
		line++
		evt, err := parseLine(scanner.Text())
		if err != nil {
			if line == 1 && isHeader(scanner.Text()) {
				continue
			}
			debug.ErrorLog.Printf("capture %s line %d: %v", r.file.Name(), line, err)
			continue
		}
		r.C <- evt
	}

	if err := scanner.Err(); err != nil {
		debug.ErrorLog.Printf("reading capture %s: %v", r.file.Name(), err)
	}
	debug.InfoLog.Printf("capture %s replayed, %d lines", r.file.Name(), line)
}

// Close releases the capture file. Replay stops once the parser hits the end
// of the closed file.
func (r *Reader) Close() error {
	return r.file.Close()
}

func isHeader(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "sample")
}

func parseLine(s string) (port.Event, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return port.Event{}, fmt.Errorf("expected <sample>,<edge>, got %q", s)
	}

	sample, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return port.Event{}, fmt.Errorf("invalid sample number %q", parts[0])
	}

	switch strings.TrimSpace(strings.ToLower(parts[1])) {
	case "r":
		return port.Event{Sample: sample, Type: port.RisingEdge}, nil
	case "f":
		return port.Event{Sample: sample, Type: port.FallingEdge}, nil
	}

	return port.Event{}, fmt.Errorf("invalid edge type %q", parts[1])
}

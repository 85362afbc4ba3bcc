// Package raspberry is the watcher for gpio ports. It turns line events into
// sample-indexed edge events for the decoder.
package raspberry

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/warthog618/gpiod"
	"github.com/womat/debug"

	"rcdl/pkg/port"
)

var ErrInvalidParam = fmt.Errorf("invalid parameters")

// Chip represents a single GPIO chip that controls a set of lines.
type Chip struct {
	gpiodChip *gpiod.Chip
}

// Line represents a single requested line.
type Line struct {
	gpiodLine  *gpiod.Line
	sampleRate int
	lastValue  int
	// debouncing guards the bounce window; it is set by the gpiod event
	// handler and cleared by the debounce goroutine.
	debouncing int32
	// send edge changes to channel
	C chan port.Event
}

// Open opens a GPIO character device.
func Open() (*Chip, error) {
	c, err := gpiod.NewChip("gpiochip0")
	chip := Chip{gpiodChip: c}
	return &chip, err
}

// NewLine requests control of a single line on a chip.
//   If granted, control is maintained until the Line is closed.
//   Watch the line for edge changes and send the changes after bounce timeout to channel C.
//   Event timestamps are converted to sample indices with the given sample rate.
//   There can only be one watcher on the line at a time.
func (c *Chip) NewLine(gpio int, terminator string, debounce time.Duration, sampleRate int) (*Line, error) {
	var err error

	line := &Line{
		sampleRate: sampleRate,
		C:          make(chan port.Event),
	}

	// handler checks the bounce timeout and sends the event to channel C
	handler := func(evt gpiod.LineEvent) {
		if !atomic.CompareAndSwapInt32(&line.debouncing, 0, 1) {
			debug.TraceLog.Println("bounce signal detected")
			return
		}

		go func(t time.Duration) {
			defer atomic.StoreInt32(&line.debouncing, 0)

			time.Sleep(debounce)

			v, e := line.gpiodLine.Value()
			if e != nil {
				debug.ErrorLog.Println(e)
				return
			}

			if v == line.lastValue {
				debug.TraceLog.Println("no changed value after bounce delay")
				return
			}

			sample := line.sample(t + debounce)

			switch v {
			case 0:
				line.C <- port.Event{Type: port.FallingEdge, Sample: sample}
			case 1:
				line.C <- port.Event{Type: port.RisingEdge, Sample: sample}
			default:
				debug.ErrorLog.Printf("invalid line value: %v", v)
				return
			}

			line.lastValue = v
		}(evt.Timestamp)
	}

	switch terminator {
	case "pullup":
		line.gpiodLine, err = c.gpiodChip.RequestLine(gpio, gpiod.WithEventHandler(handler),
			gpiod.WithBothEdges, gpiod.AsInput, gpiod.WithPullUp)
	case "pulldown":
		line.gpiodLine, err = c.gpiodChip.RequestLine(gpio, gpiod.WithEventHandler(handler),
			gpiod.WithBothEdges, gpiod.AsInput, gpiod.WithPullDown)
	case "none":
		line.gpiodLine, err = c.gpiodChip.RequestLine(gpio, gpiod.WithEventHandler(handler),
			gpiod.WithBothEdges, gpiod.AsInput)
	default:
		return nil, ErrInvalidParam
	}

	return line, err
}

// sample converts an event timestamp to a sample index.
func (l *Line) sample(t time.Duration) uint64 {
	return uint64(t.Seconds() * float64(l.sampleRate))
}

// Close releases the Chip.
//
// It does not release any lines which may be requested - they must be closed
// independently.
func (c *Chip) Close() error {
	return c.gpiodChip.Close()
}

// Close releases all resources held by the requested line.
//
// Note that this includes waiting for any running event handler to return.
// As a consequence the Close must not be called from the context of the event
// handler - the Close should be called from a different goroutine.
func (l *Line) Close() error {
	if err := l.gpiodLine.Close(); err != nil {
		return err
	}
	close(l.C)
	return nil
}

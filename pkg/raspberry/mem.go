package raspberry

import (
	"time"

	"github.com/warthog618/gpio"

	"rcdl/pkg/port"
)

// MemLine watches a gpio line through the /dev/gpiomem mapping. It is the
// fallback backend for kernels without the gpio character device.
type MemLine struct {
	pin        *gpio.Pin
	sampleRate int
	// started anchors the sample clock.
	started   time.Time
	lastLevel bool
	// send edge changes to channel
	C chan port.Event
}

// OpenMem maps the GPIO memory range and watches the given pin for edges.
func OpenMem(pin int, terminator string, sampleRate int) (*MemLine, error) {
	if err := gpio.Open(); err != nil {
		return nil, err
	}

	p := gpio.NewPin(pin)
	p.Input()

	switch terminator {
	case "pullup":
		p.PullUp()
	case "pulldown":
		p.PullDown()
	case "none":
	default:
		_ = gpio.Close()
		return nil, ErrInvalidParam
	}

	l := &MemLine{
		pin:        p,
		sampleRate: sampleRate,
		started:    time.Now(),
		lastLevel:  bool(p.Read()),
		C:          make(chan port.Event),
	}

	if err := p.Watch(gpio.EdgeBoth, l.handler); err != nil {
		_ = gpio.Close()
		return nil, err
	}

	return l, nil
}

// handler reads the pin level and reports a level change as an edge event.
func (l *MemLine) handler(p *gpio.Pin) {
	v := bool(p.Read())
	if v == l.lastLevel {
		return
	}
	l.lastLevel = v

	sample := uint64(time.Since(l.started).Seconds() * float64(l.sampleRate))
	if v {
		l.C <- port.Event{Sample: sample, Type: port.RisingEdge}
	} else {
		l.C <- port.Event{Sample: sample, Type: port.FallingEdge}
	}
}

// Close removes the watch and unmaps the GPIO memory.
func (l *MemLine) Close() error {
	l.pin.Unwatch()
	err := gpio.Close()
	close(l.C)
	return err
}

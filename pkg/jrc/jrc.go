// Package jrc is a software decoder for the JRC one-wire remote-control
// protocol. A packet is a fixed-duration preamble followed by a start code
// (0x4C), four payload bytes and a modulo-256 checksum byte, all encoded as
// pulse-width modulated low/high pulse pairs.
package jrc

// Timing parameters of the protocol. Durations are in milliseconds, the
// tolerance is the accepted deviation in percent.
const (
	// Tolerance is the accepted timing deviation, in percent.
	Tolerance = 10
	// preambleLowMS and preambleHighMS are the nominal preamble pulse widths.
	preambleLowMS  = 4
	preambleHighMS = 8
	// logicLowMS is the nominal low pulse width of every data bit.
	logicLowMS = 0.64
	// oneHighMS and zeroHighMS are the nominal high pulse widths of a
	// logic 1 and a logic 0.
	oneHighMS  = 1.44
	zeroHighMS = 0.48
)

// StartCode is the expected start byte of every packet.
const StartCode = 0x4C

// payloadLen is the fixed number of payload bytes per packet.
const payloadLen = 4

// InTolerance reports whether a measured duration matches a nominal duration
// within the given percentage tolerance. Both bounds are inclusive.
func InTolerance(measured, nominal, tolerancePct float64) bool {
	return nominal*(1-tolerancePct/100) <= measured &&
		measured <= nominal*(1+tolerancePct/100)
}

// Class is the category of an emitted annotation.
type Class int

const (
	Bit Class = iota
	Preamble
	Start
	Data
	Stop
	ID
	Function
	Args
	Sum
	Invalid
	Debug
)

var classNames = [...]string{
	Bit:      "bit",
	Preamble: "preamble",
	Start:    "start",
	Data:     "data",
	Stop:     "stop",
	ID:       "id",
	Function: "function",
	Args:     "args",
	Sum:      "sum",
	Invalid:  "error",
	Debug:    "debug",
}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "unknown"
	}
	return classNames[c]
}

// Emitter is the annotation sink the decoder reports labeled spans to.
// The decoder guarantees start <= end and that successive spans of a single
// packet are non-overlapping and sample-monotonic. Labels are ordered from
// the longest to the shortest display form.
type Emitter interface {
	Put(start, end uint64, class Class, labels []string)
}

// Annotation is one labeled span as handed to an Emitter.
type Annotation struct {
	Start  uint64   `json:"start"`
	End    uint64   `json:"end"`
	Class  Class    `json:"class"`
	Labels []string `json:"labels"`
}

// Row groups annotation classes into display rows for host convenience.
// The decoder itself has no dependency on how spans are displayed.
type Row struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Classes []Class `json:"classes"`
}

// Rows returns the display row grouping of the annotation classes.
func Rows() []Row {
	return []Row{
		{ID: "bits", Name: "Bits", Classes: []Class{Bit}},
		{ID: "packet", Name: "Packet", Classes: []Class{Preamble, Start, Data}},
		{ID: "datas", Name: "Datas", Classes: []Class{Function, Args, Sum}},
		{ID: "errors", Name: "Errors", Classes: []Class{Invalid}},
		{ID: "debugs", Name: "Debugs", Classes: []Class{Debug}},
	}
}

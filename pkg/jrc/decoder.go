package jrc

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/womat/debug"

	"rcdl/pkg/port"
)

// ErrNoSampleRate is returned when decoding is started without a sample rate.
var ErrNoSampleRate = errors.New("cannot decode without a sample rate")

// packetBacklog is the capacity of the packet channel. When no listener keeps
// up, completed packets are dropped rather than stalling the decode loop.
const packetBacklog = 16

const (
	// idle is the process state to search for a preamble.
	idle stateType = iota
	// preamble is the process state to read the start code.
	preamble
	// start is the process state to read the four payload bytes.
	start
	// data is the process state to read the checksum byte.
	data
	// sum is the process state to wait for the end of the packet.
	sum
)

// stateType represents the state of the decoding process.
type stateType int

// span locates a decoded entity in the signal.
type span struct {
	ss uint64
	es uint64
}

// Decoder represents the handler of the protocol decoder. It pulls edges
// from an EdgeSource on demand and reports every labeled span to the Emitter.
// Decoding is strictly sequential; a single goroutine drives Run.
type Decoder struct {
	// source delivers sample positions of requested line conditions.
	source port.EdgeSource
	// emitter receives every labeled span as it is recovered.
	emitter Emitter

	// intervalMS is the duration of one sample in milliseconds.
	intervalMS float64

	// state contains the current decoding state.
	state stateType
	// packet is the packet-scoped accumulator, reset on every cycle.
	packet Packet

	// stats survives packet cycles.
	stats *Statistics

	// C is the channel completed packets are sent to.
	C chan Packet
}

// New initials a new Decoder. The sample rate must be known up front,
// a missing one is the only fatal condition of the decoder. A non-zero
// targetData enables pass/fail statistics against that payload.
func New(source port.EdgeSource, emitter Emitter, sampleRate int, targetData uint32) (*Decoder, error) {
	if sampleRate <= 0 {
		return nil, ErrNoSampleRate
	}

	return &Decoder{
		source:     source,
		emitter:    emitter,
		intervalMS: 1000 / float64(sampleRate),
		stats:      newStatistics(targetData),
		C:          make(chan Packet, packetBacklog),
	}, nil
}

// Stats returns the statistics accumulator of the decode session.
func (d *Decoder) Stats() *Statistics {
	return d.stats
}

// Run decodes packets until the edge source is exhausted. No symbol, byte or
// packet level mismatch stops the loop; every defect degrades to an Invalid
// annotation and decoding continues with the edges the current state expects.
func (d *Decoder) Run() error {
	for {
		var err error

		switch d.state {
		case idle:
			err = d.readPreamble()
		case preamble:
			err = d.readStart()
		case start:
			err = d.readData()
		case data:
			err = d.readChecksum()
		case sum:
			err = d.finish()
		}

		if errors.Is(err, io.EOF) {
			debug.InfoLog.Print("edge source exhausted, decoding stopped")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// pulseMS converts a sample span to a pulse duration in milliseconds.
func (d *Decoder) pulseMS(start, end uint64) float64 {
	return float64(end-start) * d.intervalMS
}

// readPreamble waits for the low+high preamble pulse pair and anchors the new
// packet at its first edge. An out-of-tolerance preamble is annotated as
// Invalid but never aborts the cycle.
func (d *Decoder) readPreamble() error {
	ss, err := d.source.Wait(port.Falling)
	if err != nil {
		return err
	}
	mid, err := d.source.Wait(port.Rising)
	if err != nil {
		return err
	}
	es, err := d.source.Wait(port.Falling)
	if err != nil {
		return err
	}

	lowMS := d.pulseMS(ss, mid)
	highMS := d.pulseMS(mid, es)
	debug.TraceLog.Printf("preamble pulses: %.3f ms low, %.3f ms high", lowMS, highMS)

	d.packet = Packet{Start: ss}
	d.packet.PreambleValid = InTolerance(lowMS, preambleLowMS, Tolerance) &&
		InTolerance(highMS, preambleHighMS, Tolerance)

	if d.packet.PreambleValid {
		d.emitter.Put(ss, es, Preamble, []string{"Preamble", "P"})
	} else {
		d.emitter.Put(ss, es, Preamble, []string{"Invalid", "I"})
	}

	d.state = preamble
	return nil
}

// readBit recovers one logic level from a low+high pulse pair.
// The low pulse gates the bit; only when it matches is the high pulse
// classified into logic 0 or logic 1.
func (d *Decoder) readBit() (port.StateType, span, error) {
	ss, err := d.source.Wait(port.LevelLow)
	if err != nil {
		return port.Invalid, span{}, err
	}
	mid, err := d.source.Wait(port.LevelHigh)
	if err != nil {
		return port.Invalid, span{}, err
	}
	es, err := d.source.Wait(port.Falling)
	if err != nil {
		return port.Invalid, span{}, err
	}

	sp := span{ss: ss, es: es}
	if !InTolerance(d.pulseMS(ss, mid), logicLowMS, Tolerance) {
		return port.Invalid, sp, nil
	}

	switch highMS := d.pulseMS(mid, es); {
	case InTolerance(highMS, zeroHighMS, Tolerance):
		return port.Low, sp, nil
	case InTolerance(highMS, oneHighMS, Tolerance):
		return port.High, sp, nil
	}

	return port.Invalid, sp, nil
}

// readByte recovers one byte, MSB first. All 8 bit slots are consumed from
// the signal even after an invalid bit; the byte is only valid when every
// bit is. Each bit is annotated individually as it is decoded.
func (d *Decoder) readByte() (byte, bool, span, error) {
	var value byte
	var sp span
	valid := true

	for i := 0; i < 8; i++ {
		bit, bsp, err := d.readBit()
		if err != nil {
			return 0, false, sp, err
		}

		if i == 0 {
			sp.ss = bsp.ss
		}
		sp.es = bsp.es

		switch bit {
		case port.High:
			value = value<<1 | 1
			d.emitter.Put(bsp.ss, bsp.es, Bit, []string{"1"})
		case port.Low:
			value = value << 1
			d.emitter.Put(bsp.ss, bsp.es, Bit, []string{"0"})
		default:
			valid = false
			d.emitter.Put(bsp.ss, bsp.es, Bit, []string{"Invalid", "I"})
		}
	}

	if !valid {
		return 0, false, sp, nil
	}
	return value, true, sp, nil
}

// readStart reads the start code byte. A wrong or undecodable start code is
// annotated as Invalid and retained; it does not abort decoding.
func (d *Decoder) readStart() error {
	b, ok, sp, err := d.readByte()
	if err != nil {
		return err
	}

	d.packet.StartCode = b
	d.packet.StartValid = ok

	if ok && b == StartCode {
		d.emitter.Put(sp.ss, sp.es, Start,
			[]string{fmt.Sprintf("Start (0x%02X)", b), "Start", "S"})
	} else {
		d.emitter.Put(sp.ss, sp.es, Start, []string{"Invalid", "I"})
	}

	d.state = start
	return nil
}

// readData reads the four payload bytes. Every slot keeps its position and
// validity flag, so an undecodable byte never shifts the function code or
// argument positions. Valid bytes are labeled individually, the whole block
// gets one aggregate annotation.
func (d *Decoder) readData() error {
	var agg span

	for i := 0; i < payloadLen; i++ {
		b, ok, sp, err := d.readByte()
		if err != nil {
			return err
		}

		if i == 0 {
			agg.ss = sp.ss
		}
		if i == payloadLen-1 {
			agg.es = sp.es
		}

		d.packet.Payload[i] = PayloadByte{Value: b, Valid: ok}
		if !ok {
			continue
		}

		label := []string{fmt.Sprintf("0x%02X", b)}
		if i == 0 {
			d.emitter.Put(sp.ss, sp.es, Function, label)
		} else {
			d.emitter.Put(sp.ss, sp.es, Args, label)
		}
	}

	d.emitter.Put(agg.ss, agg.es, Data, []string{"Data[0-3]", "D"})
	d.state = data
	return nil
}

// readChecksum reads the checksum byte and compares it to the modulo-256 sum
// of the valid payload slots. An undecodable checksum byte skips the
// comparison entirely; its bits have already been annotated as Invalid.
func (d *Decoder) readChecksum() error {
	b, ok, sp, err := d.readByte()
	if err != nil {
		return err
	}

	d.packet.Checksum = PayloadByte{Value: b, Valid: ok}
	d.packet.ChecksumOK = false

	if ok {
		if checkSum8(d.packet.Payload) == b {
			d.packet.ChecksumOK = true
			d.emitter.Put(sp.ss, sp.es, Data,
				[]string{fmt.Sprintf("CHECKSUM 0x%02X", b)})
		} else {
			d.emitter.Put(sp.ss, sp.es, Data,
				[]string{"CHECKSUM Invalid", "Invalid", "I"})
		}
	}

	d.state = sum
	return nil
}

// finish waits for the carrier to return high, accounts the packet and
// resets the packet-scoped state.
func (d *Decoder) finish() error {
	es, err := d.source.Wait(port.Rising)
	if err != nil {
		return err
	}

	d.packet.End = es
	d.packet.Time = time.Now()

	pass, counted := d.stats.observe(&d.packet)
	if counted {
		result := "FAIL"
		if pass {
			result = "PASS"
		}
		snap := d.stats.Snapshot()
		d.emitter.Put(d.packet.Start, es, Debug,
			[]string{fmt.Sprintf("stats (fail/total): %s, %d/%d, %.2f%%",
				result, snap.Fail, snap.Total, snap.PassRate)})
	}

	select {
	case d.C <- d.packet:
	default:
		debug.TraceLog.Printf("no packet listener, packet at sample %d dropped", d.packet.Start)
	}

	d.state = idle
	return nil
}

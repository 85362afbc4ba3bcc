package jrc

import "time"

// PayloadByte is one decoded byte slot. A slot stays in place even when its
// bits could not be recovered, so payload positions never shift.
type PayloadByte struct {
	Value byte `json:"value"`
	Valid bool `json:"valid"`
}

// Packet is one fully cycled protocol packet. Start and End locate the packet
// in the signal, from the first preamble edge to the rising edge that returns
// the carrier to idle.
type Packet struct {
	Time          time.Time      `json:"time"`
	Start         uint64         `json:"start"`
	End           uint64         `json:"end"`
	PreambleValid bool           `json:"preambleValid"`
	StartCode     byte           `json:"startCode"`
	StartValid    bool           `json:"startValid"`
	Payload       [4]PayloadByte `json:"payload"`
	Checksum      PayloadByte    `json:"checksum"`
	ChecksumOK    bool           `json:"checksumOK"`
}

// PayloadComplete reports whether all four payload slots decoded cleanly.
func (p *Packet) PayloadComplete() bool {
	for _, b := range p.Payload {
		if !b.Valid {
			return false
		}
	}
	return true
}

// PayloadValue packs the payload big-endian into a single 32 bit value.
// Only meaningful when PayloadComplete holds.
func (p *Packet) PayloadValue() uint32 {
	var v uint32
	for _, b := range p.Payload {
		v = v<<8 | uint32(b.Value)
	}
	return v
}

// Matches reports whether the packet would count as a pass against the given
// target payload: complete payload equal to the target, matching checksum and
// the expected start code.
func (p *Packet) Matches(target uint32) bool {
	return p.PayloadComplete() && p.PayloadValue() == target &&
		p.ChecksumOK && p.StartValid && p.StartCode == StartCode
}

// checkSum8 is the modulo-256 sum of the valid payload slots.
func checkSum8(payload [4]PayloadByte) byte {
	var sum int
	for _, b := range payload {
		if b.Valid {
			sum += int(b.Value)
		}
	}
	return byte(sum & 0xFF)
}

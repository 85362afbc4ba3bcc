package jrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validPayload(b0, b1, b2, b3 byte) [4]PayloadByte {
	return [4]PayloadByte{
		{Value: b0, Valid: true},
		{Value: b1, Valid: true},
		{Value: b2, Valid: true},
		{Value: b3, Valid: true},
	}
}

func TestPayloadValue(t *testing.T) {
	p := Packet{Payload: validPayload(0x01, 0x02, 0x03, 0x04)}
	assert.Equal(t, uint32(0x01020304), p.PayloadValue())
	assert.True(t, p.PayloadComplete())
}

func TestCheckSum8(t *testing.T) {
	assert.Equal(t, byte(0x0A), checkSum8(validPayload(1, 2, 3, 4)))
	assert.Equal(t, byte(0xFC), checkSum8(validPayload(0xFF, 0xFF, 0xFF, 0xFF)))

	// invalid slots are left out of the sum
	payload := validPayload(1, 2, 3, 4)
	payload[2].Valid = false
	assert.Equal(t, byte(0x07), checkSum8(payload))
}

func TestMatches(t *testing.T) {
	p := Packet{
		Payload:    validPayload(1, 2, 3, 4),
		StartCode:  StartCode,
		StartValid: true,
		ChecksumOK: true,
	}
	assert.True(t, p.Matches(0x01020304))
	assert.False(t, p.Matches(0x01020305))

	bad := p
	bad.ChecksumOK = false
	assert.False(t, bad.Matches(0x01020304))

	bad = p
	bad.StartCode = 0x4D
	assert.False(t, bad.Matches(0x01020304))

	bad = p
	bad.Payload[1].Valid = false
	assert.False(t, bad.Matches(0x01020304))
}

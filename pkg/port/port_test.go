package port

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(events ...Event) *Source {
	c := make(chan Event, len(events))
	for _, e := range events {
		c <- e
	}
	close(c)
	return NewSource(c)
}

func TestWaitEdges(t *testing.T) {
	s := feed(
		Event{Sample: 10, Type: FallingEdge},
		Event{Sample: 20, Type: RisingEdge},
		Event{Sample: 30, Type: FallingEdge},
	)

	n, err := s.Wait(Falling)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), n)

	n, err = s.Wait(Rising)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), n)

	n, err = s.Wait(Falling)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), n)
}

func TestWaitLevelAlreadyHeld(t *testing.T) {
	s := feed(
		Event{Sample: 10, Type: FallingEdge},
		Event{Sample: 20, Type: RisingEdge},
	)

	// the line idles high, LevelHigh holds immediately at sample 0
	n, err := s.Wait(LevelHigh)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	n, err = s.Wait(Falling)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), n)

	// after the falling edge, LevelLow holds without consuming an event
	n, err = s.Wait(LevelLow)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), n)

	n, err = s.Wait(LevelHigh)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), n)
}

func TestWaitLevelConsumesUntilHeld(t *testing.T) {
	s := feed(
		Event{Sample: 5, Type: FallingEdge},
		Event{Sample: 9, Type: RisingEdge},
	)

	n, err := s.Wait(LevelLow)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)
}

func TestWaitExhausted(t *testing.T) {
	s := feed(Event{Sample: 10, Type: FallingEdge})

	_, err := s.Wait(Falling)
	require.NoError(t, err)

	n, err := s.Wait(Rising)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, uint64(10), n)
}

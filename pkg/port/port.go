// Package port holds the definition of a physical line and the demand-driven
// edge source the decoder pulls from.
package port

import "io"

// EventType indicates the type of change to the line active state.
//
// Note that for active low lines a low line level results in a high active
// state.
type EventType int

const (
	_ EventType = iota
	// RisingEdge indicates an inactive to active event (low to high).
	RisingEdge
	// FallingEdge indicates an active to inactive event (high to low).
	FallingEdge
)

// Event is one observed line transition, located by its sample index.
type Event struct {
	// Sample is the sample index the event was detected at.
	Sample uint64
	// The type of state change event this structure represents.
	Type EventType
}

type StateType int

const (
	// High indicates a logical 1.
	High StateType = 1
	// Low indicates a logical 0.
	Low StateType = 0
	// Invalid indicates an unknown or invalid state.
	Invalid StateType = -1
)

// Predicate selects the line condition a Wait call blocks for.
type Predicate int

const (
	// Falling waits for the next high to low transition.
	Falling Predicate = iota
	// Rising waits for the next low to high transition.
	Rising
	// LevelLow is satisfied as soon as the line is low, possibly immediately.
	LevelLow
	// LevelHigh is satisfied as soon as the line is high, possibly immediately.
	LevelHigh
)

// EdgeSource delivers the sample index at which a line condition became true.
// Wait blocks on input availability, not on time. When the underlying event
// stream is exhausted, Wait returns io.EOF.
type EdgeSource interface {
	Wait(p Predicate) (uint64, error)
}

// Source adapts a channel of edge events to the blocking EdgeSource contract.
// It tracks the line level across calls so that level predicates can be
// answered without consuming an event.
type Source struct {
	// rx channel receives the edge events of the line.
	rx <-chan Event
	// level is the line state after the last consumed event.
	level StateType
	// sample is the sample index of the last consumed event.
	sample uint64
}

// NewSource initials a new edge source.
// The line is assumed to idle high until the first event is observed.
func NewSource(c <-chan Event) *Source {
	return &Source{
		rx:    c,
		level: High,
	}
}

// Wait consumes edge events until the predicate is satisfied and returns the
// sample index reached. Level predicates that already hold return the current
// position without consuming an event.
func (s *Source) Wait(p Predicate) (uint64, error) {
	switch p {
	case LevelLow:
		if s.level == Low {
			return s.sample, nil
		}
	case LevelHigh:
		if s.level == High {
			return s.sample, nil
		}
	}

	for evt := range s.rx {
		s.sample = evt.Sample

		switch evt.Type {
		case FallingEdge:
			s.level = Low
		case RisingEdge:
			s.level = High
		}

		switch p {
		case Falling:
			if evt.Type == FallingEdge {
				return s.sample, nil
			}
		case Rising:
			if evt.Type == RisingEdge {
				return s.sample, nil
			}
		case LevelLow:
			if s.level == Low {
				return s.sample, nil
			}
		case LevelHigh:
			if s.level == High {
				return s.sample, nil
			}
		}
	}

	return s.sample, io.EOF
}

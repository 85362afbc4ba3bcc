package jrc

import "sync"

// Statistics accumulates pass/fail counts of decoded packets against a
// configured target payload. It is the only state that survives a packet
// cycle; the mutex serializes snapshot reads from other goroutines against
// the single decoding goroutine.
type Statistics struct {
	mu sync.Mutex

	// target is the expected payload, big-endian interpreted.
	// A zero target disables pass/fail accounting.
	target  uint32
	enabled bool

	total int
	pass  int
	fail  int
}

// Snapshot is the exported state of the statistics accounting.
type Snapshot struct {
	Enabled  bool    `json:"enabled"`
	Target   uint32  `json:"target"`
	Total    int     `json:"total"`
	Pass     int     `json:"pass"`
	Fail     int     `json:"fail"`
	PassRate float64 `json:"passRate"`
}

func newStatistics(target uint32) *Statistics {
	return &Statistics{
		target:  target,
		enabled: target != 0,
	}
}

// observe accounts one completed packet. The total is counted regardless of
// whether pass/fail accounting is enabled. A packet passes when the complete
// payload equals the target, the checksum matched and the start code was the
// expected one.
func (s *Statistics) observe(p *Packet) (pass bool, counted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	if !s.enabled {
		return false, false
	}

	pass = p.Matches(s.target)

	if pass {
		s.pass++
	} else {
		s.fail++
	}

	return pass, true
}

// Snapshot returns the current counters and pass rate.
func (s *Statistics) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Enabled: s.enabled,
		Target:  s.target,
		Total:   s.total,
		Pass:    s.pass,
		Fail:    s.fail,
	}
	if s.total > 0 {
		snap.PassRate = float64(s.pass) / float64(s.total) * 100
	}
	return snap
}

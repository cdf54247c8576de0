package sequencer

import "time"

// SetClock replaces the time source.
func (s *Sequencer) SetClock(now func() time.Time) {
	s.now = now
}

// SetCPUCount replaces the CPU counter.
func (s *Sequencer) SetCPUCount(n int) {
	s.cpuCount = func() int { return n }
}

package core

import "testing"

// TestSpeed_CyclesForInterval verifies the cycle budget scales
// linearly with elapsed time and selected kHz (§4.9 step 1).
func TestSpeed_CyclesForInterval(t *testing.T) {
	testCases := []struct {
		name      string
		khz       int
		elapsedMs float64
		want      int
	}{
		{"standard 1ms", StandardKHz, 1, 1023},
		{"standard 16ms", StandardKHz, 16, 16368},
		{"accelerated 1ms", AcceleratedKHz, 1, 4092},
		{"zero khz", 0, 10, 0},
	}
	for _, tc := range testCases {
		s := Speed{KHz: tc.khz}
		if got := s.CyclesForInterval(tc.elapsedMs); got != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

// TestDefaultSpeed_IsStandardRate verifies DefaultSpeed starts
// unaccelerated.
func TestDefaultSpeed_IsStandardRate(t *testing.T) {
	if got := DefaultSpeed().KHz; got != StandardKHz {
		t.Errorf("DefaultSpeed: expected %d kHz, got %d", StandardKHz, got)
	}
}

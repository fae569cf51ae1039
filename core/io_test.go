package core

import "testing"

// TestSoftSwitches_KeyDownSetsStrobe verifies KeyDown sets the ASCII
// code with the strobe bit, and a $C000 read doesn't clear it while a
// $C010 read/write does (§4.5).
func TestSoftSwitches_KeyDownSetsStrobe(t *testing.T) {
	s := NewSoftSwitches(nil)
	s.KeyDown('A')

	if got := s.Read(0x00); got != ('A' | 0x80) {
		t.Errorf("$C000 read: expected 0x%02X, got 0x%02X", 'A'|0x80, got)
	}
	if got := s.Read(0x00); got&0x80 == 0 {
		t.Error("$C000 read: strobe should still be set after a plain read")
	}
	s.Read(0x10) // clears strobe
	if got := s.Read(0x00); got&0x80 != 0 {
		t.Error("$C010 read: expected strobe cleared")
	}
}

// TestSoftSwitches_SetKeyBufferDrainsSequentially verifies a queued key
// buffer is fed one character at a time as the strobe clears, with
// newlines translated to carriage returns.
func TestSoftSwitches_SetKeyBufferDrainsSequentially(t *testing.T) {
	s := NewSoftSwitches(nil)
	s.SetKeyBuffer("AB\n")

	first := s.Read(0x00) & 0x7F
	if first != 'A' {
		t.Errorf("first buffered key: expected 'A', got %q", first)
	}
	s.Read(0x10)
	second := s.Read(0x00) & 0x7F
	if second != 'B' {
		t.Errorf("second buffered key: expected 'B', got %q", second)
	}
	s.Read(0x10)
	third := s.Read(0x00) & 0x7F
	if third != '\r' {
		t.Errorf("third buffered key: expected CR, got %q", third)
	}
}

// TestSoftSwitches_ToggleSpeakerRecordsAudioEvent verifies a $C030
// access toggles the speaker and appends a timestamped event, drained
// exactly once by DrainAudio (§4.5, §9 "audio as event stream").
func TestSoftSwitches_ToggleSpeakerRecordsAudioEvent(t *testing.T) {
	s := NewSoftSwitches(nil)
	cycle := uint64(100)
	s.SetCycleClock(func() uint64 { return cycle })

	s.Read(0x30)
	cycle = 200
	s.Write(0x30, 0)

	events := s.DrainAudio()
	if len(events) != 2 {
		t.Fatalf("DrainAudio: expected 2 events, got %d", len(events))
	}
	if events[0].Cycle != 100 || !events[0].Level {
		t.Errorf("event 0: expected {100,true}, got %+v", events[0])
	}
	if events[1].Cycle != 200 || events[1].Level {
		t.Errorf("event 1: expected {200,false}, got %+v", events[1])
	}
	if more := s.DrainAudio(); len(more) != 0 {
		t.Error("DrainAudio: expected empty after drain")
	}
}

// TestSoftSwitches_PaddleTimerExpiry verifies a paddle's one-shot timer
// bit stays set until PaddleMaxCycles*position cycles have elapsed
// since the last strobe (§4.5).
func TestSoftSwitches_PaddleTimerExpiry(t *testing.T) {
	s := NewSoftSwitches(nil)
	cycle := uint64(0)
	s.SetCycleClock(func() uint64 { return cycle })
	s.Paddle(0, 1.0)
	s.Write(0x70, 0) // strobe

	cycle = PaddleMaxCycles / 2
	if got := s.Read(0x64); got&0x80 == 0 {
		t.Error("paddle 0 at half timer: expected bit7 set (still running)")
	}
	cycle = PaddleMaxCycles + 10
	if got := s.Read(0x64); got&0x80 != 0 {
		t.Error("paddle 0 past timer expiry: expected bit7 clear")
	}
}

// TestSoftSwitches_ButtonsTrackDownUp verifies ButtonDown/ButtonUp are
// reflected by the $C061-$C063 reads.
func TestSoftSwitches_ButtonsTrackDownUp(t *testing.T) {
	s := NewSoftSwitches(nil)
	s.ButtonDown(0)
	if got := s.Read(0x61); got != 0x80 {
		t.Errorf("button 0 down: expected 0x80, got 0x%02X", got)
	}
	s.ButtonUp(0)
	if got := s.Read(0x61); got != 0x00 {
		t.Errorf("button 0 up: expected 0x00, got 0x%02X", got)
	}
}

// TestSoftSwitches_WriteVideoLatchParitySelects verifies $C050-$C057
// odd/even address parity sets/clears the corresponding VideoPages
// latch (§4.6, §8 testable property).
func TestSoftSwitches_WriteVideoLatchParitySelects(t *testing.T) {
	video := NewVideoPages()
	s := NewSoftSwitches(video)

	s.Write(0x50, 0) // even -> text (graphics off)
	if video.graphics {
		t.Error("$C050: expected graphics false")
	}
	s.Write(0x51, 0) // odd -> graphics
	if !video.graphics {
		t.Error("$C051: expected graphics true")
	}
}

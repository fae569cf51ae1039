package core

import "testing"

// TestDisk2_SetBinaryRejectsWrongSize verifies a malformed dsk/do/po
// image is rejected without mutating the drive (§6 ImageFormat).
func TestDisk2_SetBinaryRejectsWrongSize(t *testing.T) {
	d := NewDisk2(0xE0)
	if ok := d.SetBinary(0, "bad", "dsk", make([]byte, 100)); ok {
		t.Error("SetBinary: expected false for undersized dsk image")
	}
	if d.Metadata(0) != nil {
		t.Error("SetBinary: drive should remain empty after a rejected image")
	}
}

// TestDisk2_SetBinaryDSKRoundTrip verifies mounting a dsk image and
// reading it back via GetBinary recovers the same bytes.
func TestDisk2_SetBinaryDSKRoundTrip(t *testing.T) {
	d := NewDisk2(0xE0)
	image := make([]byte, dsk35ImageSize)
	for i := range image {
		image[i] = byte(i * 3)
	}
	if ok := d.SetBinary(0, "disk1", "dsk", image); !ok {
		t.Fatal("SetBinary: expected true for a valid dsk image")
	}
	out := d.GetBinary(0)
	if len(out) != len(image) {
		t.Fatalf("GetBinary length: expected %d, got %d", len(image), len(out))
	}
	for i := range image {
		if out[i] != image[i] {
			t.Fatalf("GetBinary byte %d: expected 0x%02X, got 0x%02X", i, image[i], out[i])
			break
		}
	}
}

// TestDisk2_StepperTracksPhaseDirection verifies the stepper advances
// or retreats by one quarter-track per phase step depending on direction,
// relative to the last energized phase rather than absolute track
// position (§4.7 "Stepper").
func TestDisk2_StepperTracksPhaseDirection(t *testing.T) {
	d := NewDisk2(0xE0)
	image := make([]byte, dsk35ImageSize)
	d.SetBinary(0, "disk1", "dsk", image)
	drive := &d.drives[0]

	// Stepping phases 0 -> 1 -> 2 -> 3 -> 0 repeatedly should move inward.
	phases := []int{0, 1, 2, 3, 0, 1}
	for _, p := range phases {
		d.access(uint8(p*2+1), 0, true) // odd offset energizes the phase
	}
	if drive.Track <= 0 {
		t.Errorf("Track after forward stepping: expected > 0, got %d", drive.Track)
	}

	trackAfterForward := drive.Track
	// Now step backward: 1 -> 0 -> 3 -> 2.
	backward := []int{1, 0, 3, 2}
	for _, p := range backward {
		d.access(uint8(p*2+1), 0, true)
	}
	if drive.Track >= trackAfterForward {
		t.Errorf("Track after backward stepping: expected < %d, got %d", trackAfterForward, drive.Track)
	}
}

// TestDisk2_StepperNeverUndershootsZero verifies the track counter
// clamps at 0 instead of going negative.
func TestDisk2_StepperNeverUndershootsZero(t *testing.T) {
	d := NewDisk2(0xE0)
	image := make([]byte, dsk35ImageSize)
	d.SetBinary(0, "disk1", "dsk", image)
	drive := &d.drives[0]

	// From a fresh mount (lastPhase -1), step backward repeatedly.
	backward := []int{3, 2, 1, 0, 3, 2}
	for _, p := range backward {
		d.access(uint8(p*2+1), 0, true)
	}
	if drive.Track < 0 {
		t.Errorf("Track: expected >= 0, got %d", drive.Track)
	}
}

// TestDisk2_ReadWriteLatchQ7Q6 verifies the combined Q6/Q7 latch
// decode: Q7=0 is read mode, Q7=1 turns a write access to the latch
// switches into a nibble store (§4.7 "Latch & Q6/Q7").
func TestDisk2_ReadWriteLatchQ7Q6(t *testing.T) {
	d := NewDisk2(0xE0)
	image := make([]byte, dsk35ImageSize)
	d.SetBinary(0, "disk1", "dsk", image)
	drive := &d.drives[0]
	drive.MotorOn = true
	drive.WriteProtect = false
	drive.Latch = 0xAB

	d.access(0xF, 0, true) // Q7=1 (write mode)
	d.access(0xD, 0, true) // Q6=1
	d.access(0xC, 0x42, true)
	if drive.NibbleStream[drive.Head] != 0x42 {
		t.Errorf("write latch: expected nibble 0x42 written at head, got 0x%02X", drive.NibbleStream[drive.Head])
	}

	d.access(0xF, 0, true) // Q7 still 1
	d.access(0xE, 0, true) // Q7=0 (read mode)
	got := d.access(0xC, 0, false)
	if got != drive.Latch {
		t.Errorf("read latch: expected 0x%02X, got 0x%02X", drive.Latch, got)
	}
}

package core

import "testing"

func newTestEmulator() *Emulator {
	sysROM := make([]byte, 0x3000)
	sysROM[0x2FFC] = 0x00 // reset vector -> $0300
	sysROM[0x2FFD] = 0x03
	return NewEmulator(Options{SystemROM: sysROM})
}

// TestNewEmulator_ConstructsWithoutPanicAndResetsCPU verifies
// construction wires the bus without a BusConflict and leaves the CPU
// at the ROM's reset vector.
func TestNewEmulator_ConstructsWithoutPanicAndResetsCPU(t *testing.T) {
	e := newTestEmulator()
	if got := e.GetCPU().PC(); got != 0x0300 {
		t.Errorf("PC after construction: expected 0x0300, got 0x%04X", got)
	}
}

// TestEmulator_RunTickNoopWhenStopped verifies RunTick does nothing
// before Run() is called (§5).
func TestEmulator_RunTickNoopWhenStopped(t *testing.T) {
	e := newTestEmulator()
	e.RunTick(16, 16)
	if e.GetStats().Frames != 0 {
		t.Error("RunTick while stopped: expected no frame counted")
	}
}

// TestEmulator_RunTickAdvancesStatsWhileRunning verifies Run()+RunTick
// steps the CPU and increments the frame counter (§4.9).
func TestEmulator_RunTickAdvancesStatsWhileRunning(t *testing.T) {
	e := newTestEmulator()
	bus := e.GetBus()
	for i := uint16(0x0300); i < 0x0400; i++ {
		bus.Write(i, 0xEA) // NOP sled
	}
	e.Run()
	e.RunTick(0.1, 0.1) // small budget, stays within the NOP sled

	if e.GetStats().Frames != 1 {
		t.Errorf("Frames after one RunTick: expected 1, got %d", e.GetStats().Frames)
	}
	if e.GetCPU().Cycles() == 0 {
		t.Error("RunTick: expected the CPU to have executed some cycles")
	}
}

// TestEmulator_StopHaltsFrameCounting verifies Stop() prevents further
// RunTick progress.
func TestEmulator_StopHaltsFrameCounting(t *testing.T) {
	e := newTestEmulator()
	bus := e.GetBus()
	for i := uint16(0x0300); i < 0x0400; i++ {
		bus.Write(i, 0xEA)
	}
	e.Run()
	e.RunTick(0.1, 0.1)
	e.Stop()
	framesAfterFirst := e.GetStats().Frames
	e.RunTick(0.1, 0.1)
	if e.GetStats().Frames != framesAfterFirst {
		t.Error("RunTick after Stop: expected frame count unchanged")
	}
}

// TestEmulator_GetStateSetStateRoundTrip verifies the control surface's
// save/restore pair recovers RAM contents across two separate emulator
// instances built with the same ROM (§6, §8).
func TestEmulator_GetStateSetStateRoundTrip(t *testing.T) {
	e1 := newTestEmulator()
	e1.GetBus().Write(0x0500, 0x77)
	data := e1.GetState()

	e2 := newTestEmulator()
	if err := e2.SetState(data); err != nil {
		t.Fatalf("SetState: unexpected error %v", err)
	}
	if got := e2.GetBus().Read(0x0500); got != 0x77 {
		t.Errorf("restored RAM via emulator surface: expected 0x77, got 0x%02X", got)
	}
}

// TestEmulator_DiskSurfaceUses1BasedDriveNumbers verifies SetBinary/
// GetBinary/GetMetadata operate on drive numbers 1 and 2, delegating to
// the underlying 0-based Disk2 (§6).
func TestEmulator_DiskSurfaceUses1BasedDriveNumbers(t *testing.T) {
	e := newTestEmulator()
	image := make([]byte, dsk35ImageSize)
	image[0] = 0x42

	if ok := e.SetBinary(1, "disk1", "dsk", image); !ok {
		t.Fatal("SetBinary(drive=1): expected true")
	}
	if e.GetMetadata(1) == nil {
		t.Error("GetMetadata(drive=1): expected non-nil after mounting")
	}
	if e.GetMetadata(2) != nil {
		t.Error("GetMetadata(drive=2): expected nil, nothing mounted there")
	}
	out := e.GetBinary(1)
	if len(out) == 0 || out[0] != 0x42 {
		t.Error("GetBinary(drive=1): expected round-tripped image")
	}
}

// TestEmulator_PlainIISkipsVBLServicing verifies Options.PlainII (§6
// construction option "e") selects a plain Apple II machine whose
// run-loop never services VBL, since $C019 doesn't exist without the
// IIe's MMU in front of it.
func TestEmulator_PlainIISkipsVBLServicing(t *testing.T) {
	sysROM := make([]byte, 0x3000)
	sysROM[0x2FFC] = 0x00
	sysROM[0x2FFD] = 0x03
	e := NewEmulator(Options{SystemROM: sysROM, PlainII: true})
	bus := e.GetBus()
	for i := uint16(0x0300); i < 0x0400; i++ {
		bus.Write(i, 0xEA)
	}
	e.Run()
	e.RunTick(0.1, 0.1)

	if e.mmu.vblPending {
		t.Error("plain II: vblPending should never be set since ResetVB is never called")
	}
	// Even if something had set it, a plain-II $C019 read shouldn't
	// reflect it: the MMU's latch-status decode is bypassed entirely
	// in favor of SoftSwitches' own (VBL-unaware) dispatch, which reads
	// the unassigned $C019 as floating-bus 0xFF.
	e.mmu.vblPending = true
	if got := bus.Read(0xC019); got != 0xFF {
		t.Errorf("plain II: $C019 read should fall through to SoftSwitches' 0xFF, not the IIe VBL latch, got 0x%02X", got)
	}
}

// TestEmulator_UpdateKHzAdjustsRunLoopSpeed verifies UpdateKHz updates
// both the I/O latch and the run-loop's cycle-budget rate.
func TestEmulator_UpdateKHzAdjustsRunLoopSpeed(t *testing.T) {
	e := newTestEmulator()
	e.UpdateKHz(AcceleratedKHz)
	if got := e.GetIO().KHz(); got != AcceleratedKHz {
		t.Errorf("IO KHz: expected %d, got %d", AcceleratedKHz, got)
	}
	if e.speed.KHz != AcceleratedKHz {
		t.Errorf("run-loop speed: expected %d, got %d", AcceleratedKHz, e.speed.KHz)
	}
}

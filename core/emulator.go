package core

// Options are the construction-time parameters (§6 "Construction
// options"). Enhanced selects 65C02 instruction semantics; MultiScreen
// sets VideoPages' MultiScreen flag, which Blit does not consult (only
// the selected display page is rendered); SystemROM/SlotROM/C800ROM are the raw ROM
// images the MMU serves at $D000-$FFFF, $C100-$C7FF and $C800-$CFFF
// respectively; CharacterRom is passed through to VideoPages; Tick is
// invoked once per run-loop quantum after the frame is produced.
type Options struct {
	Enhanced       bool
	MultiScreen    bool
	SystemROM      []byte
	SlotROM        []byte
	C800ROM        []byte
	CharacterRom   []byte
	DiskSlot       uint8 // 1-7, default 6; Disk II's I/O window is $C0{0x80+slot*0x10}-{+0x0F}
	SmartPortImage []byte
	Tick           func()

	// PlainII selects a plain Apple II machine instead of the default
	// IIe-class one (§6 construction option "e", inverted: PlainII is
	// true where spec's e is false). The $C0 page drops language-card
	// and MMU-latch-status decoding and the run-loop skips VBL
	// servicing, since neither exists without the IIe's MMU.
	PlainII bool
}

// Stats is the run-loop's monotonic counters (§3 "Run stats").
type Stats struct {
	Frames         uint64
	RenderedFrames uint64
}

// smartPortTrapAddr is the firmware entry point the run-loop watches
// for: real hardware reaches the SmartPort driver through a JSR into
// the slot's $Cn00 ROM, which this core doesn't execute as real 6502
// code (no such ROM image is modeled bit-for-bit) — instead, reaching
// this address is treated as a software trap straight into
// SmartPort.Dispatch, the same shortcut many 6502-based emulators take
// for slot firmware calls that would otherwise require modeling an
// entire ROM driver.
const smartPortTrapAddr = 0xC700

// Emulator is the top-level object wiring CPU, bus, MMU, I/O, video,
// Disk II and (optionally) SmartPort together, and exposing the
// control/disk/I/O surfaces of §6.
type Emulator struct {
	bus       *Bus
	cpu       *Cycle6502
	mmu       *MMU
	io        *SoftSwitches
	video     *VideoPages
	disk      *Disk2
	smartPort *SmartPort
	speed     Speed
	stats     Stats
	tick      func()
	running   bool
	plainII   bool
}

// NewEmulator constructs a fully-wired IIe-class machine. Components
// are installed in the order the teacher's initEmulatorBase follows:
// bus first, then the page handlers that claim ranges of it, then the
// CPU that drives reads/writes through it.
func NewEmulator(opts Options) *Emulator {
	bus := NewBus()
	video := NewVideoPages()
	video.SetCharacterRom(opts.CharacterRom)
	video.MultiScreen(opts.MultiScreen)

	io := NewSoftSwitches(video)

	slot := opts.DiskSlot
	if slot == 0 {
		slot = 6
	}
	diskSlotBase := uint8(0xC0)
	diskOffLow := uint8(0x80 + int(slot)*0x10)
	disk := NewDisk2(diskSlotBase)

	mmu := NewMMU(opts.SystemROM, opts.SlotROM, opts.C800ROM, io, video)
	mmu.AttachDisk2(disk, diskOffLow, diskOffLow+0x0F)
	mmu.SetPlainII(opts.PlainII)
	video.SetMMU(mmu)

	if err := bus.AddPageHandler(mmu); err != nil {
		panic(err) // BusConflict is fatal at construction per §7
	}

	cpu := NewCycle6502(bus, opts.Enhanced)
	io.SetCycleClock(cpu.Cycles)

	e := &Emulator{
		bus:     bus,
		cpu:     cpu,
		mmu:     mmu,
		io:      io,
		video:   video,
		disk:    disk,
		speed:   DefaultSpeed(),
		tick:    opts.Tick,
		plainII: opts.PlainII,
	}
	if len(opts.SmartPortImage) > 0 {
		e.smartPort = NewSmartPort(bus, opts.SmartPortImage)
	}
	cpu.Reset()
	return e
}

// Run starts the cooperative run-loop; RunTick must be called
// repeatedly by the host's animation scheduler (§4.9, §5).
func (e *Emulator) Run() { e.running = true }

// Stop cancels the run-loop; the in-flight instruction still completes
// since the CPU stepper only yields between instructions (§5).
func (e *Emulator) Stop() { e.running = false }

// Reset asserts a synchronous RESET, safe while running or stopped.
func (e *Emulator) Reset() { e.cpu.Reset() }

// Running reports whether Run() has been called without a matching Stop().
func (e *Emulator) Running() bool { return e.running }

// RunTick executes one scheduled quantum (§4.9): elapsedMs is the
// wall-clock time since the previous tick and intervalMs is the
// host's fixed animation interval, both supplied by the caller's
// scheduler (the core has no clock of its own, per §5/§9 "no global
// mutable state"). It computes the clamped cycle budget, steps the
// CPU, services VBL, blits video, and invokes the tick hook; speaker
// events are left queued for the host to collect with DrainAudio.
// No-op if stopped.
func (e *Emulator) RunTick(elapsedMs, intervalMs float64) {
	if !e.running {
		return
	}

	budget := e.speed.CyclesForInterval(elapsedMs)
	budgetCap := e.speed.CyclesForInterval(intervalMs)
	if budget > budgetCap {
		budget = budgetCap // clamp the catch-up budget to avoid a storm after tab-hide (§4.9 step 1)
	}
	if budget <= 0 {
		return
	}

	e.stepWithTraps(budget)
	e.disk.Tick(budget)
	if !e.plainII {
		e.mmu.ResetVB() // VBL at $C019 doesn't exist without the IIe's MMU (§4.9 step 3, §6 "e")
	}

	if e.io.Annunciator(0) {
		e.video.MultiScreen(true)
	}
	if e.video.Blit() {
		e.stats.RenderedFrames++
	}
	e.stats.Frames++
	if e.tick != nil {
		e.tick()
	}
}

// stepWithTraps runs stepCycles but pauses to service the SmartPort
// firmware trap whenever PC lands on it mid-budget.
func (e *Emulator) stepWithTraps(budget int) {
	if e.smartPort == nil {
		e.cpu.StepCycles(budget)
		return
	}
	executed := 0
	for executed < budget {
		if e.cpu.PC() == smartPortTrapAddr {
			e.serviceSmartPortTrap()
		}
		executed += e.cpu.Step()
	}
}

// serviceSmartPortTrap reads the command/unit/params the way the real
// calling convention passes them (command in A, unit in X, parameter
// list address in Y/A pair pushed by the caller before the JSR), runs
// the dispatch, stores the status in A, and pops the return address
// to simulate the RTS the real ROM routine would perform.
func (e *Emulator) serviceSmartPortTrap() {
	cs := e.cpu.GetState()
	paramsAddr := e.bus.LoadAddress(0x0100 + uint16(cs.SP) + 1)
	status := e.smartPort.Dispatch(cs.A, cs.X, paramsAddr)
	cs.A = status
	cs.SP += 2
	cs.PC = e.bus.LoadAddress(0x0100+uint16(cs.SP)-1) + 1
	e.cpu.SetState(cs)
}

// GetState/SetState implement the control surface's save-state pair.
func (e *Emulator) GetState() []byte { return Serialize(e.cpu, e.mmu, e.io, e.disk) }

func (e *Emulator) SetState(data []byte) error {
	return Deserialize(data, e.cpu, e.mmu, e.io, e.disk)
}

func (e *Emulator) GetCPU() *Cycle6502         { return e.cpu }
func (e *Emulator) GetIO() *SoftSwitches       { return e.io }
func (e *Emulator) GetVideoModes() *VideoPages { return e.video }
func (e *Emulator) GetStats() Stats            { return e.stats }
func (e *Emulator) GetDisk2() *Disk2           { return e.disk }
func (e *Emulator) GetBus() *Bus               { return e.bus }

// SetBinary/SetJSON/GetJSON/GetBinary/GetMetadata implement the disk
// surface (§6) on the drive numbering convention drive ∈ {1,2}.
func (e *Emulator) SetBinary(drive int, name, ext string, data []byte) bool {
	return e.disk.SetBinary(drive-1, name, ext, data)
}

func (e *Emulator) SetJSON(drive int, jsonStr string) bool {
	return e.disk.SetJSON(drive-1, jsonStr)
}

func (e *Emulator) GetJSON(drive int, pretty bool) string {
	return e.disk.GetJSON(drive-1, pretty)
}

func (e *Emulator) GetBinary(drive int) []byte {
	return e.disk.GetBinary(drive - 1)
}

func (e *Emulator) GetMetadata(drive int) map[string]any {
	return e.disk.Metadata(drive - 1)
}

// UpdateKHz/KeyDown/KeyUp/SetKeyBuffer/ButtonDown/ButtonUp/Paddle/
// Annunciator implement the I/O surface (§6) by delegating to
// SoftSwitches, adjusting the run-loop's own Speed to match
// updateKHz(k) so stepWithTraps' budget tracks the selected rate.
func (e *Emulator) UpdateKHz(khz int) {
	e.io.UpdateKHz(khz)
	e.speed.KHz = khz
}

func (e *Emulator) KeyDown(code uint8)       { e.io.KeyDown(code) }
func (e *Emulator) KeyUp()                   { e.io.KeyUp() }
func (e *Emulator) SetKeyBuffer(text string) { e.io.SetKeyBuffer(text) }
func (e *Emulator) ButtonDown(n int)         { e.io.ButtonDown(n) }
func (e *Emulator) ButtonUp(n int)           { e.io.ButtonUp(n) }
func (e *Emulator) Paddle(n int, v float64)  { e.io.Paddle(n, v) }
func (e *Emulator) Annunciator(n int) bool   { return e.io.Annunciator(n) }

// DrainAudio returns and clears the accumulated speaker-toggle events.
func (e *Emulator) DrainAudio() []AudioEvent { return e.io.DrainAudio() }

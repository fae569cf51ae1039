package core

import (
	go6502 "github.com/beevik/go6502/cpu"
)

// Interrupt vectors, shared with the reset/IRQ/NMI service routine.
const (
	vectorNMI   uint16 = 0xFFFA
	vectorReset uint16 = 0xFFFC
	vectorIRQ   uint16 = 0xFFFE
)

// CPUState is a snapshot of the register file and cycle counter, per
// §6 "State format" and §8 ("setState(getState()) == identity").
type CPUState struct {
	A, X, Y, SP uint8
	PC          uint16
	Status      uint8 // packed NV_BDIZC, per SavePS(false)
	Cycles      uint64
	IRQPending  bool
	NMIPending  bool
}

// Cycle6502 wraps github.com/beevik/go6502's cpu.CPU to provide
// cycle-accurate stepping and explicit interrupt servicing.
//
// go6502's own irq()/nmi() handling is unexported, so external code has
// no way to assert an interrupt line on it directly. Rather than fork
// the library, this wrapper services RESET/NMI/IRQ itself between
// instructions by manipulating the register file and bus directly —
// the same workaround emu.CycleZ80 uses for the EI-delay semantics
// github.com/koron-go/z80 doesn't model (push PC/status, set I, load
// the vector, all without touching library internals).
type Cycle6502 struct {
	cpu  *go6502.CPU
	bus  *Bus
	arch go6502.Architecture

	resetPending bool
	nmiPending   bool // edge-triggered, serviced once
	irqPending   bool // level-triggered, serviced while asserted and I=0

	lastDisasm string
}

// NewCycle6502 creates a CPU bound to bus. enhanced selects 65C02 mode
// (BRA/STZ/PHX/PLX/PHY/PLY/TRB/TSB, (zp) addressing, documented-NOP
// undocumented opcodes, N/Z-correcting decimal ADC/SBC); otherwise NMOS
// 6502 semantics apply.
func NewCycle6502(bus *Bus, enhanced bool) *Cycle6502 {
	arch := go6502.NMOS
	if enhanced {
		arch = go6502.CMOS
	}
	c := &Cycle6502{
		bus:          bus,
		arch:         arch,
		resetPending: true,
	}
	c.cpu = go6502.NewCPU(arch, bus)
	return c
}

// Reset services a RESET line assertion immediately: PC from
// $FFFC/$FFFD, D cleared, I set, SP set to $FD (§4.1). Safe to call
// while stopped or running.
func (c *Cycle6502) Reset() {
	c.resetPending = false
	reg := &c.cpu.Reg
	reg.Init()
	reg.SP = 0xFD
	reg.Decimal = false
	reg.InterruptDisable = true
	reg.PC = c.bus.LoadAddress(vectorReset)
	c.irqPending = false
	c.nmiPending = false
}

// IRQ asserts the level-triggered IRQ line. It remains pending until
// serviced with I=0; a device model (e.g. the VDP-equivalent VBL
// signal, were one wired to IRQ) is responsible for deasserting it.
func (c *Cycle6502) IRQ() { c.irqPending = true }

// ClearIRQ deasserts the IRQ line, e.g. once the device servicing it
// has been acknowledged.
func (c *Cycle6502) ClearIRQ() { c.irqPending = false }

// NMI asserts the edge-triggered NMI line; it is serviced exactly once.
func (c *Cycle6502) NMI() { c.nmiPending = true }

// servicePending runs the RESET/NMI/IRQ sequence between instructions,
// returning cycles consumed (0 if nothing was serviced).
func (c *Cycle6502) servicePending() int {
	if c.resetPending {
		c.Reset()
		return 7
	}
	if c.nmiPending {
		c.nmiPending = false
		c.pushInterrupt(vectorNMI, false)
		return 7
	}
	if c.irqPending && !c.cpu.Reg.InterruptDisable {
		c.pushInterrupt(vectorIRQ, false)
		return 7
	}
	return 0
}

// pushInterrupt pushes PC and status (B=brk) onto the stack, sets I,
// and loads PC from vector — the hardware interrupt sequence, applied
// directly since go6502 has no public hook for externally-triggered
// interrupts.
func (c *Cycle6502) pushInterrupt(vector uint16, brk bool) {
	reg := &c.cpu.Reg
	c.push8(uint8(reg.PC >> 8))
	c.push8(uint8(reg.PC))
	c.push8(reg.SavePS(brk))
	reg.InterruptDisable = true
	if c.arch == go6502.CMOS {
		reg.Decimal = false
	}
	reg.PC = c.bus.LoadAddress(vector)
}

func (c *Cycle6502) push8(v uint8) {
	c.bus.Write(0x0100+uint16(c.cpu.Reg.SP), v)
	c.cpu.Reg.SP--
}

// Step executes exactly one instruction (servicing a pending
// RESET/NMI/IRQ first, if any) and returns the cycles it consumed.
func (c *Cycle6502) Step() int {
	if n := c.servicePending(); n > 0 {
		return n
	}
	before := c.cpu.Cycles
	c.lastDisasm = disassemble(c.bus, c.cpu.Reg.PC)
	c.cpu.Step()
	return int(c.cpu.Cycles - before)
}

// StepCycles executes whole instructions until the cumulative cycle
// count has advanced by at least n, per §4.1 ("may overshoot by up to
// 7"). Returns the cycles actually executed.
func (c *Cycle6502) StepCycles(n int) int {
	executed := 0
	for executed < n {
		executed += c.Step()
	}
	return executed
}

// StepCyclesDebug behaves like StepCycles but invokes cb with a
// disassembly line after each instruction.
func (c *Cycle6502) StepCyclesDebug(n int, cb func(line string)) int {
	executed := 0
	for executed < n {
		executed += c.Step()
		if cb != nil {
			cb(c.lastDisasm)
		}
	}
	return executed
}

// Read performs a single bus read, for host tooling (e.g. memory
// inspectors) that wants CPU-perspective access without stepping.
func (c *Cycle6502) Read(addr uint16) uint8 { return c.bus.Read(addr) }

// Write performs a single bus write.
func (c *Cycle6502) Write(addr uint16, v uint8) { c.bus.Write(addr, v) }

// GetState snapshots the register file and cycle counter.
func (c *Cycle6502) GetState() CPUState {
	reg := &c.cpu.Reg
	return CPUState{
		A: reg.A, X: reg.X, Y: reg.Y, SP: reg.SP, PC: reg.PC,
		Status:     reg.SavePS(false),
		Cycles:     c.cpu.Cycles,
		IRQPending: c.irqPending,
		NMIPending: c.nmiPending,
	}
}

// SetState restores the register file and cycle counter.
func (c *Cycle6502) SetState(s CPUState) {
	reg := &c.cpu.Reg
	reg.A, reg.X, reg.Y, reg.SP, reg.PC = s.A, s.X, s.Y, s.SP, s.PC
	reg.RestorePS(s.Status)
	c.cpu.Cycles = s.Cycles
	c.irqPending = s.IRQPending
	c.nmiPending = s.NMIPending
	c.resetPending = false
}

// PC returns the current program counter.
func (c *Cycle6502) PC() uint16 { return c.cpu.Reg.PC }

// Cycles returns the cumulative executed-cycle counter.
func (c *Cycle6502) Cycles() uint64 { return c.cpu.Cycles }

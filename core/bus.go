package core

import "fmt"

// PageHandler owns a contiguous range of 256-byte pages and services
// reads/writes within it. Implementations may have side effects (video
// dirty bits, disk head advance, soft-switch latches).
type PageHandler interface {
	Read(page, offset uint8) uint8
	Write(page, offset uint8, v uint8)
	Start() uint8
	End() uint8
}

// Bus dispatches every CPU memory access to the page handler that owns
// the high byte of the address. Every page in [0,255] is claimed by
// exactly one handler at all times; the MMU, when present, is installed
// as the single handler for the entire range and routes internally.
type Bus struct {
	table [256]PageHandler
}

// NewBus creates an empty bus. AddPageHandler must be called to cover
// every page before use; unclaimed pages read as floating-bus $FF and
// swallow writes (see errors.go / §7 Runtime).
func NewBus() *Bus {
	return &Bus{}
}

// AddPageHandler claims pages start..end (inclusive) for h. Overlapping
// claims are a construction-time invariant violation (§7 BusConflict).
func (b *Bus) AddPageHandler(h PageHandler) error {
	start, end := h.Start(), h.End()
	for page := int(start); page <= int(end); page++ {
		if b.table[page] != nil {
			return fmt.Errorf("%w: page $%02X00 already claimed", ErrBusConflict, page)
		}
	}
	for page := int(start); page <= int(end); page++ {
		b.table[page] = h
	}
	return nil
}

// Read dispatches a bus read to the owning handler.
func (b *Bus) Read(addr uint16) uint8 {
	h := b.table[addr>>8]
	if h == nil {
		return 0xFF
	}
	return h.Read(uint8(addr>>8), uint8(addr))
}

// Write dispatches a bus write to the owning handler.
func (b *Bus) Write(addr uint16, v uint8) {
	h := b.table[addr>>8]
	if h == nil {
		return
	}
	h.Write(uint8(addr>>8), uint8(addr), v)
}

// LoadByte implements the beevik/go6502 cpu.Memory interface.
func (b *Bus) LoadByte(addr uint16) uint8 { return b.Read(addr) }

// StoreByte implements the beevik/go6502 cpu.Memory interface.
func (b *Bus) StoreByte(addr uint16, v uint8) { b.Write(addr, v) }

// LoadBytes implements the beevik/go6502 cpu.Memory interface, filling
// dst with consecutive bus reads starting at addr.
func (b *Bus) LoadBytes(addr uint16, dst []uint8) {
	for i := range dst {
		dst[i] = b.Read(addr + uint16(i))
	}
}

// StoreBytes implements the beevik/go6502 cpu.Memory interface.
func (b *Bus) StoreBytes(addr uint16, src []uint8) {
	for i, v := range src {
		b.Write(addr+uint16(i), v)
	}
}

// LoadAddress reads a little-endian 16-bit word from the bus, used for
// indirect addressing modes and interrupt/reset vectors.
func (b *Bus) LoadAddress(addr uint16) uint16 {
	lo := uint16(b.Read(addr))
	hi := uint16(b.Read(addr + 1))
	return lo | hi<<8
}

// StoreAddress writes a little-endian 16-bit word to the bus.
func (b *Bus) StoreAddress(addr uint16, v uint16) {
	b.Write(addr, uint8(v))
	b.Write(addr+1, uint8(v>>8))
}

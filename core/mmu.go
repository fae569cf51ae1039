package core

// MMU implements the Apple IIe's bank-switched memory map (§4.4). It is
// installed as the single PageHandler covering every page $00-$FF;
// rather than rewriting the bus's 256-entry table on every soft-switch
// write, it owns all storage directly and branches on its latch state
// at each access — trading a branch for eliminating table mutation and
// making state snapshots a straight struct copy (§9 "MMU as single
// handler").
type MMU struct {
	mainRAM [0xC000]uint8 // $0000-$BFFF main
	auxRAM  [0xC000]uint8 // $0000-$BFFF aux

	// Language card storage: 4K bank1, 4K bank2 (both mapped at
	// $D000-$DFFF depending on lcBank2), and the 8K bank shared by
	// both at $E000-$FFFF. Main and aux each have their own full set,
	// selected by ALTZP.
	mainLCBank1 [0x1000]uint8
	mainLCBank2 [0x1000]uint8
	mainLCUpper [0x2000]uint8
	auxLCBank1  [0x1000]uint8
	auxLCBank2  [0x1000]uint8
	auxLCUpper  [0x2000]uint8

	rom       *ROM // $D000-$FFFF system ROM (monitor/AppleSoft)
	slotROM   *ROM // $C100-$C7FF peripheral-card ROM space
	c800ROM   *ROM // $C800-$CFFF expansion ROM space
	io        *SoftSwitches
	videoPage *VideoPages

	// Language card latches ($C080-$C08F, §4.4)
	lcBank2    bool
	lcRead     bool
	lcWrite    bool
	lcPrevOdd  bool

	// Bank-switch / mode latches (§3 MMU bank state)
	altzp      bool // ALTZP: zero page/stack + LC routed to aux
	ramrd      bool // read $0200-$BFFF from aux
	ramwrt     bool // write $0200-$BFFF to aux
	col80Store bool // 80STORE
	page2      bool // PAGE2
	hires      bool // HIRES soft switch (also gates 80STORE's $2000 redirect)
	intcxrom   bool // internal ROM for $C100-$C7FF
	slotc3rom  bool // slot 3 ROM carve-out
	col80      bool // 80COL
	altchar    bool // ALTCHAR

	vblPending bool // set each frame by ResetVB, cleared on $C019 read

	disk        *Disk2 // optional: Disk II's own soft switches, carved out of the $C0 page
	diskOffLow  uint8
	diskOffHigh uint8

	plainII bool // true selects plain Apple II $C0 semantics (§4.4, §6 "e")
}

// AttachDisk2 routes the $C0 page offsets [diskOffLow, diskOffHigh]
// (the slot's I/O window, e.g. $E0-$EF for slot 6) to d instead of the
// general SoftSwitches handler.
func (m *MMU) AttachDisk2(d *Disk2, offLow, offHigh uint8) {
	m.disk = d
	m.diskOffLow = offLow
	m.diskOffHigh = offHigh
}

func (m *MMU) diskOffset(offset uint8) bool {
	return m.disk != nil && offset >= m.diskOffLow && offset <= m.diskOffHigh
}

// SetPlainII switches the $C0 page between IIe semantics (language-card
// latch decode at $C080-$C08F, MMU-latch bit-7 status at $C010-$C01F/
// $C019) and plain Apple II semantics, where none of that hardware
// exists and every $C0 access other than the Disk II carve-out goes
// straight to SoftSwitches, matching AsPageHandler's standalone
// behavior (§6 construction option "e"). RAM/ROM storage and video
// rendering are unaffected either way: a plain II never toggles the
// IIe-only bank latches, so mainRAM alone is exercised.
func (m *MMU) SetPlainII(v bool) { m.plainII = v }

// NewMMU creates an MMU wired to sysROM ($D000-$FFFF, 12KB), slotROM
// ($C100-$C7FF) and io/videoPage for soft-switch and framebuffer side
// effects.
func NewMMU(sysROM, slotROM, c800ROM []uint8, io *SoftSwitches, videoPage *VideoPages) *MMU {
	return &MMU{
		rom:       NewROM(0xD0, 0xFF, sysROM),
		slotROM:   NewROM(0xC1, 0xC7, slotROM),
		c800ROM:   NewROM(0xC8, 0xCF, c800ROM),
		io:        io,
		videoPage: videoPage,
	}
}

func (m *MMU) Start() uint8 { return 0x00 }
func (m *MMU) End() uint8   { return 0xFF }

// ResetVB is called once per frame boundary by the run-loop (§4.4,
// §4.9 step 3) to assert the VBL signal consumed by a $C019 read.
func (m *MMU) ResetVB() { m.vblPending = true }

func (m *MMU) Read(page, offset uint8) uint8 {
	addr := uint16(page)<<8 | uint16(offset)
	switch {
	case page == 0x00 || page == 0x01:
		if m.altzp {
			return m.auxRAM[addr]
		}
		return m.mainRAM[addr]
	case page < 0xC0:
		return m.readGeneral(addr)
	case page == 0xC0:
		return m.readSoftSwitch(offset)
	case page >= 0xC1 && page <= 0xC7:
		if m.intcxrom || (page == 0xC3 && !m.slotc3rom) {
			return m.slotROM.Read(page, offset)
		}
		return 0xFF // no peripheral card ROM is modeled; Disk II is reached only through its $C0 I/O window
	case page == 0xC8 || (page >= 0xC9 && page <= 0xCF):
		if m.intcxrom {
			return m.c800ROM.Read(page, offset)
		}
		return 0xFF
	case page >= 0xD0:
		return m.readLanguageCard(addr)
	}
	return 0xFF
}

func (m *MMU) Write(page, offset uint8, v uint8) {
	addr := uint16(page)<<8 | uint16(offset)
	switch {
	case page == 0x00 || page == 0x01:
		if m.altzp {
			m.auxRAM[addr] = v
		} else {
			m.mainRAM[addr] = v
		}
	case page < 0xC0:
		m.writeGeneral(addr, v)
	case page == 0xC0:
		m.writeSoftSwitch(offset, v)
	case page >= 0xC1 && page <= 0xCF:
		// Slot/expansion ROM space: writes swallowed (no card RAM modeled here).
	case page >= 0xD0:
		m.writeLanguageCard(addr, v)
	}
}

// readGeneral routes $0200-$BFFF, honoring 80STORE/PAGE2/HIRES display
// page redirection before falling back to RAMRD (§4.4).
func (m *MMU) readGeneral(addr uint16) uint8 {
	aux := m.auxForAccess(addr, m.ramrd)
	if aux {
		v := m.auxRAM[addr]
		return v
	}
	return m.mainRAM[addr]
}

func (m *MMU) writeGeneral(addr uint16, v uint8) {
	aux := m.auxForAccess(addr, m.ramwrt)
	if aux {
		m.auxRAM[addr] = v
	} else {
		m.mainRAM[addr] = v
	}
	if m.videoPage != nil {
		m.videoPage.MarkDirty(addr, aux)
	}
}

// auxForAccess decides main-vs-aux for a $0200-$BFFF access, applying
// the 80STORE+PAGE2(+HIRES) override ahead of the plain ramrd/ramwrt
// latch (§4.4 "80STORE + PAGE2").
func (m *MMU) auxForAccess(addr uint16, ramLatch bool) bool {
	if m.col80Store {
		if addr >= 0x0400 && addr < 0x0800 {
			return m.page2
		}
		if m.hires && addr >= 0x2000 && addr < 0x4000 {
			return m.page2
		}
	}
	return ramLatch
}

// readLanguageCard services $D000-$FFFF through the selected bank.
func (m *MMU) readLanguageCard(addr uint16) uint8 {
	if !m.lcRead {
		return m.rom.Read(uint8(addr>>8), uint8(addr))
	}
	if addr < 0xE000 {
		off := addr - 0xD000
		if m.altzp {
			if m.lcBank2 {
				return m.auxLCBank2[off]
			}
			return m.auxLCBank1[off]
		}
		if m.lcBank2 {
			return m.mainLCBank2[off]
		}
		return m.mainLCBank1[off]
	}
	off := addr - 0xE000
	if m.altzp {
		return m.auxLCUpper[off]
	}
	return m.mainLCUpper[off]
}

func (m *MMU) writeLanguageCard(addr uint16, v uint8) {
	if !m.lcWrite {
		return
	}
	if addr < 0xE000 {
		off := addr - 0xD000
		if m.altzp {
			if m.lcBank2 {
				m.auxLCBank2[off] = v
			} else {
				m.auxLCBank1[off] = v
			}
			return
		}
		if m.lcBank2 {
			m.mainLCBank2[off] = v
		} else {
			m.mainLCBank1[off] = v
		}
		return
	}
	off := addr - 0xE000
	if m.altzp {
		m.auxLCUpper[off] = v
	} else {
		m.mainLCUpper[off] = v
	}
}

// readSoftSwitch handles $C000-$C0FF: keyboard/IO registers at
// $C000-$C07F and $C010-$C01F go to SoftSwitches; $C080-$C08F is the
// language-card latch decode; video-mode latches at $C050-$C057 also
// live in SoftSwitches but their odd/even write still needs to reach
// the VideoPages object, wired via SoftSwitches.video.
func (m *MMU) readSoftSwitch(offset uint8) uint8 {
	if m.plainII {
		return m.io.AsPageHandler(m.disk, m.diskOffLow, m.diskOffHigh).Read(0xC0, offset)
	}
	switch {
	case offset >= 0x80 && offset <= 0x8F:
		m.lcAccess(offset, false)
		return 0xFF
	case offset == 0x19:
		v := m.io.readStatusBit(m.vblPending)
		m.vblPending = false
		return v
	case offset == 0x10:
		return m.io.Read(offset) // clears the keyboard strobe
	case offset >= 0x10 && offset <= 0x1F:
		return m.io.readLatchStatus(offset, m)
	case m.diskOffset(offset):
		return m.disk.Read(0xC0, offset-m.diskOffLow)
	default:
		return m.io.Read(offset)
	}
}

func (m *MMU) writeSoftSwitch(offset uint8, v uint8) {
	if m.plainII {
		m.io.AsPageHandler(m.disk, m.diskOffLow, m.diskOffHigh).Write(0xC0, offset, v)
		return
	}
	switch {
	case offset >= 0x80 && offset <= 0x8F:
		m.lcAccess(offset, true)
	case offset >= 0x00 && offset <= 0x0F:
		m.writeMemoryLatch(offset)
	case offset >= 0x50 && offset <= 0x57:
		m.io.writeVideoLatch(offset, m)
	case m.diskOffset(offset):
		m.disk.Write(0xC0, offset-m.diskOffLow, v)
	default:
		m.io.Write(offset, v)
	}
}

// writeMemoryLatch decodes $C000-$C00F write-only bank-select
// switches (80STORE, RAMRD, RAMWRT, ALTZP, ALTCHAR, 80COL).
func (m *MMU) writeMemoryLatch(offset uint8) {
	set := offset&1 != 0
	switch offset &^ 1 {
	case 0x00:
		m.col80Store = set
	case 0x02:
		m.ramrd = set
	case 0x04:
		m.ramwrt = set
	case 0x06:
		m.intcxrom = set
	case 0x08:
		m.altzp = set
	case 0x0A:
		m.slotc3rom = set
	case 0x0C:
		m.col80 = set
	case 0x0E:
		m.altchar = set
	}
}

// lcAccess implements the $C080-$C08F language-card soft switches.
// bitsLow (addr&3) selects the read/write combination; bit3 selects
// bank1 vs bank2; write-enable requires two consecutive accesses with
// bitsLow odd (the "double-read-to-enable" rule), per §4.4.
func (m *MMU) lcAccess(offset uint8, isWrite bool) {
	bitsLow := offset & 0x03
	m.lcBank2 = offset&0x08 == 0
	m.lcRead = bitsLow == 0x00 || bitsLow == 0x03
	odd := bitsLow&0x01 != 0
	if odd {
		if m.lcPrevOdd {
			m.lcWrite = true
		}
		m.lcPrevOdd = true
	} else {
		m.lcWrite = false
		m.lcPrevOdd = false
	}
	_ = isWrite
}

// Latch reporting used by SoftSwitches.readLatchStatus for $C010-$C01F
// bit-7 latch reads (§4.5 "Soft-switch reads at $C010-$C01F").
func (m *MMU) latchBit(offset uint8) bool {
	switch offset {
	case 0x11:
		return m.lcBank2
	case 0x12:
		return m.lcRead
	case 0x13:
		return m.ramrd
	case 0x14:
		return m.ramwrt
	case 0x15:
		return m.intcxrom
	case 0x16:
		return m.altzp
	case 0x17:
		return m.slotc3rom
	case 0x18:
		return m.col80Store
	case 0x1A:
		return m.videoPage != nil && m.videoPage.Text()
	case 0x1B:
		return m.videoPage != nil && m.videoPage.Mixed()
	case 0x1C:
		return m.page2
	case 0x1D:
		return m.hires
	case 0x1E:
		return m.altchar
	case 0x1F:
		return m.col80
	}
	return false
}

// SetHires is called by SoftSwitches when $C056/$C057 are written, so
// the MMU's 80STORE/$2000 redirect logic (§4.4) stays current.
func (m *MMU) SetHires(v bool) { m.hires = v }

// SetPage2 is called by SoftSwitches when $C054/$C055 are written.
func (m *MMU) SetPage2(v bool) { m.page2 = v }

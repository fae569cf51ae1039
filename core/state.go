package core

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
)

// Save-state binary format (§6 "State format"), grounded on the
// teacher's EmulatorBase.Serialize/Deserialize: a magic tag, a version
// byte, a CRC32 over the header, the payload, and a trailing CRC32
// over the payload. Version mismatches or truncated payloads abort
// the restore and leave the prior state untouched (§7 StateDeserialize).
var stateMagic = [4]byte{'A', '2', 'S', 'T'}

const stateVersion = 1

// mmuLatchBits packs the MMU's 15 single-bit latches into one 16-bit value
// (§3 "latch state is fully recoverable from 16 bits").
func mmuLatchBits(m *MMU) uint16 {
	bits := []bool{
		m.lcBank2, m.lcRead, m.lcWrite, m.lcPrevOdd,
		m.altzp, m.ramrd, m.ramwrt, m.col80Store,
		m.page2, m.hires, m.intcxrom, m.slotc3rom,
		m.col80, m.altchar, m.vblPending,
	}
	var v uint16
	for i, b := range bits {
		if b {
			v |= 1 << uint(i)
		}
	}
	return v
}

func setMMULatchBits(m *MMU, v uint16) {
	get := func(i int) bool { return v&(1<<uint(i)) != 0 }
	m.lcBank2, m.lcRead, m.lcWrite, m.lcPrevOdd = get(0), get(1), get(2), get(3)
	m.altzp, m.ramrd, m.ramwrt, m.col80Store = get(4), get(5), get(6), get(7)
	m.page2, m.hires, m.intcxrom, m.slotc3rom = get(8), get(9), get(10), get(11)
	m.col80, m.altchar, m.vblPending = get(12), get(13), get(14)
}

// State is a decoded snapshot (§6 "a versioned structure containing
// CPU registers+cycles, MMU latch vector, I/O latch vector, all RAM
// banks as byte arrays, disk state").
type State struct {
	CPU        CPUState
	MMULatches uint16
	MainRAM    []byte
	AuxRAM     []byte
	LCMainB1   []byte
	LCMainB2   []byte
	LCMainUp   []byte
	LCAuxB1    []byte
	LCAuxB2    []byte
	LCAuxUp    []byte

	KeyData     uint8
	Speaker     bool
	Buttons     [3]bool
	Annunciator [4]bool
	KHz         int

	Drives [2]DriveState
}

// Serialize captures the full emulator state into the versioned binary
// format.
func Serialize(cpu *Cycle6502, mmu *MMU, io *SoftSwitches, disk *Disk2) []byte {
	var payload bytes.Buffer
	cs := cpu.GetState()
	binary.Write(&payload, binary.LittleEndian, cs.A)
	binary.Write(&payload, binary.LittleEndian, cs.X)
	binary.Write(&payload, binary.LittleEndian, cs.Y)
	binary.Write(&payload, binary.LittleEndian, cs.SP)
	binary.Write(&payload, binary.LittleEndian, cs.PC)
	binary.Write(&payload, binary.LittleEndian, cs.Status)
	binary.Write(&payload, binary.LittleEndian, cs.Cycles)
	binary.Write(&payload, binary.LittleEndian, cs.IRQPending)
	binary.Write(&payload, binary.LittleEndian, cs.NMIPending)

	binary.Write(&payload, binary.LittleEndian, mmuLatchBits(mmu))
	payload.Write(mmu.mainRAM[:])
	payload.Write(mmu.auxRAM[:])
	payload.Write(mmu.mainLCBank1[:])
	payload.Write(mmu.mainLCBank2[:])
	payload.Write(mmu.mainLCUpper[:])
	payload.Write(mmu.auxLCBank1[:])
	payload.Write(mmu.auxLCBank2[:])
	payload.Write(mmu.auxLCUpper[:])

	binary.Write(&payload, binary.LittleEndian, io.keyData)
	binary.Write(&payload, binary.LittleEndian, io.speaker)
	for _, b := range io.buttons {
		binary.Write(&payload, binary.LittleEndian, b)
	}
	for _, a := range io.annunciator {
		binary.Write(&payload, binary.LittleEndian, a)
	}
	binary.Write(&payload, binary.LittleEndian, int32(io.khz))

	for i := range disk.drives {
		d := &disk.drives[i]
		binary.Write(&payload, binary.LittleEndian, int32(d.Track))
		binary.Write(&payload, binary.LittleEndian, int32(d.Head))
		binary.Write(&payload, binary.LittleEndian, d.MotorOn)
		binary.Write(&payload, binary.LittleEndian, d.WriteMode)
		binary.Write(&payload, binary.LittleEndian, d.Q6)
		binary.Write(&payload, binary.LittleEndian, d.Q7)
		binary.Write(&payload, binary.LittleEndian, d.Latch)
		binary.Write(&payload, binary.LittleEndian, int32(d.Format))
		binary.Write(&payload, binary.LittleEndian, d.WriteProtect)
		binary.Write(&payload, binary.LittleEndian, d.Dirty)
		writeString(&payload, d.Name)
		writeString(&payload, d.Ext)
		// Per-track nibble buffers are the only record of any sector
		// written since mount (§6 "dirty track data if modified");
		// without them a getState()/setState() round trip silently
		// discards every write a running disk image has accumulated.
		binary.Write(&payload, binary.LittleEndian, uint16(len(d.tracks)))
		for _, track := range d.tracks {
			binary.Write(&payload, binary.LittleEndian, uint32(len(track)))
			payload.Write(track)
		}
	}

	var out bytes.Buffer
	out.Write(stateMagic[:])
	out.WriteByte(stateVersion)
	header := out.Bytes()
	headerCRC := crc32.ChecksumIEEE(header)
	binary.Write(&out, binary.LittleEndian, headerCRC)
	out.Write(payload.Bytes())
	payloadCRC := crc32.ChecksumIEEE(payload.Bytes())
	binary.Write(&out, binary.LittleEndian, payloadCRC)
	return out.Bytes()
}

// Deserialize restores state produced by Serialize. On any format
// error (bad magic, version mismatch, truncated payload, checksum
// mismatch) it returns a wrapped ErrStateDeserialize and leaves cpu/
// mmu/io/disk entirely untouched (§7 "restore aborted, prior state
// retained").
func Deserialize(data []byte, cpu *Cycle6502, mmu *MMU, io *SoftSwitches, disk *Disk2) error {
	const headerLen = 4 + 1 + 4
	if len(data) < headerLen+4 {
		return wrapStateErr("truncated snapshot")
	}
	if !bytes.Equal(data[0:4], stateMagic[:]) {
		return wrapStateErr("bad magic")
	}
	if data[4] != stateVersion {
		return wrapStateErr("version mismatch")
	}
	wantHeaderCRC := binary.LittleEndian.Uint32(data[5:9])
	if crc32.ChecksumIEEE(data[0:5]) != wantHeaderCRC {
		return wrapStateErr("header checksum mismatch")
	}
	payload := data[headerLen : len(data)-4]
	wantPayloadCRC := binary.LittleEndian.Uint32(data[len(data)-4:])
	if crc32.ChecksumIEEE(payload) != wantPayloadCRC {
		return wrapStateErr("payload checksum mismatch")
	}

	r := &errReader{r: bytes.NewReader(payload)}
	var cs CPUState
	r.read(&cs.A)
	r.read(&cs.X)
	r.read(&cs.Y)
	r.read(&cs.SP)
	r.read(&cs.PC)
	r.read(&cs.Status)
	r.read(&cs.Cycles)
	r.read(&cs.IRQPending)
	r.read(&cs.NMIPending)

	var latches uint16
	var mainRAM, auxRAM [0xC000]byte
	var b1, b2 [0x1000]byte
	var up [0x2000]byte
	var ab1, ab2 [0x1000]byte
	var aup [0x2000]byte
	r.read(&latches)
	r.readBytes(mainRAM[:])
	r.readBytes(auxRAM[:])
	r.readBytes(b1[:])
	r.readBytes(b2[:])
	r.readBytes(up[:])
	r.readBytes(ab1[:])
	r.readBytes(ab2[:])
	r.readBytes(aup[:])

	var keyData uint8
	var speaker bool
	var buttons [3]bool
	var ann [4]bool
	var khz int32
	r.read(&keyData)
	r.read(&speaker)
	for i := range buttons {
		r.read(&buttons[i])
	}
	for i := range ann {
		r.read(&ann[i])
	}
	r.read(&khz)

	var drives [2]DriveState
	for i := range drives {
		var track, head, format int32
		r.read(&track)
		r.read(&head)
		r.read(&drives[i].MotorOn)
		r.read(&drives[i].WriteMode)
		r.read(&drives[i].Q6)
		r.read(&drives[i].Q7)
		r.read(&drives[i].Latch)
		r.read(&format)
		r.read(&drives[i].WriteProtect)
		r.read(&drives[i].Dirty)
		drives[i].Name = readString(r)
		drives[i].Ext = readString(r)
		var trackCount uint16
		r.read(&trackCount)
		tracks := make([][]uint8, trackCount)
		for t := range tracks {
			var trackLen uint32
			r.read(&trackLen)
			buf := make([]uint8, trackLen)
			r.readBytes(buf)
			tracks[t] = buf
		}
		drives[i].Track = int(track)
		drives[i].Head = int(head)
		drives[i].Format = DiskFormat(format)
		drives[i].tracks = tracks
	}

	if r.err != nil {
		return wrapStateErr("truncated snapshot")
	}

	// All reads succeeded: commit to the live objects.
	cpu.SetState(cs)
	setMMULatchBits(mmu, latches)
	mmu.mainRAM = mainRAM
	mmu.auxRAM = auxRAM
	mmu.mainLCBank1 = b1
	mmu.mainLCBank2 = b2
	mmu.mainLCUpper = up
	mmu.auxLCBank1 = ab1
	mmu.auxLCBank2 = ab2
	mmu.auxLCUpper = aup

	io.keyData = keyData
	io.speaker = speaker
	io.buttons = buttons
	io.annunciator = ann
	io.khz = int(khz)

	for i := range disk.drives {
		disk.drives[i].Track = drives[i].Track
		disk.drives[i].Head = drives[i].Head
		disk.drives[i].MotorOn = drives[i].MotorOn
		disk.drives[i].WriteMode = drives[i].WriteMode
		disk.drives[i].Q6 = drives[i].Q6
		disk.drives[i].Q7 = drives[i].Q7
		disk.drives[i].Latch = drives[i].Latch
		disk.drives[i].Format = drives[i].Format
		disk.drives[i].WriteProtect = drives[i].WriteProtect
		disk.drives[i].Dirty = drives[i].Dirty
		disk.drives[i].Name = drives[i].Name
		disk.drives[i].Ext = drives[i].Ext
		disk.drives[i].tracks = drives[i].tracks
		disk.drives[i].NibbleStream = nil
		disk.syncTrack(&disk.drives[i])
	}
	return nil
}

// writeString length-prefixes s with a uint16 byte count, matching the
// fixed-width-then-payload shape the rest of the payload uses for
// variable-length data (track buffers, drive metadata strings).
func writeString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint16(len(s)))
	buf.WriteString(s)
}

func readString(r *errReader) string {
	var n uint16
	r.read(&n)
	buf := make([]byte, n)
	r.readBytes(buf)
	return string(buf)
}

// errReader short-circuits a chain of binary.Read calls: once one
// fails, subsequent reads are no-ops and the first error is retained,
// the same pattern bufio.Scanner/encoding readers use.
type errReader struct {
	r   *bytes.Reader
	err error
}

func (e *errReader) read(v any) {
	if e.err != nil {
		return
	}
	e.err = binary.Read(e.r, binary.LittleEndian, v)
}

func (e *errReader) readBytes(buf []byte) {
	if e.err != nil {
		return
	}
	if _, err := e.r.Read(buf); err != nil {
		e.err = err
	}
}

func wrapStateErr(reason string) error {
	return &stateError{reason: reason}
}

type stateError struct{ reason string }

func (e *stateError) Error() string { return "state deserialize: " + e.reason }
func (e *stateError) Unwrap() error { return ErrStateDeserialize }

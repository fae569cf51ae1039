package core

// PaddleMaxCycles is the number of cycles a paddle's one-shot timer
// runs before bit 7 of its $C064-$C067 read clears, for a
// fully-clockwise (1.0) paddle position. The real constant is
// empirical per-machine; this core uses the value §4.5/§9 document
// rather than attempting hardware recalibration (see SPEC_FULL.md
// Open Question Decisions).
const PaddleMaxCycles = 2816

// AudioEvent is a single speaker level-change, timestamped in CPU
// cycles (§4.5, §9 "audio as event stream, not sample stream"). The
// host resamples the event stream to its own output rate.
type AudioEvent struct {
	Cycle uint64
	Level bool
}

// SoftSwitches implements the $C000-$C0FF memory-mapped I/O registers
// (§4.5): keyboard data/strobe, speaker, cassette, paddles,
// annunciators, and the video-mode latches. On a plain Apple II it is
// installed directly as the page handler for page $C0; on a IIe the
// MMU dispatches into it for everything except the language-card and
// memory-bank-select switches it owns itself.
type SoftSwitches struct {
	keyData   uint8 // bit7=strobe, bits0-6=ASCII
	anyKey    bool
	speaker   bool
	events    []AudioEvent
	cycleFn   func() uint64

	paddleStart [4]uint64
	paddlePos   [4]float64 // 0..1, host-supplied via Paddle()

	buttons [3]bool

	annunciator [4]bool

	cassetteIn  bool
	cassetteOut bool

	video *VideoPages

	khz int

	keyBuffer []byte // queued by SetKeyBuffer, drained into keyData/strobe
}

// NewSoftSwitches creates the I/O register block driving video to
// video (nil on pre-video construction is allowed; wired after).
func NewSoftSwitches(video *VideoPages) *SoftSwitches {
	return &SoftSwitches{video: video, khz: 1023}
}

func (s *SoftSwitches) Start() uint8 { return 0xC0 }
func (s *SoftSwitches) End() uint8   { return 0xC0 }

// softSwitchPage adapts SoftSwitches to the Bus's PageHandler interface
// for direct (non-IIe, no MMU) installation — Go can't give a single
// type two methods named Read/Write with different signatures, so the
// page-addressed entry points live on this thin wrapper instead. A
// plain Apple II has no MMU to carve the Disk II controller's I/O
// window out of $C0 itself, so this wrapper absorbs that carve-out
// the same way MMU.readSoftSwitch/writeSoftSwitch do (disk is nil on
// a disk-less machine).
type softSwitchPage struct {
	io                     *SoftSwitches
	disk                   *Disk2
	diskOffLow, diskOffHigh uint8
}

func (p *softSwitchPage) Start() uint8 { return 0xC0 }
func (p *softSwitchPage) End() uint8   { return 0xC0 }

func (p *softSwitchPage) diskOffset(offset uint8) bool {
	return p.disk != nil && offset >= p.diskOffLow && offset <= p.diskOffHigh
}

func (p *softSwitchPage) Read(page, offset uint8) uint8 {
	if p.diskOffset(offset) {
		return p.disk.Read(page, offset-p.diskOffLow)
	}
	return p.io.Read(offset)
}

func (p *softSwitchPage) Write(page, offset uint8, v uint8) {
	if p.diskOffset(offset) {
		p.disk.Write(page, offset-p.diskOffLow, v)
		return
	}
	p.io.Write(offset, v)
}

// AsPageHandler exposes SoftSwitches as a Bus PageHandler for machines
// with no MMU in front of $C0 (plain Apple II, §4.4 "IIe-only MMU").
// disk may be nil for a disk-less machine; otherwise [diskOffLow,
// diskOffHigh] is the slot's I/O window within the page, exactly as
// MMU.AttachDisk2 carves it out for the IIe.
func (s *SoftSwitches) AsPageHandler(disk *Disk2, diskOffLow, diskOffHigh uint8) PageHandler {
	return &softSwitchPage{io: s, disk: disk, diskOffLow: diskOffLow, diskOffHigh: diskOffHigh}
}

// SetCycleClock wires the current-cycle accessor used to timestamp
// audio events and paddle-timer expiry; the emulator calls this once
// after constructing the CPU.
func (s *SoftSwitches) SetCycleClock(fn func() uint64) { s.cycleFn = fn }

func (s *SoftSwitches) now() uint64 {
	if s.cycleFn == nil {
		return 0
	}
	return s.cycleFn()
}

// Read services an $C0xx offset read (the low byte of the address).
func (s *SoftSwitches) Read(offset uint8) uint8 {
	switch {
	case offset == 0x00:
		return s.keyData
	case offset == 0x10:
		v := s.keyData
		s.keyData &^= 0x80
		s.drainKeyBuffer()
		return v
	case offset == 0x20:
		return s.boolByte(s.cassetteIn)
	case offset == 0x30:
		s.toggleSpeaker()
		return 0
	case offset == 0x60:
		return s.boolByte(s.cassetteIn)
	case offset == 0x61:
		return s.boolByte(s.buttons[0])
	case offset == 0x62:
		return s.boolByte(s.buttons[1])
	case offset == 0x63:
		return s.boolByte(s.buttons[2])
	case offset == 0x64, offset == 0x65, offset == 0x66, offset == 0x67:
		return s.readPaddle(offset - 0x64)
	case offset == 0x70:
		s.strobePaddles()
		return 0
	case offset >= 0x50 && offset <= 0x57:
		s.writeVideoLatch(offset, nil)
		return 0xFF
	case offset >= 0x58 && offset <= 0x5F:
		s.annunciator[(offset-0x58)/2] = offset&1 != 0
		return 0xFF
	default:
		return 0xFF
	}
}

// Write services an $C0xx offset write.
func (s *SoftSwitches) Write(offset uint8, v uint8) {
	switch {
	case offset == 0x10:
		s.keyData &^= 0x80
		s.drainKeyBuffer()
	case offset == 0x30:
		s.toggleSpeaker()
	case offset == 0x60:
		s.cassetteOut = !s.cassetteOut
	case offset == 0x70:
		s.strobePaddles()
	case offset >= 0x50 && offset <= 0x57:
		s.writeVideoLatch(offset, nil)
	case offset >= 0x58 && offset <= 0x5F:
		s.annunciator[(offset-0x58)/2] = offset&1 != 0
	}
}

func (s *SoftSwitches) boolByte(b bool) uint8 {
	if b {
		return 0x80
	}
	return 0x00
}

func (s *SoftSwitches) toggleSpeaker() {
	s.speaker = !s.speaker
	s.events = append(s.events, AudioEvent{Cycle: s.now(), Level: s.speaker})
}

// DrainAudio returns and clears the accumulated speaker-toggle events
// (§4.5, §9). The host resamples these to its own sample rate.
func (s *SoftSwitches) DrainAudio() []AudioEvent {
	ev := s.events
	s.events = nil
	return ev
}

func (s *SoftSwitches) strobePaddles() {
	now := s.now()
	for i := range s.paddleStart {
		s.paddleStart[i] = now
	}
}

func (s *SoftSwitches) readPaddle(n uint8) uint8 {
	elapsed := s.now() - s.paddleStart[n]
	running := elapsed < uint64(s.paddlePos[n]*PaddleMaxCycles)
	return s.boolByte(running)
}

// Paddle sets the host-reported position of paddle n (0 or 1; 2/3 are
// rarely wired on stock hardware but accepted here) in [0,1].
func (s *SoftSwitches) Paddle(n int, v float64) {
	if n < 0 || n >= len(s.paddlePos) {
		return
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	s.paddlePos[n] = v
}

// ButtonDown/ButtonUp implement the I/O surface's pushbutton inputs
// (§6, buttons 0/1 map to open-apple/solid-apple; button 2 is rarely
// used but modeled for completeness).
func (s *SoftSwitches) ButtonDown(n int) {
	if n >= 0 && n < len(s.buttons) {
		s.buttons[n] = true
	}
}

func (s *SoftSwitches) ButtonUp(n int) {
	if n >= 0 && n < len(s.buttons) {
		s.buttons[n] = false
	}
}

// Annunciator returns the current state of annunciator n (0-3).
func (s *SoftSwitches) Annunciator(n int) bool {
	if n < 0 || n >= len(s.annunciator) {
		return false
	}
	return s.annunciator[n]
}

// KeyDown asserts a key with the given ASCII code (high bit strobe set).
func (s *SoftSwitches) KeyDown(code uint8) {
	s.keyData = (code & 0x7F) | 0x80
	s.anyKey = true
}

// KeyUp clears the strobe-held "any key down" state used by $C011-class
// reads that some software polls instead of $C000's strobe bit.
func (s *SoftSwitches) KeyUp() { s.anyKey = false }

// SetKeyBuffer queues a string of keystrokes to be fed one at a time
// as the strobe is cleared by reads/writes of $C010 (§6).
func (s *SoftSwitches) SetKeyBuffer(text string) {
	s.keyBuffer = append(s.keyBuffer, []byte(text)...)
	s.drainKeyBuffer()
}

func (s *SoftSwitches) drainKeyBuffer() {
	if s.keyData&0x80 != 0 || len(s.keyBuffer) == 0 {
		return
	}
	c := s.keyBuffer[0]
	s.keyBuffer = s.keyBuffer[1:]
	if c == '\n' {
		c = '\r'
	}
	s.keyData = (c & 0x7F) | 0x80
}

// UpdateKHz sets the target clock frequency used by the run-loop to
// compute cycles per animation tick (§4.5, §4.9). Typical values are
// 1023 (standard) and 4092 (accelerated).
func (s *SoftSwitches) UpdateKHz(khz int) {
	if khz > 0 {
		s.khz = khz
	}
}

// KHz returns the currently selected clock frequency in kHz.
func (s *SoftSwitches) KHz() int { return s.khz }

// readStatusBit composes the $C019 VBL read (bit7 = VBL pending) with
// the keyboard-strobe/any-key-down low bits some software also expects
// from reads in the $C010-$C01F range (§4.4).
func (s *SoftSwitches) readStatusBit(vbl bool) uint8 {
	v := s.boolByte(vbl)
	if s.anyKey {
		v |= 0x01
	}
	return v
}

// readLatchStatus composes a $C010-$C01F latch-state read: bit7 is the
// corresponding MMU/video latch, low bits carry keyboard strobe state
// the way real hardware does for this address range.
func (s *SoftSwitches) readLatchStatus(offset uint8, mmu *MMU) uint8 {
	v := s.boolByte(mmu.latchBit(offset))
	if s.anyKey {
		v |= 0x01
	}
	return v
}

// writeVideoLatch decodes $C050-$C057 (GRAPHICS/TEXT, MIXED, PAGE2,
// HIRES): the corresponding latch in VideoPages is set to the
// address's odd/even parity (§4.6, §8 testable property), and — when
// mmu is non-nil (IIe) — the MMU is told about PAGE2/HIRES so its
// 80STORE display-page redirect logic stays current (§4.4).
func (s *SoftSwitches) writeVideoLatch(offset uint8, mmu *MMU) {
	if s.video == nil {
		return
	}
	set := offset&1 != 0
	switch offset &^ 1 {
	case 0x50:
		s.video.SetGraphics(set)
	case 0x52:
		s.video.SetMixed(set)
	case 0x54:
		s.video.SetPage2(set)
		if mmu != nil {
			mmu.SetPage2(set)
		}
	case 0x56:
		s.video.SetHires(set)
		if mmu != nil {
			mmu.SetHires(set)
		}
	}
}

package core

// DiskFormat enumerates the image layouts Disk II directly consumes
// (§4.7, §6 "ext ∈ {dsk,do,po,nib,2mg,woz}").
type DiskFormat int

const (
	FormatDSK DiskFormat = iota
	FormatDO
	FormatPO
	FormatNIB
	Format2MG
	FormatWOZ
)

// cyclesPerNibble is the head-advance rate while the drive motor is
// on: one nibble every 32 CPU cycles (~4us/bit x 8 bits), §4.7 "Motor".
const cyclesPerNibble = 32

// DriveState is one drive's full state (§3 "Disk state per drive").
type DriveState struct {
	MotorOn      bool
	Phase        [4]bool
	Track        int // quarter-tracks, 0-139
	Head         int // byte offset into the current track's nibble stream
	WriteMode    bool
	Q6, Q7       bool
	Latch        uint8
	NibbleStream []uint8 // current whole-track nibble stream (nil until an image is mounted)
	TrackMap     []uint16 // byte offset of each of the 35 (or more, WOZ) tracks within a flat blob, when applicable
	Dirty        bool
	WriteProtect bool
	Format       DiskFormat
	Name         string
	Ext          string

	tracks    [][]uint8 // per-whole-track nibble streams, populated at mount time
	cycleAcc  int       // fractional cycles toward the next head advance
	lastPhase int       // last energized stepper phase, -1 if none yet
}

// Disk2 implements the Disk II controller (§4.7): stepper motor, Q6/Q7
// latch state machine, and per-drive nibble streams. It is installed
// as the PageHandler for the card's slot ROM/IO page (commonly slot 6,
// pages $C0E0-$C0EF relative addressing handled by the caller's slot
// offset, modeled here as a single page starting at slotBase).
type Disk2 struct {
	drives   [2]DriveState
	selected int // 0 or 1, selected by even/odd accesses to the slot's drive-select switches
	slotBase uint8
}

// NewDisk2 creates a two-drive Disk II controller whose I/O switches
// live at page slotBase (the emulator passes $C0; the slot's 16-byte
// window at offset 0x80+slot*0x10 is carved out by MMU.AttachDisk2).
func NewDisk2(slotBase uint8) *Disk2 {
	d := &Disk2{slotBase: slotBase}
	for i := range d.drives {
		d.drives[i].lastPhase = -1
	}
	return d
}

func (d *Disk2) Start() uint8 { return d.slotBase }
func (d *Disk2) End() uint8   { return d.slotBase }

// Read services the Q6/Q7 + phase + drive-select switches at
// $C0x0-$C0xF (relative to slotBase), per §4.7 "Latch & Q6/Q7".
func (d *Disk2) Read(page, offset uint8) uint8 {
	return d.access(offset, 0, false)
}

func (d *Disk2) Write(page, offset uint8, v uint8) {
	d.access(offset, v, true)
}

// access implements the shared even/odd-address decode for both reads
// and writes, since Disk II's switches are sensed by address alone.
func (d *Disk2) access(offset uint8, v uint8, isWrite bool) uint8 {
	drive := &d.drives[d.selected]
	switch offset & 0x0F {
	case 0x0, 0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7:
		phase := offset >> 1
		on := offset&1 != 0
		drive.Phase[phase] = on
		if on {
			d.step(drive, int(phase))
		}
	case 0x8:
		drive.MotorOn = false
	case 0x9:
		drive.MotorOn = true
	case 0xA:
		d.selected = 0
	case 0xB:
		d.selected = 1
		drive = &d.drives[1]
	case 0xC:
		drive.Q6 = false
		return d.readWriteLatch(drive, isWrite, v)
	case 0xD:
		drive.Q6 = true
		return d.readWriteLatch(drive, isWrite, v)
	case 0xE:
		drive.Q7 = false
	case 0xF:
		drive.Q7 = true
	}
	return 0xFF
}

// readWriteLatch implements the combined Q6/Q7 state machine: Q7=0
// (read mode) returns the next nibble when the motor is running;
// Q7=1 (write) stores the nibble presented on a write access, whatever
// the state of Q6.
func (d *Disk2) readWriteLatch(drive *DriveState, isWrite bool, v uint8) uint8 {
	if drive.Q7 {
		if isWrite {
			d.writeNibble(drive, v)
		}
		return 0xFF
	}
	if !drive.MotorOn || len(drive.NibbleStream) == 0 {
		return 0xFF
	}
	return drive.Latch
}

// Tick advances the head by one nibble every cyclesPerNibble CPU
// cycles while the motor is on, for the running drive. Called by the
// run-loop alongside CPU stepping (§4.7 "Motor").
func (d *Disk2) Tick(cycles int) {
	for i := range d.drives {
		drive := &d.drives[i]
		if !drive.MotorOn || len(drive.NibbleStream) == 0 {
			continue
		}
		drive.cycleAcc += cycles
		for drive.cycleAcc >= cyclesPerNibble {
			drive.cycleAcc -= cyclesPerNibble
			drive.Latch = drive.NibbleStream[drive.Head]
			drive.Head++
			if drive.Head >= len(drive.NibbleStream) {
				drive.Head = 0
			}
		}
	}
}

func (d *Disk2) writeNibble(drive *DriveState, v uint8) {
	if drive.WriteProtect || len(drive.NibbleStream) == 0 {
		return
	}
	drive.NibbleStream[drive.Head] = v
	drive.Dirty = true
}

// step energizes phase p, advancing the head by one quarter-track in
// the direction implied relative to the currently-held phase (§4.7
// "Stepper"). Half/three-quarter tracks are representable in Track
// but resolved to the nearest whole track's nibble stream on access.
func (d *Disk2) step(drive *DriveState, p int) {
	if drive.lastPhase >= 0 {
		diff := (p - drive.lastPhase + 4) % 4
		switch diff {
		case 1:
			if drive.Track < 139 {
				drive.Track++
			}
		case 3:
			if drive.Track > 0 {
				drive.Track--
			}
		}
	}
	drive.lastPhase = p
	d.syncTrack(drive)
}

// syncTrack re-points NibbleStream at the whole-track nibble array
// nearest the drive's current quarter-track position.
func (d *Disk2) syncTrack(drive *DriveState) {
	if len(drive.tracks) == 0 {
		return
	}
	whole := drive.Track / 4
	if whole >= len(drive.tracks) {
		whole = len(drive.tracks) - 1
	}
	if drive.NibbleStream == nil || &drive.tracks[whole][0] != &drive.NibbleStream[0] {
		drive.NibbleStream = drive.tracks[whole]
		if drive.Head >= len(drive.NibbleStream) {
			drive.Head = 0
		}
	}
}

// SetBinary mounts a raw image (§4.7 "Image ingestion", §7
// ImageFormat). It returns false, leaving the drive unchanged, if the
// byte length doesn't match any recognized layout for ext.
func (d *Disk2) SetBinary(drive int, name, ext string, data []byte) bool {
	if drive < 0 || drive > 1 {
		return false
	}
	var tracks [][]byte
	var format DiskFormat
	switch ext {
	case "dsk", "do":
		if len(data) != dsk35ImageSize {
			return false
		}
		tracks = nibblizeImage(data, false)
		format = FormatDO
		if ext == "dsk" {
			format = FormatDSK
		}
	case "po":
		if len(data) != dsk35ImageSize {
			return false
		}
		tracks = nibblizeImage(data, true)
		format = FormatPO
	case "nib":
		if len(data)%6656 != 0 {
			return false
		}
		tracks = splitFixed(data, 6656)
		format = FormatNIB
	case "2mg":
		img, prodos, ok := parse2MG(data)
		if !ok || len(img) != dsk35ImageSize {
			return false
		}
		tracks = nibblizeImage(img, prodos)
		format = Format2MG
	case "woz":
		wozTracks, ok := parseWOZ(data)
		if !ok {
			return false
		}
		tracks = wozTracks
		format = FormatWOZ
	default:
		return false
	}

	d.drives[drive] = DriveState{
		tracks:    tracks,
		Format:    format,
		Name:      name,
		Ext:       ext,
		lastPhase: -1,
	}
	d.syncTrack(&d.drives[drive])
	return true
}

func splitFixed(data []byte, size int) [][]byte {
	n := len(data) / size
	out := make([][]byte, n)
	for i := 0; i < n; i++ {
		out[i] = data[i*size : (i+1)*size]
	}
	return out
}

// GetBinary reconstructs a DOS-3.3/ProDOS-order flat image (or returns
// the raw nibble/WOZ blob for nib/woz disks) for the mounted image on
// drive, or nil if nothing is mounted.
func (d *Disk2) GetBinary(drive int) []byte {
	if drive < 0 || drive > 1 {
		return nil
	}
	ds := &d.drives[drive]
	if len(ds.tracks) == 0 {
		return nil
	}
	switch ds.Format {
	case FormatDSK, FormatDO:
		return denibblizeImage(ds.tracks, false)
	case FormatPO, Format2MG:
		return denibblizeImage(ds.tracks, true)
	default:
		out := make([]byte, 0, len(ds.tracks)*6656)
		for _, t := range ds.tracks {
			out = append(out, t...)
		}
		return out
	}
}

// Metadata returns the mounted image's descriptor, or nil if the
// drive is empty (§6 "getMetadata").
func (d *Disk2) Metadata(drive int) map[string]any {
	if drive < 0 || drive > 1 || len(d.drives[drive].tracks) == 0 {
		return nil
	}
	ds := &d.drives[drive]
	return map[string]any{
		"name":     ds.Name,
		"ext":      ds.Ext,
		"readOnly": ds.WriteProtect,
		"dirty":    ds.Dirty,
	}
}

// Drive returns a copy of the drive's externally-relevant state, for
// save-state serialization.
func (d *Disk2) Drive(n int) DriveState { return d.drives[n] }

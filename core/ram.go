package core

// RAM is a plain page-range-backed byte array with no side effects.
// Multiple RAM handlers compose the non-I/O, non-ROM portions of main
// and auxiliary memory (§4.3).
type RAM struct {
	start, end uint8
	data       []uint8
}

// NewRAM allocates a RAM handler covering pages start..end inclusive.
func NewRAM(start, end uint8) *RAM {
	pages := int(end) - int(start) + 1
	return &RAM{start: start, end: end, data: make([]uint8, pages*256)}
}

func (r *RAM) Start() uint8 { return r.start }
func (r *RAM) End() uint8   { return r.end }

func (r *RAM) Read(page, offset uint8) uint8 {
	idx := (int(page)-int(r.start))*256 + int(offset)
	return r.data[idx]
}

func (r *RAM) Write(page, offset uint8, v uint8) {
	idx := (int(page)-int(r.start))*256 + int(offset)
	r.data[idx] = v
}

// Bytes exposes the backing array directly, e.g. for save-state
// serialization or host-side bulk loads.
func (r *RAM) Bytes() []uint8 { return r.data }

// ROM is a read-only page-range handler; writes are swallowed per §7
// Runtime ("writes to ROM are swallowed").
type ROM struct {
	start, end uint8
	data       []uint8
}

// NewROM wraps image as a read-only handler covering pages start..end.
// image is copied; if shorter than the page range it is zero-padded.
func NewROM(start, end uint8, image []uint8) *ROM {
	pages := int(end) - int(start) + 1
	data := make([]uint8, pages*256)
	copy(data, image)
	return &ROM{start: start, end: end, data: data}
}

func (r *ROM) Start() uint8 { return r.start }
func (r *ROM) End() uint8   { return r.end }

func (r *ROM) Read(page, offset uint8) uint8 {
	idx := (int(page)-int(r.start))*256 + int(offset)
	return r.data[idx]
}

func (r *ROM) Write(page, offset uint8, v uint8) {
	// Writes to ROM are swallowed.
}

package core

import "strings"

// Video geometry (§4.6): 280x192 logical pixels, doubled horizontally
// to 560x192 while the 80COL latch is set (only text rendering fills
// the extra width; no double-hires mode is modeled).
const (
	videoHeight   = 192
	videoWidth40  = 280
	videoWidth80  = 560
	textRows      = 24
	textCols40    = 40
	textCols80    = 80
	glyphW        = 7
	glyphH        = 8
)

// Standard Apple II Lores color palette, index 0-15, as commonly
// tabulated by software emulators (black/magenta/dark-blue/purple/
// dark-green/gray/medium-blue/light-blue/brown/orange/gray/pink/
// green/yellow/aqua/white).
var loresPalette = [16][3]uint8{
	{0x00, 0x00, 0x00}, {0x90, 0x17, 0x40}, {0x40, 0x2C, 0xA5}, {0xD0, 0x43, 0xE5},
	{0x00, 0x69, 0x40}, {0x80, 0x80, 0x80}, {0x2F, 0x95, 0xE5}, {0xBF, 0xAB, 0xFF},
	{0x40, 0x54, 0x00}, {0xD0, 0x6A, 0x1A}, {0x80, 0x80, 0x80}, {0xFF, 0x96, 0xBF},
	{0x2F, 0xBC, 0x1A}, {0xBF, 0xD3, 0x5A}, {0x6F, 0xE8, 0xBF}, {0xFF, 0xFF, 0xFF},
}

// Simplified hires color approximation (phase bit + pixel parity),
// the classic four-color model software emulators use in place of
// full NTSC artifact simulation (§7 Non-goals: "bit-exact analog video
// signal reproduction" is explicitly out of scope).
var hiresPalette = [2][2][3]uint8{
	{{0x00, 0x00, 0x00}, {0x2F, 0xBC, 0x1A}}, // phase 0: black, green
	{{0x00, 0x00, 0x00}, {0xBF, 0x43, 0xE5}}, // phase 1: black, violet
}

// VideoPages implements the rasterizer (§4.6): Text40/Text80, Lores,
// Hires, mixed mode, page1/page2, color/monochrome. It reads the
// memory-bank latches and RAM banks at blit time rather than
// per-pixel, and tracks per-page-row dirty state set by MMU writes.
type VideoPages struct {
	graphics bool // false = text mode engaged (inverse of the GRAPHICS/TEXT latch naming)
	mixed    bool
	page2    bool
	hires    bool
	mono     bool
	multi    bool // MultiScreen flag; stored only, Blit does not consult it and renders just the selected page

	dirtyText  [2][textRows]bool
	dirtyHires [2][videoHeight]bool

	mmu         *MMU
	characterRom []uint8 // 8 bytes/glyph, 256 glyphs, host-supplied; nil falls back to a built-in fixed font

	framebuffer []uint8 // RGB, width*height*3, sized for the current mode
	width       int
}

// NewVideoPages creates an empty video-mode object. SetMMU must be
// called once the MMU exists, since blit-time reads go through it.
func NewVideoPages() *VideoPages {
	v := &VideoPages{width: videoWidth40}
	v.framebuffer = make([]uint8, videoWidth40*videoHeight*3)
	for p := range v.dirtyText {
		for r := range v.dirtyText[p] {
			v.dirtyText[p][r] = true
		}
	}
	for p := range v.dirtyHires {
		for r := range v.dirtyHires[p] {
			v.dirtyHires[p][r] = true
		}
	}
	return v
}

// SetMMU wires the MMU this video object reads RAM and the
// 80COL/ALTCHAR latches through at blit time.
func (v *VideoPages) SetMMU(m *MMU) { v.mmu = m }

// SetCharacterRom installs a 256-glyph, 8-bytes-per-glyph character
// generator image (§4.6 "character ROM provided by host"). A nil or
// short image leaves the built-in fallback font in place.
func (v *VideoPages) SetCharacterRom(rom []uint8) {
	if len(rom) < 256*8 {
		return
	}
	v.characterRom = rom
}

func (v *VideoPages) SetGraphics(set bool) { v.graphics = set }
func (v *VideoPages) SetMixed(set bool)    { v.mixed = set }
func (v *VideoPages) SetPage2(set bool)    { v.page2 = set }
func (v *VideoPages) SetHires(set bool)    { v.hires = set }
func (v *VideoPages) Mono(set bool)        { v.mono = set }
func (v *VideoPages) MultiScreen(set bool) { v.multi = set }

// Text reports whether the display is currently in a text (as opposed
// to graphics) mode — used by MMU.latchBit for the $C01A read.
func (v *VideoPages) Text() bool { return !v.graphics }

// Mixed reports the MIXED latch state, for the $C01B read.
func (v *VideoPages) Mixed() bool { return v.mixed }

// MarkDirty records that addr was written (through main RAM if aux is
// false, else aux RAM), marking the corresponding page row dirty if
// the address falls in a video-page range (§4.3 "each page maintains a
// dirty bitmap over its rows").
func (v *VideoPages) MarkDirty(addr uint16, aux bool) {
	bank := 0
	if aux {
		bank = 1
	}
	switch {
	case addr >= 0x0400 && addr <= 0x07FF:
		v.markTextRow(bank, addr-0x0400)
	case addr >= 0x0800 && addr <= 0x0BFF:
		v.markTextRow(bank, addr-0x0800)
	case addr >= 0x2000 && addr <= 0x3FFF:
		v.markHiresRow(bank, addr-0x2000)
	case addr >= 0x4000 && addr <= 0x5FFF:
		v.markHiresRow(bank, addr-0x4000)
	}
}

func (v *VideoPages) markTextRow(bank int, off uint16) {
	if r, ok := textRowForOffset(off); ok {
		v.dirtyText[bank][r] = true
	}
}

func (v *VideoPages) markHiresRow(bank int, off uint16) {
	if r, ok := hiresRowForOffset(off); ok {
		v.dirtyHires[bank][r] = true
	}
}

// textRowForOffset inverts the standard Apple II text/lores page
// address interleave (block*0x28 + line*0x80 + col) to find which of
// the 24 rows a page-relative offset belongs to.
func textRowForOffset(off uint16) (int, bool) {
	if off&0x7F >= 0x78 {
		return 0, false // unused "screen hole" bytes
	}
	col := (off & 0x7F) % 0x28
	for row := 0; row < textRows; row++ {
		b := row / 8
		l := row % 8
		if uint16(b)*0x28+uint16(l)*0x80+col == off {
			return row, true
		}
	}
	return 0, false
}

// hiresRowForOffset inverts the hires page address interleave
// (third*0x28 + line*0x80 + block*0x400 + col) to find the scanline a
// page-relative offset belongs to.
func hiresRowForOffset(off uint16) (int, bool) {
	if off&0x7F >= 0x78 {
		return 0, false
	}
	col := (off & 0x7F) % 0x28
	for row := 0; row < videoHeight; row++ {
		block := row % 8
		line := (row / 8) % 8
		third := row / 64
		addr := uint16(third)*0x28 + uint16(line)*0x80 + uint16(block)*0x400
		if addr+col == off {
			return row, true
		}
	}
	return 0, false
}

// Blit composes the current framebuffer from whichever dirty page(s)
// are selected by the latch state, returning true if anything changed
// (§4.6 "returns true if any pixel changed"). Dirty bits are cleared
// after.
func (v *VideoPages) Blit() bool {
	if v.mmu == nil {
		return false
	}
	bank := 0
	if v.page2 {
		bank = 1
	}
	v.width = videoWidth40
	if v.mmu.col80 {
		v.width = videoWidth80
	}
	if len(v.framebuffer) != v.width*videoHeight*3 {
		v.framebuffer = make([]uint8, v.width*videoHeight*3)
	}

	changed := false
	startRow := 0
	endRow := videoHeight
	if v.mixed {
		endRow = 160 // top 160 lines graphics, bottom 32 lines text (§4.6 "Mixed mode")
	}
	if v.graphics {
		if v.hires {
			changed = v.blitHires(bank, startRow, endRow) || changed
		} else {
			changed = v.blitLores(bank, startRow, endRow) || changed
		}
		if v.mixed {
			changed = v.blitText(bank, 20, 24) || changed
		}
	} else {
		changed = v.blitText(bank, 0, 24) || changed
	}
	return changed
}

func (v *VideoPages) blitLores(bank, startRow, endRowPixels int) bool {
	changed := false
	const base = uint16(0x0400)
	startCell := startRow / 8
	endCell := (endRowPixels + 7) / 8
	for row := startCell; row < endCell && row < textRows; row++ {
		if !v.dirtyText[bank][row] {
			continue
		}
		changed = true
		v.dirtyText[bank][row] = false
		for col := 0; col < textCols40; col++ {
			off := uint16(row/8)*0x28 + uint16(row%8)*0x80 + uint16(col)
			b := v.readPage(bank, base+off)
			top := loresPalette[b&0x0F]
			bottom := loresPalette[(b>>4)&0x0F]
			v.fillCell(col, row, top, bottom)
		}
	}
	return changed
}

func (v *VideoPages) blitHires(bank, startRow, endRow int) bool {
	changed := false
	base := uint16(0x2000)
	for row := startRow; row < endRow; row++ {
		if !v.dirtyHires[bank][row] {
			continue
		}
		changed = true
		v.dirtyHires[bank][row] = false
		block := row % 8
		line := (row / 8) % 8
		third := row / 64
		rowBase := base + uint16(third)*0x28 + uint16(line)*0x80 + uint16(block)*0x400
		for col := 0; col < 40; col++ {
			b := v.readPage(bank, rowBase+uint16(col))
			phase := 0
			if b&0x80 != 0 {
				phase = 1
			}
			for bit := 0; bit < 7; bit++ {
				px := col*7 + bit
				on := b&(1<<uint(bit)) != 0
				parity := 0
				if on {
					parity = 1
				}
				color := hiresPalette[phase][parity]
				v.setPixel(px, row, color)
			}
		}
	}
	return changed
}

func (v *VideoPages) blitText(bank, startCell, endCell int) bool {
	changed := false
	base := uint16(0x0400)
	if v.page2 {
		base = 0x0800
	}
	col80 := v.mmu.col80
	for row := startCell; row < endCell; row++ {
		if !v.dirtyText[bank][row] {
			continue
		}
		changed = true
		v.dirtyText[bank][row] = false
		for col := 0; col < textCols40; col++ {
			off := uint16(row/8)*0x28 + uint16(row%8)*0x80 + uint16(col)
			if col80 {
				// 80-column firmware interleave (§4.6): aux memory
				// supplies the left half of each character pair, main
				// memory the right half, doubling the 40-column cell
				// grid into 80 visible columns at the same RAM offset.
				auxCh := v.mmu.auxRAM[base+off]
				mainCh := v.mmu.mainRAM[base+off]
				v.drawGlyph(col*2, row, auxCh)
				v.drawGlyph(col*2+1, row, mainCh)
				continue
			}
			ch := v.readPage(bank, base+off)
			v.drawGlyph(col, row, ch)
		}
	}
	return changed
}

// readPage reads a raw main/aux RAM byte at a page-relative offset
// added to the caller's supplied base, through the MMU's underlying
// storage directly (same package, so unexported fields are visible)
// rather than through the CPU-facing bus, since this is a host-side
// rasterization read with no side effects of its own.
func (v *VideoPages) readPage(bank int, addr uint16) uint8 {
	if bank == 1 {
		return v.mmu.auxRAM[addr]
	}
	return v.mmu.mainRAM[addr]
}

func (v *VideoPages) fillCell(col, cellRow int, top, bottom [3]uint8) {
	baseY := cellRow * 8
	for dy := 0; dy < 4; dy++ {
		v.fillRow(col, baseY+dy, top)
	}
	for dy := 4; dy < 8; dy++ {
		v.fillRow(col, baseY+dy, bottom)
	}
}

func (v *VideoPages) fillRow(col, y int, color [3]uint8) {
	for dx := 0; dx < 7; dx++ {
		v.setPixel(col*7+dx, y, color)
	}
}

func (v *VideoPages) setPixel(x, y int, color [3]uint8) {
	if v.mono {
		lum := (uint16(color[0]) + uint16(color[1]) + uint16(color[2])) / 3
		color = [3]uint8{uint8(lum), uint8(lum), uint8(lum)}
	}
	if x < 0 || y < 0 || x >= v.width || y >= videoHeight {
		return
	}
	idx := (y*v.width + x) * 3
	v.framebuffer[idx] = color[0]
	v.framebuffer[idx+1] = color[1]
	v.framebuffer[idx+2] = color[2]
}

func (v *VideoPages) drawGlyph(col, row int, ch uint8) {
	altchar := v.mmu != nil && v.mmu.altchar
	glyph := v.glyphBits(ch, altchar)
	fg := [3]uint8{0xFF, 0xFF, 0xFF}
	bg := [3]uint8{0x00, 0x00, 0x00}
	// $00-$3F is always inverse video. $40-$7F flashes between inverse
	// and normal when ALTCHAR is off (approximated here as steady
	// inverse, since no time-based flash is modeled) but is steady
	// normal-video MouseText when ALTCHAR is on (§4.6).
	inverse := ch&0xC0 == 0x00 || (ch&0xC0 == 0x40 && !altchar)
	if inverse {
		fg, bg = bg, fg
	}
	for y := 0; y < glyphH; y++ {
		bits := glyph[y]
		for x := 0; x < glyphW; x++ {
			on := bits&(1<<uint(glyphW-1-x)) != 0
			c := bg
			if on {
				c = fg
			}
			v.setPixel(col*7+x, row*8+y, c)
		}
	}
}

// glyphBits returns the 8-row bitmap for ch, from the host character
// ROM if one was supplied, otherwise the built-in fallback font. When
// altchar selects the alternate (MouseText) character set for the
// $40-$7F range, a host-supplied 512-glyph ROM's second 256-glyph bank
// is consulted; the built-in fallback has no MouseText bitmaps, so it
// approximates the alternate set by inverting each row's bit order,
// giving ALTCHAR a visible effect without fabricating the real
// MouseText icon shapes (§7 Non-goals: bit-exact ROM reproduction is
// out of scope, matching the hires palette's own approximation).
func (v *VideoPages) glyphBits(ch uint8, altchar bool) [8]uint8 {
	useAlt := altchar && ch&0xC0 == 0x40
	var out [8]uint8
	if v.characterRom != nil {
		base := int(ch) * 8
		if useAlt && len(v.characterRom) >= 512*8 {
			base += 256 * 8
		}
		copy(out[:], v.characterRom[base:base+8])
		return out
	}
	out = fallbackFont(ch)
	if useAlt {
		for y := range out {
			out[y] = reverseBits7(out[y])
		}
	}
	return out
}

// reverseBits7 reverses the low 7 bits of b (glyphW is 7), used to
// give the fallback font's approximated alternate-character-set glyphs
// a visibly different shape from their primary-set counterparts.
func reverseBits7(b uint8) uint8 {
	var r uint8
	for i := 0; i < glyphW; i++ {
		if b&(1<<uint(i)) != 0 {
			r |= 1 << uint(glyphW-1-i)
		}
	}
	return r
}

// GetText extracts the text page as a plain string (§4.6, wired by
// adapter/clipboard.go into golang.design/x/clipboard), honoring the
// current page2 selection and 80-column width.
func (v *VideoPages) GetText() string {
	if v.mmu == nil {
		return ""
	}
	base := uint16(0x0400)
	if v.page2 {
		base = 0x0800
	}
	col80 := v.mmu.col80
	var b strings.Builder
	for row := 0; row < textRows; row++ {
		for col := 0; col < textCols40; col++ {
			off := uint16(row/8)*0x28 + uint16(row%8)*0x80 + uint16(col)
			cells := []uint8{v.mmu.mainRAM[base+off]}
			if col80 {
				cells = []uint8{v.mmu.auxRAM[base+off], v.mmu.mainRAM[base+off]}
			}
			for _, ch := range cells {
				ch &= 0x7F
				if ch < 0x20 {
					ch += 0x40
				}
				b.WriteByte(ch)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Framebuffer returns the current RGB framebuffer and its pixel width
// (280, or 560 while the 80COL latch is set).
func (v *VideoPages) Framebuffer() ([]uint8, int, int) {
	return v.framebuffer, v.width, videoHeight
}

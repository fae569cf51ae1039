package core

import (
	"image"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// fallbackFont rasterizes ch into an 8-row, 7-bit-wide glyph using
// golang.org/x/image/font/basicfont when no host character ROM has
// been supplied via VideoPages.SetCharacterRom (§4.6). The built-in
// face is 7x13; only the cell's top 8 rows are sampled; the Apple II
// character generator's control-range duplication of the printable
// set ($00-$3F mirroring $40-$7F etc.) is approximated by folding out-
// of-range codes back into the 7-bit printable band.
func fallbackFont(ch uint8) [8]uint8 {
	fallbackOnce.Do(buildFallbackFont)
	return fallbackGlyphCache[ch]
}

var (
	fallbackOnce        sync.Once
	fallbackGlyphCache  [256][8]uint8
)

func buildFallbackFont() {
	face := basicfont.Face7x13
	for c := 32; c < 127; c++ {
		img := image.NewGray(image.Rect(0, 0, glyphW, glyphH))
		d := &font.Drawer{
			Dst:  img,
			Src:  image.White,
			Face: face,
			Dot:  fixed.Point26_6{X: fixed.I(0), Y: fixed.I(glyphH - 1)},
		}
		d.DrawString(string(rune(c)))
		var glyph [8]uint8
		for y := 0; y < glyphH; y++ {
			var row uint8
			for x := 0; x < glyphW; x++ {
				if img.GrayAt(x, y).Y > 127 {
					row |= 1 << uint(glyphW-1-x)
				}
			}
			glyph[y] = row
		}
		fallbackGlyphCache[c] = glyph
	}
	for c := 0; c < 256; c++ {
		if c >= 32 && c < 127 {
			continue
		}
		m := c & 0x7F
		if m < 0x20 {
			m += 0x40
		}
		fallbackGlyphCache[c] = fallbackGlyphCache[m]
	}
}

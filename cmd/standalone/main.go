// Command standalone is the desktop frontend: it wires core.Emulator to
// an ebiten window and an oto speaker, the same Update/Draw/Layout shape
// video_backend_ebiten.go uses to drive IntuitionEngine's output.
package main

import (
	"flag"
	"image"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/user-none/apple2core/adapter"
	"github.com/user-none/apple2core/core"
	"github.com/user-none/apple2core/romloader"
)

const (
	windowWidth  = 560
	windowHeight = 384
)

type game struct {
	emu       *core.Emulator
	speaker   *adapter.SpeakerPlayer
	img       *ebiten.Image
	lastFrame time.Time
}

func newGame(emu *core.Emulator) *game {
	speaker, err := adapter.NewSpeakerPlayer(core.StandardKHz)
	if err != nil {
		log.Printf("audio disabled: %v", err)
		speaker = nil
	}
	return &game{
		emu:       emu,
		speaker:   speaker,
		img:       ebiten.NewImage(windowWidth, windowHeight),
		lastFrame: time.Now(),
	}
}

func (g *game) Update() error {
	now := time.Now()
	elapsedMs := float64(now.Sub(g.lastFrame).Microseconds()) / 1000
	g.lastFrame = now
	if elapsedMs <= 0 {
		elapsedMs = 1000.0 / 60
	}

	g.handleKeyboard()
	g.emu.RunTick(elapsedMs, 1000.0/60)

	if g.speaker != nil {
		g.speaker.Feed(g.emu.DrainAudio())
	}
	return nil
}

// handleKeyboard feeds typed characters and a handful of special keys
// into the emulator's key buffer, and dispatches a clipboard paste on
// Ctrl+Shift+V the same way video_backend_ebiten.go does.
func (g *game) handleKeyboard() {
	if chars := ebiten.AppendInputChars(nil); len(chars) > 0 {
		g.emu.SetKeyBuffer(string(chars))
	}

	special := map[ebiten.Key]byte{
		ebiten.KeyEnter:      '\r',
		ebiten.KeyBackspace:  0x08,
		ebiten.KeyTab:        0x09,
		ebiten.KeyEscape:     0x1B,
		ebiten.KeyArrowLeft:  0x08,
		ebiten.KeyArrowRight: 0x15,
	}
	for key, code := range special {
		if inpututil.IsKeyJustPressed(key) {
			g.emu.KeyDown(code)
		}
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl)
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		adapter.PasteIntoKeyBuffer(g.emu)
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	rgb, w, h := g.emu.GetVideoModes().Framebuffer()
	if w == 0 || h == 0 {
		return
	}
	rgba := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		rgba[i*4] = rgb[i*3]
		rgba[i*4+1] = rgb[i*3+1]
		rgba[i*4+2] = rgb[i*3+2]
		rgba[i*4+3] = 0xFF
	}
	g.img = ebiten.NewImageFromImage(&image.RGBA{
		Pix:    rgba,
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, h),
	})
	opts := &ebiten.DrawImageOptions{}
	sx := float64(windowWidth) / float64(w)
	sy := float64(windowHeight) / float64(h)
	opts.GeoM.Scale(sx, sy)
	screen.DrawImage(g.img, opts)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return windowWidth, windowHeight
}

func main() {
	romPath := flag.String("rom", "", "path to the system ROM image ($D000-$FFFF, 12KB)")
	diskPath := flag.String("disk", "", "path to a DSK/PO/2MG/WOZ disk image for drive 1")
	enhanced := flag.Bool("enhanced", true, "enable 65C02 instruction semantics")
	plainII := flag.Bool("ii", false, "emulate a plain Apple II instead of a IIe")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("a system ROM is required: pass -rom <path>")
	}
	sysROM, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("loading system ROM: %v", err)
	}

	emu := core.NewEmulator(core.Options{
		Enhanced:  *enhanced,
		PlainII:   *plainII,
		SystemROM: sysROM,
	})

	if *diskPath != "" {
		data, name, err := romloader.LoadDiskImage(*diskPath)
		if err != nil {
			log.Fatalf("loading disk image: %v", err)
		}
		if !emu.SetBinary(1, name, diskExtension(name), data) {
			log.Fatalf("unrecognized or malformed disk image: %s", *diskPath)
		}
	}

	emu.Run()

	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetWindowTitle("Apple IIe")
	if err := ebiten.RunGame(newGame(emu)); err != nil {
		log.Fatal(err)
	}
}

func diskExtension(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[i+1:]
		}
	}
	return "dsk"
}

package adapter

import (
	"strings"
	"sync"

	"golang.design/x/clipboard"

	"github.com/user-none/apple2core/core"
)

const maxPasteBytes = 4096

var (
	clipboardOnce sync.Once
	clipboardOK   bool
)

func ensureClipboard() bool {
	clipboardOnce.Do(func() {
		clipboardOK = clipboard.Init() == nil
	})
	return clipboardOK
}

// CopyScreenText copies the emulator's current text-screen contents to
// the host clipboard, grounded on video_backend_ebiten.go's clipboard
// integration (there used for paste; here the mirror copy path).
func CopyScreenText(e *core.Emulator) bool {
	if !ensureClipboard() {
		return false
	}
	text := e.GetVideoModes().GetText()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return true
}

// PasteIntoKeyBuffer reads the host clipboard and queues its contents
// as keystrokes via the emulator's key buffer, the same
// normalize-then-cap shape as video_backend_ebiten.go's
// handleClipboardPaste.
func PasteIntoKeyBuffer(e *core.Emulator) bool {
	if !ensureClipboard() {
		return false
	}
	raw := clipboard.Read(clipboard.FmtText)
	if len(raw) == 0 {
		return false
	}
	text := capPasteText(normalizePasteText(string(raw)), maxPasteBytes)
	if text == "" {
		return false
	}
	e.SetKeyBuffer(text)
	return true
}

// normalizePasteText rewrites host line endings to the carriage returns
// the Apple II keyboard buffer expects.
func normalizePasteText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\r")
	s = strings.ReplaceAll(s, "\n", "\r")
	return s
}

// capPasteText truncates overlong paste payloads rather than flooding
// the key buffer.
func capPasteText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

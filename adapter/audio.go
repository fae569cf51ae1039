// Package adapter hosts the host-facing backends (audio output, clipboard
// bridging) that sit between core and a concrete frontend, grounded the
// same way IntuitionEngine's audio_backend_oto.go wraps oto.Context behind
// its own player type.
package adapter

import (
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/user-none/apple2core/core"
)

const audioSampleRate = 44100

// SpeakerPlayer resamples the core's cycle-timestamped speaker-toggle
// event stream (core.AudioEvent) into a PCM square wave at the host's
// sample rate and feeds it to oto. The core has no notion of sample
// rate of its own; this is the one place that gets turned into actual
// audio, the same split IntuitionEngine draws between its SoundChip
// (cycle domain) and OtoPlayer (sample domain).
type SpeakerPlayer struct {
	player *oto.Player

	mu              sync.Mutex
	cyclesPerSample float64
	level           bool
	lastCycle       uint64
	haveLastCycle   bool
	fifo            []float32
}

// NewSpeakerPlayer opens an oto playback context at audioSampleRate and
// starts a Player that drains fifo as oto requests samples.
func NewSpeakerPlayer(khz int) (*SpeakerPlayer, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   audioSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	p := &SpeakerPlayer{}
	p.SetKHz(khz)
	p.player = ctx.NewPlayer(p)
	p.player.Play()
	return p, nil
}

// SetKHz recomputes the cycles-per-output-sample ratio when the run-loop
// speed changes (e.g. accelerated mode).
func (p *SpeakerPlayer) SetKHz(khz int) {
	if khz <= 0 {
		khz = core.StandardKHz
	}
	p.mu.Lock()
	p.cyclesPerSample = float64(khz) * 1000 / audioSampleRate
	p.mu.Unlock()
}

// Feed appends newly drained AudioEvents (from Emulator.DrainAudio) to
// the resampling queue, expanding each cycle-timestamped toggle into
// however many output samples it spans at the current rate.
func (p *SpeakerPlayer) Feed(events []core.AudioEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ev := range events {
		if !p.haveLastCycle {
			p.lastCycle = ev.Cycle
			p.haveLastCycle = true
		}
		span := int(float64(ev.Cycle-p.lastCycle) / p.cyclesPerSample)
		for i := 0; i < span; i++ {
			p.fifo = append(p.fifo, levelSample(p.level))
		}
		p.level = ev.Level
		p.lastCycle = ev.Cycle
	}
}

func levelSample(level bool) float32 {
	if level {
		return 0.25
	}
	return -0.25
}

// Read implements io.Reader for oto.Player. Once the fifo runs dry it
// repeats the last known level rather than emitting silence, since a
// long run with no toggles (speaker parked high or low) is a flat line,
// not quiet.
func (p *SpeakerPlayer) Read(buf []byte) (int, error) {
	n := len(buf) / 4
	p.mu.Lock()
	for i := 0; i < n; i++ {
		var v float32
		if len(p.fifo) > 0 {
			v = p.fifo[0]
			p.fifo = p.fifo[1:]
		} else {
			v = levelSample(p.level)
		}
		bits := math.Float32bits(v)
		buf[i*4] = byte(bits)
		buf[i*4+1] = byte(bits >> 8)
		buf[i*4+2] = byte(bits >> 16)
		buf[i*4+3] = byte(bits >> 24)
	}
	p.mu.Unlock()
	return n * 4, nil
}

// Close stops playback and releases the oto player.
func (p *SpeakerPlayer) Close() {
	if p.player != nil {
		p.player.Close()
	}
}

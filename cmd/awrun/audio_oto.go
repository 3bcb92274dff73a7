// audio_oto.go - oto v3 audio sink for awrun
package main

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"

	vm "github.com/anotherworld-vm/engine"
)

// otoSink mixes the machine's four sound channels plus music into a
// mono PCM stream and hands it to an oto player. Read is called from
// oto's own audio callback goroutine; Mixer.Mix serializes against the
// scheduler goroutine internally.
type otoSink struct {
	ctx        *oto.Context
	player     *oto.Player
	mixer      atomic.Pointer[vm.Mixer]
	sampleRate int
	started    bool
}

func newOtoSink(mixer *vm.Mixer, sampleRate int) (*otoSink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	s := &otoSink{ctx: ctx, sampleRate: sampleRate}
	s.mixer.Store(mixer)
	s.player = ctx.NewPlayer(s)
	return s, nil
}

// Read implements io.Reader for oto.Player: 4 bytes (one little-endian
// float32 in [-1, 1]) per mono sample, mixed from the machine's signed
// 8-bit channels.
func (s *otoSink) Read(p []byte) (int, error) {
	n := len(p) / 4
	m := s.mixer.Load()
	samples := make([]int8, n)
	if m != nil {
		m.Mix(samples, s.sampleRate)
	}
	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(float32(v)/128))
	}
	return n * 4, nil
}

func (s *otoSink) Start() {
	if !s.started {
		s.player.Play()
		s.started = true
	}
}

func (s *otoSink) Close() error {
	if s.started {
		s.started = false
	}
	return s.player.Close()
}

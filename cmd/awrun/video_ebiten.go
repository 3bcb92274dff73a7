// video_ebiten.go - Ebiten video backend and input polling for awrun
package main

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	vm "github.com/anotherworld-vm/engine"
)

// ebitenHost implements vm.Host and ebiten.Game. The scheduler goroutine
// calls OnVideoFrameReady/OnVideoBufferChanged; ebiten's own
// goroutine calls Update/Draw/Layout. mu guards the handoff.
type ebitenHost struct {
	mu        sync.Mutex
	machine   *vm.Machine
	presented int // resolved buffer index from the latest OnVideoFrameReady
	image     *ebiten.Image

	lastPressed byte
}

func newEbitenHost() *ebitenHost {
	return &ebitenHost{presented: -1}
}

func (h *ebitenHost) attachMachine(m *vm.Machine) {
	h.mu.Lock()
	h.machine = m
	h.mu.Unlock()
}

func (h *ebitenHost) mixer() *vm.Mixer {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.machine == nil {
		return nil
	}
	return h.machine.Mixer
}

// OnVideoFrameReady records which buffer to present next. delayMs is the
// spec's own frame-pacing hint; ebiten already paces Draw at the
// display's refresh rate, so this reference host does not additionally
// sleep on it.
func (h *ebitenHost) OnVideoFrameReady(resolvedBufferIndex int, delayMs int) {
	h.mu.Lock()
	h.presented = resolvedBufferIndex
	h.mu.Unlock()
}

func (h *ebitenHost) OnVideoBufferChanged(int) {}

func (h *ebitenHost) OnAudioReady([]byte) {}

func (h *ebitenHost) run() error {
	width, height := 320, 200
	ebiten.SetWindowSize(width*2, height*2)
	ebiten.SetWindowTitle("awrun")
	ebiten.SetWindowResizable(true)
	return ebiten.RunGame(h)
}

func (h *ebitenHost) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	h.mu.Lock()
	for _, r := range ebiten.AppendInputChars(nil) {
		if r > 0 && r <= 0xFF {
			h.lastPressed = byte(r)
		}
	}
	h.mu.Unlock()
	return nil
}

// pollInput samples the keyboard into one tic's vm.Input snapshot.
func (h *ebitenHost) pollInput() vm.Input {
	h.mu.Lock()
	pressed := h.lastPressed
	h.lastPressed = 0
	h.mu.Unlock()

	return vm.Input{
		Left:               ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		Right:              ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		Up:                 ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		Down:               ebiten.IsKeyPressed(ebiten.KeyArrowDown),
		Action:             ebiten.IsKeyPressed(ebiten.KeySpace),
		LastPressedCharacter: pressed,
		ShowPasswordScreen: inpututil.IsKeyJustPressed(ebiten.KeyF2),
	}
}

func (h *ebitenHost) Draw(screen *ebiten.Image) {
	h.mu.Lock()
	m, idx := h.machine, h.presented
	h.mu.Unlock()
	if m == nil || idx < 0 {
		return
	}

	pixels, err := m.Video.RGBA(idx, m.Palettes.Active())
	if err != nil {
		return
	}
	width, height := m.Video.Dimensions()
	if h.image == nil {
		h.image = ebiten.NewImage(width, height)
	}
	h.image.WritePixels(pixels)
	screen.DrawImage(h.image, nil)
}

func (h *ebitenHost) Layout(_, _ int) (int, int) {
	return 320, 200
}

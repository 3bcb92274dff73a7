package vm

import "testing"

type recordingHost struct {
	changed []int
	frames  []int
}

func (r *recordingHost) OnVideoFrameReady(idx, delayMs int) { r.frames = append(r.frames, idx) }
func (r *recordingHost) OnVideoBufferChanged(idx int)       { r.changed = append(r.changed, idx) }
func (r *recordingHost) OnAudioReady([]byte)                {}

func TestNewVideoModelInitialRouting(t *testing.T) {
	v := NewVideoModel(nil)
	if v.resolve(FrontBuffer()) != 2 {
		t.Fatalf("front should resolve to buffer 2 initially")
	}
	if v.resolve(BackBuffer()) != 1 {
		t.Fatalf("back should resolve to buffer 1 initially")
	}
}

func TestSelectTargetBufferInvalid(t *testing.T) {
	v := NewVideoModel(nil)
	if err := v.SelectTargetBuffer(SpecificBuffer(9)); err != ErrInvalidBufferId {
		t.Fatalf("got %v, want ErrInvalidBufferId", err)
	}
}

func TestFillSetsEveryPixel(t *testing.T) {
	v := NewVideoModel(nil)
	if err := v.Fill(SpecificBuffer(0), 7); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	for _, b := range v.buffers[0] {
		if b != 7 {
			t.Fatalf("expected every pixel to be 7")
		}
	}
}

func TestCopyShiftsRowsAndClips(t *testing.T) {
	v := NewVideoModel(nil)
	v.buffers[0][0] = 3 // row 0, col 0
	if err := v.Copy(SpecificBuffer(0), SpecificBuffer(1), 5); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if v.buffers[1][5*videoWidth] != 3 {
		t.Fatalf("expected shifted pixel at row 5")
	}
	if err := v.Copy(SpecificBuffer(0), SpecificBuffer(1), 1_000_000); err != nil {
		t.Fatalf("out-of-range shift should not error: %v", err)
	}
}

func TestDrawPixelModes(t *testing.T) {
	v := NewVideoModel(nil)
	v.SelectTargetBuffer(SpecificBuffer(2))
	v.drawPixel(0, 0, SolidMode(9))
	if v.buffers[2][0] != 9 {
		t.Fatalf("solid mode should write the given color")
	}
	v.buffers[2][0] = 0x03
	v.drawPixel(0, 0, HighlightMode())
	if v.buffers[2][0] != 0x0B {
		t.Fatalf("highlight should OR in bit 3, got %#x", v.buffers[2][0])
	}
	v.buffers[0][0] = 0x05
	v.drawPixel(0, 0, MaskMode())
	if v.buffers[2][0] != 0x05 {
		t.Fatalf("mask mode should copy from buffer 0")
	}
}

func TestDrawPixelOutOfBoundsNoop(t *testing.T) {
	v := NewVideoModel(nil)
	before := v.buffers[v.target]
	v.drawPixel(-1, -1, SolidMode(1))
	v.drawPixel(videoWidth, videoHeight, SolidMode(1))
	if v.buffers[v.target] != before {
		t.Fatalf("out-of-bounds draw should not mutate buffer")
	}
}

func TestDrawStringNewline(t *testing.T) {
	v := NewVideoModel(nil)
	v.SelectTargetBuffer(SpecificBuffer(2))
	v.DrawString("A\nB", 1, 0, 0)
	// Second row glyph should start at y == glyphHeight.
	found := false
	for col := 0; col < glyphWidth; col++ {
		if v.buffers[2][glyphHeight*videoWidth+col] != 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected glyph pixels on the second line")
	}
}

func TestRenderRotatesFrontBack(t *testing.T) {
	h := &recordingHost{}
	v := NewVideoModel(h)
	front, back := v.front, v.back
	if err := v.Render(FrontBuffer(), 20); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if v.front != back || v.back != front {
		t.Fatalf("Render(front) should swap front/back aliases")
	}
	if len(h.frames) != 1 {
		t.Fatalf("expected one OnVideoFrameReady call")
	}
}

func TestRGBAExpandsThroughPalette(t *testing.T) {
	v := NewVideoModel(nil)
	if err := v.Fill(SpecificBuffer(0), 5); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	var palette Palette
	palette[5] = RGB{R: 10, G: 20, B: 30}

	pixels, err := v.RGBA(0, palette)
	if err != nil {
		t.Fatalf("RGBA: %v", err)
	}
	if len(pixels) != videoWidth*videoHeight*4 {
		t.Fatalf("got %d bytes, want %d", len(pixels), videoWidth*videoHeight*4)
	}
	if pixels[0] != 10 || pixels[1] != 20 || pixels[2] != 30 || pixels[3] != 0xFF {
		t.Fatalf("unexpected first pixel: %v", pixels[:4])
	}
}

func TestRGBAInvalidIndex(t *testing.T) {
	v := NewVideoModel(nil)
	if _, err := v.RGBA(9, Palette{}); err != ErrInvalidBufferId {
		t.Fatalf("got %v, want ErrInvalidBufferId", err)
	}
}

func TestLoadBitmapMasksToNibble(t *testing.T) {
	v := NewVideoModel(nil)
	pixels := make([]byte, videoWidth*videoHeight)
	pixels[0] = 0xFF
	v.LoadBitmap(pixels)
	if v.buffers[0][0] != 0x0F {
		t.Fatalf("LoadBitmap should mask to the low nibble, got %#x", v.buffers[0][0])
	}
}

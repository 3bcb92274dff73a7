// video_buffer.go - Indexed framebuffers and draw operations

package vm

const (
	videoWidth  = 320
	videoHeight = 200
	numBuffers  = 4
)

// BufferId names a video buffer: a concrete index, or a symbolic alias
// resolved against the model's current front/back rotation.
type BufferId struct {
	kind bufferIdKind
	idx  int // valid only when kind == bufferIdSpecific
}

type bufferIdKind int

const (
	bufferIdFront bufferIdKind = iota
	bufferIdBack
	bufferIdSpecific
)

func FrontBuffer() BufferId         { return BufferId{kind: bufferIdFront} }
func BackBuffer() BufferId          { return BufferId{kind: bufferIdBack} }
func SpecificBuffer(i int) BufferId { return BufferId{kind: bufferIdSpecific, idx: i} }

// DrawMode selects how a draw operation picks the color written to each
// touched pixel.
type DrawMode struct {
	kind  drawModeKind
	color byte // valid only when kind == drawModeSolid
}

type drawModeKind int

const (
	drawModeSolid drawModeKind = iota
	drawModeHighlight
	drawModeMask
)

func SolidMode(color byte) DrawMode { return DrawMode{kind: drawModeSolid, color: color & 0x0F} }
func HighlightMode() DrawMode       { return DrawMode{kind: drawModeHighlight} }
func MaskMode() DrawMode            { return DrawMode{kind: drawModeMask} }

// frameBuffer is a 320x200 array of 4-bit color indices, one nibble per
// byte for simplicity of addressing. VideoModel.LoadBitmap takes bitmap
// data already in this one-nibble-per-byte form; it does not unpack
// packed or planar bitmap data.
type frameBuffer [videoWidth * videoHeight]byte

// VideoModel owns the four indexed framebuffers, the current draw target,
// the mask-source buffer, and the front/back rotation used by front/back
// BufferId aliases.
type VideoModel struct {
	buffers     [numBuffers]frameBuffer
	target      int
	front, back int
	host        Host
}

// NewVideoModel constructs a model with buffer 2 as the initial draw
// target, buffer 1 as the initial back buffer, and buffer 2 as the
// initial front buffer, per spec.md §4.7.
func NewVideoModel(host Host) *VideoModel {
	if host == nil {
		host = discardHost{}
	}
	return &VideoModel{target: 2, front: 2, back: 1, host: host}
}

// resolve maps a BufferId to a concrete index in [0, numBuffers).
func (v *VideoModel) resolve(id BufferId) int {
	switch id.kind {
	case bufferIdFront:
		return v.front
	case bufferIdBack:
		return v.back
	default:
		return id.idx
	}
}

// SelectTargetBuffer sets the buffer subsequent draws target.
func (v *VideoModel) SelectTargetBuffer(id BufferId) error {
	idx := v.resolve(id)
	if idx < 0 || idx >= numBuffers {
		return ErrInvalidBufferId
	}
	v.target = idx
	return nil
}

// Fill sets every pixel of the resolved buffer to color.
func (v *VideoModel) Fill(id BufferId, color byte) error {
	idx := v.resolve(id)
	if idx < 0 || idx >= numBuffers {
		return ErrInvalidBufferId
	}
	buf := &v.buffers[idx]
	for i := range buf {
		buf[i] = color & 0x0F
	}
	v.host.OnVideoBufferChanged(idx)
	return nil
}

// Copy copies the entire src buffer into dst, shifted vertically by
// yOffset ∈ [-199, 199]; rows that land out of bounds are dropped.
func (v *VideoModel) Copy(src, dst BufferId, yOffset int) error {
	srcIdx, dstIdx := v.resolve(src), v.resolve(dst)
	if srcIdx < 0 || srcIdx >= numBuffers || dstIdx < 0 || dstIdx >= numBuffers {
		return ErrInvalidBufferId
	}
	srcBuf, dstBuf := &v.buffers[srcIdx], &v.buffers[dstIdx]
	for y := 0; y < videoHeight; y++ {
		dy := y + yOffset
		if dy < 0 || dy >= videoHeight {
			continue
		}
		copy(dstBuf[dy*videoWidth:(dy+1)*videoWidth], srcBuf[y*videoWidth:(y+1)*videoWidth])
	}
	v.host.OnVideoBufferChanged(dstIdx)
	return nil
}

// LoadBitmap copies raw, already-expanded (one nibble per byte) bitmap
// pixels into buffer 0.
func (v *VideoModel) LoadBitmap(pixels []byte) {
	n := copy(v.buffers[0][:], pixels)
	for i := 0; i < n; i++ {
		v.buffers[0][i] &= 0x0F
	}
	v.host.OnVideoBufferChanged(0)
}

// inBounds reports whether (x, y) lies within the 320x200 frame.
func inBounds(x, y int) bool {
	return x >= 0 && x < videoWidth && y >= 0 && y < videoHeight
}

// drawPixel applies mode at (x, y) of the target buffer, using buffer 0
// as the mask source. Out-of-bounds coordinates are silently dropped.
func (v *VideoModel) drawPixel(x, y int, mode DrawMode) {
	if !inBounds(x, y) {
		return
	}
	i := y*videoWidth + x
	buf := &v.buffers[v.target]
	switch mode.kind {
	case drawModeSolid:
		buf[i] = mode.color
	case drawModeHighlight:
		buf[i] = (buf[i] & 0x07) | 0x08
	case drawModeMask:
		buf[i] = v.buffers[0][i] & 0x0F
	}
}

// drawDot draws a single pixel, for degenerate (0x0) polygon bounds.
func (v *VideoModel) drawDot(x, y int, mode DrawMode) {
	v.drawPixel(x, y, mode)
	v.host.OnVideoBufferChanged(v.target)
}

// drawSpan draws a horizontal run [x1, x2] at row y, for degenerate
// two-pixel-tall polygon bounds and scanline fills alike.
func (v *VideoModel) drawSpan(x1, x2, y int, mode DrawMode) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		v.drawPixel(x, y, mode)
	}
	v.host.OnVideoBufferChanged(v.target)
}

// DrawString renders str as left-to-right 8x8 glyphs starting at (x, y);
// '\n' moves the cursor down 8 pixels and resets x to the origin's x.
// Glyphs entirely outside bounds are skipped silently.
func (v *VideoModel) DrawString(str string, color byte, originX, originY int) {
	mode := SolidMode(color)
	x, y := originX, originY
	for _, r := range str {
		if r == '\n' {
			y += glyphHeight
			x = originX
			continue
		}
		if x+glyphWidth > 0 && x < videoWidth && y+glyphHeight > 0 && y < videoHeight {
			g := glyphFor(byte(r))
			for row := 0; row < glyphHeight; row++ {
				for col := 0; col < glyphWidth; col++ {
					if g.pixelSet(row, col) {
						v.drawPixel(x+col, y+row, mode)
					}
				}
			}
		}
		x += glyphWidth
	}
	v.host.OnVideoBufferChanged(v.target)
}

// Render selects the buffer to present next, rotates the front/back
// indices when id is the front or back alias (specific(n) leaves them
// untouched), and notifies the host of the resolved index and delay.
func (v *VideoModel) Render(id BufferId, delayMs int) error {
	idx := v.resolve(id)
	if idx < 0 || idx >= numBuffers {
		return ErrInvalidBufferId
	}
	if id.kind == bufferIdFront || id.kind == bufferIdBack {
		v.front, v.back = v.back, v.front
	}
	v.host.OnVideoFrameReady(idx, delayMs)
	return nil
}

// Dimensions returns the fixed frame size, for hosts sizing their window
// or backing texture.
func (v *VideoModel) Dimensions() (width, height int) {
	return videoWidth, videoHeight
}

// RGBA expands buffer index's 4-bit color indices through palette
// into a width*height*4 byte RGBA slice, suitable for a host's texture
// upload. Palette selection happens here, at presentation time, never
// during draws (see PaletteSelector).
func (v *VideoModel) RGBA(index int, palette Palette) ([]byte, error) {
	if index < 0 || index >= numBuffers {
		return nil, ErrInvalidBufferId
	}
	buf := &v.buffers[index]
	out := make([]byte, videoWidth*videoHeight*4)
	for i, ci := range buf {
		c := palette[ci&0x0F]
		out[i*4+0] = c.R
		out[i*4+1] = c.G
		out[i*4+2] = c.B
		out[i*4+3] = 0xFF
	}
	return out, nil
}

// instructions_video.go - Video and polygon-draw instruction execution

package vm

// resolveOperand reads an operand's value: the register named by it, or
// its embedded immediate.
func resolveOperand(regs *Registers, op operand) int16 {
	if op.isRegister {
		return regs.Get(op.register)
	}
	return op.immediate
}

// resolvePolygonMode maps a leaf polygon's color byte to a DrawMode. Two
// reserved color values select the non-solid modes; every other value is
// a direct palette index, per this project's own convention (spec.md §9
// leaves the exact color-to-mode mapping unspecified beyond naming the
// three modes).
func resolvePolygonMode(color byte) DrawMode {
	switch color {
	case 0xFF:
		return MaskMode()
	case 0xFE:
		return HighlightMode()
	default:
		return SolidMode(color)
	}
}

// executeVideo applies one video-subsystem instruction: palette/buffer
// selection, fill/copy/render, the two polygon draws, and drawString.
func executeVideo(m *Machine, ins Instruction) error {
	switch ins.Kind {
	case InsSelectPalette:
		return m.selectPalette(int(ins.Color))

	case InsSelectVideoBuffer:
		return m.Video.SelectTargetBuffer(ins.BufferId)

	case InsFillVideoBuffer:
		return m.Video.Fill(ins.BufferId, ins.Color)

	case InsCopyVideoBuffer:
		yOffset := int(ins.YOffset)
		if ins.YOffsetReg != nil {
			yOffset = int(m.Registers.Get(*ins.YOffsetReg))
		}
		return m.Video.Copy(ins.SrcBufferId, ins.DstBufferId, yOffset)

	case InsRenderVideoBuffer:
		delayMs := int(m.Registers.Unsigned(RegisterFrameDuration)) * 20
		m.Registers.Set(RegisterAllInputs, 0)
		return m.Video.Render(ins.BufferId, delayMs)

	case InsDrawBackgroundPolygon:
		return m.drawPolygon(polygonSourcePolygons, ins.PolygonAddr, ins.Origin, 64)

	case InsDrawSpritePolygon:
		x := resolveOperand(&m.Registers, ins.XSource)
		y := resolveOperand(&m.Registers, ins.YSource)
		scale := int(resolveOperand(&m.Registers, ins.Scale))
		return m.drawPolygon(ins.Source, ins.PolygonAddr, Point{X: int(x), Y: int(y)}, scale)

	case InsDrawString:
		str, err := m.Strings.Lookup(ins.StringId)
		if err != nil {
			return err
		}
		m.Video.DrawString(str, ins.Color, ins.Origin.X, ins.Origin.Y)
		return nil
	}
	return nil
}

// selectPalette validates id against spec.md §4.6's [0, 31] range and
// applies it to the current palette selector.
func (m *Machine) selectPalette(id int) error {
	if m.Palettes == nil {
		return ErrInvalidPaletteId
	}
	return m.Palettes.SelectPalette(id)
}

// drawPolygon resolves source against the current game part's polygon or
// animation resource and rasterizes every leaf the tree reaches.
func (m *Machine) drawPolygon(source polygonSource, address int, origin Point, scale int) error {
	part, ok := m.Resources.CurrentGamePart()
	if !ok {
		return ErrInvalidAddress
	}
	resource := part.Polygons
	if source == polygonSourceAnimations {
		resource = part.Animations
	}
	return IteratePolygons(resource, address, origin, scale, func(p LeafPolygon) {
		Rasterize(m.Video, p, resolvePolygonMode(p.Color))
	})
}

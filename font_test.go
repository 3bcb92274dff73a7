package vm

import "testing"

func TestGlyphForKnownCharacter(t *testing.T) {
	g := glyphFor('A')
	if g != glyphTable['A'] {
		t.Fatalf("glyphFor('A') did not return the table entry")
	}
}

func TestGlyphForUnknownCharacterIsBlank(t *testing.T) {
	g := glyphFor('~')
	if g != (glyph{}) {
		t.Fatalf("glyphFor of an unmapped byte should be blank, got %+v", g)
	}
}

func TestPixelSetLeftmostColumn(t *testing.T) {
	g := glyph{0x80, 0, 0, 0, 0, 0, 0, 0}
	if !g.pixelSet(0, 0) {
		t.Fatalf("expected leftmost pixel of row 0 to be set")
	}
	if g.pixelSet(0, 1) {
		t.Fatalf("expected second pixel of row 0 to be clear")
	}
}

package console

import "testing"

func buildPSF1(height int) []byte {
	data := []byte{psf1Magic0, psf1Magic1, 0x00, byte(height)}
	data = append(data, make([]byte, 256*height)...)
	return data
}

func TestParsePSF1RejectsBadMagic(t *testing.T) {
	if _, ok := ParsePSF1([]byte{0, 0, 0, 8}); ok {
		t.Fatalf("expected rejection of bad magic")
	}
}

func TestParsePSF1Accepts256Glyphs(t *testing.T) {
	font, ok := ParsePSF1(buildPSF1(16))
	if !ok {
		t.Fatalf("expected a valid PSF1 font to parse")
	}
	if font.GlyphHeight != 16 {
		t.Fatalf("GlyphHeight = %d, want 16", font.GlyphHeight)
	}
	if len(font.Glyphs) != 256*16 {
		t.Fatalf("len(Glyphs) = %d, want %d", len(font.Glyphs), 256*16)
	}
}

func TestConsoleGridSizing(t *testing.T) {
	font, _ := ParsePSF1(buildPSF1(16))
	fb := &Framebuffer{Width: 640, Height: 480, Pitch: 640 * 4, BytesPerPixel: 4}
	c := NewConsole(fb, font)
	if c.cols != 640/8 || c.rows != 480/16 {
		t.Fatalf("grid = %dx%d, want %dx%d", c.cols, c.rows, 640/8, 480/16)
	}
}

func TestConsoleWriteWrapsAtRowLimit(t *testing.T) {
	font, _ := ParsePSF1(buildPSF1(16))
	fb := &Framebuffer{Width: 16, Height: 32, Pitch: 16 * 4, BytesPerPixel: 4}
	c := NewConsole(fb, font)
	// write enough lines to wrap past the bottom row back to the top.
	for i := 0; i < c.rows+1; i++ {
		c.Write([]byte("\n"))
	}
	if c.row != 1 {
		t.Fatalf("row after wraparound = %d, want 1", c.row)
	}
}
